// Package importer streams raw dictionary records into a dictlite database.
//
// It is offline, single-writer tooling: it builds the file that the engine
// later opens read-mostly, and never runs against a live engine instance.
package importer

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/liliang-cn/dictlite/pkg/core"
)

// ErrImportAborted is returned when so many consecutive lines fail to parse
// that the input itself has to be considered invalid. The open batch is
// rolled back; callers should discard the output file, since earlier batches
// were already committed.
var ErrImportAborted = errors.New("import aborted: input looks invalid")

// TotalUnknown is passed to the progress callback when the caller did not
// pre-count the input.
const TotalUnknown int64 = -1

// maxLineBytes bounds a single JSONL line. Entries are a few KB; 1 MiB
// leaves room for pathological ones without unbounding memory.
const maxLineBytes = 1 << 20

// Progress receives periodic updates with the number of processed lines and
// the total line count, or TotalUnknown.
type Progress func(processed, total int64)

// Options tunes an import run
type Options struct {
	// BatchSize is the number of input lines per transaction
	BatchSize int
	// ProgressEvery is how often (in lines) the progress callback fires
	ProgressEvery int64
	// MaxConsecutiveFailures aborts the run when this many lines in a row
	// fail to parse
	MaxConsecutiveFailures int
	// Logger receives per-line warnings and run summaries
	Logger core.Logger
}

// DefaultOptions returns the default import tuning
func DefaultOptions() Options {
	return Options{
		BatchSize:              1000,
		ProgressEvery:          1000,
		MaxConsecutiveFailures: 50,
		Logger:                 core.NopLogger(),
	}
}

// Stats summarizes a completed import run
type Stats struct {
	Processed int64 // input lines seen
	Imported  int64 // entries written
	Skipped   int64 // malformed or empty-content lines
	Deduped   int64 // entries merged into an already-seen word
}

// wordKey is the identity of a Word row within one run
type wordKey struct {
	word string
	pos  string
	lang string
	etym int
}

// Importer streams JSONL dictionary records into a store
type Importer struct {
	store  *core.DictStore
	opts   Options
	logger core.Logger
}

// New creates an importer writing into the given store. The store must be
// initialized and must not be serving readers while the import runs.
func New(store *core.DictStore, opts Options) *Importer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultOptions().BatchSize
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = DefaultOptions().ProgressEvery
	}
	if opts.MaxConsecutiveFailures <= 0 {
		opts.MaxConsecutiveFailures = DefaultOptions().MaxConsecutiveFailures
	}
	if opts.Logger == nil {
		opts.Logger = core.NopLogger()
	}
	return &Importer{store: store, opts: opts, logger: opts.Logger}
}

// ImportFile imports a JSONL file, pre-counting its lines so the progress
// callback gets an exact total.
func (im *Importer) ImportFile(ctx context.Context, path string, progress Progress) (*Stats, error) {
	total, err := CountLines(path)
	if err != nil {
		return nil, fmt.Errorf("count lines: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	return im.ImportReader(ctx, f, total, progress)
}

// ImportReader imports JSONL records from r. Lines are processed one at a
// time; memory stays bounded regardless of input size. Pass TotalUnknown as
// total when the line count was not pre-computed.
func (im *Importer) ImportReader(ctx context.Context, r io.Reader, total int64, progress Progress) (*Stats, error) {
	runLog := im.logger.With("run", uuid.NewString())
	runLog.Info("import started", "total", total)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	stats := &Stats{}
	seen := make(map[wordKey]int64)
	consecutiveFailures := 0

	tx, err := im.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	// Keeps the deferred rollback harmless after a commit
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	report := func() {
		if progress != nil {
			progress(stats.Processed, total)
		}
	}

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stats.Processed++
		if stats.Processed%im.opts.ProgressEvery == 0 {
			report()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry RawWordEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			stats.Skipped++
			consecutiveFailures++
			runLog.Warn("skipping malformed line", "line", stats.Processed, "error", err)
			if consecutiveFailures >= im.opts.MaxConsecutiveFailures {
				runLog.Error("aborting import", "consecutive_failures", consecutiveFailures)
				return nil, fmt.Errorf("%w: %d consecutive unparseable lines at line %d",
					ErrImportAborted, consecutiveFailures, stats.Processed)
			}
			continue
		}
		consecutiveFailures = 0

		if strings.TrimSpace(entry.Word) == "" {
			stats.Skipped++
			runLog.Warn("skipping entry without word text", "line", stats.Processed)
			continue
		}

		// A savepoint makes each line all-or-nothing inside the batch
		// transaction: a failure after the word row was minted must not
		// commit the word with half its children.
		if _, err := tx.ExecContext(ctx, "SAVEPOINT entry"); err != nil {
			return nil, fmt.Errorf("entry savepoint: %w", err)
		}
		if err := im.importEntry(ctx, tx, &entry, seen, stats); err != nil {
			if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO entry"); rbErr != nil {
				return nil, fmt.Errorf("roll back entry: %w", rbErr)
			}
			if _, rlErr := tx.ExecContext(ctx, "RELEASE entry"); rlErr != nil {
				return nil, fmt.Errorf("release entry savepoint: %w", rlErr)
			}
			stats.Skipped++
			runLog.Warn("skipping entry", "line", stats.Processed, "word", entry.Word, "error", err)
			continue
		}
		if _, err := tx.ExecContext(ctx, "RELEASE entry"); err != nil {
			return nil, fmt.Errorf("release entry savepoint: %w", err)
		}
		stats.Imported++

		// Batch commits: one transaction per line would crush throughput
		if stats.Processed%int64(im.opts.BatchSize) == 0 {
			if err := tx.Commit(); err != nil {
				tx = nil
				return nil, fmt.Errorf("commit batch: %w", err)
			}
			if tx, err = im.store.BeginTx(ctx); err != nil {
				return nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	if err := tx.Commit(); err != nil {
		tx = nil
		return nil, fmt.Errorf("commit final batch: %w", err)
	}
	tx = nil

	report()
	runLog.Info("import complete",
		"processed", stats.Processed, "imported", stats.Imported,
		"skipped", stats.Skipped, "deduped", stats.Deduped)
	return stats, nil
}

// importEntry writes one raw entry inside the current transaction. The word
// row is deduplicated on (word, pos, lang, etymology number), first against
// the run's own map and then against rows already in the database; duplicates
// attach their children to the existing id.
func (im *Importer) importEntry(ctx context.Context, tx *sql.Tx, entry *RawWordEntry, seen map[wordKey]int64, stats *Stats) error {
	lang := entry.language()
	key := wordKey{word: entry.Word, pos: entry.POS, lang: lang, etym: entry.EtymologyNumber}

	wordID, dup := seen[key]
	if !dup {
		// A rerun against an existing database merges into prior rows
		// instead of minting duplicates.
		existing, err := core.FindWord(ctx, tx, key.word, key.pos, key.lang, key.etym)
		if err != nil {
			return err
		}
		if existing != 0 {
			wordID, dup = existing, true
		}
	}
	if !dup {
		var err error
		wordID, err = core.InsertWord(ctx, tx, &core.Word{
			Word:         entry.Word,
			POS:          entry.POS,
			Language:     lang,
			LangCode:     entry.LangCode,
			EtymologyNum: entry.EtymologyNumber,
		})
		if err != nil {
			return err
		}
	}

	for i := range entry.Senses {
		sense := &entry.Senses[i]
		text := sense.definitionText()
		if text == "" {
			continue
		}
		if _, err := core.InsertDefinition(ctx, tx, wordID, text, sense.exampleTexts(), sense.Tags); err != nil {
			return err
		}
	}

	for i := range entry.Sounds {
		sound := &entry.Sounds[i]
		if sound.IPA == "" {
			continue
		}
		ipa := sound.IPA
		var audioURL, accent *string
		if u := sound.audioURL(); u != "" {
			audioURL = &u
		}
		if a := sound.accent(); a != "" {
			accent = &a
		}
		if _, err := core.InsertPronunciation(ctx, tx, wordID, &ipa, audioURL, accent); err != nil {
			return err
		}
	}

	if entry.EtymologyText != "" {
		if _, err := core.InsertEtymology(ctx, tx, wordID, entry.EtymologyText); err != nil {
			return err
		}
	}

	for i := range entry.Translations {
		tr := &entry.Translations[i]
		if tr.Word == "" {
			continue
		}
		if _, err := core.InsertTranslation(ctx, tx, wordID, tr.translationLanguage(), tr.Word); err != nil {
			return err
		}
	}

	// Dedupe state records only fully written entries; a failed entry is
	// rolled back, and its id must not be reused by later lines.
	seen[key] = wordID
	if dup {
		stats.Deduped++
	}
	return nil
}

// CountLines counts newline-delimited records in a file
func CountLines(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	var total int64
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		total++
	}
	return total, scanner.Err()
}
