package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/liliang-cn/dictlite/pkg/core"
)

const helloLine = `{"word":"hello","pos":"interjection","lang":"English","lang_code":"en",` +
	`"senses":[{"glosses":["used as a greeting"],"examples":[{"text":"Hello, world!"}]}],` +
	`"sounds":[{"ipa":"/həˈloʊ/","tags":["US"]}]}`

func newTestStore(t *testing.T) *core.DictStore {
	t.Helper()

	store, err := core.New(filepath.Join(t.TempDir(), "import.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func importLines(t *testing.T, store *core.DictStore, opts Options, lines ...string) (*Stats, error) {
	t.Helper()
	r := strings.NewReader(strings.Join(lines, "\n"))
	return New(store, opts).ImportReader(context.Background(), r, int64(len(lines)), nil)
}

func TestImportSingleEntry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	stats, err := importLines(t, store, DefaultOptions(), helloLine)
	if err != nil {
		t.Fatalf("ImportReader() error = %v", err)
	}
	if stats.Imported != 1 || stats.Skipped != 0 {
		t.Errorf("stats = %+v, want 1 imported, 0 skipped", stats)
	}

	results, _, err := store.Search(ctx, "hello", 10, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("search results = %d, want 1", len(results))
	}
	if results[0].Word != "hello" || results[0].POS != "interjection" {
		t.Errorf("result = %q/%q", results[0].Word, results[0].POS)
	}

	full, err := store.GetDefinition(ctx, results[0].ID)
	if err != nil {
		t.Fatalf("GetDefinition() error = %v", err)
	}
	if len(full.Definitions) != 1 || full.Definitions[0].Text != "used as a greeting" {
		t.Errorf("definitions = %+v", full.Definitions)
	}
	if len(full.Definitions[0].Examples) != 1 || full.Definitions[0].Examples[0] != "Hello, world!" {
		t.Errorf("examples = %v", full.Definitions[0].Examples)
	}
	if len(full.Pronunciations) != 1 {
		t.Fatalf("pronunciations = %d, want 1", len(full.Pronunciations))
	}
	p := full.Pronunciations[0]
	if p.IPA == nil || *p.IPA != "/həˈloʊ/" {
		t.Errorf("ipa = %v", p.IPA)
	}
	if p.Accent == nil || *p.Accent != "US" {
		t.Errorf("accent = %v", p.Accent)
	}
}

func TestImportDedupesWordRows(t *testing.T) {
	store := newTestStore(t)

	first := `{"word":"run","pos":"verb","lang":"English","senses":[{"glosses":["to move quickly on foot"]}]}`
	second := `{"word":"run","pos":"verb","lang":"English","senses":[{"glosses":["to operate or manage"]}]}`
	other := `{"word":"run","pos":"noun","lang":"English","senses":[{"glosses":["an act of running"]}]}`

	stats, err := importLines(t, store, DefaultOptions(), first, second, other)
	if err != nil {
		t.Fatalf("ImportReader() error = %v", err)
	}
	if stats.Imported != 3 {
		t.Errorf("imported = %d, want 3", stats.Imported)
	}
	if stats.Deduped != 1 {
		t.Errorf("deduped = %d, want 1", stats.Deduped)
	}

	counts, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	// verb entries merge into one word row; the noun entry stays separate
	if counts["words"] != 2 {
		t.Errorf("word rows = %d, want 2", counts["words"])
	}
	if counts["definitions"] != 3 {
		t.Errorf("definition rows = %d, want 3", counts["definitions"])
	}
}

func TestImportMergesIntoExistingDatabase(t *testing.T) {
	store := newTestStore(t)

	if _, err := importLines(t, store, DefaultOptions(), helloLine); err != nil {
		t.Fatalf("first run error = %v", err)
	}
	stats, err := importLines(t, store, DefaultOptions(), helloLine)
	if err != nil {
		t.Fatalf("second run error = %v", err)
	}
	if stats.Deduped != 1 {
		t.Errorf("second run deduped = %d, want 1", stats.Deduped)
	}

	counts, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if counts["words"] != 1 {
		t.Errorf("word rows after rerun = %d, want 1", counts["words"])
	}
	if counts["definitions"] != 2 {
		t.Errorf("definition rows after rerun = %d, want 2", counts["definitions"])
	}
}

func TestImportSkipsMalformedLines(t *testing.T) {
	store := newTestStore(t)

	stats, err := importLines(t, store, DefaultOptions(),
		helloLine,
		"{ this is not json",
		`{"pos":"noun","senses":[{"glosses":["an entry without a headword"]}]}`,
		"",
		`{"word":"world","pos":"noun","senses":[{"glosses":["the earth"]}]}`,
	)
	if err != nil {
		t.Fatalf("ImportReader() error = %v", err)
	}
	if stats.Imported != 2 {
		t.Errorf("imported = %d, want 2", stats.Imported)
	}
	if stats.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", stats.Skipped)
	}
	if stats.Processed != 5 {
		t.Errorf("processed = %d, want 5", stats.Processed)
	}
}

func TestImportAbortsOnDenseFailures(t *testing.T) {
	store := newTestStore(t)

	opts := DefaultOptions()
	opts.MaxConsecutiveFailures = 10

	lines := []string{helloLine}
	for i := 0; i < 20; i++ {
		lines = append(lines, "not json at all")
	}

	_, err := importLines(t, store, opts, lines...)
	if !errors.Is(err, ErrImportAborted) {
		t.Fatalf("ImportReader() error = %v, want ErrImportAborted", err)
	}
}

func TestImportValidLineResetsFailureStreak(t *testing.T) {
	store := newTestStore(t)

	opts := DefaultOptions()
	opts.MaxConsecutiveFailures = 3

	// Streaks of 2 never reach the threshold of 3
	lines := []string{
		"garbage", "garbage", helloLine,
		"garbage", "garbage",
		`{"word":"world","pos":"noun","senses":[{"glosses":["the earth"]}]}`,
	}
	stats, err := importLines(t, store, opts, lines...)
	if err != nil {
		t.Fatalf("ImportReader() error = %v", err)
	}
	if stats.Imported != 2 || stats.Skipped != 4 {
		t.Errorf("stats = %+v, want 2 imported, 4 skipped", stats)
	}
}

func TestImportFailedEntryLeavesNoPartialRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Force a mid-entry failure: the word and definition insert fine, then
	// the translation insert hits a missing table.
	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx() error = %v", err)
	}
	if _, err := tx.ExecContext(ctx, "DROP TABLE translations"); err != nil {
		t.Fatalf("drop translations: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	lines := []string{
		`{"word":"bridge","pos":"noun","senses":[{"glosses":["a structure spanning a river"]}],` +
			`"translations":[{"lang":"German","code":"de","word":"Brücke"}]}`,
		`{"word":"river","pos":"noun","senses":[{"glosses":["a natural watercourse"]}]}`,
	}
	stats, err := importLines(t, store, DefaultOptions(), lines...)
	if err != nil {
		t.Fatalf("ImportReader() error = %v", err)
	}
	if stats.Imported != 1 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want 1 imported, 1 skipped", stats)
	}

	// The skipped entry must be all-or-nothing: no word row, no definition,
	// no token index entry.
	results, _, err := store.Search(ctx, "bridge", 10, 0)
	if err != nil {
		t.Fatalf("Search(bridge) error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("skipped entry left %d searchable rows behind", len(results))
	}

	results, _, err = store.Search(ctx, "river", 10, 0)
	if err != nil {
		t.Fatalf("Search(river) error = %v", err)
	}
	if len(results) != 1 {
		t.Errorf("surviving entry results = %d, want 1", len(results))
	}
}

func TestImportBatchCommits(t *testing.T) {
	store := newTestStore(t)

	opts := DefaultOptions()
	opts.BatchSize = 2

	lines := []string{
		helloLine,
		`{"word":"world","pos":"noun","senses":[{"glosses":["the earth"]}]}`,
		`{"word":"again","pos":"adverb","senses":[{"glosses":["another time"]}]}`,
	}
	stats, err := importLines(t, store, opts, lines...)
	if err != nil {
		t.Fatalf("ImportReader() error = %v", err)
	}
	if stats.Imported != 3 {
		t.Errorf("imported = %d, want 3", stats.Imported)
	}

	counts, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if counts["words"] != 3 {
		t.Errorf("word rows = %d, want 3", counts["words"])
	}
}

func TestImportFileReportsProgress(t *testing.T) {
	store := newTestStore(t)

	path := filepath.Join(t.TempDir(), "input.jsonl")
	content := helloLine + "\n" +
		`{"word":"world","pos":"noun","senses":[{"glosses":["the earth"]}]}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	var gotProcessed, gotTotal int64
	stats, err := New(store, DefaultOptions()).ImportFile(context.Background(), path,
		func(processed, total int64) {
			gotProcessed, gotTotal = processed, total
		})
	if err != nil {
		t.Fatalf("ImportFile() error = %v", err)
	}
	if stats.Imported != 2 {
		t.Errorf("imported = %d, want 2", stats.Imported)
	}
	if gotProcessed != 2 {
		t.Errorf("last progress processed = %d, want 2", gotProcessed)
	}
	if gotTotal != 2 {
		t.Errorf("progress total = %d, want 2", gotTotal)
	}
}

func TestImportCanceledContext(t *testing.T) {
	store := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(store, DefaultOptions()).ImportReader(ctx, strings.NewReader(helloLine), 1, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ImportReader() error = %v, want context.Canceled", err)
	}
}

func TestCountLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "count.jsonl")
	if err := os.WriteFile(path, []byte("a\nb\nc\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	total, err := CountLines(path)
	if err != nil {
		t.Fatalf("CountLines() error = %v", err)
	}
	if total != 3 {
		t.Errorf("CountLines() = %d, want 3", total)
	}
}

func TestRawEntryHelpers(t *testing.T) {
	sense := RawSense{RawGlosses: []string{"(informal) a raw gloss"}}
	if got := sense.definitionText(); got != "(informal) a raw gloss" {
		t.Errorf("definitionText() = %q, want raw gloss fallback", got)
	}
	sense.Glosses = []string{"a clean gloss"}
	if got := sense.definitionText(); got != "a clean gloss" {
		t.Errorf("definitionText() = %q, want cleaned gloss", got)
	}

	sound := RawSound{Audio: "file.wav", MP3URL: "file.mp3", OggURL: "file.ogg"}
	if got := sound.audioURL(); got != "file.ogg" {
		t.Errorf("audioURL() = %q, want ogg preferred", got)
	}
	sound.OggURL = ""
	if got := sound.audioURL(); got != "file.mp3" {
		t.Errorf("audioURL() = %q, want mp3 fallback", got)
	}

	entry := RawWordEntry{Word: "sol"}
	if got := entry.language(); got != "English" {
		t.Errorf("language() = %q, want English default", got)
	}

	tr := RawTranslation{Lang: "German", Code: "de", Word: "Sonne"}
	if got := tr.translationLanguage(); got != "de" {
		t.Errorf("translationLanguage() = %q, want code preferred", got)
	}
}
