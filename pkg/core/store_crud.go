package core

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/liliang-cn/dictlite/internal/encoding"
)

// Executor accepts either *sql.DB or *sql.Tx, so the same insert helpers
// serve ad-hoc writes and the importer's batched transactions.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InsertWord inserts a word row and returns its surrogate id
func InsertWord(ctx context.Context, ex Executor, w *Word) (int64, error) {
	word := strings.TrimSpace(w.Word)
	if word == "" {
		return 0, fmt.Errorf("word must be non-empty: %w", ErrInvalidInput)
	}

	res, err := ex.ExecContext(ctx,
		`INSERT INTO words (word, pos, language, lang_code, etymology_num) VALUES (?, ?, ?, ?, ?)`,
		word, w.POS, w.Language, w.LangCode, w.EtymologyNum,
	)
	if err != nil {
		return 0, fmt.Errorf("insert word: %w", err)
	}
	return res.LastInsertId()
}

// FindWord resolves an existing word id by its identity key, or returns 0
// when no such row exists.
func FindWord(ctx context.Context, ex Executor, word, pos, language string, etymologyNum int) (int64, error) {
	var id int64
	err := ex.QueryRowContext(ctx,
		`SELECT id FROM words WHERE word = ? AND pos = ? AND language = ? AND etymology_num = ?`,
		word, pos, language, etymologyNum,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find word: %w", err)
	}
	return id, nil
}

// InsertDefinition inserts one sense for a word. Examples and tags are
// stored as JSON arrays.
func InsertDefinition(ctx context.Context, ex Executor, wordID int64, text string, examples, tags []string) (int64, error) {
	if wordID <= 0 {
		return 0, fmt.Errorf("wordID must be positive: %w", ErrInvalidInput)
	}

	examplesJSON, err := encoding.EncodeStringList(examples)
	if err != nil {
		return 0, fmt.Errorf("encode examples: %w", err)
	}
	tagsJSON, err := encoding.EncodeStringList(tags)
	if err != nil {
		return 0, fmt.Errorf("encode tags: %w", err)
	}

	res, err := ex.ExecContext(ctx,
		`INSERT INTO definitions (word_id, definition, examples, tags) VALUES (?, ?, ?, ?)`,
		wordID, text, examplesJSON, tagsJSON,
	)
	if err != nil {
		return 0, fmt.Errorf("insert definition: %w", err)
	}
	return res.LastInsertId()
}

// InsertPronunciation inserts a pronunciation row; nil fields become NULL
func InsertPronunciation(ctx context.Context, ex Executor, wordID int64, ipa, audioURL, accent *string) (int64, error) {
	if wordID <= 0 {
		return 0, fmt.Errorf("wordID must be positive: %w", ErrInvalidInput)
	}

	res, err := ex.ExecContext(ctx,
		`INSERT INTO pronunciations (word_id, ipa, audio_url, accent) VALUES (?, ?, ?, ?)`,
		wordID, nullableString(ipa), nullableString(audioURL), nullableString(accent),
	)
	if err != nil {
		return 0, fmt.Errorf("insert pronunciation: %w", err)
	}
	return res.LastInsertId()
}

// InsertEtymology inserts an etymology note for a word
func InsertEtymology(ctx context.Context, ex Executor, wordID int64, text string) (int64, error) {
	if wordID <= 0 {
		return 0, fmt.Errorf("wordID must be positive: %w", ErrInvalidInput)
	}

	res, err := ex.ExecContext(ctx,
		`INSERT INTO etymologies (word_id, etymology_text) VALUES (?, ?)`,
		wordID, text,
	)
	if err != nil {
		return 0, fmt.Errorf("insert etymology: %w", err)
	}
	return res.LastInsertId()
}

// InsertTranslation inserts a translation row for a word
func InsertTranslation(ctx context.Context, ex Executor, wordID int64, targetLanguage, translation string) (int64, error) {
	if wordID <= 0 {
		return 0, fmt.Errorf("wordID must be positive: %w", ErrInvalidInput)
	}

	res, err := ex.ExecContext(ctx,
		`INSERT INTO translations (word_id, target_language, translation) VALUES (?, ?, ?)`,
		wordID, targetLanguage, translation,
	)
	if err != nil {
		return 0, fmt.Errorf("insert translation: %w", err)
	}
	return res.LastInsertId()
}

// DeleteWord removes a word row. Foreign keys cascade the delete to every
// child table, and the words_ad trigger removes the token index entry in the
// same transaction.
func DeleteWord(ctx context.Context, ex Executor, wordID int64) error {
	_, err := ex.ExecContext(ctx, `DELETE FROM words WHERE id = ?`, wordID)
	if err != nil {
		return fmt.Errorf("delete word: %w", err)
	}
	return nil
}

// DeleteWord removes a word and, via cascade, all of its children
func (s *DictStore) DeleteWord(ctx context.Context, wordID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.db == nil {
		return wrapError("delete_word", ErrStoreClosed)
	}
	return wrapError("delete_word", DeleteWord(ctx, s.db, wordID))
}

// nullableString returns nil for nil or empty values so the column stores NULL
func nullableString(v *string) any {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}
