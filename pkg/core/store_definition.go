package core

import (
	"context"
	"database/sql"

	"github.com/liliang-cn/dictlite/internal/encoding"
)

// GetDefinition joins a word id into its complete denormalized response:
// the word row plus all definitions, pronunciations, translations and the
// first-inserted etymology note. A stale or never-assigned id returns
// ErrNotFound, which callers should treat as an ordinary outcome.
func (s *DictStore) GetDefinition(ctx context.Context, wordID int64) (*FullDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed || s.db == nil {
		return nil, wrapError("get_definition", ErrStoreClosed)
	}

	var full FullDefinition
	err := s.db.QueryRowContext(ctx,
		`SELECT word, pos, language, lang_code FROM words WHERE id = ?`, wordID,
	).Scan(&full.Word, &full.POS, &full.Language, &full.LangCode)
	if err == sql.ErrNoRows {
		return nil, wrapError("get_definition", ErrNotFound)
	}
	if err != nil {
		return nil, wrapError("get_definition", err)
	}

	if full.Definitions, err = s.definitionsFor(ctx, wordID); err != nil {
		return nil, wrapError("get_definition", err)
	}
	if full.Pronunciations, err = s.pronunciationsFor(ctx, wordID); err != nil {
		return nil, wrapError("get_definition", err)
	}
	if full.Etymology, err = s.etymologyFor(ctx, wordID); err != nil {
		return nil, wrapError("get_definition", err)
	}
	if full.Translations, err = s.translationsFor(ctx, wordID); err != nil {
		return nil, wrapError("get_definition", err)
	}

	return &full, nil
}

func (s *DictStore) definitionsFor(ctx context.Context, wordID int64) ([]Definition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, definition, examples, tags FROM definitions WHERE word_id = ? ORDER BY id`, wordID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	definitions := make([]Definition, 0, 4)
	for rows.Next() {
		var d Definition
		var examplesJSON, tagsJSON sql.NullString
		if err := rows.Scan(&d.ID, &d.Text, &examplesJSON, &tagsJSON); err != nil {
			return nil, err
		}
		d.Examples = encoding.DecodeStringList(examplesJSON.String)
		d.Tags = encoding.DecodeStringList(tagsJSON.String)
		definitions = append(definitions, d)
	}
	return definitions, rows.Err()
}

func (s *DictStore) pronunciationsFor(ctx context.Context, wordID int64) ([]Pronunciation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ipa, audio_url, accent FROM pronunciations WHERE word_id = ? ORDER BY id`, wordID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	pronunciations := make([]Pronunciation, 0, 2)
	for rows.Next() {
		var p Pronunciation
		if err := rows.Scan(&p.ID, &p.IPA, &p.AudioURL, &p.Accent); err != nil {
			return nil, err
		}
		pronunciations = append(pronunciations, p)
	}
	return pronunciations, rows.Err()
}

// etymologyFor returns the first-inserted etymology row, if any. The wire
// shape models etymology as one optional value, so rows beyond the first are
// ignored rather than concatenated.
func (s *DictStore) etymologyFor(ctx context.Context, wordID int64) (*string, error) {
	var text string
	err := s.db.QueryRowContext(ctx,
		`SELECT etymology_text FROM etymologies WHERE word_id = ? ORDER BY id LIMIT 1`, wordID,
	).Scan(&text)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &text, nil
}

func (s *DictStore) translationsFor(ctx context.Context, wordID int64) ([]Translation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, target_language, translation FROM translations WHERE word_id = ? ORDER BY id`, wordID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	translations := make([]Translation, 0, 2)
	for rows.Next() {
		var t Translation
		if err := rows.Scan(&t.ID, &t.TargetLanguage, &t.Translation); err != nil {
			return nil, err
		}
		translations = append(translations, t)
	}
	return translations, rows.Err()
}
