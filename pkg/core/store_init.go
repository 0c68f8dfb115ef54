package core

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Init opens the SQLite database and ensures the schema exists. It is
// idempotent: the DDL only creates objects that are missing.
func (s *DictStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return wrapError("init", ErrStoreClosed)
	}
	if s.db != nil {
		return nil
	}

	// Open database connection
	// journal_mode=WAL: concurrent readers during the offline import
	// synchronous=NORMAL: good balance of safety and speed
	// busy_timeout=5000: wait up to 5s for a lock instead of failing
	// foreign_keys=1: set per connection so cascades hold on every pooled conn
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", s.config.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return wrapError("init", fmt.Errorf("%w: %v", ErrOpenFailed, err))
	}

	// Read-mostly workload: allow concurrent readers, keep a few idle
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(2 * time.Hour)

	// Opening is lazy; a ping surfaces an unwritable or corrupt path now
	// rather than on the first query.
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return wrapError("init", fmt.Errorf("%w: %v", ErrOpenFailed, err))
	}

	s.db = db

	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		s.db = nil
		return wrapError("init", fmt.Errorf("%w: %v", ErrOpenFailed, err))
	}

	s.logger.Info("dictionary store initialized", "path", s.config.Path)
	return nil
}

// createTables applies the idempotent schema DDL
func (s *DictStore) createTables(ctx context.Context) error {
	createTableSQL := `
	-- Main word entries
	CREATE TABLE IF NOT EXISTS words (
		id INTEGER PRIMARY KEY,
		word TEXT NOT NULL,
		pos TEXT NOT NULL,
		language TEXT NOT NULL,
		lang_code TEXT NOT NULL DEFAULT '',
		etymology_num INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_words_word ON words(word);
	CREATE INDEX IF NOT EXISTS idx_words_language ON words(language);

	-- Token index over word text. External-content FTS5 table: derived,
	-- never authoritative, synchronized with words by the triggers below
	-- inside whatever transaction touches a word row.
	CREATE VIRTUAL TABLE IF NOT EXISTS words_fts USING fts5(
		word,
		content='words',
		content_rowid='id'
	);

	CREATE TRIGGER IF NOT EXISTS words_ai AFTER INSERT ON words BEGIN
		INSERT INTO words_fts(rowid, word) VALUES (new.id, new.word);
	END;

	CREATE TRIGGER IF NOT EXISTS words_ad AFTER DELETE ON words BEGIN
		INSERT INTO words_fts(words_fts, rowid, word) VALUES('delete', old.id, old.word);
	END;

	CREATE TRIGGER IF NOT EXISTS words_au AFTER UPDATE ON words BEGIN
		INSERT INTO words_fts(words_fts, rowid, word) VALUES('delete', old.id, old.word);
		INSERT INTO words_fts(rowid, word) VALUES (new.id, new.word);
	END;

	-- Definitions (one word can have many)
	CREATE TABLE IF NOT EXISTS definitions (
		id INTEGER PRIMARY KEY,
		word_id INTEGER NOT NULL,
		definition TEXT NOT NULL,
		examples TEXT,  -- JSON array
		tags TEXT,      -- JSON array
		FOREIGN KEY (word_id) REFERENCES words(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_definitions_word_id ON definitions(word_id);

	-- Pronunciations
	CREATE TABLE IF NOT EXISTS pronunciations (
		id INTEGER PRIMARY KEY,
		word_id INTEGER NOT NULL,
		ipa TEXT,
		audio_url TEXT,
		accent TEXT,
		FOREIGN KEY (word_id) REFERENCES words(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_pronunciations_word_id ON pronunciations(word_id);

	-- Etymologies
	CREATE TABLE IF NOT EXISTS etymologies (
		id INTEGER PRIMARY KEY,
		word_id INTEGER NOT NULL,
		etymology_text TEXT NOT NULL,
		FOREIGN KEY (word_id) REFERENCES words(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_etymologies_word_id ON etymologies(word_id);

	-- Translations
	CREATE TABLE IF NOT EXISTS translations (
		id INTEGER PRIMARY KEY,
		word_id INTEGER NOT NULL,
		target_language TEXT NOT NULL,
		translation TEXT NOT NULL,
		FOREIGN KEY (word_id) REFERENCES words(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_translations_word_id ON translations(word_id);
	CREATE INDEX IF NOT EXISTS idx_translations_language ON translations(target_language);
	`

	_, err := s.db.ExecContext(ctx, createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}
