package core

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver
)

// DictStore is the dictionary engine backed by a single SQLite file
type DictStore struct {
	db     *sql.DB
	config Config
	mu     sync.RWMutex
	closed bool
	logger Logger
}

// SearchConfig tunes the ranked search tiers
type SearchConfig struct {
	// MinFuzzyLen is the minimum query length (in runes) for the
	// typo-tolerant tier; shorter queries skip it entirely.
	MinFuzzyLen int `json:"minFuzzyLen"`
	// MaxCandidates caps the candidate set fetched for fuzzy matching
	MaxCandidates int `json:"maxCandidates"`
	// PreviewLen is the maximum preview length in bytes
	PreviewLen int `json:"previewLen"`
}

// DefaultSearchConfig returns the default search tuning
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		MinFuzzyLen:   3,
		MaxCandidates: 512,
		PreviewLen:    100,
	}
}

// Config configures a DictStore
type Config struct {
	Path   string       `json:"path"` // Database file path
	Search SearchConfig `json:"search,omitempty"`
	Logger Logger       `json:"-"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	return Config{
		Search: DefaultSearchConfig(),
		Logger: NopLogger(),
	}
}

// New creates a new dictionary store for the given database path
func New(path string) (*DictStore, error) {
	config := DefaultConfig()
	config.Path = path

	return NewWithConfig(config)
}

// NewWithConfig creates a new dictionary store with custom configuration
func NewWithConfig(config Config) (*DictStore, error) {
	if config.Path == "" {
		return nil, wrapError("init", fmt.Errorf("database path cannot be empty: %w", ErrInvalidInput))
	}

	if config.Logger == nil {
		config.Logger = NopLogger()
	}
	if config.Search.MaxCandidates <= 0 {
		config.Search.MaxCandidates = DefaultSearchConfig().MaxCandidates
	}
	if config.Search.PreviewLen <= 0 {
		config.Search.PreviewLen = DefaultSearchConfig().PreviewLen
	}
	if config.Search.MinFuzzyLen <= 0 {
		config.Search.MinFuzzyLen = DefaultSearchConfig().MinFuzzyLen
	}

	return &DictStore{
		config: config,
		logger: config.Logger,
	}, nil
}

// Path returns the database file path the store was configured with
func (s *DictStore) Path() string {
	return s.config.Path
}

// BeginTx starts a write transaction. Used by the offline import pipeline
// together with the package-level Insert* helpers; the runtime read paths
// never call it.
func (s *DictStore) BeginTx(ctx context.Context) (*sql.Tx, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed || s.db == nil {
		return nil, wrapError("begin_tx", ErrStoreClosed)
	}
	return s.db.BeginTx(ctx, nil)
}

// Stats returns per-table row counts
func (s *DictStore) Stats(ctx context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed || s.db == nil {
		return nil, wrapError("stats", ErrStoreClosed)
	}

	counts := make(map[string]int64)
	for _, table := range []string{"words", "definitions", "pronunciations", "etymologies", "translations"} {
		var n int64
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, wrapError("stats", err)
		}
		counts[table] = n
	}
	return counts, nil
}
