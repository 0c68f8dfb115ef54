// Package ffi is the stable call boundary of the dictionary engine.
//
// It owns the one engine instance shared by every entry point in a host
// process and serializes all access behind a single mutex, so calls arriving
// concurrently from unrelated host threads are each atomic. Results cross
// the boundary as JSON strings plus numeric error codes; the cshared shim
// maps this surface one-to-one onto a C ABI.
package ffi

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"unicode/utf8"

	"github.com/liliang-cn/dictlite/pkg/core"
)

// Version is the engine version reported across the boundary
const Version = "0.3.0"

// ErrorCode is the numeric status returned by every boundary call
type ErrorCode int32

const (
	// Success means the call completed; any payload is valid
	Success ErrorCode = iota
	// NullPointer means a required argument was null or empty
	NullPointer
	// InvalidUTF8 means a string argument was not valid UTF-8
	InvalidUTF8
	// InitFailed means the database could not be opened
	InitFailed
	// NotInitialized means Init has not succeeded yet (or Close was called)
	NotInitialized
	// SearchFailed means the engine failed serving the query
	SearchFailed
	// JSONEncodeFailed means the result could not be serialized
	JSONEncodeFailed
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// engine bundles the open store with the path it was opened on
type engine struct {
	store *core.DictStore
	path  string
}

// The process-wide singleton. All exported functions lock mu for their full
// duration, which is what makes each boundary call atomic to its caller.
var (
	mu      sync.Mutex
	current *engine
)

// Init opens (or creates) the database at path. It is idempotent: calling it
// again with the same path returns Success without reopening. A different
// path swaps atomically — the new database is opened first, and only on
// success is the old handle closed and replaced, so a failed swap leaves the
// running engine untouched and two handles are never retained.
func Init(path string) ErrorCode {
	if path == "" {
		return NullPointer
	}
	if !utf8.ValidString(path) {
		return InvalidUTF8
	}

	mu.Lock()
	defer mu.Unlock()

	if current != nil && current.path == path {
		return Success
	}

	store, err := core.New(path)
	if err != nil {
		return InitFailed
	}
	if err := store.Init(context.Background()); err != nil {
		_ = store.Close()
		return InitFailed
	}

	if current != nil {
		_ = current.store.Close()
	}
	current = &engine{store: store, path: path}
	return Success
}

// Search runs a ranked lookup and returns the results as a JSON array of
// {id, word, pos, preview, score} objects. No matches is Success with "[]".
func Search(query string, limit, offset int) (string, ErrorCode) {
	if !utf8.ValidString(query) {
		return "", InvalidUTF8
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	mu.Lock()
	defer mu.Unlock()

	if current == nil {
		return "", NotInitialized
	}

	results, _, err := current.store.Search(context.Background(), query, limit, offset)
	if err != nil {
		return "", SearchFailed
	}
	if results == nil {
		results = []core.SearchResult{}
	}

	data, err := json.Marshal(results)
	if err != nil {
		return "", JSONEncodeFailed
	}
	return string(data), Success
}

// GetDefinition returns the full definition for a word id as a JSON object,
// or the literal "null" with Success when the id is unknown — a stale id is
// an expected outcome, not a fault.
func GetDefinition(wordID int64) (string, ErrorCode) {
	mu.Lock()
	defer mu.Unlock()

	if current == nil {
		return "", NotInitialized
	}

	full, err := current.store.GetDefinition(context.Background(), wordID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "null", Success
		}
		return "", SearchFailed
	}

	data, err := json.Marshal(full)
	if err != nil {
		return "", JSONEncodeFailed
	}
	return string(data), Success
}

// Close releases the engine's storage handle. Further Search/GetDefinition
// calls return NotInitialized instead of touching a stale handle; a second
// Close is a no-op.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if current != nil {
		_ = current.store.Close()
		current = nil
	}
}
