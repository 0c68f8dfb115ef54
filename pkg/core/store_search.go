package core

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/liliang-cn/dictlite/internal/encoding"
)

// Score bands per tier. Every hit from a tier scores inside its band, so a
// lower tier can never outrank a higher one.
const (
	scoreExact  = 4.0
	scorePrefix = 3.0
	scoreToken  = 2.0
	scoreFuzzy  = 1.0
)

const defaultSearchLimit = 20

// selectResult is the shared projection for all tiers: the word row plus its
// first definition for the preview.
const selectResult = `
	SELECT w.id, w.word, w.pos,
	       COALESCE((SELECT definition FROM definitions WHERE word_id = w.id ORDER BY id LIMIT 1), '')
	FROM words w
`

// Search performs ranked, typo-tolerant lookup over the word index.
//
// Matching runs in four tiers: exact (case-insensitive), prefix, token index
// and, only when all of those come up empty, bounded edit distance. Results
// are merged, deduplicated by id (highest tier wins) and sorted by score
// descending, then case-folded word, then id — one deterministic total order
// per query, which is what makes offset pagination gap-free and stable.
//
// The second return value reports whether more results exist beyond
// offset+limit.
func (s *DictStore) Search(ctx context.Context, query string, limit, offset int) ([]SearchResult, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed || s.db == nil {
		return nil, false, wrapError("search", ErrStoreClosed)
	}

	q := strings.TrimSpace(query)
	if q == "" {
		return []SearchResult{}, false, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if offset < 0 {
		offset = 0
	}

	// One extra row decides hasMore without a second query.
	want := offset + limit + 1

	merged := make([]SearchResult, 0, want)
	seen := make(map[int64]struct{}, want)
	merge := func(results []SearchResult) {
		for _, r := range results {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
			merged = append(merged, r)
		}
	}

	exact, err := s.searchExact(ctx, q, want)
	if err != nil {
		return nil, false, wrapError("search", err)
	}
	merge(exact)

	if len(merged) < want {
		prefix, err := s.searchPrefix(ctx, q, want)
		if err != nil {
			return nil, false, wrapError("search", err)
		}
		merge(prefix)
	}

	if len(merged) < want {
		token, err := s.searchToken(ctx, q, want)
		if err != nil {
			return nil, false, wrapError("search", err)
		}
		merge(token)
	}

	// Typo tolerance is a fallback, not a supplement: it only runs when the
	// literal tiers found nothing at all.
	if len(merged) == 0 {
		fuzzy, err := s.searchFuzzy(ctx, q, want)
		if err != nil {
			return nil, false, wrapError("search", err)
		}
		merge(fuzzy)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		aw, bw := foldASCII(a.Word), foldASCII(b.Word)
		if aw != bw {
			return aw < bw
		}
		return a.ID < b.ID
	})

	hasMore := len(merged) > offset+limit
	if offset >= len(merged) {
		return []SearchResult{}, hasMore, nil
	}
	end := offset + limit
	if end > len(merged) {
		end = len(merged)
	}
	return merged[offset:end], hasMore, nil
}

// searchExact finds case-insensitive whole-word matches
func (s *DictStore) searchExact(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	rows, err := s.db.QueryContext(ctx, selectResult+`
		WHERE w.word = ? COLLATE NOCASE
		ORDER BY w.word COLLATE NOCASE, w.id
		LIMIT ?`, query, limit)
	if err != nil {
		return nil, err
	}
	return s.collectResults(rows, func(int, string) float64 { return scoreExact })
}

// searchPrefix finds words starting with the query. The score rewards
// coverage, so shorter completions rank ahead of longer ones.
func (s *DictStore) searchPrefix(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	pattern := escapeLike(query) + "%"
	rows, err := s.db.QueryContext(ctx, selectResult+`
		WHERE w.word LIKE ? ESCAPE '\'
		ORDER BY length(w.word), w.word COLLATE NOCASE, w.id
		LIMIT ?`, pattern, limit)
	if err != nil {
		return nil, err
	}
	// Coverage counts runes, matching the character unit length() orders by,
	// so the score ordering agrees with the SQL fetch truncation.
	qlen := utf8.RuneCountInString(query)
	return s.collectResults(rows, func(_ int, word string) float64 {
		coverage := float64(qlen) / float64(utf8.RuneCountInString(word))
		return scorePrefix + coverage
	})
}

// searchToken queries the FTS5 token index with a per-token prefix match
func (s *DictStore) searchToken(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT w.id, w.word, w.pos,
		       COALESCE((SELECT definition FROM definitions WHERE word_id = w.id ORDER BY id LIMIT 1), '')
		FROM words_fts fts
		JOIN words w ON w.id = fts.rowid
		WHERE words_fts MATCH ?
		ORDER BY rank, w.word COLLATE NOCASE, w.id
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, err
	}
	// bm25 rank values are not stable enough across pages to expose; the
	// position in the tier's deterministic ordering is.
	return s.collectResults(rows, func(i int, _ string) float64 {
		return scoreToken + 1.0/float64(i+2)
	})
}

// collectResults scans tier rows into SearchResults, assigning each a score
// from its position and word text.
func (s *DictStore) collectResults(rows *sql.Rows, score func(i int, word string) float64) ([]SearchResult, error) {
	defer func() { _ = rows.Close() }()

	var results []SearchResult
	i := 0
	for rows.Next() {
		var r SearchResult
		var definition string
		if err := rows.Scan(&r.ID, &r.Word, &r.POS, &definition); err != nil {
			return nil, err
		}
		r.Preview = encoding.TruncatePreview(definition, s.config.Search.PreviewLen)
		r.Score = score(i, r.Word)
		results = append(results, r)
		i++
	}
	return results, rows.Err()
}

// foldASCII lowercases ASCII letters only, matching SQLite's NOCASE
// collation. Every tier's SQL fetch truncates in NOCASE order, so the final
// tie-break has to fold the same way or case-variant words straddling a
// fetch boundary would paginate unstably.
func foldASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

// escapeLike escapes LIKE wildcards in user input
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// prepareFTSQuery turns raw user input into an FTS5 prefix query: operator
// characters are stripped and every remaining token matches as a prefix, so
// "ice cr" finds "ice cream".
func prepareFTSQuery(query string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch r {
		case '"', '*', '^', ':', '(', ')', '\'':
			return ' '
		}
		return r
	}, query)

	var parts []string
	for _, tok := range strings.Fields(sanitized) {
		// A token with nothing tokenizable ("%", "--") would become an empty
		// phrase in the index query.
		if strings.IndexFunc(tok, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		}) < 0 {
			continue
		}
		parts = append(parts, `"`+tok+`"*`)
	}
	return strings.Join(parts, " ")
}
