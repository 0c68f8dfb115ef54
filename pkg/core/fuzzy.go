package core

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// editDistanceBound returns the maximum accepted edit distance for a query
// of n runes: 1 for short queries, 2 for long ones. Chosen to catch a single
// substituted or dropped character ("helo" for "hello") without letting
// short queries match half the dictionary.
func editDistanceBound(n int) int {
	if n > 8 {
		return 2
	}
	return 1
}

// searchFuzzy is the typo-tolerant fallback tier. Candidates are narrowed
// through the words(word) B-tree index — same first letter, character length
// within the distance bound, capped at MaxCandidates — so it is never a full
// table scan; each candidate is then checked with a bounded Levenshtein
// distance. A typo in the first character is deliberately not recovered;
// that keeps the candidate fetch an index range scan.
func (s *DictStore) searchFuzzy(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	runeLen := utf8.RuneCountInString(query)
	if runeLen < s.config.Search.MinFuzzyLen {
		return nil, nil
	}
	bound := editDistanceBound(runeLen)

	first, _ := utf8.DecodeRuneInString(query)
	pattern := escapeLike(string(first)) + "%"

	// length() counts characters, so the window must be in runes, not bytes;
	// a byte window would exclude multi-byte words like "naïveté".
	rows, err := s.db.QueryContext(ctx, selectResult+`
		WHERE w.word LIKE ? ESCAPE '\'
		  AND length(w.word) BETWEEN ? AND ?
		ORDER BY w.word, w.id
		LIMIT ?`,
		pattern, runeLen-bound, runeLen+bound, s.config.Search.MaxCandidates)
	if err != nil {
		return nil, err
	}

	candidates, err := s.collectResults(rows, func(int, string) float64 { return 0 })
	if err != nil {
		return nil, err
	}

	folded := strings.ToLower(query)
	var results []SearchResult
	for _, c := range candidates {
		dist := levenshtein.ComputeDistance(folded, strings.ToLower(c.Word))
		// dist == 0 means a case-only difference the exact tier already
		// handles; this tier only runs when that tier was empty anyway.
		if dist == 0 || dist > bound {
			continue
		}
		c.Score = scoreFuzzy + float64(bound+1-dist)/float64(bound+2)
		results = append(results, c)
	}

	// Order before trimming so a closer match never loses its slot to an
	// alphabetically earlier, more distant one.
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		aw, bw := foldASCII(a.Word), foldASCII(b.Word)
		if aw != bw {
			return aw < bw
		}
		return a.ID < b.ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
