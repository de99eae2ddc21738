// Package search builds an inverted index over translation and tafsir text
// and answers scored free-text queries against the unified verse table.
package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/dailyayah/dailyayah/core/corpus"
)

// MinTokenLen is the minimum indexed token length. Shorter tokens are
// dropped both at index build time and at query time.
const MinTokenLen = 3

var wordPattern = regexp.MustCompile(`\b\w+\b`)

// Index maps a lowercase token to the set of verse keys containing it.
// Derived from the verse table; rebuilt whenever the table is replaced.
type Index map[string]map[string]struct{}

// Tokenize splits text into lowercase word tokens of MinTokenLen or longer.
func Tokenize(text string) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	tokens := words[:0]
	for _, w := range words {
		if len(w) >= MinTokenLen {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// Build constructs the inverted index over translation + tafsir text.
func Build(records map[string]corpus.Record) Index {
	idx := make(Index)
	for key, rec := range records {
		for _, token := range Tokenize(rec.Translation + " " + rec.Tafsir) {
			set, ok := idx[token]
			if !ok {
				set = make(map[string]struct{})
				idx[token] = set
			}
			set[key] = struct{}{}
		}
	}
	return idx
}

// Result is one scored search hit. The embedded record fields marshal inline
// next to relevance_score and matched_fields.
type Result struct {
	corpus.Record
	Score         float64  `json:"relevance_score"`
	MatchedTokens []string `json:"matched_fields"`
}

// Search runs a scored query against the index. Scoring: the fraction of
// query tokens matched, doubled when the full query appears as a substring of
// the verse's combined text, and multiplied by 1.5 when at least one matched
// token occurs in the translation specifically. Results are sorted by
// descending score (ties keep canonical verse order) and truncated to limit.
func Search(idx Index, records map[string]corpus.Record, query string, limit int) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	tokens := Tokenize(query)
	if len(tokens) == 0 || limit <= 0 {
		return nil
	}

	type candidate struct {
		hits    int
		matched map[string]struct{}
	}
	candidates := make(map[string]*candidate)
	for _, token := range tokens {
		for key := range idx[token] {
			c, ok := candidates[key]
			if !ok {
				c = &candidate{matched: make(map[string]struct{})}
				candidates[key] = c
			}
			c.hits++
			c.matched[token] = struct{}{}
		}
	}

	keys := make([]string, 0, len(candidates))
	for key := range candidates {
		keys = append(keys, key)
	}
	corpus.SortKeys(keys)

	results := make([]Result, 0, len(keys))
	for _, key := range keys {
		rec, ok := records[key]
		if !ok {
			continue
		}
		c := candidates[key]
		score := float64(c.hits) / float64(len(tokens))

		fullText := strings.ToLower(rec.Translation + " " + rec.Tafsir)
		if strings.Contains(fullText, query) {
			score *= 2
		}
		translationLower := strings.ToLower(rec.Translation)
		for token := range c.matched {
			if strings.Contains(translationLower, token) {
				score *= 1.5
				break
			}
		}

		matched := make([]string, 0, len(c.matched))
		for token := range c.matched {
			matched = append(matched, token)
		}
		sort.Strings(matched)

		results = append(results, Result{Record: rec, Score: score, MatchedTokens: matched})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
