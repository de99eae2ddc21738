package store

import (
	"hash/fnv"
	"math/rand"
	"regexp"
	"strconv"

	"github.com/dailyayah/dailyayah/core/corpus"
	"github.com/dailyayah/dailyayah/core/search"
)

// verseRefPattern matches reference-style queries: "2:255" or "2:1-10".
var verseRefPattern = regexp.MustCompile(`^(\d+):(\d+)(?:-(\d+))?$`)

// Get returns the record for a verse key.
func (s *Store) Get(key string) (corpus.Record, bool) {
	st := s.state.Load()
	if st == nil {
		return corpus.Record{}, false
	}
	rec, ok := st.records[key]
	return rec, ok
}

// Random returns a uniformly random verse.
func (s *Store) Random() (corpus.Record, bool) {
	st := s.state.Load()
	if st == nil || len(st.keys) == 0 {
		return corpus.Record{}, false
	}
	key := st.keys[rand.Intn(len(st.keys))]
	return st.records[key], true
}

// Daily returns the verse of the day for a date string ("2006-01-02").
// The pick is deterministic: everyone asking for the same date gets the
// same verse, and the choice is stable across restarts because it derives
// from the sorted key list.
func (s *Store) Daily(date string) (corpus.Record, bool) {
	st := s.state.Load()
	if st == nil || len(st.keys) == 0 {
		return corpus.Record{}, false
	}
	h := fnv.New64a()
	h.Write([]byte(date))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	key := st.keys[rng.Intn(len(st.keys))]
	return st.records[key], true
}

// Search answers a query. Reference-shaped queries ("2:255", "2:1-10") are
// looked up directly in verse order; anything else goes through the scored
// text index. The result count never exceeds limit.
func (s *Store) Search(query string, limit int) []search.Result {
	st := s.state.Load()
	if st == nil || limit <= 0 {
		return nil
	}

	if m := verseRefPattern.FindStringSubmatch(query); m != nil {
		surah, _ := strconv.Atoi(m[1])
		from, _ := strconv.Atoi(m[2])
		to := from
		if m[3] != "" {
			to, _ = strconv.Atoi(m[3])
		}
		var results []search.Result
		for _, rec := range s.BySurah(surah, from, to) {
			results = append(results, search.Result{
				Record:        rec,
				Score:         1,
				MatchedTokens: []string{"verse_key"},
			})
			if len(results) >= limit {
				break
			}
		}
		return results
	}

	return search.Search(st.index, st.records, query, limit)
}

// BySurah returns the verses of a surah with ayah in [from, to], in ayah
// order. A zero or negative "to" means no upper bound.
func (s *Store) BySurah(surah, from, to int) []corpus.Record {
	st := s.state.Load()
	if st == nil {
		return nil
	}
	var out []corpus.Record
	for _, key := range st.keys {
		rec := st.records[key]
		if rec.Surah != surah || rec.Ayah < from {
			continue
		}
		if to > 0 && rec.Ayah > to {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// SurahInfo summarizes one surah's coverage in the table.
type SurahInfo struct {
	SurahNumber   int    `json:"surah_number"`
	AyahCount     int    `json:"ayah_count"`
	FirstVerseKey string `json:"first_verse_key"`
}

// Surahs lists per-surah coverage in surah order.
func (s *Store) Surahs() []SurahInfo {
	st := s.state.Load()
	if st == nil {
		return nil
	}
	var out []SurahInfo
	for _, key := range st.keys {
		rec := st.records[key]
		if n := len(out); n > 0 && out[n-1].SurahNumber == rec.Surah {
			out[n-1].AyahCount++
			continue
		}
		out = append(out, SurahInfo{
			SurahNumber:   rec.Surah,
			AyahCount:     1,
			FirstVerseKey: key,
		})
	}
	return out
}
