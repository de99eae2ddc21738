// Package corpus loads, validates, and unifies the three verse datasets
// (Arabic text, translation, tafsir) into one immutable record per verse key.
package corpus

import (
	"encoding/json"
	"sort"

	"github.com/dailyayah/dailyayah/core/versekey"
)

// Record is the unified, immutable representation of one verse. Field names
// follow the snapshot wire format shared with other consumers of the cache.
type Record struct {
	VerseKey    string `json:"verse_key"`
	Surah       int    `json:"surah"`
	Ayah        int    `json:"ayah"`
	ArabicText  string `json:"arabic_text"`
	Translation string `json:"translation"`
	Tafsir      string `json:"tafsir"`
}

// ArabicEntry is one raw entry of the Arabic text dataset.
type ArabicEntry struct {
	ID       int    `json:"id"`
	VerseKey string `json:"verse_key"`
	Surah    int    `json:"surah"`
	Ayah     int    `json:"ayah"`
	Text     string `json:"text"`
}

// Sources names the three dataset files for one load.
type Sources struct {
	Arabic      string
	Translation string
	Tafsir      string
}

// Paths returns the source files in the fixed fingerprinting order.
func (s Sources) Paths() []string {
	return []string{s.Arabic, s.Translation, s.Tafsir}
}

// Raw holds the three decoded datasets before validation and unification.
// Translation and tafsir values stay raw because both datasets mix bare
// strings with objects.
type Raw struct {
	Arabic      map[string]ArabicEntry
	Translation map[string]json.RawMessage
	Tafsir      map[string]json.RawMessage
}

// SortKeys orders verse-key strings canonically (by surah, then ayah).
// Keys that do not parse sort last, lexicographically.
func SortKeys(keys []string) {
	type parsed struct {
		key string
		k   versekey.Key
		ok  bool
	}
	ps := make([]parsed, len(keys))
	for i, s := range keys {
		k, err := versekey.Parse(s)
		ps[i] = parsed{key: s, k: k, ok: err == nil}
	}
	sort.Slice(ps, func(i, j int) bool {
		a, b := ps[i], ps[j]
		switch {
		case a.ok && b.ok:
			return versekey.Compare(a.k, b.k) < 0
		case a.ok != b.ok:
			return a.ok
		}
		return a.key < b.key
	})
	for i := range ps {
		keys[i] = ps[i].key
	}
}

// sortedKeys returns the map's keys in canonical verse order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	SortKeys(keys)
	return keys
}
