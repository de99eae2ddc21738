package search

import (
	"testing"

	"github.com/dailyayah/dailyayah/core/corpus"
)

func testRecords() map[string]corpus.Record {
	return map[string]corpus.Record{
		"1:1": {
			VerseKey: "1:1", Surah: 1, Ayah: 1,
			ArabicText:  "بسم الله",
			Translation: "In the name of Allah, the All-Merciful.",
			Tafsir:      "This is the opening verse of the Quran.",
		},
		"2:255": {
			VerseKey: "2:255", Surah: 2, Ayah: 255,
			ArabicText:  "الله لا إله إلا هو",
			Translation: "Allah - there is no deity except Him.",
			Tafsir:      "This is Ayat al-Kursi, the greatest verse.",
		},
		"3:1": {
			VerseKey: "3:1", Surah: 3, Ayah: 1,
			ArabicText:  "الم",
			Translation: "Alif Lam Mim.",
			Tafsir:      "The surah opens with disjointed letters; patience is counseled.",
		},
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"In the name of Allah", []string{"the", "name", "allah"}},
		{"a an to", nil},
		{"", nil},
		{"Ayat al-Kursi!", []string{"ayat", "kursi"}},
	}
	for _, tt := range tests {
		got := Tokenize(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
				break
			}
		}
	}
}

func TestBuild(t *testing.T) {
	idx := Build(testRecords())

	if _, ok := idx["allah"]["1:1"]; !ok {
		t.Error(`index["allah"] should contain 1:1`)
	}
	if _, ok := idx["allah"]["2:255"]; !ok {
		t.Error(`index["allah"] should contain 2:255`)
	}
	if _, ok := idx["kursi"]["2:255"]; !ok {
		t.Error(`index["kursi"] should contain 2:255`)
	}
	if _, ok := idx["in"]; ok {
		t.Error("tokens shorter than 3 chars must not be indexed")
	}
}

func TestSearchTranslationOutranksTafsir(t *testing.T) {
	// "Allah" appears in the translation of 1:1 and 2:255 but only via
	// tafsir in no record; both get the 1.5x boost. "patience" appears only
	// in the tafsir of 3:1.
	records := testRecords()
	idx := Build(records)

	results := Search(idx, records, "Allah", 10)
	if len(results) != 2 {
		t.Fatalf("Search(Allah) returned %d results, want 2", len(results))
	}
	for _, r := range results {
		// full-query substring boost (2x) and translation boost (1.5x) on a
		// full token match: 1.0 * 2 * 1.5
		if r.Score != 3.0 {
			t.Errorf("score for %s = %f, want 3.0", r.VerseKey, r.Score)
		}
	}

	tafsirOnly := Search(idx, records, "patience", 10)
	if len(tafsirOnly) != 1 || tafsirOnly[0].VerseKey != "3:1" {
		t.Fatalf("Search(patience) = %v", tafsirOnly)
	}
	// substring boost applies (token == query), translation boost does not
	if tafsirOnly[0].Score != 2.0 {
		t.Errorf("tafsir-only score = %f, want 2.0", tafsirOnly[0].Score)
	}
	if results[0].Score <= tafsirOnly[0].Score {
		t.Error("translation match must outrank tafsir-only match")
	}
}

func TestSearchUniqueTranslationTokenFirst(t *testing.T) {
	records := testRecords()
	idx := Build(records)

	results := Search(idx, records, "deity", 10)
	if len(results) == 0 || results[0].VerseKey != "2:255" {
		t.Fatalf("Search(deity) first result = %v, want 2:255", results)
	}
	if got := results[0].MatchedTokens; len(got) != 1 || got[0] != "deity" {
		t.Errorf("MatchedTokens = %v, want [deity]", got)
	}
}

func TestSearchEmptyAndShortQueries(t *testing.T) {
	records := testRecords()
	idx := Build(records)

	if got := Search(idx, records, "", 10); len(got) != 0 {
		t.Errorf("empty query returned %d results", len(got))
	}
	if got := Search(idx, records, "a an", 10); len(got) != 0 {
		t.Errorf("all-short-token query returned %d results", len(got))
	}
}

func TestSearchRespectsLimit(t *testing.T) {
	records := testRecords()
	idx := Build(records)

	for _, limit := range []int{0, 1, 2, 100} {
		got := Search(idx, records, "the verse", limit)
		if len(got) > limit {
			t.Errorf("limit %d returned %d results", limit, len(got))
		}
	}
}

func TestSearchPartialMatchRatio(t *testing.T) {
	records := testRecords()
	idx := Build(records)

	// "greatest" matches only 2:255; "opening" matches only 1:1. Each verse
	// matches 1 of 2 tokens, no phrase boost, no translation boost.
	results := Search(idx, records, "greatest opening", 10)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if r.Score != 0.5 {
			t.Errorf("score for %s = %f, want 0.5", r.VerseKey, r.Score)
		}
	}
	// Ties keep canonical verse order.
	if results[0].VerseKey != "1:1" || results[1].VerseKey != "2:255" {
		t.Errorf("tie order = %s, %s; want 1:1, 2:255", results[0].VerseKey, results[1].VerseKey)
	}
}
