package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dailyayah/dailyayah/core/corpus"
	"github.com/dailyayah/dailyayah/core/errors"
)

const (
	fixtureArabic = `{
		"1:1": {"id": 1, "verse_key": "1:1", "surah": 1, "ayah": 1, "text": "بسم الله الرحمن الرحيم"},
		"1:2": {"id": 2, "verse_key": "1:2", "surah": 1, "ayah": 2, "text": "الحمد لله رب العالمين"},
		"2:255": {"id": 262, "verse_key": "2:255", "surah": 2, "ayah": 255, "text": "الله لا إله إلا هو"}
	}`
	fixtureTranslation = `{
		"1:1": {"t": "In the name of Allah, the All-Merciful, the Very-Merciful."},
		"1:2": {"t": "Praise belongs to Allah, the Lord of all the worlds."},
		"2:255": "Allah - there is no deity except Him, the Ever-Living."
	}`
	fixtureTafsir = `{
		"1:1": {"text": "This is the opening verse of the Quran."},
		"1:2": "1:1",
		"2:255": "This is Ayat al-Kursi, the greatest verse of the Quran."
	}`
)

func testStore(t *testing.T) (*Store, corpus.Sources, string) {
	t.Helper()
	dir := t.TempDir()
	src := corpus.Sources{
		Arabic:      filepath.Join(dir, "qpc-hafs.json"),
		Translation: filepath.Join(dir, "en-taqi-usmani-simple.json"),
		Tafsir:      filepath.Join(dir, "en-tafisr-ibn-kathir.json"),
	}
	for path, content := range map[string]string{
		src.Arabic:      fixtureArabic,
		src.Translation: fixtureTranslation,
		src.Tafsir:      fixtureTafsir,
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cachePath := filepath.Join(dir, "cache", "unified_data.json")
	s := New(Config{Sources: src, CachePath: cachePath, CacheEnabled: true})
	return s, src, cachePath
}

func TestLoadFromSource(t *testing.T) {
	s, _, cachePath := testStore(t)

	if s.Ready() {
		t.Error("store should not be ready before Load")
	}
	if err := s.Load(context.Background(), false); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !s.Ready() || s.Len() != 3 {
		t.Fatalf("Ready/Len = %v/%d, want true/3", s.Ready(), s.Len())
	}
	if s.DataHash() == "" {
		t.Error("DataHash() should be set after load")
	}
	if _, err := os.Stat(cachePath); err != nil {
		t.Errorf("snapshot was not persisted: %v", err)
	}

	// The referenced tafsir resolved through to 1:1's text.
	rec, ok := s.Get("1:2")
	if !ok {
		t.Fatal("Get(1:2) not found")
	}
	if rec.Tafsir != "This is the opening verse of the Quran." {
		t.Errorf("resolved tafsir = %q", rec.Tafsir)
	}
}

func TestLoadUsesSnapshot(t *testing.T) {
	s, _, _ := testStore(t)
	ctx := context.Background()
	if err := s.Load(ctx, false); err != nil {
		t.Fatal(err)
	}
	hash := s.DataHash()

	// A second store over the same files loads from the snapshot.
	s2 := New(s.cfg)
	if err := s2.Load(ctx, false); err != nil {
		t.Fatalf("Load() from snapshot error = %v", err)
	}
	if s2.Len() != 3 || s2.DataHash() != hash {
		t.Errorf("snapshot load: Len=%d hash=%s, want 3/%s", s2.Len(), s2.DataHash(), hash)
	}
	if !s2.Audit().CacheValid {
		t.Error("cache_valid should be true after a snapshot load")
	}
}

func TestLoadFallsBackOnCorruptSnapshot(t *testing.T) {
	s, _, cachePath := testStore(t)
	ctx := context.Background()
	if err := s.Load(ctx, false); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cachePath, []byte("{corrupt"), 0o644); err != nil {
		t.Fatal(err)
	}

	s2 := New(s.cfg)
	if err := s2.Load(ctx, false); err != nil {
		t.Fatalf("Load() should rebuild on a corrupt snapshot, got %v", err)
	}
	if s2.Len() != 3 {
		t.Errorf("Len = %d, want 3", s2.Len())
	}
}

func TestLoadValidationFailureAborts(t *testing.T) {
	s, src, _ := testStore(t)
	if err := os.WriteFile(src.Arabic, []byte(`{"1:1": {"verse_key": "not-a-key", "surah": 1, "ayah": 1, "text": "x"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	err := s.Load(context.Background(), false)
	if err == nil {
		t.Fatal("Load() should fail on schema violations")
	}
	if !errors.IsValidation(err) {
		t.Errorf("error = %v, want validation error", err)
	}
	if s.Ready() {
		t.Error("no table should be published after a failed load")
	}
}

func TestForceReloadSwapsTable(t *testing.T) {
	s, src, _ := testStore(t)
	ctx := context.Background()
	if err := s.Load(ctx, false); err != nil {
		t.Fatal(err)
	}
	before := s.DataHash()

	// Edit a source and force a reload: the hash and content change.
	edited := `{
		"1:1": {"id": 1, "verse_key": "1:1", "surah": 1, "ayah": 1, "text": "بسم الله"}
	}`
	if err := os.WriteFile(src.Arabic, []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Load(ctx, true); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Errorf("Len after reload = %d, want 1", s.Len())
	}
	if s.DataHash() == before {
		t.Error("DataHash should change after sources change")
	}

	// Without force, the published table is kept as-is.
	if err := s.Load(ctx, false); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Error("non-forced Load must not rebuild a published table")
	}
}

func TestDailyIsDeterministic(t *testing.T) {
	s, _, _ := testStore(t)
	if err := s.Load(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	a, ok := s.Daily("2026-08-29")
	if !ok {
		t.Fatal("Daily() returned no verse")
	}
	b, _ := s.Daily("2026-08-29")
	if a.VerseKey != b.VerseKey {
		t.Error("same date must pick the same verse")
	}

	// Different dates should not always agree; check a handful.
	differs := false
	for _, date := range []string{"2026-08-30", "2026-08-31", "2026-09-01", "2026-09-02"} {
		if rec, _ := s.Daily(date); rec.VerseKey != a.VerseKey {
			differs = true
			break
		}
	}
	if !differs {
		t.Error("daily pick never varies across dates")
	}
}

func TestRandom(t *testing.T) {
	s, _, _ := testStore(t)
	if _, ok := s.Random(); ok {
		t.Error("Random() before Load should report no verse")
	}
	if err := s.Load(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	rec, ok := s.Random()
	if !ok || rec.VerseKey == "" {
		t.Errorf("Random() = %+v, %v", rec, ok)
	}
}

func TestSearch(t *testing.T) {
	s, _, _ := testStore(t)
	if err := s.Load(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	t.Run("text query", func(t *testing.T) {
		results := s.Search("Allah", 10)
		if len(results) != 3 {
			t.Fatalf("Search(Allah) = %d results, want 3", len(results))
		}
		for _, r := range results {
			if r.Score <= 0 {
				t.Errorf("result %s score = %f", r.VerseKey, r.Score)
			}
		}
	})

	t.Run("reference query", func(t *testing.T) {
		results := s.Search("2:255", 10)
		if len(results) != 1 || results[0].VerseKey != "2:255" {
			t.Fatalf("Search(2:255) = %v", results)
		}
	})

	t.Run("range query", func(t *testing.T) {
		results := s.Search("1:1-2", 10)
		if len(results) != 2 {
			t.Fatalf("Search(1:1-2) = %d results, want 2", len(results))
		}
		if results[0].VerseKey != "1:1" || results[1].VerseKey != "1:2" {
			t.Errorf("range order = %s, %s", results[0].VerseKey, results[1].VerseKey)
		}
	})

	t.Run("limit respected", func(t *testing.T) {
		if got := s.Search("Allah", 1); len(got) != 1 {
			t.Errorf("limit 1 returned %d results", len(got))
		}
		if got := s.Search("1:1-2", 1); len(got) != 1 {
			t.Errorf("limit 1 on range returned %d results", len(got))
		}
	})

	t.Run("empty query", func(t *testing.T) {
		if got := s.Search("", 10); len(got) != 0 {
			t.Errorf("empty query returned %d results", len(got))
		}
	})
}

func TestSurahs(t *testing.T) {
	s, _, _ := testStore(t)
	if err := s.Load(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	surahs := s.Surahs()
	if len(surahs) != 2 {
		t.Fatalf("Surahs() = %v, want 2 entries", surahs)
	}
	if surahs[0].SurahNumber != 1 || surahs[0].AyahCount != 2 || surahs[0].FirstVerseKey != "1:1" {
		t.Errorf("surah 1 info = %+v", surahs[0])
	}
	if surahs[1].SurahNumber != 2 || surahs[1].AyahCount != 1 {
		t.Errorf("surah 2 info = %+v", surahs[1])
	}
}

func TestAudit(t *testing.T) {
	s, _, _ := testStore(t)

	if report := s.Audit(); report.Err == "" {
		t.Error("Audit() before Load should carry an error value")
	}

	if err := s.Load(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	report := s.Audit()
	if report.Err != "" {
		t.Fatalf("Audit() error = %s", report.Err)
	}
	if report.TotalVerses != 3 || !report.OK() {
		t.Errorf("report = %+v", report)
	}
	if report.DataHash != s.DataHash() {
		t.Error("report hash should match the store hash")
	}
}
