package corpus

import (
	"encoding/json"
	"fmt"

	"github.com/dailyayah/dailyayah/core/errors"
	"github.com/dailyayah/dailyayah/core/versekey"
)

// Validate schema-checks all three raw datasets, failing fast with the first
// offending verse key. Entries are visited in canonical key order so the
// reported key is deterministic.
func Validate(raw *Raw) error {
	if err := ValidateArabic(raw.Arabic); err != nil {
		return err
	}
	if err := ValidateText(DatasetTranslation, raw.Translation, "t"); err != nil {
		return err
	}
	if err := ValidateText(DatasetTafsir, raw.Tafsir, "text"); err != nil {
		return err
	}
	return nil
}

// ValidateArabic enforces the Arabic dataset schema: verse_key shaped
// "digits:digits", surah and ayah fields in range and consistent with the
// key, and non-empty text.
func ValidateArabic(data map[string]ArabicEntry) error {
	for _, key := range sortedKeys(data) {
		entry := data[key]
		parsed, err := versekey.Parse(entry.VerseKey)
		if err != nil {
			return &errors.ValidationError{
				Dataset:  DatasetArabic,
				VerseKey: key,
				Message:  fmt.Sprintf("invalid verse_key %q", entry.VerseKey),
				Err:      err,
			}
		}
		// The surah/ayah fields, not the key string, are what ends up in
		// the unified record, so they get the same range check.
		if !(versekey.Key{Surah: entry.Surah, Ayah: entry.Ayah}).Valid() {
			return &errors.ValidationError{
				Dataset:  DatasetArabic,
				VerseKey: key,
				Message:  fmt.Sprintf("surah must be 1-%d and ayah >= 1, got surah=%d ayah=%d", versekey.MaxSurah, entry.Surah, entry.Ayah),
			}
		}
		if entry.Surah != parsed.Surah || entry.Ayah != parsed.Ayah {
			return &errors.ValidationError{
				Dataset:  DatasetArabic,
				VerseKey: key,
				Message:  fmt.Sprintf("surah/ayah fields %d:%d disagree with verse_key %q", entry.Surah, entry.Ayah, entry.VerseKey),
			}
		}
		if entry.Text == "" {
			return &errors.ValidationError{
				Dataset:  DatasetArabic,
				VerseKey: key,
				Message:  "text is empty",
			}
		}
	}
	return nil
}

// ValidateText enforces the translation/tafsir schema: every entry is either
// a non-empty bare string or an object carrying the designated text field.
// The translation field ("t") must be non-empty; a tafsir object may carry an
// empty "text" value, which unifies to a legitimately empty commentary.
func ValidateText(dataset string, data map[string]json.RawMessage, field string) error {
	for _, key := range sortedKeys(data) {
		raw := data[key]

		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s == "" {
				return &errors.ValidationError{
					Dataset:  dataset,
					VerseKey: key,
					Message:  "entry is an empty string",
				}
			}
			continue
		}

		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return &errors.ValidationError{
				Dataset:  dataset,
				VerseKey: key,
				Message:  "entry is neither a string nor an object",
				Err:      err,
			}
		}
		inner, ok := obj[field]
		if !ok {
			return &errors.ValidationError{
				Dataset:  dataset,
				VerseKey: key,
				Message:  fmt.Sprintf("object entry is missing the %q field", field),
			}
		}
		if err := json.Unmarshal(inner, &s); err != nil {
			return &errors.ValidationError{
				Dataset:  dataset,
				VerseKey: key,
				Message:  fmt.Sprintf("field %q is not a string", field),
				Err:      err,
			}
		}
		if field == "t" && s == "" {
			return &errors.ValidationError{
				Dataset:  dataset,
				VerseKey: key,
				Message:  "translation text is empty",
			}
		}
	}
	return nil
}
