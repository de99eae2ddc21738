package corpus

import (
	"encoding/json"
	"os"
	"unicode/utf8"

	"github.com/dailyayah/dailyayah/core/errors"
)

// Dataset names used in validation errors and log output.
const (
	DatasetArabic      = "arabic"
	DatasetTranslation = "translation"
	DatasetTafsir      = "tafsir"
)

// LoadSources reads and decodes the three dataset files. Any missing file,
// non-UTF-8 content, or malformed JSON aborts the whole load with a
// validation error naming the dataset; there is no partial recovery.
func LoadSources(src Sources) (*Raw, error) {
	raw := &Raw{}

	if err := loadJSON(DatasetArabic, src.Arabic, &raw.Arabic); err != nil {
		return nil, err
	}
	if err := loadJSON(DatasetTranslation, src.Translation, &raw.Translation); err != nil {
		return nil, err
	}
	if err := loadJSON(DatasetTafsir, src.Tafsir, &raw.Tafsir); err != nil {
		return nil, err
	}
	return raw, nil
}

func loadJSON(dataset, path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &errors.ValidationError{
			Dataset: dataset,
			Message: "required data file not readable: " + path,
			Err:     err,
		}
	}
	if !utf8.Valid(data) {
		return &errors.ValidationError{
			Dataset: dataset,
			Message: "file is not valid UTF-8: " + path,
		}
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return &errors.ValidationError{
			Dataset: dataset,
			Message: "invalid JSON in " + path,
			Err:     err,
		}
	}
	return nil
}

// entryText extracts the text of a translation or tafsir entry: either the
// bare string itself or the named field of an object. Returns ok=false for
// any other JSON shape.
func entryText(raw json.RawMessage, field string) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}
	inner, ok := obj[field]
	if !ok {
		return "", false
	}
	if err := json.Unmarshal(inner, &s); err != nil {
		return "", false
	}
	return s, true
}

// TranslationText extracts the display text of a translation entry,
// tolerating both the {"t": "..."} object form and the bare string form.
// Unknown shapes yield an empty string.
func TranslationText(raw json.RawMessage) string {
	s, _ := entryText(raw, "t")
	return s
}
