package corpus

import "encoding/json"

// Missing lists the Arabic-dataset verse keys that were excluded from the
// unified table because a counterpart dataset had no entry for them. Keys are
// in canonical verse order.
type Missing struct {
	Translation []string
	Tafsir      []string
}

// Total returns the number of excluded verse keys.
func (m Missing) Total() int {
	return len(m.Translation) + len(m.Tafsir)
}

// Unify joins the three datasets into one record per verse key. Every key of
// the Arabic dataset lands either in the returned table (all three fields
// populated) or in one of the missing sets; partial records are never
// emitted. Partial coverage is reported, not an error.
func Unify(arabic map[string]ArabicEntry, translation map[string]json.RawMessage, tafsirResolved map[string]string) (map[string]Record, Missing) {
	records := make(map[string]Record, len(arabic))
	var missing Missing

	for _, key := range sortedKeys(arabic) {
		entry := arabic[key]

		trRaw, ok := translation[key]
		if !ok {
			missing.Translation = append(missing.Translation, key)
			continue
		}
		tafsirText, ok := tafsirResolved[key]
		if !ok {
			missing.Tafsir = append(missing.Tafsir, key)
			continue
		}

		records[key] = Record{
			VerseKey:    key,
			Surah:       entry.Surah,
			Ayah:        entry.Ayah,
			ArabicText:  entry.Text,
			Translation: TranslationText(trRaw),
			Tafsir:      tafsirText,
		}
	}

	return records, missing
}
