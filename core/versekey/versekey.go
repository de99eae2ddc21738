// Package versekey parses and validates canonical "surah:ayah" verse keys.
package versekey

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dailyayah/dailyayah/core/errors"
)

// Surah count in the Quran. Keys outside [1, MaxSurah] are invalid.
const MaxSurah = 114

var keyPattern = regexp.MustCompile(`^\d+:\d+$`)

// Key identifies a single verse by surah and ayah number.
type Key struct {
	Surah int
	Ayah  int
}

// String renders the canonical "surah:ayah" form.
func (k Key) String() string {
	return strconv.Itoa(k.Surah) + ":" + strconv.Itoa(k.Ayah)
}

// Valid reports whether the key is within the canonical range.
func (k Key) Valid() bool {
	return k.Surah >= 1 && k.Surah <= MaxSurah && k.Ayah >= 1
}

// Parse parses a canonical verse key string. It enforces the "digits:digits"
// shape, surah within [1, MaxSurah], and ayah >= 1.
func Parse(s string) (Key, error) {
	if !keyPattern.MatchString(s) {
		return Key{}, &errors.ValidationError{VerseKey: s, Message: "verse key must match digits:digits"}
	}
	parts := strings.SplitN(s, ":", 2)
	surah, err := strconv.Atoi(parts[0])
	if err != nil {
		return Key{}, &errors.ValidationError{VerseKey: s, Message: "surah is not a number", Err: err}
	}
	ayah, err := strconv.Atoi(parts[1])
	if err != nil {
		return Key{}, &errors.ValidationError{VerseKey: s, Message: "ayah is not a number", Err: err}
	}
	k := Key{Surah: surah, Ayah: ayah}
	if !k.Valid() {
		return Key{}, &errors.ValidationError{
			VerseKey: s,
			Message:  fmt.Sprintf("surah must be 1-%d and ayah >= 1", MaxSurah),
		}
	}
	return k, nil
}

// IsWellFormed reports whether s parses as a valid verse key.
func IsWellFormed(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// IsReferenceShaped reports whether a raw commentary string looks like a verse
// reference rather than literal text: exactly one colon, trimmed length under
// 10, and numeric once colons and dots are stripped.
//
// The heuristic is inherited from the upstream datasets and is knowingly
// ambiguous: a short literal comment such as "1:1" would be classified as a
// reference. Keep behavior as-is; changing it silently would reinterpret
// existing commentary entries.
func IsReferenceShaped(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) >= 10 || strings.Count(s, ":") != 1 {
		return false
	}
	stripped := strings.NewReplacer(":", "", ".", "").Replace(s)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Compare orders keys by surah, then ayah. Returns -1, 0, or 1.
func Compare(a, b Key) int {
	switch {
	case a.Surah != b.Surah:
		if a.Surah < b.Surah {
			return -1
		}
		return 1
	case a.Ayah != b.Ayah:
		if a.Ayah < b.Ayah {
			return -1
		}
		return 1
	}
	return 0
}
