package corpus

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dailyayah/dailyayah/core/versekey"
)

// DefaultMaxDepth bounds tafsir reference chains. Chains longer than this
// (including cycles) resolve to a sentinel string instead of looping.
const DefaultMaxDepth = 3

// EntryKind classifies a raw tafsir entry before resolution.
type EntryKind int

const (
	// KindEmpty is an entry of an unexpected JSON shape; it resolves to "".
	KindEmpty EntryKind = iota
	// KindDirect is a bare string holding literal commentary text.
	KindDirect
	// KindStructured is an object carrying the commentary in its "text" field.
	KindStructured
	// KindReference is a bare string pointing at another verse's commentary.
	KindReference
)

// Classify decides what a raw tafsir entry is. For KindDirect and
// KindStructured the returned string is the terminal text; for KindReference
// it is the trimmed target verse key. The direct-vs-reference call rides on
// versekey.IsReferenceShaped and inherits its ambiguity.
func Classify(raw json.RawMessage) (EntryKind, string) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if versekey.IsReferenceShaped(s) {
			return KindReference, strings.TrimSpace(s)
		}
		return KindDirect, s
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return KindStructured, obj.Text
	}
	return KindEmpty, ""
}

// ResolveTafsir resolves the tafsir text for one verse key, following
// reference chains up to maxDepth hops. Anomalies never fail the load:
// a chain that exhausts the depth budget or a reference to a missing key
// resolves to a bracketed sentinel string.
func ResolveTafsir(key string, tafsir map[string]json.RawMessage, maxDepth int) string {
	return resolve(key, tafsir, maxDepth, 0)
}

func resolve(key string, tafsir map[string]json.RawMessage, maxDepth, depth int) string {
	if depth >= maxDepth {
		return fmt.Sprintf("[Tafsir reference chain too deep for %s]", key)
	}
	raw, ok := tafsir[key]
	if !ok {
		return ""
	}
	kind, text := Classify(raw)
	switch kind {
	case KindDirect, KindStructured:
		return text
	case KindReference:
		if _, ok := tafsir[text]; ok {
			return resolve(text, tafsir, maxDepth, depth+1)
		}
		return fmt.Sprintf("[Referenced tafsir not found: %s]", text)
	}
	return ""
}

// ResolveStats summarizes one resolution pass for logging.
type ResolveStats struct {
	Direct     int // entries holding their own text (bare string or object)
	References int // entries pointing at another verse's commentary
}

// ResolveAll resolves every tafsir entry once and returns the complete
// key-to-text table, so shared chains are computed a single time per key
// instead of on every lookup.
func ResolveAll(tafsir map[string]json.RawMessage, maxDepth int) (map[string]string, ResolveStats) {
	resolved := make(map[string]string, len(tafsir))
	var stats ResolveStats
	for key, raw := range tafsir {
		if kind, _ := Classify(raw); kind == KindReference {
			stats.References++
		} else {
			stats.Direct++
		}
		resolved[key] = resolve(key, tafsir, maxDepth, 0)
	}
	return resolved, stats
}
