// Package audit sweeps the unified verse table for structural problems:
// malformed keys, empty fields, and cache staleness. It is a health-check
// helper and must never fail; internal errors become report data.
package audit

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dailyayah/dailyayah/core/corpus"
	"github.com/dailyayah/dailyayah/core/versekey"
)

// Report is the outcome of one integrity sweep. It marshals to the JSON
// shape consumed by operational health checks; when Err is set it marshals
// as {"error": "..."} instead.
type Report struct {
	TotalVerses       int      `json:"total_verses"`
	InvalidKeys       []string `json:"invalid_keys"`
	EmptyTranslations []string `json:"empty_translations"`
	EmptyTafsir       []string `json:"empty_tafsir"`
	DataHash          string   `json:"data_hash"`
	CacheValid        bool     `json:"cache_valid"`
	Err               string   `json:"-"`
}

// OK reports whether the sweep found no problems.
func (r Report) OK() bool {
	return r.Err == "" && len(r.InvalidKeys) == 0 &&
		len(r.EmptyTranslations) == 0 && len(r.EmptyTafsir) == 0
}

// MarshalJSON emits the report, or a bare error object when the sweep itself
// failed.
func (r Report) MarshalJSON() ([]byte, error) {
	if r.Err != "" {
		return json.Marshal(map[string]string{"error": r.Err})
	}
	type plain Report // avoid recursing into MarshalJSON
	return json.Marshal(plain(r))
}

// Run audits the in-memory table. Pure: the table is never mutated. Panics
// from unexpected data are captured into the report's error field so callers
// expecting a health signal always get one.
func Run(records map[string]corpus.Record, dataHash string, cacheValid bool) (report Report) {
	defer func() {
		if r := recover(); r != nil {
			report = Report{Err: fmt.Sprintf("audit failed: %v", r)}
		}
	}()

	report = Report{
		TotalVerses:       len(records),
		InvalidKeys:       []string{},
		EmptyTranslations: []string{},
		EmptyTafsir:       []string{},
		DataHash:          dataHash,
		CacheValid:        cacheValid,
	}

	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	corpus.SortKeys(keys)

	for _, key := range keys {
		rec := records[key]
		if !versekey.IsWellFormed(key) {
			report.InvalidKeys = append(report.InvalidKeys, key)
		}
		if strings.TrimSpace(rec.Translation) == "" {
			report.EmptyTranslations = append(report.EmptyTranslations, key)
		}
		if strings.TrimSpace(rec.Tafsir) == "" {
			report.EmptyTafsir = append(report.EmptyTafsir, key)
		}
	}
	return report
}
