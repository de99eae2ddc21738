// Package store owns the in-memory verse table. It runs the load pipeline
// (sources -> validation -> resolution -> unification), serves read-only
// lookups, and swaps in rebuilt tables atomically so concurrent readers
// never observe a half-populated table.
package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dailyayah/dailyayah/core/audit"
	"github.com/dailyayah/dailyayah/core/corpus"
	"github.com/dailyayah/dailyayah/core/errors"
	"github.com/dailyayah/dailyayah/core/fingerprint"
	"github.com/dailyayah/dailyayah/core/search"
	"github.com/dailyayah/dailyayah/core/snapshot"
	"github.com/dailyayah/dailyayah/internal/logging"
)

// Config tells the store where its data lives.
type Config struct {
	Sources      corpus.Sources
	CachePath    string
	CacheEnabled bool
	MaxDepth     int // tafsir reference depth budget; 0 means corpus.DefaultMaxDepth
}

// ProgressFunc receives coarse stage updates during a load. Used by the
// admin reload stream; may be nil.
type ProgressFunc func(stage, detail string)

// state is one immutable published table. A reload builds a fresh state and
// publishes it with a single pointer swap.
type state struct {
	records    map[string]corpus.Record
	keys       []string // canonical verse order
	index      search.Index
	dataHash   string
	cacheValid bool
	missing    corpus.Missing
	loadedAt   time.Time
}

// Store loads and serves the unified verse table.
type Store struct {
	cfg    Config
	state  atomic.Pointer[state]
	loadMu sync.Mutex // serializes writers; readers never block
}

// New creates a store. Call Load before serving lookups.
func New(cfg Config) *Store {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = corpus.DefaultMaxDepth
	}
	return &Store{cfg: cfg}
}

// Ready reports whether a table has been published.
func (s *Store) Ready() bool {
	return s.state.Load() != nil
}

// Len returns the number of verses in the current table.
func (s *Store) Len() int {
	if st := s.state.Load(); st != nil {
		return len(st.records)
	}
	return 0
}

// DataHash returns the fingerprint of the sources behind the current table.
func (s *Store) DataHash() string {
	if st := s.state.Load(); st != nil {
		return st.dataHash
	}
	return ""
}

// Missing returns the verse keys excluded from the current table.
func (s *Store) Missing() corpus.Missing {
	if st := s.state.Load(); st != nil {
		return st.missing
	}
	return corpus.Missing{}
}

// LoadedAt returns when the current table was published.
func (s *Store) LoadedAt() time.Time {
	if st := s.state.Load(); st != nil {
		return st.loadedAt
	}
	return time.Time{}
}

// Load ensures a table is published. With force=false a previously published
// table is kept; a valid snapshot is used before a full rebuild. With
// force=true the pipeline always runs from source.
func (s *Store) Load(ctx context.Context, force bool) error {
	return s.LoadWithProgress(ctx, force, nil)
}

// LoadWithProgress is Load with coarse stage reporting.
func (s *Store) LoadWithProgress(ctx context.Context, force bool, progress ProgressFunc) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if !force && s.state.Load() != nil {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	report := func(stage, detail string) {
		if progress != nil {
			progress(stage, detail)
		}
	}
	paths := s.cfg.Sources.Paths()

	if !force && snapshot.Valid(s.cfg.CachePath, paths, s.cfg.CacheEnabled) {
		report("cache", "loading snapshot")
		snap, err := snapshot.Load(s.cfg.CachePath)
		if err == nil {
			s.publish(snap.Records, snap.DataHash, true, corpus.Missing{}, time.Now())
			logging.CorpusLoad("cache", len(snap.Records), 0, "data_hash", snap.DataHash)
			report("done", "loaded from cache")
			return nil
		}
		// Fall through to a full rebuild on any cache-read failure.
		logging.Warn("snapshot read failed, rebuilding from source",
			"path", s.cfg.CachePath, "error", err)
	}

	start := time.Now()
	report("load", "reading source files")
	raw, err := corpus.LoadSources(s.cfg.Sources)
	if err != nil {
		return err
	}
	logging.Info("sources loaded",
		"arabic", len(raw.Arabic),
		"translations", len(raw.Translation),
		"tafsir", len(raw.Tafsir))

	report("validate", "checking dataset schemas")
	if err := corpus.Validate(raw); err != nil {
		return err
	}

	report("resolve", "resolving tafsir references")
	resolved, stats := corpus.ResolveAll(raw.Tafsir, s.cfg.MaxDepth)
	logging.Info("tafsir resolved", "direct", stats.Direct, "references", stats.References)

	report("unify", "joining datasets")
	records, missing := corpus.Unify(raw.Arabic, raw.Translation, resolved)
	if missing.Total() > 0 {
		logging.Warn("verses excluded from unified table",
			"missing_translation", len(missing.Translation),
			"missing_tafsir", len(missing.Tafsir))
	}

	report("fingerprint", "hashing source files")
	hash, err := fingerprint.Files(paths)
	if err != nil {
		return errors.Wrap(err, "fingerprinting sources")
	}

	cacheValid := false
	if s.cfg.CacheEnabled {
		report("persist", "writing snapshot")
		if err := snapshot.Save(s.cfg.CachePath, records, hash); err != nil {
			// The rebuilt table is still usable; a failed persist only costs
			// the next startup a rebuild.
			logging.Error("failed to persist snapshot", "path", s.cfg.CachePath, "error", err)
		} else {
			cacheValid = true
		}
	}

	s.publish(records, hash, cacheValid, missing, time.Now())
	logging.CorpusLoad("source", len(records), time.Since(start), "data_hash", hash)
	report("done", "rebuilt from source")
	return nil
}

// publish builds the derived structures and swaps the table in.
func (s *Store) publish(records map[string]corpus.Record, hash string, cacheValid bool, missing corpus.Missing, at time.Time) {
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	corpus.SortKeys(keys)

	s.state.Store(&state{
		records:    records,
		keys:       keys,
		index:      search.Build(records),
		dataHash:   hash,
		cacheValid: cacheValid,
		missing:    missing,
		loadedAt:   at,
	})
}

// Audit sweeps the current table. A store with no published table reports an
// error value rather than failing.
func (s *Store) Audit() audit.Report {
	st := s.state.Load()
	if st == nil {
		return audit.Report{Err: "no data loaded"}
	}
	return audit.Run(st.records, st.dataHash, st.cacheValid)
}
