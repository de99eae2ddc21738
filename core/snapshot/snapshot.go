// Package snapshot persists the unified verse table keyed by a dataset
// fingerprint, so unchanged sources skip the full load pipeline.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/dailyayah/dailyayah/core/corpus"
	"github.com/dailyayah/dailyayah/core/errors"
	"github.com/dailyayah/dailyayah/core/fingerprint"
)

// Snapshot is the persisted cache structure. Field names are the wire format
// consumed by external collaborators; do not rename.
type Snapshot struct {
	DataHash  string                   `json:"data_hash"`
	Timestamp float64                  `json:"timestamp"`
	Records   map[string]corpus.Record `json:"unified_data"`
}

// compressed reports whether the snapshot path uses xz compression.
func compressed(path string) bool {
	return strings.HasSuffix(path, ".xz")
}

// Save writes a snapshot atomically (temp file in the target directory, then
// rename). Paths ending in ".xz" are xz-compressed. The parent directory is
// created if needed.
func Save(path string, records map[string]corpus.Record, dataHash string) error {
	snap := Snapshot{
		DataHash:  dataHash,
		Timestamp: float64(time.Now().UnixNano()) / float64(time.Second),
		Records:   records,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if compressed(path) {
		var buf bytes.Buffer
		w, err := xz.NewWriter(&buf)
		if err != nil {
			return fmt.Errorf("failed to create xz writer: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to compress snapshot: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("failed to finish xz stream: %w", err)
		}
		data = buf.Bytes()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}
	return nil
}

// Load reads a snapshot from disk. Any read or decode failure is reported as
// a cache error; callers fall back to a full rebuild.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errors.CacheError{Path: path, Op: "read", Err: err}
	}
	if compressed(path) {
		r, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, &errors.CacheError{Path: path, Op: "decompress", Err: err}
		}
		data, err = io.ReadAll(r)
		if err != nil {
			return nil, &errors.CacheError{Path: path, Op: "decompress", Err: err}
		}
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &errors.CacheError{Path: path, Op: "decode", Err: err}
	}
	if snap.Records == nil {
		return nil, &errors.CacheError{Path: path, Op: "decode", Err: errors.ErrCacheInvalid}
	}
	return &snap, nil
}

// Valid reports whether the snapshot at path can be trusted for the given
// source files: caching enabled, snapshot present, no source file newer than
// the snapshot, and the stored digest matching a freshly computed one.
func Valid(path string, sources []string, enabled bool) bool {
	if !enabled {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	for _, src := range sources {
		srcInfo, err := os.Stat(src)
		if err != nil {
			continue
		}
		if srcInfo.ModTime().After(info.ModTime()) {
			return false
		}
	}

	snap, err := Load(path)
	if err != nil {
		slog.Warn("snapshot unreadable during validity check", "path", path, "error", err)
		return false
	}
	current, err := fingerprint.Files(sources)
	if err != nil {
		return false
	}
	return snap.DataHash == current
}
