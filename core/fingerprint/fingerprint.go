// Package fingerprint computes a content digest over the source dataset
// files, used to detect staleness of the unified-data snapshot.
package fingerprint

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/zeebo/blake3"
)

// Files hashes the concatenated bytes of each file with BLAKE3-256, in the
// given order. The order is part of the fingerprint contract: callers must
// pass a fixed list, not a map iteration. Files that do not exist are skipped
// with a warning rather than failing the fingerprint; any other read error is
// returned.
func Files(paths []string) (string, error) {
	h := blake3.New()
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				slog.Warn("fingerprint skipping missing file", "path", path)
				continue
			}
			return "", fmt.Errorf("failed to open %s: %w", path, err)
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("failed to hash %s: %w", path, err)
		}
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum), nil
}

// Bytes hashes a single byte slice. Used by tests and by callers that
// already hold file contents in memory.
func Bytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
