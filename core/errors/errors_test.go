package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ValidationError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "dataset and verse key",
			err:      &ValidationError{Dataset: "arabic", VerseKey: "2:255", Message: "text is empty"},
			wantMsg:  "validation failed in arabic for verse 2:255: text is empty",
			wantBase: ErrInvalidInput,
		},
		{
			name:     "dataset only",
			err:      &ValidationError{Dataset: "translation", Message: "not a JSON object"},
			wantMsg:  "validation failed in translation: not a JSON object",
			wantBase: ErrInvalidInput,
		},
		{
			name:     "bare message",
			err:      &ValidationError{Message: "no datasets configured"},
			wantMsg:  "validation failed: no datasets configured",
			wantBase: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, tt.wantBase) {
				t.Errorf("Unwrap() = %v, want %v", got, tt.wantBase)
			}
		})
	}

	t.Run("with underlying error", func(t *testing.T) {
		underlyingErr := fmt.Errorf("unexpected end of JSON input")
		err := &ValidationError{Dataset: "tafsir", Message: "decode failed", Err: underlyingErr}
		if got := err.Unwrap(); got != underlyingErr {
			t.Errorf("Unwrap() = %v, want %v", got, underlyingErr)
		}
	})
}

func TestCacheError(t *testing.T) {
	underlying := fmt.Errorf("permission denied")
	err := &CacheError{Path: "cache/unified_data.json", Op: "read", Err: underlying}

	want := "cache read failed for cache/unified_data.json: permission denied"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got := err.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}

	bare := &CacheError{Op: "decode", Err: underlying}
	if !IsCache(fmt.Errorf("load: %w", &CacheError{Op: "decode"})) {
		t.Error("IsCache() should see through wrapping")
	}
	if bare.Error() != "cache decode failed: permission denied" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{Resource: "verse", ID: "999:1"}
	if got := err.Error(); got != "verse not found: 999:1" {
		t.Errorf("Error() = %q", got)
	}
	if !IsNotFound(fmt.Errorf("lookup: %w", err)) {
		t.Error("IsNotFound() should see through wrapping")
	}

	noID := &NotFoundError{Resource: "subscriber"}
	if got := noID.Error(); got != "subscriber not found" {
		t.Errorf("Error() = %q", got)
	}
}

func TestHelpers(t *testing.T) {
	if !IsValidation(&ValidationError{Message: "x"}) {
		t.Error("IsValidation() = false for ValidationError")
	}
	if IsValidation(ErrNotFound) {
		t.Error("IsValidation() = true for ErrNotFound")
	}
	if Wrap(nil, "ctx") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	wrapped := Wrap(ErrCacheInvalid, "loading %s", "snapshot")
	if wrapped.Error() != "loading snapshot: cache invalid" {
		t.Errorf("Wrap() = %q", wrapped.Error())
	}
	if !errors.Is(wrapped, ErrCacheInvalid) {
		t.Error("Wrap() should preserve the error chain")
	}
}
