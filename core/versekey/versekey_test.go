package versekey

import (
	"testing"

	"github.com/dailyayah/dailyayah/core/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Key
		wantErr bool
	}{
		{name: "first verse", in: "1:1", want: Key{Surah: 1, Ayah: 1}},
		{name: "ayat al-kursi", in: "2:255", want: Key{Surah: 2, Ayah: 255}},
		{name: "last surah", in: "114:6", want: Key{Surah: 114, Ayah: 6}},
		{name: "surah out of range", in: "115:1", wantErr: true},
		{name: "surah zero", in: "0:1", wantErr: true},
		{name: "ayah zero", in: "2:0", wantErr: true},
		{name: "missing colon", in: "2255", wantErr: true},
		{name: "two colons", in: "1:2:3", wantErr: true},
		{name: "non-numeric", in: "two:five", wantErr: true},
		{name: "negative surah", in: "-2:5", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "whitespace", in: " 2:255", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) succeeded, want error", tt.in)
				}
				if !errors.IsValidation(err) {
					t.Errorf("Parse(%q) error = %v, want validation error", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func TestIsReferenceShaped(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1:6", true},
		{"2:255", true},
		{"  18:1 ", true},
		{"2:2.5", true}, // dots are stripped before the numeric check
		{"This is the opening verse of the Quran.", false},
		{"see 1:6", false},
		{"1:2:3", false},
		{"123456789:1", false}, // 11 chars, too long
		{"no colon", false},
		{":", false},
		{"", false},
		{"a:b", false},
	}

	for _, tt := range tests {
		if got := IsReferenceShaped(tt.in); got != tt.want {
			t.Errorf("IsReferenceShaped(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCompare(t *testing.T) {
	a := Key{Surah: 2, Ayah: 255}
	b := Key{Surah: 3, Ayah: 1}
	c := Key{Surah: 2, Ayah: 1}

	if Compare(a, b) != -1 {
		t.Error("2:255 should sort before 3:1")
	}
	if Compare(a, c) != 1 {
		t.Error("2:255 should sort after 2:1")
	}
	if Compare(a, a) != 0 {
		t.Error("a key should compare equal to itself")
	}
}
