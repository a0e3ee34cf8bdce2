package parse

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testDictionary = `# surname frequencies
КОНСТАНТИНОВ 120
КОНСТАНТИНОВА 80
александров
ИВАНОВ 500

ИВАНОВ 10
`

func TestReadDictionary(t *testing.T) {
	d, err := ReadDictionary(strings.NewReader(testDictionary))
	if err != nil {
		t.Fatalf("ReadDictionary: %v", err)
	}
	if d.Len() != 4 {
		t.Errorf("Len = %d, want 4", d.Len())
	}
	if d.freq["ИВАНОВ"] != 500 {
		t.Errorf("freq[ИВАНОВ] = %d, want highest seen (500)", d.freq["ИВАНОВ"])
	}
	if _, ok := d.freq["АЛЕКСАНДРОВ"]; !ok {
		t.Error("words should be upper-cased")
	}
}

func TestDictionaryCorrect(t *testing.T) {
	d, err := ReadDictionary(strings.NewReader(testDictionary))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"one letter off", "КОНСТАНТИНОБ", "КОНСТАНТИНОВ"},
		{"lower case input", "александрoв", "АЛЕКСАНДРОВ"},
		{"known word kept", "ИВАНОВ", "ИВАНОВ"},
		{"short word too far", "ИВАНОБ", "ИВАНОБ"},
		{"below min length", "ЕЙ", "ЕЙ"},
		{"per token", "КОНСТАНТИНОБ ПЕТР", "КОНСТАНТИНОВ ПЕТР"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Correct(tt.in); got != tt.want {
				t.Errorf("Correct(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDictionaryNil(t *testing.T) {
	var d *Dictionary
	if got := d.Correct("ИВАНОБ"); got != "ИВАНОБ" {
		t.Errorf("nil Correct = %q", got)
	}
	if d.Len() != 0 {
		t.Error("nil Len should be 0")
	}
}

func TestLoadDictionary(t *testing.T) {
	d, err := LoadDictionary("")
	if err != nil || d != nil {
		t.Errorf("empty path = %v, %v; want nil, nil", d, err)
	}

	if _, err := LoadDictionary(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "names.txt")
	if err := os.WriteFile(path, []byte(testDictionary), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err = LoadDictionary(path)
	if err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}
	if d.Len() != 4 {
		t.Errorf("Len = %d", d.Len())
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"АБВ", "АБВ", 1},
		{"АБВГ", "АБВД", 0.75},
		{"", "", 1},
		{"ИВАН", "", 0},
		{"ПЕТРОВ", "ПЕТРОВА", 1 - 1.0/7},
	}
	for _, tt := range tests {
		if got := similarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
