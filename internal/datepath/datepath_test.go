package datepath

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Date
		wantErr  bool
	}{
		{
			name:     "Valid date",
			input:    "2025-01-18",
			expected: Date{Year: 2025, Month: 1, Day: 18},
		},
		{
			name:    "Compact form rejected",
			input:   "20250118",
			wantErr: true,
		},
		{
			name:    "Out-of-range day",
			input:   "2025-02-30",
			wantErr: true,
		},
		{
			name:    "Garbage",
			input:   "not-a-date",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && d != tt.expected {
				t.Errorf("Parse(%q) = %v, expected %v", tt.input, d, tt.expected)
			}
		})
	}
}

func TestFromTime(t *testing.T) {
	ts := time.Date(2025, 1, 18, 23, 59, 59, 0, time.Local)
	d := FromTime(ts)
	expected := Date{Year: 2025, Month: 1, Day: 18}
	if d != expected {
		t.Errorf("FromTime(%v) = %v, expected %v", ts, d, expected)
	}
}

func TestExpand(t *testing.T) {
	d := Date{Year: 2025, Month: 1, Day: 8}

	tests := []struct {
		name     string
		template string
		expected string
	}{
		{
			name:     "Year month day segments",
			template: "YYYY/MM/DD",
			expected: filepath.FromSlash("2025/01/08"),
		},
		{
			name:     "Compact date folder",
			template: "YYYYMMDD",
			expected: "20250108",
		},
		{
			name:     "Short tokens without padding",
			template: "M.D",
			expected: "1.8",
		},
		{
			name:     "Two-digit year",
			template: "YY-MM",
			expected: "25-01",
		},
		{
			name:     "Mixed literal text",
			template: "TOPO MM.DD",
			expected: "TOPO 01.08",
		},
		{
			name:     "No tokens passes through",
			template: "sessions",
			expected: "sessions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Expand(tt.template, d)
			if result != tt.expected {
				t.Errorf("Expand(%q) = %q, expected %q", tt.template, result, tt.expected)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	base := t.TempDir()
	d := Date{Year: 2025, Month: 1, Day: 18}

	dated := filepath.Join(base, "2025", "01", "18")
	if err := os.MkdirAll(dated, 0o755); err != nil {
		t.Fatal(err)
	}

	t.Run("Empty template returns base", func(t *testing.T) {
		path, ok := Resolve(base, "", d)
		if !ok || path != base {
			t.Errorf("Resolve(base, \"\") = (%q, %v), expected (%q, true)", path, ok, base)
		}
	})

	t.Run("Existing dated folder resolves", func(t *testing.T) {
		path, ok := Resolve(base, "YYYY/MM/DD", d)
		if !ok || path != dated {
			t.Errorf("Resolve = (%q, %v), expected (%q, true)", path, ok, dated)
		}
	})

	t.Run("Missing dated folder is not an error", func(t *testing.T) {
		other := Date{Year: 2024, Month: 12, Day: 31}
		path, ok := Resolve(base, "YYYY/MM/DD", other)
		if ok || path != "" {
			t.Errorf("Resolve for absent folder = (%q, %v), expected (\"\", false)", path, ok)
		}
	})

	t.Run("File at dated path does not resolve", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(base, "20250118"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, ok := Resolve(base, "YYYYMMDD", d)
		if ok {
			t.Error("Resolve accepted a regular file as a dated folder")
		}
	})
}

func TestRenderings(t *testing.T) {
	d := Date{Year: 2025, Month: 1, Day: 8}
	expected := []string{"20250108", "2025-01-08", "2025.01.08", "01.08"}

	got := d.Renderings()
	if len(got) != len(expected) {
		t.Fatalf("Renderings() returned %d forms, expected %d", len(got), len(expected))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Renderings()[%d] = %q, expected %q", i, got[i], expected[i])
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	d := Date{Year: 2025, Month: 1, Day: 18}
	parsed, err := Parse(d.String())
	if err != nil {
		t.Fatalf("Parse(String()) failed: %v", err)
	}
	if parsed != d {
		t.Errorf("round trip = %v, expected %v", parsed, d)
	}
}
