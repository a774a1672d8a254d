package tools

import (
	"testing"

	"github.com/yourusername/chart-tally/internal/datepath"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]interface{}
		expected datepath.Date
		wantErr  bool
		today    bool
	}{
		{
			name:     "Explicit date",
			args:     map[string]interface{}{"date": "2025-01-18"},
			expected: datepath.Date{Year: 2025, Month: 1, Day: 18},
		},
		{
			name:  "Missing date defaults to today",
			args:  map[string]interface{}{},
			today: true,
		},
		{
			name:  "Empty date defaults to today",
			args:  map[string]interface{}{"date": ""},
			today: true,
		},
		{
			name:  "Non-string date defaults to today",
			args:  map[string]interface{}{"date": 20250118},
			today: true,
		},
		{
			name:    "Malformed date",
			args:    map[string]interface{}{"date": "18.01.2025"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := parseDate(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDate(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tt.today {
				if d != datepath.Today() {
					t.Errorf("parseDate(%v) = %v, expected today", tt.args, d)
				}
				return
			}
			if d != tt.expected {
				t.Errorf("parseDate(%v) = %v, expected %v", tt.args, d, tt.expected)
			}
		})
	}
}
