// Package datepath resolves equipment date-folder templates into concrete
// directories and renders the date strings used for filename matching.
package datepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Date is a calendar date without a time component.
type Date struct {
	Year  int
	Month int
	Day   int
}

// Today returns the current local date.
func Today() Date {
	return FromTime(time.Now())
}

// FromTime truncates a time.Time to its local calendar date.
func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// Parse parses a date in YYYY-MM-DD form.
func Parse(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return FromTime(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// tokens that may appear in a date-folder template, longest first so that a
// combined token is never clobbered by a partial substitution (MM before M).
var templateTokens = []string{"YYYY", "YY", "MM", "DD", "M", "D"}

func (d Date) tokenValue(token string) string {
	switch token {
	case "YYYY":
		return fmt.Sprintf("%04d", d.Year)
	case "YY":
		return fmt.Sprintf("%02d", d.Year%100)
	case "MM":
		return fmt.Sprintf("%02d", d.Month)
	case "DD":
		return fmt.Sprintf("%02d", d.Day)
	case "M":
		return fmt.Sprintf("%d", d.Month)
	case "D":
		return fmt.Sprintf("%d", d.Day)
	}
	return token
}

// Expand substitutes the date tokens in a folder template, e.g.
// "YYYY/MM/TOPO MM.DD" becomes "2025/01/TOPO 01.18".
func Expand(template string, d Date) string {
	out := template
	for _, token := range templateTokens {
		out = strings.ReplaceAll(out, token, d.tokenValue(token))
	}
	return filepath.FromSlash(out)
}

// Resolve composes the dated directory for an equipment base path. With an
// empty template the base itself is returned (flat equipment). Otherwise the
// expanded path is returned only if it exists on disk; ok=false signals that
// the dated folder has not been materialized yet, which is not an error.
func Resolve(basePath, template string, d Date) (path string, ok bool) {
	if template == "" {
		return basePath, true
	}
	composed := filepath.Join(basePath, Expand(template, d))
	info, err := os.Stat(composed)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return composed, true
}

// Renderings returns every date-string form accepted by the freshness filter,
// in the order they are tried: compact, hyphenated, dotted, and the short
// month.day form some equipment uses for session folders.
func (d Date) Renderings() []string {
	return []string{
		fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day),
		fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day),
		fmt.Sprintf("%04d.%02d.%02d", d.Year, d.Month, d.Day),
		fmt.Sprintf("%02d.%02d", d.Month, d.Day),
	}
}
