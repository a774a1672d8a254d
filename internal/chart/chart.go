// Package chart extracts and validates patient chart numbers from file and
// folder names.
package chart

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Validation failure reasons, distinguishable so scan logs can tell a range
// violation from a leading zero or a non-numeric capture.
var (
	ErrEmpty       = errors.New("empty identifier")
	ErrLeadingZero = errors.New("leading zero")
	ErrNotNumeric  = errors.New("not numeric")
	ErrBelowMin    = errors.New("below minimum")
	ErrAboveMax    = errors.New("above maximum")
)

// Pattern wraps a compiled name pattern whose capture groups encode the chart
// number. Supported shapes: a single capture group, or two mutually exclusive
// alternative groups of which exactly one matches.
type Pattern struct {
	re     *regexp.Regexp
	groups int
}

// Compile compiles a name pattern and validates its group semantics. Patterns
// with zero or more than two capture groups are rejected up front: the group
// holding the identifier would be ambiguous.
func Compile(expr string) (*Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", expr, err)
	}
	n := re.NumSubexp()
	if n < 1 || n > 2 {
		return nil, fmt.Errorf("pattern %q has %d capture groups, want 1 or 2", expr, n)
	}
	return &Pattern{re: re, groups: n}, nil
}

// MustCompile is Compile for patterns known valid at build time; it panics on
// error and exists for tests.
func MustCompile(expr string) *Pattern {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source expression.
func (p *Pattern) String() string { return p.re.String() }

// Extract searches name for the pattern and returns the captured identifier,
// or "" when the name does not match. For dual-group patterns the populated
// group wins; a match where both alternatives captured text is ambiguous and
// treated as no match.
func (p *Pattern) Extract(name string) string {
	m := p.re.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	if p.groups == 1 {
		return m[1]
	}
	switch {
	case m[1] != "" && m[2] != "":
		return ""
	case m[1] != "":
		return m[1]
	default:
		return m[2]
	}
}

// Rule holds the configured validation bounds for chart numbers.
// Max == 0 means unbounded above.
type Rule struct {
	Min uint64
	Max uint64
}

// Validate checks an extracted identifier against the leading-zero and range
// rules. It returns nil for a valid chart number and one of the Err* values
// otherwise. Pure: no I/O, same answer every call.
func (r Rule) Validate(id string) error {
	if id == "" {
		return ErrEmpty
	}
	if len(id) > 1 && strings.HasPrefix(id, "0") {
		return ErrLeadingZero
	}
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return ErrNotNumeric
	}
	if n < r.Min {
		return ErrBelowMin
	}
	if r.Max != 0 && n > r.Max {
		return ErrAboveMax
	}
	return nil
}

// IsValid reports whether id passes Validate.
func (r Rule) IsValid(id string) bool {
	return r.Validate(id) == nil
}
