// Package report assembles the final count mapping handed to the report
// writer: per-equipment tallies, composite metrics, and the underlying
// identifier sets (the writer may combine a scanned count with a manual
// adjustment before the numbers land in the template).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/yourusername/chart-tally/internal/config"
	"github.com/yourusername/chart-tally/internal/metrics"
	"github.com/yourusername/chart-tally/internal/scanner"
)

// CategoryCount carries a union category's deduplicated total and the
// cross-source overlap, kept for diagnostics.
type CategoryCount struct {
	Count   int `json:"count"`
	Overlap int `json:"overlap"`
}

// Summary is the complete output of one run.
type Summary struct {
	Date       string                   `json:"date"`
	Counts     map[string]int           `json:"counts"`
	Composites map[string]int           `json:"composites"`
	Categories map[string]CategoryCount `json:"categories"`
	Sets       map[string][]string      `json:"sets"`
	Errors     []string                 `json:"errors,omitempty"`
	DurationMS int64                    `json:"duration_ms"`
}

// Build derives the summary from a scan result. Pure set algebra; no
// filesystem access happens here.
func Build(cfg *config.Config, res *scanner.Result) *Summary {
	s := &Summary{
		Date:       res.Date.String(),
		Counts:     make(map[string]int, len(res.Sets)),
		Composites: make(map[string]int, len(cfg.Composites)),
		Categories: make(map[string]CategoryCount, len(res.CategorySets)),
		Sets:       make(map[string][]string),
		Errors:     res.Errors,
		DurationMS: res.Duration.Milliseconds(),
	}
	for id, set := range res.Sets {
		s.Counts[id] = len(set)
		s.Sets[id] = set.Sorted()
	}
	for _, comp := range cfg.Composites {
		a := res.Sets[comp.Intersect[0]]
		b := res.Sets[comp.Intersect[1]]
		inter := metrics.Intersection(a, b)
		s.Composites[comp.Name] = len(inter)
		s.Sets[comp.Name] = inter.Sorted()
	}
	for name, set := range res.CategorySets {
		s.Categories[name] = CategoryCount{Count: len(set), Overlap: res.CategoryOverlap[name]}
		s.Sets[name] = set.Sorted()
	}
	return s
}

// WriteJSON writes the summary to path, replacing any previous file.
func (s *Summary) WriteJSON(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// Render prints a human-readable table of all counts.
func (s *Summary) Render(w io.Writer) {
	fmt.Fprintf(w, "Daily tally for %s\n\n", s.Date)
	writeSection(w, "Equipment", s.Counts)
	if len(s.Composites) > 0 {
		writeSection(w, "Composites", s.Composites)
	}
	if len(s.Categories) > 0 {
		fmt.Fprintf(w, "%s\n", "Categories")
		for _, name := range sortedKeys(s.Categories) {
			c := s.Categories[name]
			fmt.Fprintf(w, "  %-16s %5d (overlap %d)\n", name, c.Count, c.Overlap)
		}
		fmt.Fprintln(w)
	}
	if len(s.Errors) > 0 {
		fmt.Fprintf(w, "Warnings (%d)\n", len(s.Errors))
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
}

func writeSection(w io.Writer, title string, counts map[string]int) {
	fmt.Fprintf(w, "%s\n", title)
	for _, name := range sortedKeys(counts) {
		fmt.Fprintf(w, "  %-16s %5d\n", name, counts[name])
	}
	fmt.Fprintln(w)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
