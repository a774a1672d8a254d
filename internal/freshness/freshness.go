// Package freshness decides whether a directory entry belongs to the report
// date. Strategies are ordered by cost: a date substring in the name settles
// it for free, the unpartitioned-base fallback settles a whole listing at
// once, and only the leftovers pay for a filesystem metadata probe.
package freshness

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/yourusername/chart-tally/internal/datepath"
	"github.com/yourusername/chart-tally/internal/progress"
)

// Class is the outcome of the cheap, name-only classification.
type Class int

const (
	// ClassToday means the name or path carries the target date.
	ClassToday Class = iota
	// ClassUnknown means only a metadata probe can decide.
	ClassUnknown
	// ClassNotToday means the entry is excluded without a probe: no date in
	// the name and the equipment has no timestamp fallback.
	ClassNotToday
)

// Classify applies the name-substring strategy. timeFallback tells whether
// the equipment is configured to consult file timestamps for undecided names.
func Classify(name string, target datepath.Date, timeFallback bool) Class {
	if NameMatchesDate(name, target) {
		return ClassToday
	}
	if timeFallback {
		return ClassUnknown
	}
	return ClassNotToday
}

// NameMatchesDate reports whether the name (or any path fragment) contains one
// of the accepted renderings of the target date.
func NameMatchesDate(name string, target datepath.Date) bool {
	for _, r := range target.Renderings() {
		if strings.Contains(name, r) {
			return true
		}
	}
	return false
}

// Batch-probe tuning. Entries are probed in deterministic batches; when three
// consecutive batches are over 90% stale, the remainder is assumed older
// still and the probe stops early. Recent files cluster at the head because
// batches run in reverse-lexicographic name order.
const (
	staleBatchRatio = 0.9
	staleBatchLimit = 3
)

// Prober runs batched timestamp probes against one directory.
type Prober struct {
	Workers   int
	BatchSize int
	Sink      progress.Sink
}

// Result reports a probe pass. Today holds names whose timestamp date equals
// the target; Old holds names confirmed strictly older, which the caller may
// persist as known-old. Names that errored, or that are dated after the
// target, appear in neither: they are excluded from the result set but must
// be re-evaluated on future runs.
type Result struct {
	Today   []string
	Old     []string
	Checked int
	Stopped bool
}

type probeOutcome int8

const (
	outcomeSkip probeOutcome = iota
	outcomeToday
	outcomeOld
)

// Probe stats every name under dir and classifies it by calendar date. A stat
// failure on a single entry excludes that entry and never aborts the batch.
// Cancelling ctx stops new batches from being issued.
func (p *Prober) Probe(ctx context.Context, label, dir string, names []string, target datepath.Date) Result {
	workers := p.Workers
	if workers <= 0 {
		workers = 20
	}
	batchSize := p.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}
	sink := p.Sink
	if sink == nil {
		sink = progress.Nop
	}

	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Sort(sort.Reverse(sort.StringSlice(sorted)))

	var res Result
	consecutiveStale := 0

	for start := 0; start < len(sorted); start += batchSize {
		if ctx.Err() != nil {
			res.Stopped = true
			return res
		}

		end := start + batchSize
		if end > len(sorted) {
			end = len(sorted)
		}
		batch := sorted[start:end]

		outcomes := make([]probeOutcome, len(batch))
		var wg sync.WaitGroup
		indexCh := make(chan int, len(batch))
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range indexCh {
					outcomes[i] = probeOne(filepath.Join(dir, batch[i]), target)
				}
			}()
		}
		for i := range batch {
			indexCh <- i
		}
		close(indexCh)
		wg.Wait()

		oldInBatch := 0
		for i, outcome := range outcomes {
			switch outcome {
			case outcomeToday:
				res.Today = append(res.Today, batch[i])
			case outcomeOld:
				res.Old = append(res.Old, batch[i])
				oldInBatch++
			}
		}
		res.Checked += len(batch)

		if float64(oldInBatch) > float64(len(batch))*staleBatchRatio {
			consecutiveStale++
		} else {
			consecutiveStale = 0
		}
		if res.Checked%2000 == 0 || end == len(sorted) {
			progress.Debugf(sink, label, "probed %d/%d entries, %d matched", res.Checked, len(sorted), len(res.Today))
		}
		if consecutiveStale >= staleBatchLimit {
			progress.Infof(sink, label, "stopping probe early after %d entries: no recent files", res.Checked)
			res.Stopped = true
			return res
		}
	}
	return res
}

func probeOne(path string, target datepath.Date) probeOutcome {
	info, err := os.Stat(path)
	if err != nil {
		// Permission or transient I/O failure: unknown, exclude.
		return outcomeSkip
	}
	d := datepath.FromTime(info.ModTime())
	switch {
	case d == target:
		return outcomeToday
	case before(d, target):
		return outcomeOld
	default:
		return outcomeSkip
	}
}

func before(a, b datepath.Date) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	if a.Month != b.Month {
		return a.Month < b.Month
	}
	return a.Day < b.Day
}
