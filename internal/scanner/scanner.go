// Package scanner orchestrates the per-equipment daily scan: resolve the
// dated directory, filter for freshness, extract and validate chart numbers,
// and collect the deduplicated set for each equipment and category.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yourusername/chart-tally/internal/chart"
	"github.com/yourusername/chart-tally/internal/config"
	"github.com/yourusername/chart-tally/internal/datepath"
	"github.com/yourusername/chart-tally/internal/filecache"
	"github.com/yourusername/chart-tally/internal/freshness"
	"github.com/yourusername/chart-tally/internal/metrics"
	"github.com/yourusername/chart-tally/internal/progress"
)

// Scanner runs daily scans against the configured equipment. One piece of
// equipment failing never aborts the others; the worst outcome for any
// profile is an empty set and a logged event.
type Scanner struct {
	cfg   *config.Config
	rule  chart.Rule
	cache *filecache.Store
	sink  progress.Sink

	entries atomic.Int64
	probes  atomic.Int64

	errorsMu sync.Mutex
	errors   []string
}

// New builds a scanner. sink may be nil for silent operation; the cache store
// is omitted when disabled in configuration.
func New(cfg *config.Config, sink progress.Sink) *Scanner {
	if sink == nil {
		sink = progress.Nop
	}
	s := &Scanner{cfg: cfg, rule: cfg.Rule(), sink: sink}
	if !cfg.Cache.Disabled {
		s.cache = filecache.NewStore(cfg.Cache.Dir)
	}
	return s
}

// Result maps equipment ids and category names to their identifier sets for
// one run, plus run-level bookkeeping for the summary.
type Result struct {
	Date            datepath.Date
	Sets            map[string]metrics.ChartSet
	CategorySets    map[string]metrics.ChartSet
	CategoryOverlap map[string]int
	EntriesScanned  int
	ProbesIssued    int
	Errors          []string
	Duration        time.Duration
}

// ScanAll scans every equipment profile and category on a bounded worker
// pool. Completion order is irrelevant; results are keyed by id.
func (s *Scanner) ScanAll(ctx context.Context, target datepath.Date) *Result {
	start := time.Now()
	res := &Result{
		Date:            target,
		Sets:            make(map[string]metrics.ChartSet, len(s.cfg.Equipment)),
		CategorySets:    make(map[string]metrics.ChartSet, len(s.cfg.Categories)),
		CategoryOverlap: make(map[string]int, len(s.cfg.Categories)),
	}

	workers := s.cfg.Scan.Workers
	if workers <= 0 {
		workers = 6
	}

	type job func()
	jobCh := make(chan job)
	var wg sync.WaitGroup
	var resMu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				j()
			}
		}()
	}

	for i := range s.cfg.Equipment {
		eq := &s.cfg.Equipment[i]
		jobCh <- func() {
			set := s.ScanEquipment(ctx, eq, target)
			resMu.Lock()
			res.Sets[eq.ID] = set
			resMu.Unlock()
			progress.Infof(s.sink, eq.ID, "%d patients", len(set))
		}
	}
	for i := range s.cfg.Categories {
		cat := &s.cfg.Categories[i]
		jobCh <- func() {
			union, overlap := s.ScanCategory(ctx, cat, target)
			resMu.Lock()
			res.CategorySets[cat.Name] = union
			res.CategoryOverlap[cat.Name] = overlap
			resMu.Unlock()
			progress.Infof(s.sink, cat.Name, "%d patients (overlap %d)", len(union), overlap)
		}
	}
	close(jobCh)
	wg.Wait()

	res.EntriesScanned = int(s.entries.Load())
	res.ProbesIssued = int(s.probes.Load())
	s.errorsMu.Lock()
	res.Errors = append(res.Errors, s.errors...)
	s.errorsMu.Unlock()
	res.Duration = time.Since(start)
	return res
}

// ScanCategory scans each source location of a union category independently
// and merges the sets. The overlap count is diagnostic only.
func (s *Scanner) ScanCategory(ctx context.Context, cat *config.Category, target datepath.Date) (metrics.ChartSet, int) {
	sets := make([]metrics.ChartSet, 0, len(cat.Sources))
	for i := range cat.Sources {
		sets = append(sets, s.ScanEquipment(ctx, &cat.Sources[i], target))
	}
	union := metrics.Union(sets...)
	overlap := 0
	if len(sets) == 2 {
		overlap = metrics.Overlap(sets[0], sets[1])
	}
	return union, overlap
}

// ScanEquipment runs the full scan state machine for one profile and returns
// its validated chart-number set. Never returns an error: failures degrade to
// an empty or partial set.
func (s *Scanner) ScanEquipment(ctx context.Context, eq *config.Equipment, target datepath.Date) metrics.ChartSet {
	set := make(metrics.ChartSet)

	if info, err := os.Stat(eq.Path); err != nil || !info.IsDir() {
		s.addError(eq.ID, fmt.Sprintf("path unreachable: %s", eq.Path))
		return set
	}
	if ctx.Err() != nil {
		return set
	}

	dated, ok := datepath.Resolve(eq.Path, eq.DateFolder, target)
	switch {
	case eq.DateFolder != "" && ok:
		// Everything under the dated subtree belongs to the target date.
		progress.Debugf(s.sink, eq.ID, "scanning dated folder %s", dated)
		s.walkDated(ctx, eq, dated, set)
	case eq.DateFolder != "" && !ok:
		// Not yet archived: the nightly sweep has not run, so whatever sits
		// at the base level accumulated since the last sweep and counts as
		// today's output.
		progress.Debugf(s.sink, eq.ID, "dated folder missing, scanning base %s", eq.Path)
		s.scanUnpartitioned(ctx, eq, set)
	default:
		// Flat equipment: decide per entry by name date, then by timestamp.
		progress.Debugf(s.sink, eq.ID, "scanning flat folder %s", eq.Path)
		s.scanFlat(ctx, eq, target, set)
	}
	return set
}

// walkDated recursively walks a dated subtree. The extension filter runs
// before the pattern, and folder names skip it entirely: for some equipment
// the session folder itself is named with the chart number.
func (s *Scanner) walkDated(ctx context.Context, eq *config.Equipment, root string, set metrics.ChartSet) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Skip unreadable entries, keep walking.
			return nil
		}
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		if path == root {
			return nil
		}
		s.entries.Add(1)
		if d.IsDir() {
			if eq.Scan == config.ScanFolders || eq.Scan == config.ScanBoth {
				s.extract(eq, d.Name(), set)
			}
			return nil
		}
		if eq.Scan == config.ScanFiles || eq.Scan == config.ScanBoth {
			if eq.ExtensionValid(d.Name()) {
				s.extract(eq, d.Name(), set)
			}
		}
		return nil
	})
	if err != nil {
		s.addError(eq.ID, fmt.Sprintf("walk failed: %v", err))
	}
}

// scanUnpartitioned lists the base directory flat and treats every entry as
// belonging to the target date.
func (s *Scanner) scanUnpartitioned(ctx context.Context, eq *config.Equipment, set metrics.ChartSet) {
	entries, err := os.ReadDir(eq.Path)
	if err != nil {
		s.addError(eq.ID, fmt.Sprintf("listing failed: %v", err))
		return
	}
	for _, de := range entries {
		if ctx.Err() != nil {
			return
		}
		s.entries.Add(1)
		if !s.wantEntry(eq, de) {
			continue
		}
		s.extract(eq, de.Name(), set)
	}
}

// scanFlat lists a flat directory and applies the freshness strategies per
// entry: name date match first, timestamp probe (cached, batched) for the
// rest when the equipment allows it.
func (s *Scanner) scanFlat(ctx context.Context, eq *config.Equipment, target datepath.Date, set metrics.ChartSet) {
	entries, err := os.ReadDir(eq.Path)
	if err != nil {
		s.addError(eq.ID, fmt.Sprintf("listing failed: %v", err))
		return
	}

	var needProbe []string
	matched := 0
	for _, de := range entries {
		if ctx.Err() != nil {
			return
		}
		s.entries.Add(1)
		if !s.wantEntry(eq, de) {
			continue
		}
		switch freshness.Classify(de.Name(), target, eq.UseCreationTime) {
		case freshness.ClassToday:
			matched++
			s.extract(eq, de.Name(), set)
		case freshness.ClassUnknown:
			needProbe = append(needProbe, de.Name())
		}
	}
	progress.Debugf(s.sink, eq.ID, "%d entries, %d matched by name, %d need probing",
		len(entries), matched, len(needProbe))

	if len(needProbe) == 0 || ctx.Err() != nil {
		return
	}

	var cacheEntry *filecache.Entry
	if s.cache != nil {
		cacheEntry = s.cache.Open(eq.Path)
		defer cacheEntry.Close()
		before := len(needProbe)
		needProbe = cacheEntry.NewNames(needProbe)
		progress.Debugf(s.sink, eq.ID, "cache skipped %d known-old entries", before-len(needProbe))
	}
	if len(needProbe) == 0 {
		return
	}

	prober := &freshness.Prober{
		Workers:   s.cfg.Scan.ProbeWorkers,
		BatchSize: s.cfg.Scan.ProbeBatchSize,
		Sink:      s.sink,
	}
	probeRes := prober.Probe(ctx, eq.ID, eq.Path, needProbe, target)
	s.probes.Add(int64(probeRes.Checked))
	for _, name := range probeRes.Today {
		s.extract(eq, name, set)
	}
	if cacheEntry != nil {
		if err := cacheEntry.MergeOld(probeRes.Old); err != nil {
			progress.Warnf(s.sink, eq.ID, "cache update failed: %v", err)
		}
	}
}

// wantEntry applies the cheap pre-pattern filters: scan-target kind and, for
// files, the extension allowlist.
func (s *Scanner) wantEntry(eq *config.Equipment, de fs.DirEntry) bool {
	if de.IsDir() {
		return eq.Scan == config.ScanFolders || eq.Scan == config.ScanBoth
	}
	if eq.Scan == config.ScanFolders {
		return false
	}
	return eq.ExtensionValid(de.Name())
}

// extract applies the profile pattern and validation rule to one name and
// adds the chart number to the set. Mismatch and validation failure are
// logged distinctly to aid pattern tuning.
func (s *Scanner) extract(eq *config.Equipment, name string, set metrics.ChartSet) {
	id := eq.CompiledPattern().Extract(name)
	if id == "" {
		progress.Debugf(s.sink, eq.ID, "no pattern match: %s", name)
		return
	}
	if err := s.rule.Validate(id); err != nil {
		progress.Debugf(s.sink, eq.ID, "rejected %q from %s: %v", id, name, err)
		return
	}
	set.Add(id)
}

func (s *Scanner) addError(equipment, msg string) {
	s.errorsMu.Lock()
	s.errors = append(s.errors, fmt.Sprintf("%s: %s", equipment, msg))
	s.errorsMu.Unlock()
	progress.Warnf(s.sink, equipment, "%s", msg)
}
