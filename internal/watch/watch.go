// Package watch monitors equipment output directories live and reports chart
// numbers as new files appear, so the operator can see the tally build up
// during the day instead of waiting for the evening scan.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/yourusername/chart-tally/internal/chart"
	"github.com/yourusername/chart-tally/internal/config"
	"github.com/yourusername/chart-tally/internal/datepath"
	"github.com/yourusername/chart-tally/internal/metrics"
	"github.com/yourusername/chart-tally/internal/progress"
)

// Watcher follows the configured equipment directories.
type Watcher struct {
	cfg  *config.Config
	rule chart.Rule
	sink progress.Sink

	// dir → equipment profile, for routing events back to their owner.
	watched map[string]*config.Equipment
	seen    map[string]metrics.ChartSet
}

// New builds a watcher over all equipment profiles.
func New(cfg *config.Config, sink progress.Sink) *Watcher {
	if sink == nil {
		sink = progress.Nop
	}
	return &Watcher{
		cfg:     cfg,
		rule:    cfg.Rule(),
		sink:    sink,
		watched: make(map[string]*config.Equipment),
		seen:    make(map[string]metrics.ChartSet),
	}
}

// Run watches until ctx is cancelled. For each equipment the live directory
// is today's dated folder when it exists, the base otherwise. Directories
// that cannot be watched are skipped with a warning; Run fails only when no
// directory at all could be watched.
func (w *Watcher) Run(ctx context.Context, target datepath.Date) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	for i := range w.cfg.Equipment {
		eq := &w.cfg.Equipment[i]
		dir, ok := datepath.Resolve(eq.Path, eq.DateFolder, target)
		if !ok {
			dir = eq.Path
		}
		if err := fw.Add(dir); err != nil {
			progress.Warnf(w.sink, eq.ID, "cannot watch %s: %v", dir, err)
			continue
		}
		w.watched[filepath.Clean(dir)] = eq
		w.seen[eq.ID] = make(metrics.ChartSet)
		progress.Infof(w.sink, eq.ID, "watching %s", dir)
	}
	if len(w.watched) == 0 {
		return fmt.Errorf("no watchable equipment directories")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				w.handleCreate(ev.Name)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			progress.Warnf(w.sink, "", "watch error: %v", err)
		}
	}
}

func (w *Watcher) handleCreate(path string) {
	eq := w.owner(path)
	if eq == nil {
		return
	}
	name := filepath.Base(path)
	if eq.Scan != config.ScanFolders && !eq.ExtensionValid(name) {
		// Folder creations arrive without extensions; only reject files.
		if strings.Contains(name, ".") {
			return
		}
	}
	id := eq.CompiledPattern().Extract(name)
	if id == "" || w.rule.Validate(id) != nil {
		return
	}
	set := w.seen[eq.ID]
	if set.Contains(id) {
		return
	}
	set.Add(id)
	progress.Infof(w.sink, eq.ID, "new patient %s (%d today)", id, len(set))
}

// owner routes an event path to the equipment whose watched directory
// contains it.
func (w *Watcher) owner(path string) *config.Equipment {
	dir := filepath.Clean(filepath.Dir(path))
	return w.watched[dir]
}
