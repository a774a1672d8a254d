package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yourusername/chart-tally/internal/config"
	"github.com/yourusername/chart-tally/internal/datepath"
	"github.com/yourusername/chart-tally/internal/metrics"
	"github.com/yourusername/chart-tally/internal/progress"
)

func loadConfig(t *testing.T, yaml string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load failed: %v", err)
	}
	return cfg
}

func TestHandleCreate(t *testing.T) {
	dir := t.TempDir()
	cfg := loadConfig(t, fmt.Sprintf(`
validation: {chart_number_min: 1, chart_number_max: 99999}
equipment:
  - id: oct
    path: %s
    pattern: '^(\d+)_'
    extensions: [.jpg]
`, dir))

	capture := &progress.Capture{}
	w := New(cfg, capture)
	eq := cfg.EquipmentByID("oct")
	w.watched[filepath.Clean(dir)] = eq
	w.seen[eq.ID] = make(metrics.ChartSet)

	w.handleCreate(filepath.Join(dir, "12345_od.jpg"))
	w.handleCreate(filepath.Join(dir, "12345_os.jpg"))  // same patient
	w.handleCreate(filepath.Join(dir, "0123_od.jpg"))   // leading zero
	w.handleCreate(filepath.Join(dir, "notes.txt"))     // wrong extension
	w.handleCreate(filepath.Join(dir, "calibration"))   // no pattern match
	w.handleCreate("/somewhere/else/99_od.jpg")         // not a watched dir

	if len(w.seen["oct"]) != 1 || !w.seen["oct"].Contains("12345") {
		t.Errorf("seen = %v, expected exactly [12345]", w.seen["oct"].Sorted())
	}

	announced := 0
	for _, e := range capture.Events() {
		if strings.Contains(e.Message, "new patient") {
			announced++
		}
	}
	if announced != 1 {
		t.Errorf("announced %d new patients, expected 1", announced)
	}
}

func TestHandleCreateFolderTarget(t *testing.T) {
	dir := t.TempDir()
	cfg := loadConfig(t, fmt.Sprintf(`
equipment:
  - id: fundus
    path: %s
    pattern: '^(\d+)$'
    scan: folder
`, dir))

	w := New(cfg, nil)
	eq := cfg.EquipmentByID("fundus")
	w.watched[filepath.Clean(dir)] = eq
	w.seen[eq.ID] = make(metrics.ChartSet)

	w.handleCreate(filepath.Join(dir, "67890"))
	if !w.seen["fundus"].Contains("67890") {
		t.Errorf("seen = %v, expected session folder chart number", w.seen["fundus"].Sorted())
	}
}

func TestRunDetectsNewFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := loadConfig(t, fmt.Sprintf(`
equipment:
  - id: oct
    path: %s
    pattern: '^(\d+)_'
`, dir))

	capture := &progress.Capture{}
	w := New(cfg, capture)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, datepath.Today())
	}()

	// Give the watcher a moment to register before producing events.
	waitForEvent(t, capture, "watching", time.Second)

	if err := os.WriteFile(filepath.Join(dir, "777_od.jpg"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	waitForEvent(t, capture, "new patient 777", 3*time.Second)

	cancel()
	if err := <-done; err != context.Canceled && err != context.DeadlineExceeded {
		t.Errorf("Run returned %v, expected context cancellation", err)
	}
}

func TestRunNoWatchableDirectories(t *testing.T) {
	cfg := loadConfig(t, `
equipment:
  - id: oct
    path: /nonexistent/equipment/share
    pattern: '^(\d+)_'
`)

	w := New(cfg, nil)
	err := w.Run(context.Background(), datepath.Today())
	if err == nil || !strings.Contains(err.Error(), "no watchable") {
		t.Errorf("Run = %v, expected no-watchable error", err)
	}
}

func waitForEvent(t *testing.T, capture *progress.Capture, substr string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, e := range capture.Events() {
			if strings.Contains(e.Message, substr) {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no event containing %q within %v", substr, timeout)
}
