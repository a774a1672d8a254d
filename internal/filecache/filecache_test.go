package filecache

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestCachePathStable(t *testing.T) {
	s := NewStore(t.TempDir())

	first := s.CachePath(`/mnt/equipment/OCT/output`)
	second := s.CachePath(`/mnt/equipment/OCT/output`)
	if first != second {
		t.Errorf("CachePath not stable: %q vs %q", first, second)
	}

	other := s.CachePath(`/mnt/equipment/HFA/output`)
	if first == other {
		t.Error("distinct directories mapped to the same cache file")
	}
}

func TestCachePathSanitized(t *testing.T) {
	s := NewStore(t.TempDir())

	path := s.CachePath(`\\server\share\장비 출력\2025`)
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "cache_") || !strings.HasSuffix(base, ".db") {
		t.Errorf("cache filename %q missing prefix/suffix", base)
	}
	for _, r := range strings.TrimSuffix(strings.TrimPrefix(base, "cache_"), ".db") {
		valid := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '.' || r == '-' || r == '_'
		if !valid {
			t.Errorf("cache filename %q contains unsafe rune %q", base, r)
		}
	}
}

func TestNewNamesAndMergeOld(t *testing.T) {
	s := NewStore(t.TempDir())
	e := s.Open("/scans/oct")
	defer e.Close()

	candidates := []string{"a.jpg", "b.jpg", "c.jpg"}

	// Empty cache: everything is new.
	if got := e.NewNames(candidates); !reflect.DeepEqual(got, candidates) {
		t.Errorf("NewNames on empty cache = %v, expected %v", got, candidates)
	}

	if err := e.MergeOld([]string{"a.jpg", "c.jpg"}); err != nil {
		t.Fatalf("MergeOld failed: %v", err)
	}

	if got := e.NewNames(candidates); !reflect.DeepEqual(got, []string{"b.jpg"}) {
		t.Errorf("NewNames after merge = %v, expected [b.jpg]", got)
	}
	if e.Count() != 2 {
		t.Errorf("Count = %d, expected 2", e.Count())
	}

	// Merging the same names again must not grow the set.
	if err := e.MergeOld([]string{"a.jpg"}); err != nil {
		t.Fatalf("repeat MergeOld failed: %v", err)
	}
	if e.Count() != 2 {
		t.Errorf("Count after repeat merge = %d, expected 2", e.Count())
	}
}

func TestCachePersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	e := s.Open("/scans/fundus")
	if err := e.MergeOld([]string{"old1.jpg", "old2.jpg"}); err != nil {
		t.Fatalf("MergeOld failed: %v", err)
	}
	e.Close()

	reopened := s.Open("/scans/fundus")
	defer reopened.Close()
	got := reopened.NewNames([]string{"old1.jpg", "old2.jpg", "fresh.jpg"})
	if !reflect.DeepEqual(got, []string{"fresh.jpg"}) {
		t.Errorf("NewNames after reopen = %v, expected [fresh.jpg]", got)
	}
}

func TestOpenCorruptCacheRecreates(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	path := s.CachePath("/scans/topo")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("this is not a database"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := s.Open("/scans/topo")
	defer e.Close()
	if err := e.MergeOld([]string{"x.jpg"}); err != nil {
		t.Fatalf("MergeOld on recreated cache failed: %v", err)
	}
	if e.Count() != 1 {
		t.Errorf("Count = %d, expected 1 after recreation", e.Count())
	}
}

func TestUnavailableCacheDegrades(t *testing.T) {
	// A store rooted below a regular file can never create its directory.
	base := t.TempDir()
	blocker := filepath.Join(base, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(filepath.Join(blocker, "cache"))
	e := s.Open("/scans/oct")
	defer e.Close()

	candidates := []string{"a.jpg", "b.jpg"}
	if got := e.NewNames(candidates); !reflect.DeepEqual(got, candidates) {
		t.Errorf("degraded NewNames = %v, expected all candidates", got)
	}
	if err := e.MergeOld([]string{"a.jpg"}); err != nil {
		t.Errorf("degraded MergeOld returned %v, expected nil", err)
	}
	if e.Count() != 0 {
		t.Errorf("degraded Count = %d, expected 0", e.Count())
	}
}

func TestInfosAndClear(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	a := s.Open("/scans/oct")
	if err := a.MergeOld([]string{"1.jpg", "2.jpg"}); err != nil {
		t.Fatal(err)
	}
	a.Close()

	b := s.Open("/scans/hfa")
	if err := b.MergeOld([]string{"3.jpg"}); err != nil {
		t.Fatal(err)
	}
	b.Close()

	infos := s.Infos()
	if len(infos) != 2 {
		t.Fatalf("Infos returned %d entries, expected 2", len(infos))
	}
	byDir := make(map[string]Info)
	for _, info := range infos {
		byDir[info.Directory] = info
	}
	if byDir["/scans/oct"].Count != 2 || byDir["/scans/hfa"].Count != 1 {
		t.Errorf("unexpected counts: %+v", byDir)
	}
	if byDir["/scans/oct"].LastUpdated.IsZero() {
		t.Error("LastUpdated not recorded")
	}

	if err := s.Clear("/scans/oct"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if len(s.Infos()) != 1 {
		t.Error("Clear did not remove the cache file")
	}

	// Clearing a directory that was never cached is a no-op.
	if err := s.Clear("/scans/never-seen"); err != nil {
		t.Errorf("Clear of absent cache returned %v, expected nil", err)
	}

	if err := s.ClearAll(); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}
	if len(s.Infos()) != 0 {
		t.Error("ClearAll left cache files behind")
	}
}
