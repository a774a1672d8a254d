// Package filecache persists, per scanned directory, the set of filenames
// already confirmed to be older than any report date. Subsequent scans probe
// only the set difference, which on a hundred-thousand-file network share cuts
// metadata I/O to the handful of files added since the last run.
//
// The cache is an optimization, never a source of truth: a missing, corrupt,
// or unwritable cache file degrades to a full probe, and concurrent writers
// settle on last-writer-wins.
package filecache

import (
	"crypto/sha256"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS known_files (
    name TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS cache_meta (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    directory TEXT NOT NULL,
    last_updated INTEGER NOT NULL
);
`

// Store manages the cache files under one cache directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created lazily on
// first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// CachePath derives the cache filename for a scanned directory: a sanitized
// path suffix for human inspection plus a truncated SHA-256 of the cleaned
// path for collision resistance. Stable across runs.
func (s *Store) CachePath(directory string) string {
	key := normalizeDir(directory)
	sum := sha256.Sum256([]byte(key))
	clean := sanitize(key)
	if len(clean) > 40 {
		clean = clean[len(clean)-40:]
	}
	return filepath.Join(s.dir, fmt.Sprintf("cache_%s_%x.db", clean, sum[:6]))
}

func normalizeDir(directory string) string {
	return filepath.ToSlash(filepath.Clean(directory))
}

// sanitize strips characters that are unsafe in a filename (network paths
// carry separators, colons, spaces).
func sanitize(p string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, p)
}

// Entry is the open cache for one scanned directory. A nil db means the cache
// is unavailable; every method then degrades to uncached behavior.
type Entry struct {
	db        *sql.DB
	directory string
	writeMu   sync.Mutex
}

// Open loads (or creates) the cache for a directory. Open never fails hard:
// corruption is handled by recreating the file, and if even that fails the
// returned entry simply behaves as an empty, non-persisting cache.
func (s *Store) Open(directory string) *Entry {
	entry := &Entry{directory: directory}

	path := s.CachePath(directory)
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		log.Warn().Err(err).Str("dir", s.dir).Msg("Cache directory unavailable, scanning uncached")
		return entry
	}

	db, err := openCacheDB(path)
	if err != nil {
		// Corrupt or unreadable cache file: drop it and start over.
		log.Warn().Err(err).Str("cache", path).Msg("Cache unreadable, recreating")
		_ = os.Remove(path)
		db, err = openCacheDB(path)
		if err != nil {
			log.Warn().Err(err).Str("cache", path).Msg("Cache unusable, scanning uncached")
			return entry
		}
	}
	entry.db = db
	return entry
}

func openCacheDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=10000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure cache: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return db, nil
}

// Close releases the underlying database.
func (e *Entry) Close() {
	if e.db != nil {
		_ = e.db.Close()
	}
}

// NewNames returns the candidates not yet recorded as known-old, i.e. the
// only names a metadata probe still has to touch. On any cache error the full
// candidate list is returned so the scan stays correct, just slower.
func (e *Entry) NewNames(candidates []string) []string {
	if e.db == nil || len(candidates) == 0 {
		return candidates
	}
	known, err := e.knownNames()
	if err != nil {
		log.Warn().Err(err).Str("directory", e.directory).Msg("Cache read failed, probing all candidates")
		return candidates
	}
	out := make([]string, 0, len(candidates))
	for _, name := range candidates {
		if _, ok := known[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

func (e *Entry) knownNames() (map[string]struct{}, error) {
	rows, err := e.db.Query("SELECT name FROM known_files")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	known := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		known[name] = struct{}{}
	}
	return known, rows.Err()
}

// MergeOld records names confirmed older than the report date. The known set
// only ever grows; names matched as today are deliberately not merged so the
// next run re-evaluates them.
func (e *Entry) MergeOld(names []string) error {
	if e.db == nil || len(names) == 0 {
		return nil
	}
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	tx, err := e.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start cache write: %w", err)
	}
	stmt, err := tx.Prepare("INSERT OR IGNORE INTO known_files (name) VALUES (?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare cache write: %w", err)
	}
	for _, name := range names {
		if _, err := stmt.Exec(name); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("failed to record %q: %w", name, err)
		}
	}
	stmt.Close()

	_, err = tx.Exec(`
		INSERT INTO cache_meta (id, directory, last_updated) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET directory = excluded.directory, last_updated = excluded.last_updated
	`, e.directory, time.Now().Unix())
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update cache metadata: %w", err)
	}
	return tx.Commit()
}

// Count returns how many filenames the cache currently knows.
func (e *Entry) Count() int {
	if e.db == nil {
		return 0
	}
	var n int
	if err := e.db.QueryRow("SELECT COUNT(*) FROM known_files").Scan(&n); err != nil {
		return 0
	}
	return n
}

// Info describes one cache file for the cache inspection command.
type Info struct {
	File        string
	Directory   string
	Count       int
	LastUpdated time.Time
}

// Infos lists every cache file in the store.
func (s *Store) Infos() []Info {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	var infos []Info
	for _, de := range entries {
		name := de.Name()
		if de.IsDir() || !strings.HasPrefix(name, "cache_") || !strings.HasSuffix(name, ".db") {
			continue
		}
		info := Info{File: name}
		db, err := sql.Open("sqlite", filepath.Join(s.dir, name))
		if err != nil {
			infos = append(infos, info)
			continue
		}
		_ = db.QueryRow("SELECT COUNT(*) FROM known_files").Scan(&info.Count)
		var updated int64
		if err := db.QueryRow("SELECT directory, last_updated FROM cache_meta WHERE id = 1").Scan(&info.Directory, &updated); err == nil {
			info.LastUpdated = time.Unix(updated, 0)
		}
		db.Close()
		infos = append(infos, info)
	}
	return infos
}

// Clear removes the cache for one directory.
func (s *Store) Clear(directory string) error {
	path := s.CachePath(directory)
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	// WAL sidecars are harmless leftovers but tidy them up too.
	_ = os.Remove(path + "-wal")
	_ = os.Remove(path + "-shm")
	return err
}

// ClearAll removes every cache file in the store.
func (s *Store) ClearAll() error {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, de := range entries {
		if strings.HasPrefix(de.Name(), "cache_") {
			if err := os.Remove(filepath.Join(s.dir, de.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}
