// Package profile persists access-site cache statistics to SQLite so runs
// can be compared over time.
package profile

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chazu/ravel/vm"
	"github.com/tliron/commonlog"

	_ "modernc.org/sqlite"
)

var log = commonlog.GetLogger("ravel.profile")

// ErrRunNotFound indicates the requested run has no recorded rows.
var ErrRunNotFound = errors.New("run not found")

// Store is a SQLite-backed table of site statistics, one row per site per
// run.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating profile directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS site_stats (
		run      TEXT    NOT NULL,
		seq      INTEGER NOT NULL,
		kind     TEXT    NOT NULL,
		name     TEXT    NOT NULL,
		state    TEXT    NOT NULL,
		entries  INTEGER NOT NULL,
		hits     INTEGER NOT NULL,
		misses   INTEGER NOT NULL,
		recorded INTEGER NOT NULL,
		PRIMARY KEY (run, seq)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores the rows of one run, replacing any earlier rows recorded
// under the same label.
func (s *Store) Record(run string, stats []vm.SiteStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM site_stats WHERE run = ?", run); err != nil {
		return fmt.Errorf("clearing run %s: %w", run, err)
	}
	stmt, err := tx.Prepare(`INSERT INTO site_stats
		(run, seq, kind, name, state, entries, hits, misses, recorded)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for i, st := range stats {
		_, err := stmt.Exec(run, i, st.Kind, st.Name, st.State.String(),
			st.Entries, int64(st.Hits), int64(st.Misses), now)
		if err != nil {
			return fmt.Errorf("saving site %s %q: %w", st.Kind, st.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run %s: %w", run, err)
	}
	log.Infof("recorded %d sites for run %s", len(stats), run)
	return nil
}

// Load returns the rows of a run in recording order.
func (s *Store) Load(run string) ([]vm.SiteStat, error) {
	rows, err := s.db.Query(`SELECT kind, name, state, entries, hits, misses
		FROM site_stats WHERE run = ? ORDER BY seq`, run)
	if err != nil {
		return nil, fmt.Errorf("querying run %s: %w", run, err)
	}
	defer rows.Close()

	var stats []vm.SiteStat
	for rows.Next() {
		var st vm.SiteStat
		var state string
		var hits, misses int64
		if err := rows.Scan(&st.Kind, &st.Name, &state, &st.Entries, &hits, &misses); err != nil {
			return nil, fmt.Errorf("scanning run %s: %w", run, err)
		}
		st.State = parseState(state)
		st.Hits = uint64(hits)
		st.Misses = uint64(misses)
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading run %s: %w", run, err)
	}
	if len(stats) == 0 {
		return nil, ErrRunNotFound
	}
	return stats, nil
}

// Runs returns the recorded run labels, oldest first.
func (s *Store) Runs() ([]string, error) {
	rows, err := s.db.Query(`SELECT run FROM site_stats
		GROUP BY run ORDER BY MIN(recorded), run`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []string
	for rows.Next() {
		var run string
		if err := rows.Scan(&run); err != nil {
			return nil, fmt.Errorf("scanning runs: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Delete removes a run. Deleting an unknown run is not an error.
func (s *Store) Delete(run string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM site_stats WHERE run = ?", run); err != nil {
		return fmt.Errorf("deleting run %s: %w", run, err)
	}
	return nil
}

func parseState(s string) vm.CacheState {
	for _, st := range []vm.CacheState{vm.CacheEmpty, vm.CacheMonomorphic, vm.CachePolymorphic, vm.CacheMegamorphic} {
		if st.String() == s {
			return st
		}
	}
	log.Warningf("unknown cache state %q", s)
	return vm.CacheEmpty
}
