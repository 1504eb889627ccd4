// Package feedback persists the engine's write-only telemetry: pattern
// hit counters, user false-positive reports, and invalid schedule
// rules. Nothing here is ever consulted by a blocking decision; writes
// are batched behind a channel so a slow database cannot stall a match.
package feedback

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ormund/safescreen/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS pattern_hits (
	entry_id    INTEGER PRIMARY KEY,
	pattern     TEXT NOT NULL,
	category    TEXT NOT NULL,
	hits        INTEGER NOT NULL DEFAULT 0,
	last_hit_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS false_positives (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	identifier  TEXT NOT NULL,
	pattern     TEXT,
	category    TEXT,
	note        TEXT,
	reported_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS invalid_rules (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	rule_id     INTEGER NOT NULL,
	reason      TEXT NOT NULL,
	reported_at TIMESTAMP NOT NULL
);
`

// FalsePositive is one user report that a match was wrong.
type FalsePositive struct {
	ID         int64
	Identifier string
	Pattern    string
	Category   model.Category
	Note       string
	ReportedAt time.Time
}

// Store is the sqlite-backed feedback database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the feedback database at path. ":memory:"
// works for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("feedback: open %s: %w", path, err)
	}
	// Writes come from a single recorder goroutine.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("feedback: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// IncrementHit bumps the block counter for a winning entry.
func (s *Store) IncrementHit(entryID int64, pattern string, category model.Category) error {
	_, err := s.db.Exec(`
		INSERT INTO pattern_hits (entry_id, pattern, category, hits, last_hit_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(entry_id) DO UPDATE SET
			hits = hits + 1,
			last_hit_at = excluded.last_hit_at`,
		entryID, pattern, string(category), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("feedback: increment hit %d: %w", entryID, err)
	}
	return nil
}

// HitCount returns the recorded hit count for an entry, zero if none.
func (s *Store) HitCount(entryID int64) (int64, error) {
	var n int64
	err := s.db.QueryRow(`SELECT hits FROM pattern_hits WHERE entry_id = ?`, entryID).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("feedback: hit count %d: %w", entryID, err)
	}
	return n, nil
}

// AddFalsePositive files a user report against a matched pattern.
func (s *Store) AddFalsePositive(fp FalsePositive) error {
	when := fp.ReportedAt
	if when.IsZero() {
		when = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO false_positives (identifier, pattern, category, note, reported_at)
		VALUES (?, ?, ?, ?, ?)`,
		fp.Identifier, fp.Pattern, string(fp.Category), fp.Note, when)
	if err != nil {
		return fmt.Errorf("feedback: add false positive: %w", err)
	}
	return nil
}

// FalsePositives returns all filed reports, newest first.
func (s *Store) FalsePositives() ([]FalsePositive, error) {
	rows, err := s.db.Query(`
		SELECT id, identifier, pattern, category, note, reported_at
		FROM false_positives ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("feedback: list false positives: %w", err)
	}
	defer rows.Close()

	var out []FalsePositive
	for rows.Next() {
		var fp FalsePositive
		var cat string
		if err := rows.Scan(&fp.ID, &fp.Identifier, &fp.Pattern, &cat, &fp.Note, &fp.ReportedAt); err != nil {
			return nil, fmt.Errorf("feedback: scan false positive: %w", err)
		}
		fp.Category = model.Category(cat)
		out = append(out, fp)
	}
	return out, rows.Err()
}

// AddInvalidRule records a schedule rule that failed validation.
func (s *Store) AddInvalidRule(ruleID int64, reason string) error {
	_, err := s.db.Exec(`
		INSERT INTO invalid_rules (rule_id, reason, reported_at) VALUES (?, ?, ?)`,
		ruleID, reason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("feedback: add invalid rule %d: %w", ruleID, err)
	}
	return nil
}

// InvalidRuleCount returns how many invalid-rule reports are on file.
func (s *Store) InvalidRuleCount() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM invalid_rules`).Scan(&n); err != nil {
		return 0, fmt.Errorf("feedback: count invalid rules: %w", err)
	}
	return n, nil
}
