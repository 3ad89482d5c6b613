// Package storage persists emails and processing state in SQLite. Three
// tables back the workflow: emails holds the labeled training corpus,
// emails_raw every inbox email an update run has seen, and
// processed_applications the emails already written to the tracker sheet.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hquach/intern-tracker/internal/types"
)

// DB wraps SQLite database operations
type DB struct {
	db *sql.DB
}

// Open opens or creates a SQLite database
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable foreign keys and WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	storage := &DB{db: db}

	// Initialize schema
	if err := storage.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return storage, nil
}

// Close closes the database
func (d *DB) Close() error {
	return d.db.Close()
}

// initSchema creates tables if they don't exist
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS emails (
		id TEXT PRIMARY KEY,
		subject TEXT,
		sender TEXT,
		date TEXT,
		body TEXT,
		is_starred INTEGER NOT NULL DEFAULT 0,
		label TEXT NOT NULL,
		synthetic INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS emails_raw (
		id TEXT PRIMARY KEY,
		subject TEXT,
		sender TEXT,
		date TEXT,
		body TEXT
	);

	CREATE TABLE IF NOT EXISTS processed_applications (
		email_id TEXT PRIMARY KEY,
		company TEXT,
		position TEXT,
		date_processed TEXT,
		FOREIGN KEY (email_id) REFERENCES emails_raw (id)
	);

	CREATE INDEX IF NOT EXISTS idx_emails_label ON emails(label);
	CREATE INDEX IF NOT EXISTS idx_emails_synthetic ON emails(synthetic);
	`

	_, err := d.db.Exec(schema)
	return err
}

// InsertLabeled adds one email to the training corpus, ignoring ids that are
// already present.
func (d *DB) InsertLabeled(e types.LabeledEmail) error {
	_, err := d.db.Exec(`
	INSERT OR IGNORE INTO emails (id, subject, sender, date, body, is_starred, label, synthetic)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Subject, e.Sender, e.Date, e.Body, e.Starred, string(e.Label), e.Synthetic,
	)
	if err != nil {
		return fmt.Errorf("insert email %s: %w", e.ID, err)
	}
	return nil
}

// InsertLabeledBatch inserts labeled emails inside one transaction and
// reports how many were actually new. Harvesting the same mailbox twice
// cannot duplicate rows.
func (d *DB) InsertLabeledBatch(emails []types.LabeledEmail) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
	INSERT OR IGNORE INTO emails (id, subject, sender, date, body, is_starred, label, synthetic)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range emails {
		res, err := stmt.Exec(e.ID, e.Subject, e.Sender, e.Date, e.Body, e.Starred, string(e.Label), e.Synthetic)
		if err != nil {
			return 0, fmt.Errorf("insert email %s: %w", e.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// ListLabeled returns the whole training corpus ordered by id.
func (d *DB) ListLabeled() ([]types.LabeledEmail, error) {
	rows, err := d.db.Query(`
	SELECT id, subject, sender, date, body, is_starred, label, synthetic
	FROM emails ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []types.LabeledEmail
	for rows.Next() {
		var e types.LabeledEmail
		var label string
		if err := rows.Scan(&e.ID, &e.Subject, &e.Sender, &e.Date, &e.Body, &e.Starred, &label, &e.Synthetic); err != nil {
			return nil, err
		}
		e.Label = types.Label(label)
		emails = append(emails, e)
	}

	return emails, rows.Err()
}

// LabelCounts reports corpus size per label.
func (d *DB) LabelCounts() (map[types.Label]int, error) {
	rows, err := d.db.Query("SELECT label, COUNT(*) FROM emails GROUP BY label")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[types.Label]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[types.Label(label)] = n
	}

	return counts, rows.Err()
}

// FilterNew records the fetched batch in emails_raw and returns the emails
// this run still has to process: never seen before and not already written
// to the tracker. Checks and inserts share one transaction so a concurrent
// run cannot double-process.
func (d *DB) FilterNew(emails []types.RawEmail) ([]types.RawEmail, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	seen, err := idSet(tx, "SELECT id FROM emails_raw")
	if err != nil {
		return nil, fmt.Errorf("load seen ids: %w", err)
	}
	processed, err := idSet(tx, "SELECT email_id FROM processed_applications")
	if err != nil {
		return nil, fmt.Errorf("load processed ids: %w", err)
	}

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO emails_raw (id, subject, sender, date, body) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var fresh []types.RawEmail
	for _, e := range emails {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true // the batch itself can carry duplicates
		if _, err := stmt.Exec(e.ID, e.Subject, e.Sender, e.Date, e.Body); err != nil {
			return nil, fmt.Errorf("insert email %s: %w", e.ID, err)
		}
		if !processed[e.ID] {
			fresh = append(fresh, e)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return fresh, nil
}

func idSet(tx *sql.Tx, query string) (map[string]bool, error) {
	rows, err := tx.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		set[id] = true
	}
	return set, rows.Err()
}

// MarkProcessed records applications that reached the tracker so later runs
// skip their emails. REPLACE semantics: reprocessing an email keeps the
// latest extraction.
func (d *DB) MarkProcessed(records []types.ApplicationRecord) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO processed_applications (email_id, company, position, date_processed)
	VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Format(time.RFC3339)
	for _, r := range records {
		if r.EmailID == "" {
			continue
		}
		if _, err := stmt.Exec(r.EmailID, r.Company, r.Position, now); err != nil {
			return fmt.Errorf("mark processed %s: %w", r.EmailID, err)
		}
	}

	return tx.Commit()
}

// RawCount returns how many inbox emails have ever been recorded.
func (d *DB) RawCount() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM emails_raw").Scan(&count)
	return count, err
}

// ProcessedCount returns how many applications have reached the tracker.
func (d *DB) ProcessedCount() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM processed_applications").Scan(&count)
	return count, err
}
