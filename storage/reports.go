// Package storage persists report payloads locally: the single handoff
// slot the viewing surface reads on startup, and a small cache of recently
// viewed reports.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"lawtui/report"
)

// ErrNoReport is returned when the handoff slot is empty or its payload
// cannot be decoded. The viewing surface renders its "report not found"
// state on this error instead of crashing.
var ErrNoReport = errors.New("no report available")

// ReportStore owns the handoff slot and the recently-viewed cache. The slot
// is a single row, overwritten on every handoff - only the most recently
// opened report occupies it.
type ReportStore struct {
	db *sql.DB
}

// NewReportStore opens (creating if needed) the report database under
// dataDir.
func NewReportStore(dataDir string) (*ReportStore, error) {
	dbPath := filepath.Join(dataDir, "reports.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &ReportStore{db: db}
	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (s *ReportStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS handoff (
		slot INTEGER PRIMARY KEY CHECK (slot = 0),
		payload TEXT NOT NULL,
		written_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS recent_reports (
		report_id TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		viewed_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_recent_reports_viewed ON recent_reports(viewed_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// WriteHandoff overwrites the handoff slot with the payload and records it
// in the recently-viewed cache.
func (s *ReportStore) WriteHandoff(p *report.Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	now := time.Now()
	_, err = s.db.Exec(
		`INSERT INTO handoff (slot, payload, written_at) VALUES (0, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET payload = excluded.payload, written_at = excluded.written_at`,
		string(data), now,
	)
	if err != nil {
		return fmt.Errorf("failed to write handoff slot: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO recent_reports (report_id, payload, viewed_at) VALUES (?, ?, ?)
		 ON CONFLICT(report_id) DO UPDATE SET payload = excluded.payload, viewed_at = excluded.viewed_at`,
		p.ReportID, string(data), now,
	)
	if err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}

	return nil
}

// ReadHandoff returns the payload currently occupying the handoff slot.
// An empty or undecodable slot yields ErrNoReport.
func (s *ReportStore) ReadHandoff() (*report.Payload, error) {
	var data string
	err := s.db.QueryRow(`SELECT payload FROM handoff WHERE slot = 0`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoReport
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read handoff slot: %w", err)
	}

	var p report.Payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("%w: malformed payload", ErrNoReport)
	}
	return &p, nil
}

// Recent returns up to limit recently viewed reports, newest first.
func (s *ReportStore) Recent(limit int) ([]*report.Payload, error) {
	rows, err := s.db.Query(
		`SELECT payload FROM recent_reports ORDER BY viewed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent reports: %w", err)
	}
	defer rows.Close()

	var payloads []*report.Payload
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		var p report.Payload
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			continue // skip corrupted rows
		}
		payloads = append(payloads, &p)
	}
	return payloads, rows.Err()
}

// Close releases the underlying database handle.
func (s *ReportStore) Close() error {
	return s.db.Close()
}
