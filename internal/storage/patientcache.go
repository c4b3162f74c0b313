// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/raddesk/raddesk-tui/internal/model"
)

// =============================================================================
// PATIENT CACHE
// =============================================================================

// ErrCacheEmpty indicates the cache has never been filled.
var ErrCacheEmpty = errors.New("patient cache is empty")

const patientSchema = `
CREATE TABLE IF NOT EXISTS patients (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    age         INTEGER NOT NULL DEFAULT 0,
    diagnosis   TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL DEFAULT '',
    assigned_to TEXT NOT NULL DEFAULT '',
    last_visit  TEXT NOT NULL DEFAULT '',
    phone       TEXT,
    position    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS cache_meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// PatientCache mirrors the backend roster into SQLite so the patients
// view degrades to the last known roster when the gateway is down.
type PatientCache struct {
	db *sql.DB
}

// OpenPatientCache opens (or creates) the cache database at path.
func OpenPatientCache(path string) (*PatientCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open patient cache: %w", err)
	}

	// One writer at a time is all SQLite supports.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := db.Exec(patientSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}

	return &PatientCache{db: db}, nil
}

// Close releases the database handle.
func (c *PatientCache) Close() error {
	return c.db.Close()
}

// ReplaceAll swaps the cached roster for a fresh one atomically.
// Roster order is preserved.
func (c *PatientCache) ReplaceAll(ctx context.Context, patients []model.Patient) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM patients"); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO patients (id, name, age, diagnosis, status, assigned_to, last_visit, phone, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range patients {
		var phone sql.NullString
		if p.Phone != nil {
			phone = sql.NullString{String: *p.Phone, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, p.ID, p.Name, p.Age, p.Diagnosis, p.Status, p.AssignedTo, p.LastVisit, phone, i); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO cache_meta (key, value) VALUES ('refreshed_at', ?)",
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	return tx.Commit()
}

// All returns the cached roster in its original order. An unfilled
// cache yields ErrCacheEmpty so callers can distinguish "backend down,
// nothing to show" from an empty roster.
func (c *PatientCache) All(ctx context.Context) ([]model.Patient, error) {
	if _, err := c.RefreshedAt(ctx); err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, age, diagnosis, status, assigned_to, last_visit, phone
		FROM patients ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []model.Patient
	for rows.Next() {
		var p model.Patient
		var phone sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Age, &p.Diagnosis, &p.Status, &p.AssignedTo, &p.LastVisit, &phone); err != nil {
			return nil, err
		}
		if phone.Valid {
			v := phone.String
			p.Phone = &v
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

// RefreshedAt reports when the cache was last filled.
func (c *PatientCache) RefreshedAt(ctx context.Context) (time.Time, error) {
	var raw string
	err := c.db.QueryRowContext(ctx,
		"SELECT value FROM cache_meta WHERE key = 'refreshed_at'").Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrCacheEmpty
	}
	if err != nil {
		return time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt cache timestamp: %w", err)
	}
	return ts, nil
}
