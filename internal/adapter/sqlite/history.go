// Package sqlite keeps a history of runway decisions in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/runway-selector/internal/domain"
)

// timeLayout has a fixed-width fraction so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// History stores decisions and serves the most recent ones per airport.
// It implements pipeline.Loader.
type History struct {
	db *sql.DB
}

// Open opens or creates a history database at path.
func Open(path string) (*History, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &History{db: db}, nil
}

func createSchema(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS selections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		icao TEXT NOT NULL,
		decided_at TEXT NOT NULL,
		reason TEXT NOT NULL,
		mode TEXT NOT NULL DEFAULT '',
		orientation TEXT NOT NULL DEFAULT '',
		active TEXT NOT NULL,
		departures TEXT NOT NULL,
		arrivals TEXT NOT NULL,
		components TEXT,
		metar TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_selections_icao_time ON selections(icao, decided_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Name identifies the sink in logs and errors.
func (h *History) Name() string { return "sqlite" }

// Close closes the database connection.
func (h *History) Close() error {
	return h.db.Close()
}

// LoadBatch inserts all decisions in one transaction.
func (h *History) LoadBatch(ctx context.Context, decisions []domain.Decision) error {
	if len(decisions) == 0 {
		return nil
	}
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO selections (icao, decided_at, reason, mode, orientation, active, departures, arrivals, components, metar)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range decisions {
		row, err := toRow(d)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("insert %s: %w", d.ICAO, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Recent returns up to limit decisions for icao, newest first.
func (h *History) Recent(ctx context.Context, icao string, limit int) ([]domain.Decision, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT icao, decided_at, reason, mode, orientation, active, departures, arrivals, components, metar
		FROM selections
		WHERE icao = ?
		ORDER BY decided_at DESC, id DESC
		LIMIT ?`, icao, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []domain.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func toRow(d domain.Decision) ([]any, error) {
	active, err := json.Marshal(d.Active)
	if err != nil {
		return nil, fmt.Errorf("encode active: %w", err)
	}
	deps, err := json.Marshal(d.Departures)
	if err != nil {
		return nil, fmt.Errorf("encode departures: %w", err)
	}
	arrs, err := json.Marshal(d.Arrivals)
	if err != nil {
		return nil, fmt.Errorf("encode arrivals: %w", err)
	}
	var components sql.NullString
	if d.Components != nil {
		b, err := json.Marshal(d.Components)
		if err != nil {
			return nil, fmt.Errorf("encode components: %w", err)
		}
		components = sql.NullString{String: string(b), Valid: true}
	}
	return []any{
		d.ICAO,
		d.DecidedAt.UTC().Format(timeLayout),
		string(d.Reason),
		string(d.Mode),
		d.Orientation,
		string(active),
		string(deps),
		string(arrs),
		components,
		d.METAR,
	}, nil
}

func scanDecision(rows *sql.Rows) (domain.Decision, error) {
	var (
		d                       domain.Decision
		decidedAt, reason, mode string
		active, deps, arrs      string
		components              sql.NullString
	)
	if err := rows.Scan(&d.ICAO, &decidedAt, &reason, &mode, &d.Orientation,
		&active, &deps, &arrs, &components, &d.METAR); err != nil {
		return d, fmt.Errorf("scan history: %w", err)
	}

	t, err := time.Parse(timeLayout, decidedAt)
	if err != nil {
		return d, fmt.Errorf("parse decided_at: %w", err)
	}
	d.DecidedAt = t
	d.Reason = domain.Reason(reason)
	d.Mode = domain.Mode(mode)

	for _, f := range []struct {
		raw string
		dst *[]string
	}{{active, &d.Active}, {deps, &d.Departures}, {arrs, &d.Arrivals}} {
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return d, fmt.Errorf("decode runways: %w", err)
		}
	}
	if components.Valid {
		d.Components = &domain.Components{}
		if err := json.Unmarshal([]byte(components.String), d.Components); err != nil {
			return d, fmt.Errorf("decode components: %w", err)
		}
	}
	return d, nil
}
