// Package db owns the sqlite store: sweep results and the saved-tile index.
package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/rccm.repair/internal/rccm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps the sqlite handle.
type DB struct {
	*sql.DB
}

// migrationsSub exposes the embedded migrations directory.
func migrationsSub() (fs.FS, error) {
	return fs.Sub(migrationsFS, "migrations")
}

// NewDB opens (creating if necessary) the sqlite database at path and brings
// the schema to the latest migration version.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db := &DB{sqlDB}
	if err := db.applyPragmas(); err != nil {
		db.Close()
		return nil, err
	}
	mfs, err := migrationsSub()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("embedded migrations: %w", err)
	}
	if err := db.MigrateUp(mfs); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// applyPragmas applies essential SQLite PRAGMAs for performance and
// concurrency. Applied to every database regardless of how it was created.
func (db *DB) applyPragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}
	return nil
}

// SweepRun is one execution of the orbit sweep.
type SweepRun struct {
	RunID   string
	Path    int
	Block   int
	Started time.Time
}

// SweepOrbit matches the sweep_orbits table: one tabulated row per orbit.
type SweepOrbit struct {
	RunID      string
	Orbit      int64
	Date       time.Time
	JulianDate float64
	Missing    rccm.Counts
	Total      int
	ErrorKind  string // "" for clean rows
}

// InsertSweepRun stores a run header, generating its id when absent.
func (db *DB) InsertSweepRun(run *SweepRun) error {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	_, err := db.Exec(
		`INSERT INTO sweep_runs (run_id, path, block, started_unix_nanos) VALUES (?, ?, ?, ?)`,
		run.RunID, run.Path, run.Block, run.Started.UnixNano())
	if err != nil {
		return fmt.Errorf("insert sweep run: %w", err)
	}
	return nil
}

// InsertSweepOrbit stores one tabulated orbit row.
func (db *DB) InsertSweepOrbit(row *SweepOrbit) error {
	_, err := db.Exec(
		`INSERT INTO sweep_orbits (
			run_id, orbit, date_utc, julian_date,
			missing_df, missing_cf, missing_bf, missing_af, missing_an,
			missing_aa, missing_ba, missing_ca, missing_da,
			missing_total, error_kind
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.RunID, row.Orbit, row.Date.UTC().Format(time.RFC3339), row.JulianDate,
		row.Missing[0], row.Missing[1], row.Missing[2], row.Missing[3], row.Missing[4],
		row.Missing[5], row.Missing[6], row.Missing[7], row.Missing[8],
		row.Total, row.ErrorKind)
	if err != nil {
		return fmt.Errorf("insert sweep orbit %d: %w", row.Orbit, err)
	}
	return nil
}

// ListSweepOrbits returns a run's rows in ascending orbit order.
func (db *DB) ListSweepOrbits(runID string) ([]*SweepOrbit, error) {
	rows, err := db.Query(
		`SELECT orbit, date_utc, julian_date,
			missing_df, missing_cf, missing_bf, missing_af, missing_an,
			missing_aa, missing_ba, missing_ca, missing_da,
			missing_total, error_kind
		FROM sweep_orbits WHERE run_id = ? ORDER BY orbit ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*SweepOrbit
	for rows.Next() {
		row := &SweepOrbit{RunID: runID}
		var dateStr string
		if err := rows.Scan(&row.Orbit, &dateStr, &row.JulianDate,
			&row.Missing[0], &row.Missing[1], &row.Missing[2], &row.Missing[3], &row.Missing[4],
			&row.Missing[5], &row.Missing[6], &row.Missing[7], &row.Missing[8],
			&row.Total, &row.ErrorKind); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, dateStr); err == nil {
			row.Date = t
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// TileSave matches the tile_saves table: one persisted plane blob.
type TileSave struct {
	SaveID   string
	Stage    string
	Camera   string
	Path     int
	Orbit    int64
	Block    int
	Acquired time.Time
	TestID   string
	Edge     bool
	File     string
	Created  time.Time
}

// InsertTileSave indexes one persisted blob, generating its id when absent.
func (db *DB) InsertTileSave(s *TileSave) error {
	if s.SaveID == "" {
		s.SaveID = uuid.NewString()
	}
	edge := 0
	if s.Edge {
		edge = 1
	}
	_, err := db.Exec(
		`INSERT INTO tile_saves (
			save_id, stage, camera, path, orbit, block,
			acquired_utc, test_id, edge, file, created_unix_nanos
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.SaveID, s.Stage, s.Camera, s.Path, s.Orbit, s.Block,
		s.Acquired.UTC().Format(time.RFC3339), s.TestID, edge, s.File, s.Created.UnixNano())
	if err != nil {
		return fmt.Errorf("insert tile save: %w", err)
	}
	return nil
}

// CountTileSaves returns the number of indexed blobs for one (path, orbit,
// block) triple.
func (db *DB) CountTileSaves(path int, o int64, block int) (int, error) {
	var n int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM tile_saves WHERE path = ? AND orbit = ? AND block = ?`,
		path, o, block).Scan(&n)
	return n, err
}
