package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Station is one row of the station table.
type Station struct {
	ID        int
	Station   string
	Name      string
	Latitude  float64
	Longitude float64
	Elevation float64
}

// Measurement is one row of the measurement table. Date is "YYYY-MM-DD";
// a nil Prcp is stored as NULL.
type Measurement struct {
	ID      int
	Station string
	Date    string
	Prcp    *float64
	Tobs    float64
}

// Fixture is a complete dataset. Zero IDs are assigned from the slice
// position (1-based).
type Fixture struct {
	Stations     []Station
	Measurements []Measurement
}

const (
	insertStationSQL = `INSERT INTO station (id, station, name, latitude, longitude, elevation)
VALUES ($1, $2, $3, $4, $5, $6)`
	insertMeasurementSQL = `INSERT INTO measurement (id, station, date, prcp, tobs)
VALUES ($1, $2, $3, $4, $5)`
)

// Load inserts the fixture rows in a single transaction.
func Load(ctx context.Context, db *sql.DB, f Fixture) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("rollback dataset load", "error", rbErr)
			}
		}
	}()

	stationStmt, err := tx.PrepareContext(ctx, insertStationSQL)
	if err != nil {
		return fmt.Errorf("prepare station insert: %w", err)
	}
	defer func() { _ = stationStmt.Close() }()

	for i, s := range f.Stations {
		id := s.ID
		if id == 0 {
			id = i + 1
		}
		if _, err = stationStmt.ExecContext(ctx, id, s.Station, s.Name, s.Latitude, s.Longitude, s.Elevation); err != nil {
			return fmt.Errorf("insert station %q: %w", s.Station, err)
		}
	}

	measurementStmt, err := tx.PrepareContext(ctx, insertMeasurementSQL)
	if err != nil {
		return fmt.Errorf("prepare measurement insert: %w", err)
	}
	defer func() { _ = measurementStmt.Close() }()

	for i, m := range f.Measurements {
		id := m.ID
		if id == 0 {
			id = i + 1
		}
		if _, err = measurementStmt.ExecContext(ctx, id, m.Station, m.Date, m.Prcp, m.Tobs); err != nil {
			return fmt.Errorf("insert measurement %s/%s: %w", m.Station, m.Date, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Open returns a writable connection for seeding. For sqlite3 target is a file
// path (its directory is created); for pgx it is a connection string.
func Open(ctx context.Context, driver, target string) (*sql.DB, error) {
	dsn := target
	switch driver {
	case "sqlite3":
		if !strings.HasPrefix(target, "file:") {
			if dir := filepath.Dir(target); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("mkdir %s: %w", dir, err)
				}
			}
			dsn = fmt.Sprintf("file:%s?_busy_timeout=5000", target)
		}
	case "pgx":
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// Seed applies the schema and loads f into db.
func Seed(ctx context.Context, db *sql.DB, f Fixture) error {
	if err := Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := Load(ctx, db, f); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	return nil
}

// CreateSQLiteFile writes a fresh SQLite database at path containing f.
func CreateSQLiteFile(ctx context.Context, path string, f Fixture) error {
	db, err := Open(ctx, "sqlite3", path)
	if err != nil {
		return err
	}
	if err := Seed(ctx, db, f); err != nil {
		_ = db.Close()
		return err
	}
	return db.Close()
}

// NewMemoryDB returns a seeded in-memory SQLite database. The pool is capped
// at one connection since every :memory: connection is a separate database.
func NewMemoryDB(ctx context.Context, f Fixture) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := Seed(ctx, db, f); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Float returns a pointer to v, for Measurement.Prcp literals.
func Float(v float64) *float64 {
	return &v
}
