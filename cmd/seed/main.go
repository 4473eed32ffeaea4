package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"climate-api/internal/dataset"
)

const usage = `usage: %s <command>
  migrate                           apply pending schema migrations
  load <measurements.csv> <stations.csv>
                                    apply migrations and load both CSV files

env: DB_DRIVER (sqlite3|pgx), SQLITE_PATH, DB_DSN
`

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run returns the process exit code. Everything opened here is closed before
// it returns.
func run(args []string, stdout, stderr io.Writer) int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stderr, "load .env: %v\n", err)
		return 1
	}

	if len(args) < 2 {
		fmt.Fprintf(stderr, usage, args[0])
		return 1
	}

	var load func() (dataset.Fixture, error)
	switch args[1] {
	case "migrate":
	case "load":
		if len(args) != 4 {
			fmt.Fprintf(stderr, usage, args[0])
			return 1
		}
		load = func() (dataset.Fixture, error) { return readFixture(args[2], args[3]) }
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", args[1])
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver, target := targetFromEnv()
	conn, err := dataset.Open(ctx, driver, target)
	if err != nil {
		fmt.Fprintf(stderr, "db open: %v\n", err)
		return 1
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			slog.Error("db close", "err", closeErr)
		}
	}()

	if load == nil {
		if err := dataset.Migrate(ctx, conn); err != nil {
			fmt.Fprintf(stderr, "migrate: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, "migrations applied")
		return 0
	}

	f, err := load()
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	if err := dataset.Seed(ctx, conn, f); err != nil {
		fmt.Fprintf(stderr, "seed: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "loaded %d stations and %d measurements into %s\n", len(f.Stations), len(f.Measurements), driver)
	return 0
}

func targetFromEnv() (driver, target string) {
	driver = strings.TrimSpace(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = "sqlite3"
	}
	if dsn := strings.TrimSpace(os.Getenv("DB_DSN")); dsn != "" {
		return driver, dsn
	}
	path := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	if path == "" {
		path = "Resources/hawaii.sqlite"
	}
	return driver, filepath.Clean(path)
}

func readFixture(measurementsPath, stationsPath string) (dataset.Fixture, error) {
	measurements, err := readFile(measurementsPath, dataset.ReadMeasurementsCSV)
	if err != nil {
		return dataset.Fixture{}, err
	}
	stations, err := readFile(stationsPath, dataset.ReadStationsCSV)
	if err != nil {
		return dataset.Fixture{}, err
	}
	return dataset.Fixture{Stations: stations, Measurements: measurements}, nil
}

func readFile[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}
