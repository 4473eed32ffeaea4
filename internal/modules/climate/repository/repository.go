package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"climate-api/internal/modules/climate/types"
)

//go:embed sql/list-precipitation.sql
var listPrecipitationSQL string

//go:embed sql/list-station-names.sql
var listStationNamesSQL string

//go:embed sql/last-measurement-date.sql
var lastMeasurementDateSQL string

//go:embed sql/temperature-observations-since.sql
var temperatureObservationsSinceSQL string

//go:embed sql/temperature-stats.sql
var temperatureStatsSQL string

//go:embed sql/temperature-stats-range.sql
var temperatureStatsRangeSQL string

// ClimateRepository runs the fixed read-only query shapes against the
// measurement and station tables. Every error it returns wraps
// types.ErrStoreUnavailable.
type ClimateRepository interface {
	ListPrecipitation(ctx context.Context) ([]types.Precipitation, error)
	ListStationNames(ctx context.Context) ([]string, error)
	// LastMeasurementDate returns ok=false when the measurement table is empty.
	LastMeasurementDate(ctx context.Context) (last types.Date, ok bool, err error)
	TemperatureObservationsSince(ctx context.Context, from types.Date) ([]float64, error)
	// TemperatureStats aggregates over date >= from and, when to is non-nil, date <= to.
	TemperatureStats(ctx context.Context, from types.Date, to *types.Date) (types.TemperatureStats, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ClimateRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) ListPrecipitation(ctx context.Context) ([]types.Precipitation, error) {
	rows, err := r.db.QueryContext(ctx, listPrecipitationSQL)
	if err != nil {
		return nil, storeErr("list precipitation", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close precipitation rows", "error", err)
		}
	}()

	out := []types.Precipitation{}
	for rows.Next() {
		var (
			date any
			prcp sql.NullFloat64
		)
		if err := rows.Scan(&date, &prcp); err != nil {
			return nil, storeErr("scan precipitation", err)
		}
		ds, err := dateString(date)
		if err != nil {
			return nil, storeErr("scan precipitation", err)
		}
		p := types.Precipitation{Date: ds}
		if prcp.Valid {
			v := prcp.Float64
			p.Value = &v
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list precipitation", err)
	}
	return out, nil
}

func (r *repositoryImpl) ListStationNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listStationNamesSQL)
	if err != nil {
		return nil, storeErr("list stations", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close stations rows", "error", err)
		}
	}()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, storeErr("scan station", err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list stations", err)
	}
	return out, nil
}

func (r *repositoryImpl) LastMeasurementDate(ctx context.Context) (types.Date, bool, error) {
	var last any
	if err := r.db.QueryRowContext(ctx, lastMeasurementDateSQL).Scan(&last); err != nil {
		return types.Date{}, false, storeErr("last measurement date", err)
	}
	// MAX over an empty table is a single NULL row.
	if last == nil {
		return types.Date{}, false, nil
	}
	s, err := dateString(last)
	if err != nil {
		return types.Date{}, false, storeErr("last measurement date", err)
	}
	d, err := types.ParseDate(s)
	if err != nil {
		return types.Date{}, false, storeErr("last measurement date", err)
	}
	return d, true, nil
}

func (r *repositoryImpl) TemperatureObservationsSince(ctx context.Context, from types.Date) ([]float64, error) {
	rows, err := r.db.QueryContext(ctx, temperatureObservationsSinceSQL, from.String())
	if err != nil {
		return nil, storeErr("temperature observations", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close temperature observation rows", "error", err)
		}
	}()

	out := []float64{}
	for rows.Next() {
		var tobs float64
		if err := rows.Scan(&tobs); err != nil {
			return nil, storeErr("scan temperature observation", err)
		}
		out = append(out, tobs)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("temperature observations", err)
	}
	return out, nil
}

func (r *repositoryImpl) TemperatureStats(ctx context.Context, from types.Date, to *types.Date) (types.TemperatureStats, error) {
	var row *sql.Row
	if to == nil {
		row = r.db.QueryRowContext(ctx, temperatureStatsSQL, from.String())
	} else {
		row = r.db.QueryRowContext(ctx, temperatureStatsRangeSQL, from.String(), to.String())
	}

	var lo, hi, avg sql.NullFloat64
	if err := row.Scan(&lo, &hi, &avg); err != nil {
		return types.TemperatureStats{}, storeErr("temperature stats", err)
	}
	return types.TemperatureStats{
		Min: nullable(lo),
		Max: nullable(hi),
		Avg: nullable(avg),
	}, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// dateString normalizes a scanned date column. SQLite hands back TEXT as
// string or []byte; a Postgres DATE column arrives as time.Time.
func dateString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case time.Time:
		return t.UTC().Format(types.DateLayout), nil
	default:
		return "", fmt.Errorf("unexpected date column type %T", v)
	}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", types.ErrStoreUnavailable, op, err)
}
