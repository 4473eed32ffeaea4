package service

import (
	"context"
	"fmt"
	"log/slog"

	"climate-api/internal/modules/climate/repository"
	"climate-api/internal/modules/climate/types"
)

// RecentWindowDays is how far back from the latest measurement the recent
// temperature observations reach, inclusive on both ends.
const RecentWindowDays = 365

// ClimateService is the query layer the HTTP controller calls. Errors from the
// repository are passed through unchanged.
type ClimateService interface {
	ListPrecipitation(ctx context.Context) ([]types.Precipitation, error)
	ListStations(ctx context.Context) ([]string, error)
	RecentTemperatureObservations(ctx context.Context) ([]float64, error)
	TemperatureStats(ctx context.Context, start types.Date, end *types.Date) (types.TemperatureStats, error)
}

type Service struct {
	repository repository.ClimateRepository
	logger     *slog.Logger
}

func NewService(repository repository.ClimateRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repository: repository, logger: logger}
}

func (s *Service) ListPrecipitation(ctx context.Context) ([]types.Precipitation, error) {
	return s.repository.ListPrecipitation(ctx)
}

func (s *Service) ListStations(ctx context.Context) ([]string, error) {
	return s.repository.ListStationNames(ctx)
}

// RecentTemperatureObservations returns every tobs value dated within
// RecentWindowDays of the latest measurement, ordered by date.
func (s *Service) RecentTemperatureObservations(ctx context.Context) ([]float64, error) {
	last, ok, err := s.repository.LastMeasurementDate(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("recent temperature observations: %w", types.ErrNoData)
	}

	cutoff := last.AddDays(-RecentWindowDays)
	s.logger.Debug("recent temperature window",
		"last_date", last.String(),
		"cutoff", cutoff.String(),
	)
	return s.repository.TemperatureObservationsSince(ctx, cutoff)
}

// TemperatureStats aggregates tobs over [start, end], or [start, ∞) when end
// is nil. An end before start is not rejected; it yields empty stats.
func (s *Service) TemperatureStats(ctx context.Context, start types.Date, end *types.Date) (types.TemperatureStats, error) {
	if end != nil && end.Before(start) {
		s.logger.Warn("temperature stats requested with end before start",
			"start", start.String(),
			"end", end.String(),
		)
	}
	return s.repository.TemperatureStats(ctx, start, end)
}

var _ ClimateService = (*Service)(nil)
