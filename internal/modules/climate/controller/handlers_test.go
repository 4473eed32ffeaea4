package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"climate-api/internal/modules/climate/types"
)

type statsCall struct {
	start string
	end   string
}

type mockService struct {
	precipitation    []types.Precipitation
	precipitationErr error
	stations         []string
	stationsErr      error
	tobs             []float64
	tobsErr          error
	stats            types.TemperatureStats
	statsErr         error

	statsCalls []statsCall
}

func (m *mockService) ListPrecipitation(ctx context.Context) ([]types.Precipitation, error) {
	return m.precipitation, m.precipitationErr
}

func (m *mockService) ListStations(ctx context.Context) ([]string, error) {
	return m.stations, m.stationsErr
}

func (m *mockService) RecentTemperatureObservations(ctx context.Context) ([]float64, error) {
	return m.tobs, m.tobsErr
}

func (m *mockService) TemperatureStats(ctx context.Context, start types.Date, end *types.Date) (types.TemperatureStats, error) {
	call := statsCall{start: start.String()}
	if end != nil {
		call.end = end.String()
	}
	m.statsCalls = append(m.statsCalls, call)
	return m.stats, m.statsErr
}

func newTestMux(svc *mockService) *http.ServeMux {
	mux := http.NewServeMux()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	NewClimateController(svc, quiet).RegisterRoutes(mux)
	return mux
}

func serve(t *testing.T, mux *http.ServeMux, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	return out
}

func f(v float64) *float64 { return &v }

func Test_handleIndex(t *testing.T) {
	rec := serve(t, newTestMux(&mockService{}), http.MethodGet, "/")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q; want application/json", ct)
	}
	body := decode[map[string][]string](t, rec)
	want := []string{
		"/api/v1.0/precipitation",
		"/api/v1.0/stations",
		"/api/v1.0/tobs",
		"/api/v1.0/<start>",
		"/api/v1.0/<start>/<end>",
	}
	if !reflect.DeepEqual(body["available_routes"], want) {
		t.Errorf("available_routes = %v; want %v", body["available_routes"], want)
	}
}

func Test_handlePrecipitation(t *testing.T) {
	t.Run("returns single-key objects", func(t *testing.T) {
		svc := &mockService{precipitation: []types.Precipitation{
			{Date: "2017-08-22", Value: f(0.5)},
			{Date: "2017-08-23", Value: nil},
		}}
		rec := serve(t, newTestMux(svc), http.MethodGet, "/api/v1.0/precipitation")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != `[{"2017-08-22":0.5},{"2017-08-23":null}]` {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("empty store returns empty array", func(t *testing.T) {
		svc := &mockService{precipitation: []types.Precipitation{}}
		rec := serve(t, newTestMux(svc), http.MethodGet, "/api/v1.0/precipitation")
		if got := strings.TrimSpace(rec.Body.String()); got != `[]` {
			t.Errorf("body = %s; want []", got)
		}
	})

	t.Run("store failure is 500", func(t *testing.T) {
		svc := &mockService{precipitationErr: fmt.Errorf("%w: boom", types.ErrStoreUnavailable)}
		rec := serve(t, newTestMux(svc), http.MethodGet, "/api/v1.0/precipitation")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
		}
		if strings.Contains(rec.Body.String(), "boom") {
			t.Errorf("body leaks driver detail: %s", rec.Body.String())
		}
	})
}

func Test_handleStations(t *testing.T) {
	t.Run("returns plain strings", func(t *testing.T) {
		svc := &mockService{stations: []string{"KANEOHE 838.1, HI US", "WAIKIKI 717.2, HI US"}}
		rec := serve(t, newTestMux(svc), http.MethodGet, "/api/v1.0/stations")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		got := decode[[]string](t, rec)
		if !reflect.DeepEqual(got, svc.stations) {
			t.Errorf("body = %v; want %v", got, svc.stations)
		}
	})

	t.Run("store failure is 500", func(t *testing.T) {
		svc := &mockService{stationsErr: types.ErrStoreUnavailable}
		rec := serve(t, newTestMux(svc), http.MethodGet, "/api/v1.0/stations")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
		}
		body := decode[map[string]string](t, rec)
		if body["error"] != http.StatusText(http.StatusInternalServerError) {
			t.Errorf("error = %q", body["error"])
		}
	})
}

func Test_handleTobs(t *testing.T) {
	t.Run("returns numbers", func(t *testing.T) {
		svc := &mockService{tobs: []float64{77, 80, 76.5}}
		rec := serve(t, newTestMux(svc), http.MethodGet, "/api/v1.0/tobs")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != `[77,80,76.5]` {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("no data is 404", func(t *testing.T) {
		svc := &mockService{tobsErr: fmt.Errorf("recent: %w", types.ErrNoData)}
		rec := serve(t, newTestMux(svc), http.MethodGet, "/api/v1.0/tobs")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusNotFound)
		}
		body := decode[map[string]string](t, rec)
		if !strings.Contains(body["message"], "no measurements") {
			t.Errorf("message = %q", body["message"])
		}
	})
}

func Test_handleStats(t *testing.T) {
	stats := types.TemperatureStats{Min: f(60), Max: f(70), Avg: f(65)}

	tests := []struct {
		name     string
		path     string
		wantCall *statsCall
		status   int
	}{
		{name: "start only", path: "/api/v1.0/2017-01-02", wantCall: &statsCall{start: "2017-01-02"}, status: http.StatusOK},
		{name: "start and end", path: "/api/v1.0/2017-01-01/2017-01-31", wantCall: &statsCall{start: "2017-01-01", end: "2017-01-31"}, status: http.StatusOK},
		{name: "end before start is permitted", path: "/api/v1.0/2017-02-01/2017-01-01", wantCall: &statsCall{start: "2017-02-01", end: "2017-01-01"}, status: http.StatusOK},
		{name: "bad start", path: "/api/v1.0/yesterday", status: http.StatusBadRequest},
		{name: "calendar-invalid start", path: "/api/v1.0/2017-02-30", status: http.StatusBadRequest},
		{name: "bad end", path: "/api/v1.0/2017-01-01/2017-1-31", status: http.StatusBadRequest},
		{name: "bad start with good end", path: "/api/v1.0/20170101/2017-01-31", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{stats: stats}
			rec := serve(t, newTestMux(svc), http.MethodGet, tt.path)

			if rec.Code != tt.status {
				t.Fatalf("status = %d; want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.wantCall == nil {
				if len(svc.statsCalls) != 0 {
					t.Errorf("service called on invalid input: %+v", svc.statsCalls)
				}
				body := decode[map[string]string](t, rec)
				if body["error"] != http.StatusText(http.StatusBadRequest) || body["message"] == "" {
					t.Errorf("error body = %v", body)
				}
				return
			}
			if len(svc.statsCalls) != 1 || svc.statsCalls[0] != *tt.wantCall {
				t.Errorf("calls = %+v; want [%+v]", svc.statsCalls, *tt.wantCall)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != `{"TMIN":60,"TMAX":70,"TAVG":65}` {
				t.Errorf("body = %s", got)
			}
		})
	}
}

func Test_handleStats_NullAggregates(t *testing.T) {
	rec := serve(t, newTestMux(&mockService{}), http.MethodGet, "/api/v1.0/2030-01-01")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"TMIN":null,"TMAX":null,"TAVG":null}` {
		t.Errorf("body = %s", got)
	}
}

func Test_handleStats_StoreFailure(t *testing.T) {
	svc := &mockService{statsErr: errors.Join(types.ErrStoreUnavailable, errors.New("disk I/O error"))}
	rec := serve(t, newTestMux(svc), http.MethodGet, "/api/v1.0/2017-01-01/2017-01-02")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestRouting(t *testing.T) {
	mux := newTestMux(&mockService{})

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{name: "fixed route wins over {start}", method: http.MethodGet, path: "/api/v1.0/stations", want: http.StatusOK},
		{name: "too many segments", method: http.MethodGet, path: "/api/v1.0/2017-01-01/2017-01-02/x", want: http.StatusNotFound},
		{name: "unknown root path", method: http.MethodGet, path: "/does-not-exist", want: http.StatusNotFound},
		{name: "wrong method", method: http.MethodPost, path: "/api/v1.0/tobs", want: http.StatusMethodNotAllowed},
		{name: "delete on stats", method: http.MethodDelete, path: "/api/v1.0/2017-01-01", want: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, mux, tt.method, tt.path)
			if rec.Code != tt.want {
				t.Errorf("%s %s status = %d; want %d", tt.method, tt.path, rec.Code, tt.want)
			}
		})
	}
}
