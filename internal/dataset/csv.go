package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ReadMeasurementsCSV parses the hawaii_measurements.csv layout:
// station,date,prcp,tobs. Empty prcp cells become NULL.
func ReadMeasurementsCSV(r io.Reader) ([]Measurement, error) {
	records, cols, err := readCSV(r, "station", "date", "prcp", "tobs")
	if err != nil {
		return nil, err
	}

	out := make([]Measurement, 0, len(records))
	for i, rec := range records {
		line := i + 2
		m := Measurement{
			Station: rec[cols["station"]],
			Date:    rec[cols["date"]],
		}
		if _, err := time.Parse(time.DateOnly, m.Date); err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q", line, m.Date)
		}
		if s := rec[cols["prcp"]]; s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid prcp %q: %w", line, s, err)
			}
			m.Prcp = &v
		}
		tobs, err := strconv.ParseFloat(rec[cols["tobs"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid tobs %q: %w", line, rec[cols["tobs"]], err)
		}
		m.Tobs = tobs
		out = append(out, m)
	}
	return out, nil
}

// ReadStationsCSV parses the hawaii_stations.csv layout:
// station,name,latitude,longitude,elevation.
func ReadStationsCSV(r io.Reader) ([]Station, error) {
	records, cols, err := readCSV(r, "station", "name", "latitude", "longitude", "elevation")
	if err != nil {
		return nil, err
	}

	out := make([]Station, 0, len(records))
	for i, rec := range records {
		line := i + 2
		s := Station{
			Station: rec[cols["station"]],
			Name:    rec[cols["name"]],
		}
		for _, f := range []struct {
			col string
			dst *float64
		}{
			{"latitude", &s.Latitude},
			{"longitude", &s.Longitude},
			{"elevation", &s.Elevation},
		} {
			v, err := strconv.ParseFloat(rec[cols[f.col]], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid %s %q: %w", line, f.col, rec[cols[f.col]], err)
			}
			*f.dst = v
		}
		out = append(out, s)
	}
	return out, nil
}

// readCSV reads the header, checks the required columns are present (in any
// order) and returns the data rows with a column index.
func readCSV(r io.Reader, required ...string) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.New("csv: missing header")
		}
		return nil, nil, fmt.Errorf("csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			return nil, nil, fmt.Errorf("csv: missing column %q", c)
		}
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("csv: %w", err)
	}
	return records, cols, nil
}
