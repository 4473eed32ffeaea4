package types

import (
	"encoding/json"
)

// Precipitation is one measurement row's (date, prcp) pair. It serializes as
// a single-key object, {"2017-08-23": 0.45}, with null for a missing reading.
type Precipitation struct {
	Date  string
	Value *float64
}

func (p Precipitation) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]*float64{p.Date: p.Value})
}

// TemperatureStats holds the aggregates over a date window. All three are nil
// when no measurement falls inside the window.
type TemperatureStats struct {
	Min *float64 `json:"TMIN"`
	Max *float64 `json:"TMAX"`
	Avg *float64 `json:"TAVG"`
}

// Empty reports whether the window matched no rows.
func (s TemperatureStats) Empty() bool {
	return s.Min == nil && s.Max == nil && s.Avg == nil
}

// Routes is the index payload.
type Routes struct {
	AvailableRoutes []string `json:"available_routes"`
}
