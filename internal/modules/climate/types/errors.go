package types

import "errors"

var (
	// ErrStoreUnavailable wraps any connection, query or scan failure against the data store.
	ErrStoreUnavailable = errors.New("data store unavailable")
	// ErrNoData is returned when an operation needs at least one measurement and there are none.
	ErrNoData = errors.New("no measurements available")
	// ErrInvalidDateFormat is returned for date path segments that are not YYYY-MM-DD.
	ErrInvalidDateFormat = errors.New("invalid date format")
)
