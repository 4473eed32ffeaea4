package httpapi

import (
	"database/sql"
	"log/slog"
	"net/http"
)

// NewMux returns a mux carrying the operational routes. Feature modules
// register their own routes on it afterwards.
func NewMux(db *sql.DB, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db, logger)
	return mux
}
