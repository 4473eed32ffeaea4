package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"climate-api/internal/config"
)

const readHeaderTimeout = 5 * time.Second

// NewHandler wraps mux with the process middleware chain. Request logging is
// outermost so throttled requests are logged too.
func NewHandler(cfg config.Config, mux http.Handler, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	limited := rateLimiter(newLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst), mux)
	return requestLogger(logger, limited)
}

func NewServer(cfg config.Config, mux http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewHandler(cfg, mux, logger),
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
