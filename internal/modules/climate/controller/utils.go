package controller

import (
	"errors"
	"fmt"
	"net/http"

	"climate-api/internal/modules/climate/types"
	"climate-api/internal/utils"
)

func parseDateParam(r *http.Request, name string) (types.Date, error) {
	d, err := types.ParseDate(r.PathValue(name))
	if err != nil {
		return types.Date{}, fmt.Errorf("'%s': %w", name, err)
	}
	return d, nil
}

// statusFor maps the error taxonomy onto HTTP statuses. Anything unknown is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidDateFormat):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrNoData):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (c *climateControllerImpl) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		c.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		// Driver detail stays in the log.
		utils.WriteError(w, status, types.ErrStoreUnavailable.Error())
		return
	}
	utils.WriteError(w, status, err.Error())
}
