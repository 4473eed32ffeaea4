package controller

import (
	"net/http"

	"climate-api/internal/modules/climate/types"
	"climate-api/internal/utils"
)

func (c *climateControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, types.Routes{AvailableRoutes: availableRoutes})
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	items, err := c.service.ListPrecipitation(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, items)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	names, err := c.service.ListStations(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, names)
}

func (c *climateControllerImpl) handleTobs(w http.ResponseWriter, r *http.Request) {
	tobs, err := c.service.RecentTemperatureObservations(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, tobs)
}

func (c *climateControllerImpl) handleStatsFrom(w http.ResponseWriter, r *http.Request) {
	start, err := parseDateParam(r, "start")
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	stats, err := c.service.TemperatureStats(r.Context(), start, nil)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

func (c *climateControllerImpl) handleStatsRange(w http.ResponseWriter, r *http.Request) {
	start, err := parseDateParam(r, "start")
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	end, err := parseDateParam(r, "end")
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	stats, err := c.service.TemperatureStats(r.Context(), start, &end)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}
