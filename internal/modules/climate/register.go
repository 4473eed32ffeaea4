package climate

import (
	"database/sql"
	"log/slog"
	"net/http"

	"climate-api/internal/logging"
	"climate-api/internal/modules/climate/controller"
	"climate-api/internal/modules/climate/repository"
	"climate-api/internal/modules/climate/service"
)

func RegisterFeature(mux *http.ServeMux, db *sql.DB, logger *slog.Logger) {
	climateRepository := repository.NewRepository(db)
	climateService := service.NewService(climateRepository, logging.Component(logger, "climate.service"))
	climateController := controller.NewClimateController(climateService, logging.Component(logger, "climate.controller"))
	climateController.RegisterRoutes(mux)
}
