package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"train-booking/internal/status"
	"train-booking/models"
	"train-booking/monitoring"
	"train-booking/services"
)

type TrainHandler struct {
	catalog *services.TrainService
}

func NewTrainHandler(catalog *services.TrainService) *TrainHandler {
	return &TrainHandler{catalog: catalog}
}

// Search - trains covering source -> destination in route order
func (h *TrainHandler) Search(c echo.Context) error {
	source := c.QueryParam("source")
	destination := c.QueryParam("destination")
	if source == "" || destination == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "source and destination are required",
		})
	}

	monitoring.TrackSearch()
	trains, err := h.catalog.Search(source, destination)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Catalog not available"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"trains": trains,
		"count":  len(trains),
	})
}

// GetSeats - seat grid for one train
func (h *TrainHandler) GetSeats(c echo.Context) error {
	train, err := h.catalog.Get(c.PathParam("trainId"))
	if err != nil {
		if errors.Is(err, status.ErrTrainNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Train not found"})
		}
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Catalog not available"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"train_id": train.TrainID,
		"train_no": train.TrainNo,
		"seats":    train.Seats,
	})
}

// AddTrain - add a new train or replace an existing one by id
func (h *TrainHandler) AddTrain(c echo.Context) error {
	var train models.Train
	if err := c.Bind(&train); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	err := h.catalog.AddOrReplace(train)
	switch {
	case errors.Is(err, status.ErrInvalidTrain):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, status.ErrVersionConflict):
		return c.JSON(http.StatusConflict, map[string]string{"error": "Train was modified concurrently, reload and retry"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save train"})
	}

	return c.JSON(http.StatusOK, map[string]string{"train_id": train.TrainID})
}
