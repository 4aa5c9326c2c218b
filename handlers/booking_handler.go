package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"train-booking/internal/status"
	"train-booking/services"
)

type BookingHandler struct {
	booking *services.BookingService
}

func NewBookingHandler(booking *services.BookingService) *BookingHandler {
	return &BookingHandler{booking: booking}
}

// Book - reserve one seat on a train
func (h *BookingHandler) Book(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req struct {
		TrainID      string `json:"train_id"`
		Row          int    `json:"row"`
		Col          int    `json:"col"`
		DateOfTravel string `json:"date_of_travel"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.TrainID == "" || req.DateOfTravel == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "train_id and date_of_travel are required"})
	}

	ticket, err := h.booking.Book(c.Request().Context(), req.TrainID, req.Row, req.Col, userID, req.DateOfTravel)
	if err != nil {
		return bookingError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"ticket": ticket,
	})
}

// Cancel - remove a booked ticket by id
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	err := h.booking.Cancel(c.Request().Context(), userID, c.PathParam("ticketId"))
	if err != nil {
		if errors.Is(err, status.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Ticket not found"})
		}
		return bookingError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"cancelled": true})
}

// History - the requesting user's booked tickets
func (h *BookingHandler) History(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	tickets, err := h.booking.Tickets(userID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"tickets": tickets,
		"count":   len(tickets),
	})
}

func bookingError(c echo.Context, err error) error {
	var partial *status.PartialBookingError
	switch {
	case errors.Is(err, status.ErrInvalidSeatIndex):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Seat index out of range"})
	case errors.Is(err, status.ErrSeatUnavailable):
		return c.JSON(http.StatusConflict, map[string]string{"error": "Seat already occupied"})
	case errors.Is(err, status.ErrTrainNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Train not found"})
	case errors.Is(err, status.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
	case errors.Is(err, status.ErrLockBusy):
		return c.JSON(http.StatusConflict, map[string]string{"error": "Another booking is in progress, retry shortly"})
	case errors.As(err, &partial):
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"error":     "Booking partially applied: seat is held but no ticket was issued",
			"train_id":  partial.TrainID,
			"row":       partial.Row,
			"col":       partial.Col,
			"retryable": false,
		})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Booking failed, change may not be durable"})
	}
}
