package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v5"

	"train-booking/internal/status"
	"train-booking/services"
)

type AuthHandler struct {
	users     *services.UserService
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthHandler(users *services.UserService, jwtSecret []byte, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		users:     users,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Password is required"})
	}

	user, err := h.users.SignUp(req.Username, req.Password)
	switch {
	case errors.Is(err, status.ErrDuplicateUsername):
		return c.JSON(http.StatusConflict, map[string]string{"error": "Username already taken"})
	case errors.Is(err, status.ErrInvalidUsername):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid username"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to sign up"})
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"user_id":  user.UserID,
		"username": user.Username,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	user, err := h.users.Login(req.Username, req.Password)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid username or password"})
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      user.UserID,
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(h.tokenTTL).Unix(),
	})
	signed, err := token.SignedString(h.jwtSecret)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to issue token"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"token":   signed,
		"user_id": user.UserID,
	})
}
