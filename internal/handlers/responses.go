package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/evently/evently/internal/domain"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the standard format for API error responses.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// UserResponse is the DTO for a single user. The password hash never leaves
// the store through this shape.
type UserResponse struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	RegisteredEvents []int64   `json:"registered_events"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewUserResponse creates a UserResponse DTO from a domain.User.
func NewUserResponse(u *domain.User) *UserResponse {
	events := u.RegisteredEvents
	if events == nil {
		events = []int64{}
	}
	return &UserResponse{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		RegisteredEvents: events,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

// RegistrationResponse summarises the outcome of a registration attempt. The
// confirmation code is generated per request and is not persisted.
type RegistrationResponse struct {
	EventID          int64  `json:"event_id"`
	UserID           int64  `json:"user_id"`
	Registrations    int    `json:"registrations"`
	ConfirmationCode string `json:"confirmation_code,omitempty"`
}

// writeDomainError translates a domain error into the appropriate HTTP
// response. I/O failures are logged and surfaced as 500s; they are fatal to
// the request but not to the process.
func writeDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Code: "not_found", Message: err.Error()})
	case errors.Is(err, domain.ErrEventFull):
		return c.JSON(http.StatusConflict, ErrorResponse{Code: "event_full", Message: err.Error()})
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return c.JSON(http.StatusConflict, ErrorResponse{Code: "already_registered", Message: err.Error()})
	case errors.Is(err, domain.ErrNotRegistered):
		return c.JSON(http.StatusConflict, ErrorResponse{Code: "not_registered", Message: err.Error()})
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return c.JSON(http.StatusConflict, ErrorResponse{Code: "user_exists", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "invalid_credentials", Message: err.Error()})
	default:
		slog.Error("Persistence failure", "error", err, "path", c.Path())
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "internal", Message: "internal server error"})
	}
}
