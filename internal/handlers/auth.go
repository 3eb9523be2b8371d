package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/evently/evently/internal/domain"
	"github.com/evently/evently/internal/middleware"
	"github.com/evently/evently/internal/password"
	"github.com/evently/evently/internal/pubsub"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles signup, login and password management.
type AuthHandler struct {
	users     domain.UserRepository
	hasher    password.Hasher
	publisher pubsub.Publisher
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users domain.UserRepository, hasher password.Hasher, publisher pubsub.Publisher) *AuthHandler {
	return &AuthHandler{users: users, hasher: hasher, publisher: publisher}
}

// Signup handles POST /signup. Email uniqueness is enforced here, not in the
// store: the handler checks FindByEmail before Create.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	if _, err := h.users.FindByEmail(ctx, req.Email); err == nil {
		return writeDomainError(c, domain.ErrUserAlreadyExists)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return writeDomainError(c, err)
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		return writeDomainError(c, err)
	}

	user, err := h.users.Create(ctx, req.Name, req.Email, hash)
	if err != nil {
		return writeDomainError(c, err)
	}

	if err := middleware.SetAuthenticatedUser(c, user.ID); err != nil {
		slog.Error("Failed to start session after signup", "error", err, "user_id", user.ID)
	}

	h.announce(c, pubsub.TopicUserSignedUp, user.ID, map[string]any{
		"user_id": user.ID,
		"name":    user.Name,
	})

	return c.JSON(http.StatusCreated, NewUserResponse(user))
}

// Login handles POST /login. A missing account and a wrong password are
// indistinguishable to the caller.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	user, err := h.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return writeDomainError(c, domain.ErrInvalidCredentials)
		}
		return writeDomainError(c, err)
	}

	if !h.users.ValidatePassword(ctx, user.ID, req.Password) {
		return writeDomainError(c, domain.ErrInvalidCredentials)
	}

	if err := middleware.SetAuthenticatedUser(c, user.ID); err != nil {
		return writeDomainError(c, err)
	}

	return c.JSON(http.StatusOK, NewUserResponse(user))
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := middleware.ClearAuthenticatedUser(c); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /me and returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, NewUserResponse(user))
}

// ChangePassword handles POST /password. The current password must validate
// before the store rehashes the new one.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	if !h.users.ValidatePassword(ctx, user.ID, req.CurrentPassword) {
		return writeDomainError(c, domain.ErrInvalidCredentials)
	}
	if err := h.users.ChangePassword(ctx, user.ID, req.NewPassword); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// announce publishes a fire-and-forget domain announcement. Publishing
// failures are logged, never surfaced to the client.
func (h *AuthHandler) announce(c echo.Context, topic string, userID int64, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to encode announcement", "topic", topic, "error", err)
		return
	}
	msg := pubsub.Message{
		Topic:   topic,
		UserID:  strconv.FormatInt(userID, 10),
		Payload: data,
	}
	if err := h.publisher.Publish(c.Request().Context(), msg); err != nil {
		slog.Error("Failed to publish announcement", "topic", topic, "error", err)
	}
}
