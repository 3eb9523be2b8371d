package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/evently/evently/internal/domain"
	"github.com/evently/evently/internal/middleware"
	"github.com/evently/evently/internal/pubsub"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// EventHandler handles event CRUD, queries and registration bookkeeping.
// Registration touches both stores; the coordination (and its compensating
// rollback) lives here, never inside the stores themselves.
type EventHandler struct {
	events    domain.EventRepository
	users     domain.UserRepository
	publisher pubsub.Publisher
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events domain.EventRepository, users domain.UserRepository, publisher pubsub.Publisher) *EventHandler {
	return &EventHandler{events: events, users: users, publisher: publisher}
}

// List handles GET /events.
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.events.FindAll(c.Request().Context())
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, eventList(events))
}

// Get handles GET /events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := eventID(c)
	if err != nil {
		return err
	}
	event, err := h.events.FindByID(c.Request().Context(), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, event)
}

// Create handles POST /events. The authenticated caller becomes the organizer.
func (h *EventHandler) Create(c echo.Context) error {
	user := middleware.CurrentUser(c)

	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	event, err := h.events.Create(c.Request().Context(), domain.Event{
		Title:         req.Title,
		Category:      req.Category,
		Date:          req.Date,
		Time:          req.Time,
		Location:      req.Location,
		Description:   req.Description,
		Capacity:      req.Capacity,
		Price:         req.Price,
		OrganizerID:   user.ID,
		OrganizerName: user.Name,
	})
	if err != nil {
		return writeDomainError(c, err)
	}

	h.announce(c, pubsub.TopicEventCreated, user.ID, map[string]any{
		"event_id": event.ID,
		"title":    event.Title,
		"category": event.Category,
		"date":     event.Date,
	})

	return c.JSON(http.StatusCreated, event)
}

// Update handles PUT /events/:id. Only the organizer may modify an event.
func (h *EventHandler) Update(c echo.Context) error {
	user := middleware.CurrentUser(c)
	id, err := eventID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	existing, err := h.events.FindByID(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}
	if existing.OrganizerID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "only the organizer may modify this event")
	}

	var req UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	event, err := h.events.Update(ctx, id, domain.EventUpdate{
		Title:       req.Title,
		Category:    req.Category,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		Description: req.Description,
		Capacity:    req.Capacity,
		Price:       req.Price,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, event)
}

// Delete handles DELETE /events/:id. Only the organizer may delete an event.
func (h *EventHandler) Delete(c echo.Context) error {
	user := middleware.CurrentUser(c)
	id, err := eventID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	existing, err := h.events.FindByID(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}
	if existing.OrganizerID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "only the organizer may delete this event")
	}

	if err := h.events.Delete(ctx, id); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Search handles GET /events/search?q=term.
func (h *EventHandler) Search(c echo.Context) error {
	term := c.QueryParam("q")
	if term == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'q' is required")
	}
	events, err := h.events.Search(c.Request().Context(), term)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, eventList(events))
}

// ByCategory handles GET /events/category/:category.
func (h *EventHandler) ByCategory(c echo.Context) error {
	events, err := h.events.FindByCategory(c.Request().Context(), c.Param("category"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, eventList(events))
}

// Upcoming handles GET /events/upcoming?limit=n.
func (h *EventHandler) Upcoming(c echo.Context) error {
	events, err := h.events.GetUpcomingEvents(c.Request().Context(), limitParam(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, eventList(events))
}

// Popular handles GET /events/popular?limit=n.
func (h *EventHandler) Popular(c echo.Context) error {
	events, err := h.events.GetPopularEvents(c.Request().Context(), limitParam(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, eventList(events))
}

// Mine handles GET /events/mine and lists the caller's own events.
func (h *EventHandler) Mine(c echo.Context) error {
	user := middleware.CurrentUser(c)
	events, err := h.events.GetEventsByOrganizer(c.Request().Context(), user.ID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, eventList(events))
}

// Stats handles GET /events/stats.
func (h *EventHandler) Stats(c echo.Context) error {
	stats, err := h.events.GetEventStats(c.Request().Context())
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Register handles POST /events/:id/register. The event side is written
// first; if the user side then fails, the event-side write is compensated so
// the two files cannot drift apart on this path.
func (h *EventHandler) Register(c echo.Context) error {
	user := middleware.CurrentUser(c)
	id, err := eventID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)
	event, err := h.events.RegisterUser(ctx, id, user.ID)
	if err != nil {
		return writeDomainError(c, err)
	}

	if err := h.users.AddRegisteredEvent(ctx, user.ID, id); err != nil {
		logger.Error("User-side registration failed, rolling back event side",
			"event_id", id, "user_id", user.ID, "error", err)
		if _, rbErr := h.events.UnregisterUser(ctx, id, user.ID); rbErr != nil {
			logger.Error("Rollback failed; stores are inconsistent",
				"event_id", id, "user_id", user.ID, "error", rbErr)
		}
		return writeDomainError(c, err)
	}

	h.announce(c, pubsub.TopicRegistrationCreated, user.ID, map[string]any{
		"event_id":      id,
		"user_id":       user.ID,
		"title":         event.Title,
		"registrations": event.Registrations,
	})

	return c.JSON(http.StatusCreated, RegistrationResponse{
		EventID:          id,
		UserID:           user.ID,
		Registrations:    event.Registrations,
		ConfirmationCode: uuid.NewString(),
	})
}

// Unregister handles DELETE /events/:id/register.
func (h *EventHandler) Unregister(c echo.Context) error {
	user := middleware.CurrentUser(c)
	id, err := eventID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)
	event, err := h.events.UnregisterUser(ctx, id, user.ID)
	if err != nil {
		return writeDomainError(c, err)
	}

	if err := h.users.RemoveRegisteredEvent(ctx, user.ID, id); err != nil {
		logger.Error("User-side cancellation failed, rolling back event side",
			"event_id", id, "user_id", user.ID, "error", err)
		if _, rbErr := h.events.RegisterUser(ctx, id, user.ID); rbErr != nil {
			logger.Error("Rollback failed; stores are inconsistent",
				"event_id", id, "user_id", user.ID, "error", rbErr)
		}
		return writeDomainError(c, err)
	}

	h.announce(c, pubsub.TopicRegistrationCancelled, user.ID, map[string]any{
		"event_id":      id,
		"user_id":       user.ID,
		"registrations": event.Registrations,
	})

	return c.JSON(http.StatusOK, RegistrationResponse{
		EventID:       id,
		UserID:        user.ID,
		Registrations: event.Registrations,
	})
}

func (h *EventHandler) announce(c echo.Context, topic string, userID int64, payload map[string]any) {
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

// eventID parses the :id path parameter.
func eventID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}
	return id, nil
}

// limitParam parses an optional ?limit= query parameter; 0 means unlimited.
func limitParam(c echo.Context) int {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

// eventList normalizes a nil slice to an empty JSON array.
func eventList(events []domain.Event) []domain.Event {
	if events == nil {
		return []domain.Event{}
	}
	return events
}
