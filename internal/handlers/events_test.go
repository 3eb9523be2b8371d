package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evently/evently/internal/domain"
	"github.com/evently/evently/internal/handlers"
	"github.com/evently/evently/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// call invokes an event handler directly with an authenticated user and an
// optional :id path parameter.
func call(env *testEnv, handler echo.HandlerFunc, user *domain.User, req *http.Request, id string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	if user != nil {
		c.Set(middleware.UserContextKey, user)
	}
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	if err := handler(c); err != nil {
		env.e.HTTPErrorHandler(err, c)
	}
	return rec
}

func createOrganizer(t *testing.T, env *testEnv) *domain.User {
	t.Helper()
	created, err := env.users.Create(context.Background(), "Org Anizer", "org@example.com", "hashed:pw")
	require.NoError(t, err)
	user, err := env.users.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	return user
}

const validEventBody = `{
	"title": "Lakeside Concert",
	"category": "music",
	"date": "2099-07-01",
	"time": "20:00",
	"location": "Lakeside Park",
	"description": "Open air music festival",
	"capacity": 2,
	"price": 15
}`

func TestCreateEvent(t *testing.T) {
	env := setupTest(t)
	organizer := createOrganizer(t, env)

	t.Run("creates with caller as organizer", func(t *testing.T) {
		rec := call(env, env.event.Create, organizer, jsonRequest(http.MethodPost, "/events", validEventBody), "")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created domain.Event
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, organizer.ID, created.OrganizerID)
		assert.Equal(t, "Org Anizer", created.OrganizerName)
		assert.True(t, created.IsUpcoming)
	})

	t.Run("rejects zero capacity", func(t *testing.T) {
		body := `{"title":"x","category":"music","date":"2099-07-01","time":"20:00","location":"y","capacity":0}`
		rec := call(env, env.event.Create, organizer, jsonRequest(http.MethodPost, "/events", body), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		body := `{"title":"x","category":"music","date":"July 1st","time":"20:00","location":"y","capacity":5}`
		rec := call(env, env.event.Create, organizer, jsonRequest(http.MethodPost, "/events", body), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	env := setupTest(t)
	organizer := createOrganizer(t, env)
	intruderRec, err := env.users.Create(context.Background(), "Intruder", "intruder@example.com", "hashed:pw")
	require.NoError(t, err)
	intruder, err := env.users.FindByID(context.Background(), intruderRec.ID)
	require.NoError(t, err)

	event, err := env.events.Create(context.Background(), domain.Event{
		Title: "Editable", Category: "music", Date: "2099-07-01", Time: "20:00",
		Location: "Hall", Capacity: 10, OrganizerID: organizer.ID, OrganizerName: organizer.Name,
	})
	require.NoError(t, err)
	eventID := "1"

	t.Run("non-owner cannot update", func(t *testing.T) {
		rec := call(env, env.event.Update, intruder,
			jsonRequest(http.MethodPut, "/events/1", `{"title":"Hijacked"}`), eventID)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owner updates partially", func(t *testing.T) {
		rec := call(env, env.event.Update, organizer,
			jsonRequest(http.MethodPut, "/events/1", `{"title":"Renamed"}`), eventID)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		got, err := env.events.FindByID(context.Background(), event.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, "Hall", got.Location, "unspecified fields stay put")
	})

	t.Run("non-owner cannot delete", func(t *testing.T) {
		rec := call(env, env.event.Delete, intruder,
			httptest.NewRequest(http.MethodDelete, "/events/1", nil), eventID)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owner deletes", func(t *testing.T) {
		rec := call(env, env.event.Delete, organizer,
			httptest.NewRequest(http.MethodDelete, "/events/1", nil), eventID)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		_, err := env.events.FindByID(context.Background(), event.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("missing event is 404", func(t *testing.T) {
		rec := call(env, env.event.Update, organizer,
			jsonRequest(http.MethodPut, "/events/99", `{"title":"x"}`), "99")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRegistrationFlow(t *testing.T) {
	env := setupTest(t)
	organizer := createOrganizer(t, env)

	rec := call(env, env.event.Create, organizer, jsonRequest(http.MethodPost, "/events", validEventBody), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var event domain.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &event))

	attendeeRec, err := env.users.Create(context.Background(), "Attendee", "attendee@example.com", "hashed:pw")
	require.NoError(t, err)
	attendee, err := env.users.FindByID(context.Background(), attendeeRec.ID)
	require.NoError(t, err)

	t.Run("register updates both stores", func(t *testing.T) {
		rec := call(env, env.event.Register, attendee,
			httptest.NewRequest(http.MethodPost, "/events/1/register", nil), "1")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp handlers.RegistrationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Registrations)
		assert.NotEmpty(t, resp.ConfirmationCode)

		gotEvent, err := env.events.FindByID(context.Background(), event.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{attendee.ID}, gotEvent.RegisteredUsers)

		gotUser, err := env.users.FindByID(context.Background(), attendee.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{event.ID}, gotUser.RegisteredEvents)
	})

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		rec := call(env, env.event.Register, attendee,
			httptest.NewRequest(http.MethodPost, "/events/1/register", nil), "1")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("capacity exhausted conflicts", func(t *testing.T) {
		secondRec, err := env.users.Create(context.Background(), "Second", "second@example.com", "hashed:pw")
		require.NoError(t, err)
		second, err := env.users.FindByID(context.Background(), secondRec.ID)
		require.NoError(t, err)
		rec := call(env, env.event.Register, second,
			httptest.NewRequest(http.MethodPost, "/events/1/register", nil), "1")
		require.Equal(t, http.StatusCreated, rec.Code)

		thirdRec, err := env.users.Create(context.Background(), "Third", "third@example.com", "hashed:pw")
		require.NoError(t, err)
		third, err := env.users.FindByID(context.Background(), thirdRec.ID)
		require.NoError(t, err)
		rec = call(env, env.event.Register, third,
			httptest.NewRequest(http.MethodPost, "/events/1/register", nil), "1")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unregister updates both stores", func(t *testing.T) {
		rec := call(env, env.event.Unregister, attendee,
			httptest.NewRequest(http.MethodDelete, "/events/1/register", nil), "1")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		gotUser, err := env.users.FindByID(context.Background(), attendee.ID)
		require.NoError(t, err)
		assert.Empty(t, gotUser.RegisteredEvents)
	})

	t.Run("unregister when not registered conflicts", func(t *testing.T) {
		rec := call(env, env.event.Unregister, attendee,
			httptest.NewRequest(http.MethodDelete, "/events/1/register", nil), "1")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("register for missing event is 404", func(t *testing.T) {
		rec := call(env, env.event.Register, attendee,
			httptest.NewRequest(http.MethodPost, "/events/99/register", nil), "99")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestEventQueries(t *testing.T) {
	env := setupTest(t)
	organizer := createOrganizer(t, env)

	mk := func(title, category, date string) {
		_, err := env.events.Create(context.Background(), domain.Event{
			Title: title, Category: category, Date: date, Time: "12:00",
			Location: "Venue", Description: title + " description", Capacity: 50,
			OrganizerID: organizer.ID, OrganizerName: organizer.Name,
		})
		require.NoError(t, err)
	}
	mk("Old Music Festival", "music", "2020-01-01")
	mk("Future Tech Meetup", "technology", "2099-01-01")

	t.Run("list is sorted ascending", func(t *testing.T) {
		rec := call(env, env.event.List, nil, httptest.NewRequest(http.MethodGet, "/events", nil), "")
		require.Equal(t, http.StatusOK, rec.Code)

		var events []domain.Event
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
		require.Len(t, events, 2)
		assert.Equal(t, "Old Music Festival", events[0].Title)
		assert.False(t, events[0].IsUpcoming)
		assert.True(t, events[1].IsUpcoming)
	})

	t.Run("search requires a term", func(t *testing.T) {
		rec := call(env, env.event.Search, nil, httptest.NewRequest(http.MethodGet, "/events/search", nil), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("search matches case-insensitively", func(t *testing.T) {
		rec := call(env, env.event.Search, nil,
			httptest.NewRequest(http.MethodGet, "/events/search?q=MUSIC", nil), "")
		require.Equal(t, http.StatusOK, rec.Code)

		var events []domain.Event
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
		require.Len(t, events, 1)
		assert.Equal(t, "Old Music Festival", events[0].Title)
	})

	t.Run("stats aggregates", func(t *testing.T) {
		rec := call(env, env.event.Stats, nil, httptest.NewRequest(http.MethodGet, "/events/stats", nil), "")
		require.Equal(t, http.StatusOK, rec.Code)

		var stats domain.EventStats
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
		assert.Equal(t, 2, stats.TotalEvents)
		assert.Equal(t, 1, stats.UpcomingEvents)
		assert.Equal(t, map[string]int{"music": 1, "technology": 1}, stats.Categories)
	})

	t.Run("mine lists organizer events", func(t *testing.T) {
		rec := call(env, env.event.Mine, organizer, httptest.NewRequest(http.MethodGet, "/events/mine", nil), "")
		require.Equal(t, http.StatusOK, rec.Code)

		var events []domain.Event
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
		assert.Len(t, events, 2)
	})
}
