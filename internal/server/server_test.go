package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/evently/evently/internal/config"
	"github.com/evently/evently/internal/domain"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Addr:          ":0",
		DataDir:       "data",
		SessionSecret: "integration-test-secret",
	}
	s := NewWithConfig(cfg, afero.NewMemMapFs())
	s.RegisterRoutes()
	return s
}

// do sends a JSON request, replaying any session cookies collected so far.
func do(s *Server, method, target, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.E.ServeHTTP(rec, req)
	return rec
}

func TestServer_FullFlow(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Unauthenticated writes are rejected.
	rec = do(s, http.MethodPost, "/events", `{"title":"x"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Sign up an organizer; the response carries the session cookie.
	rec = do(s, http.MethodPost, "/signup",
		`{"name":"Org","email":"org@example.com","password":"longenough"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	organizerCookies := rec.Result().Cookies()
	require.NotEmpty(t, organizerCookies)

	// Create an event as the organizer.
	rec = do(s, http.MethodPost, "/events", `{
		"title": "City Marathon",
		"category": "sports",
		"date": "2099-04-10",
		"time": "08:00",
		"location": "Riverside",
		"description": "Annual marathon",
		"capacity": 1,
		"price": 0
	}`, organizerCookies)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var event domain.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &event))
	assert.True(t, event.IsUpcoming)

	// A second account registers for it.
	rec = do(s, http.MethodPost, "/signup",
		`{"name":"Runner","email":"runner@example.com","password":"longenough"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	runnerCookies := rec.Result().Cookies()

	rec = do(s, http.MethodPost, "/events/1/register", "", runnerCookies)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Capacity is 1, so the organizer cannot also register.
	rec = do(s, http.MethodPost, "/events/1/register", "", organizerCookies)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The runner's profile reflects the registration.
	rec = do(s, http.MethodGet, "/me", "", runnerCookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"registered_events":[1]`)

	// Public queries need no session.
	rec = do(s, http.MethodGet, "/events/search?q=marathon", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "City Marathon")

	rec = do(s, http.MethodGet, "/events/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_registrations":1`)

	// Cancel and verify both sides roll back.
	rec = do(s, http.MethodDelete, "/events/1/register", "", runnerCookies)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(s, http.MethodGet, "/me", "", runnerCookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"registered_events":[]`)

	// Logout invalidates the session.
	rec = do(s, http.MethodPost, "/logout", "", runnerCookies)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestServer_LoginFlow(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodPost, "/signup",
		`{"name":"Ana","email":"ana@example.com","password":"longenough"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("fresh session via login", func(t *testing.T) {
		rec := do(s, http.MethodPost, "/login",
			`{"email":"ana@example.com","password":"longenough"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		me := do(s, http.MethodGet, "/me", "", rec.Result().Cookies())
		require.Equal(t, http.StatusOK, me.Code)
		assert.Contains(t, me.Body.String(), "ana@example.com")
	})

	t.Run("bad password", func(t *testing.T) {
		rec := do(s, http.MethodPost, "/login",
			`{"email":"ana@example.com","password":"wrongwrong"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
