package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evently/evently/internal/domain"
	"github.com/evently/evently/internal/middleware"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserStore serves a single user.
type fakeUserStore struct {
	user *domain.User
}

func (f *fakeUserStore) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	if f.user != nil && f.user.ID == id {
		return f.user, nil
	}
	return nil, domain.ErrNotFound
}

func setupAuthTest(store middleware.UserStore) *echo.Echo {
	e := echo.New()
	e.Use(session.Middleware(sessions.NewCookieStore([]byte("test-secret"))))

	// Route that establishes a session, standing in for login.
	e.POST("/session", func(c echo.Context) error {
		if err := middleware.SetAuthenticatedUser(c, 1); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})

	e.GET("/protected", func(c echo.Context) error {
		user := middleware.CurrentUser(c)
		return c.String(http.StatusOK, user.Email)
	}, middleware.Auth(store))

	return e
}

func TestAuth(t *testing.T) {
	user := &domain.User{ID: 1, Name: "Ana", Email: "ana@example.com"}

	t.Run("no session is rejected", func(t *testing.T) {
		e := setupAuthTest(&fakeUserStore{user: user})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid session resolves the user", func(t *testing.T) {
		e := setupAuthTest(&fakeUserStore{user: user})

		// Establish a session and replay its cookie.
		loginRec := httptest.NewRecorder()
		e.ServeHTTP(loginRec, httptest.NewRequest(http.MethodPost, "/session", nil))
		cookies := loginRec.Result().Cookies()
		require.NotEmpty(t, cookies)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		for _, cookie := range cookies {
			req.AddCookie(cookie)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ana@example.com", rec.Body.String())
	})

	t.Run("session for a deleted user is rejected", func(t *testing.T) {
		e := setupAuthTest(&fakeUserStore{user: nil})

		loginRec := httptest.NewRecorder()
		e.ServeHTTP(loginRec, httptest.NewRequest(http.MethodPost, "/session", nil))

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		for _, cookie := range loginRec.Result().Cookies() {
			req.AddCookie(cookie)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
