package middleware

import (
	"context"
	"net/http"

	"github.com/evently/evently/internal/domain"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

// UserContextKey is the echo context key under which the authenticated user
// is stored for downstream handlers.
const UserContextKey = "user"

// SessionName is the cookie session holding the authenticated user id.
const SessionName = "evently-session"

// sessionUserIDKey is the session value key for the user id.
const sessionUserIDKey = "user_id"

// UserStore is the slice of the user store the middleware needs.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// Auth creates a middleware that protects routes requiring authentication.
// It resolves the session cookie to a user and stores it in the context;
// requests without a valid session get a 401 JSON response.
func Auth(store UserStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := session.Get(SessionName, c)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			rawID, ok := sess.Values[sessionUserIDKey]
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			userID, ok := rawID.(int64)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			user, err := store.FindByID(c.Request().Context(), userID)
			if err != nil {
				// The session references a deleted account; clear it.
				sess.Options.MaxAge = -1
				_ = sess.Save(c.Request(), c.Response())
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}

// SetAuthenticatedUser stores the user id in the session after a successful
// signup or login.
func SetAuthenticatedUser(c echo.Context, userID int64) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	sess.Options.Path = "/"
	sess.Options.MaxAge = 86400 * 7
	sess.Options.HttpOnly = true
	sess.Values[sessionUserIDKey] = userID
	return sess.Save(c.Request(), c.Response())
}

// ClearAuthenticatedUser drops the session on logout.
func ClearAuthenticatedUser(c echo.Context) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = -1
	delete(sess.Values, sessionUserIDKey)
	return sess.Save(c.Request(), c.Response())
}

// CurrentUser returns the authenticated user placed in the context by Auth.
func CurrentUser(c echo.Context) *domain.User {
	if user, ok := c.Get(UserContextKey).(*domain.User); ok {
		return user
	}
	return nil
}
