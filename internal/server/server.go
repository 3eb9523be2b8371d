package server

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/evently/evently/internal/announcer"
	"github.com/evently/evently/internal/config"
	"github.com/evently/evently/internal/domain"
	"github.com/evently/evently/internal/handlers"
	"github.com/evently/evently/internal/hub"
	"github.com/evently/evently/internal/logging"
	appmw "github.com/evently/evently/internal/middleware"
	"github.com/evently/evently/internal/password"
	"github.com/evently/evently/internal/pubsub"
	"github.com/evently/evently/internal/store"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/afero"
)

// Server holds the dependencies for the HTTP server. Both stores are
// constructed exactly once here and handed to the routing layer by
// reference; there is no module-level singleton state.
type Server struct {
	E   *echo.Echo
	Cfg *config.Config

	userStore  *store.UserStore
	eventStore *store.EventStore
	bridge     *pubsub.WatermillBridge
	feedHub    *hub.Hub
	announcer  *announcer.Service

	authHandler  *handlers.AuthHandler
	eventHandler *handlers.EventHandler
	wsHandler    *handlers.WSHandler
}

// New creates a Server from the environment, persisting to the real
// filesystem.
func New() *Server {
	logging.New()
	return NewWithConfig(config.New(), afero.NewOsFs())
}

// NewWithConfig creates a Server with an explicit config and filesystem.
// Tests pass an afero.MemMapFs so no disk I/O happens.
func NewWithConfig(cfg *config.Config, fs afero.Fs) *Server {
	hasher := password.New()

	userStore, err := store.NewUserStore(fs, filepath.Join(cfg.DataDir, "users.json"), hasher)
	if err != nil {
		slog.Error("Failed to load user store", "error", err)
		os.Exit(1)
	}
	eventStore, err := store.NewEventStore(fs, filepath.Join(cfg.DataDir, "events.json"))
	if err != nil {
		slog.Error("Failed to load event store", "error", err)
		os.Exit(1)
	}

	bridge := pubsub.NewWatermillBridge()

	feedHub := hub.NewHub()
	go feedHub.Run()

	announcerSvc := announcer.New(bridge, feedHub)
	if err := announcerSvc.Start(context.Background()); err != nil {
		slog.Error("Failed to start announcer", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	e.Use(appmw.Logger)
	e.Use(echomw.Recover())

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
	}
	e.Use(session.Middleware(sessionStore))

	return &Server{
		E:            e,
		Cfg:          cfg,
		userStore:    userStore,
		eventStore:   eventStore,
		bridge:       bridge,
		feedHub:      feedHub,
		announcer:    announcerSvc,
		authHandler:  handlers.NewAuthHandler(userStore, hasher, bridge),
		eventHandler: handlers.NewEventHandler(eventStore, userStore, bridge),
		wsHandler:    handlers.NewWSHandler(feedHub),
	}
}

// UserStore is a getter for the server's user store, useful for testing.
func (s *Server) UserStore() domain.UserRepository {
	return s.userStore
}

// EventStore is a getter for the server's event store, useful for testing.
func (s *Server) EventStore() domain.EventRepository {
	return s.eventStore
}
