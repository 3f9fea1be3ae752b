package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
)

const healthTimeout = 2 * time.Second

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		UserSvc    *user.Service
		SchoolSvc  *school.Service
		Validate   *validator.Validate
		Translator ut.Translator
		// Registerer receives the request metrics; nil keeps them on a private registry.
		Registerer prometheus.Registerer
		// DB is pinged by /health; nil when running in memory.
		DB         Pinger
	}

	Pinger interface {
		PingContext(ctx context.Context) error
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in TEST mode
	if !conf.TestMode {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, "X-User-Id", "X-Auth-Token"},
		MaxAge:       86400,
	}))
	s.app.Use(metricsMiddleware(s.deps.Registerer))

	s.app.GET("/", s.home)
	s.app.GET("/health", s.health)

	registerAuthAPI(s.app, s.deps.UserSvc, s.deps.Validate)
	registerStudentAPI(s.app, s.deps.UserSvc, s.deps.Validate)
	registerGradeAPI(s.app, s.deps.SchoolSvc, s.deps.Validate)
	registerScheduleAPI(s.app, s.deps.SchoolSvc, s.deps.Validate)
	registerClassAPI(s.app, s.deps.SchoolSvc, s.deps.Validate)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}

// health reports whether the database answers. A database that stops answering
// shuts the server down.
func (s *server) health(ctx echo.Context) error {
	if s.deps.DB != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request().Context(), healthTimeout)
		defer cancel()
		if err := s.deps.DB.PingContext(pingCtx); err != nil {
			return errors.Wrap(core.NewShutdownError("database unreachable: "+err.Error()), "checking health")
		}
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
