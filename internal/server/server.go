package server

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/guilherme-santos/uniplanner/internal"
	"github.com/guilherme-santos/uniplanner/internal/planner"
)

type TokenManager interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*internal.SessionToken, error)
	ValidAccessToken(context.Context, *internal.SessionToken) (string, error)
}

// Identity resolves who owns an access token. It is only used for logging.
type Identity interface {
	Email(ctx context.Context, accessToken string) (string, error)
}

type Planner interface {
	AddEvent(_ context.Context, accessToken string, _ planner.EventRequest) (*planner.AddResult, error)
	Upcoming(_ context.Context, accessToken string) ([]*internal.UpcomingEvent, error)

	Events(context.Context) ([]*internal.Event, error)
	Event(_ context.Context, id int64) (*internal.Event, error)
	CreateEvent(context.Context, planner.EventRequest) (*internal.Event, error)
	UpdateEvent(_ context.Context, id int64, _ planner.EventRequest) (*internal.Event, error)
	DeleteEvent(_ context.Context, id int64) error

	Subjects(context.Context) ([]*internal.Subject, error)
	Subject(_ context.Context, id int64) (*internal.Subject, error)
	CreateSubject(context.Context, planner.SubjectRequest) (*internal.Subject, error)
	UpdateSubject(_ context.Context, id int64, _ planner.SubjectRequest) (*internal.Subject, error)
	DeleteSubject(_ context.Context, id int64) error
}

type Config struct {
	PostLoginURL      string
	CookieSecure      bool
	SessionExpiration time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration

	// AccessLog receives one line per request. Nil disables it.
	AccessLog io.Writer
}

type Server struct {
	logger   *slog.Logger
	cfg      Config
	planner  Planner
	tokens   TokenManager
	identity Identity
	sessions *session.Store
	app      *fiber.App
}

// New builds the HTTP application. identity may be nil.
func New(logger *slog.Logger, cfg Config, p Planner, tokens TokenManager, identity Identity) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PostLoginURL == "" {
		cfg.PostLoginURL = "/"
	}
	if cfg.SessionExpiration == 0 {
		cfg.SessionExpiration = 30 * 24 * time.Hour
	}

	s := &Server{
		logger:   logger.With("component", "server"),
		cfg:      cfg,
		planner:  p,
		tokens:   tokens,
		identity: identity,
		sessions: session.New(session.Config{
			Expiration:     cfg.SessionExpiration,
			KeyLookup:      "cookie:" + sessionCookie,
			CookieHTTPOnly: true,
			CookieSecure:   cfg.CookieSecure,
			CookieSameSite: fiber.CookieSameSiteLaxMode,
		}),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "uniplanner",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	if cfg.AccessLog != nil {
		s.app.Use(fiberlog.New(fiberlog.Config{Output: cfg.AccessLog}))
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth := s.app.Group("/auth")
	auth.Get("/google/login", s.handleLogin)
	auth.Get("/google/callback", s.handleCallback)
	auth.Post("/signout", s.handleSignOut)
	auth.Get("/session", s.handleSession)

	api := s.app.Group("/api")
	api.Get("/subjects", s.listSubjects)
	api.Post("/subjects", s.createSubject)
	api.Get("/subjects/:id", s.getSubject)
	api.Put("/subjects/:id", s.updateSubject)
	api.Delete("/subjects/:id", s.deleteSubject)

	api.Get("/events", s.listEvents)
	api.Post("/events", s.createEvent)
	api.Get("/events/:id", s.getEvent)
	api.Put("/events/:id", s.updateEvent)
	api.Delete("/events/:id", s.deleteEvent)

	cal := api.Group("/calendar", s.requireToken)
	cal.Post("/add", s.addCalendarEvent)
	cal.Get("/upcoming", s.upcomingEvents)
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
