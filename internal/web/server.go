package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/flock"

	"phrasebook/internal/activity"
	"phrasebook/internal/auth"
	"phrasebook/internal/config"
	"phrasebook/internal/dictionary"
	"phrasebook/internal/guide"
	"phrasebook/internal/logging"
	"phrasebook/internal/search"
	"phrasebook/internal/services"
)

const shutdownTimeout = 5 * time.Second

// Options carries the collaborators the server needs.
type Options struct {
	Store    *dictionary.Store
	Activity *activity.Log
	Logger   *slog.Logger
}

// Server is the HTTP front end.
type Server struct {
	cfg      *config.Config
	store    *dictionary.Store
	search   *search.Service
	activity *activity.Log
	users    auth.Users
	signer   *auth.Signer
	hub      *hub
	logger   *slog.Logger
	help     template.HTML

	engine *gin.Engine
	lock   *flock.Flock
}

// New wires the routes. It fails when no users are configured.
func New(cfg *config.Config, opts Options) (*Server, error) {
	if cfg == nil || opts.Store == nil || opts.Activity == nil {
		return nil, errors.New("web server requires config, store, and activity log")
	}
	users := auth.ParseUsers(cfg.Server.Users)
	if len(users) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "web", "users", "", auth.ErrNoUsers)
	}
	signer, err := auth.NewSigner(cfg.Server.Secret, cfg.SessionTTL())
	if err != nil {
		return nil, err
	}
	logger := logging.NewComponentLogger(opts.Logger, "web")
	if cfg.Server.Secret == "" {
		logging.WarnWithContext(logger, "no session secret configured; using a random one",
			"session_secret_generated",
			logging.String(logging.FieldErrorHint, "set server.secret or PHRASEBOOK_SECRET"),
			logging.String(logging.FieldImpact, "sessions end when the server restarts"),
		)
	}
	help, err := guide.HTML()
	if err != nil {
		return nil, fmt.Errorf("render help: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		store:    opts.Store,
		search:   search.NewService(opts.Store, cfg.Search, logger),
		activity: opts.Activity,
		users:    users,
		signer:   signer,
		hub:      newHub(logger),
		logger:   logger,
		help:     help,
		lock:     flock.New(cfg.LockPath()),
	}
	s.activity.Subscribe(s.hub)

	engine, err := s.routes()
	if err != nil {
		return nil, err
	}
	s.engine = engine
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestID(), s.requestLogger())

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	engine.SetHTMLTemplate(tmpl)

	engine.GET("/login", s.handleLoginPage)
	engine.POST("/login", s.handleLogin)
	engine.GET("/help", s.handleHelp)
	engine.GET("/api/health", s.handleHealth)
	engine.POST("/api/login", s.handleAPILogin)

	pages := engine.Group("/", s.requirePageAuth())
	{
		pages.GET("/", s.handleIndex)
		pages.POST("/logout", s.handleLogout)
		pages.POST("/upload", s.handleUpload)
		pages.POST("/phrases", s.handleManualUpsert)
		pages.POST("/adopt/:id", s.handleAdopt)
		pages.POST("/translations", s.handleSaveTranslation)
		pages.GET("/export.csv", s.handleExport)
		pages.GET("/activity.csv", s.handleActivityDownload)
	}

	apiGroup := engine.Group("/api", s.requireAPIAuth())
	{
		apiGroup.GET("/phrases", s.handleAPIListPhrases)
		apiGroup.POST("/phrases", s.handleAPIUpsert)
		apiGroup.DELETE("/phrases/:id", s.handleAPIDelete)
		apiGroup.POST("/phrases/:id/adopt", s.handleAPIAdopt)
		apiGroup.GET("/search", s.handleAPISearch)
		apiGroup.POST("/import", s.handleAPIImport)
		apiGroup.GET("/activity", s.handleAPIActivity)
	}

	engine.GET("/ws/activity", s.requireAPIAuth(), s.handleActivityFeed)
	return engine, nil
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully. ready, when non-nil, receives the bound address.
func (s *Server) Run(ctx context.Context, ready func(addr string)) error {
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return services.Wrap(services.ErrConfiguration, "web", "lock",
			fmt.Sprintf("another phrasebook server is already running (%s)", s.lock.Path()), nil)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			logging.WarnWithContext(s.logger, "failed to release server lock", "server_lock_release_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the lock file if no server is running"),
				logging.String(logging.FieldImpact, "next start may report a running server"),
			)
		}
	}()

	listener, err := net.Listen("tcp", s.cfg.Server.Bind)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.hub.run(hubCtx)

	server := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	addr := listener.Addr().String()
	s.logger.Info("web server listening", logging.String("address", addr), logging.String("lock", s.lock.Path()))
	if ready != nil {
		ready(addr)
	}

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	stopHub()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("web server stopped")
	return nil
}
