// Package server is the composition root: it opens storage, builds the
// services and handlers, mounts the routes and runs the HTTP server.
//
// DEPENDENCY FLOW:
//
//	config ─▶ sqlite.DB ─▶ services ─▶ handlers ─▶ chi router
//	       ─▶ session store (memory or Redis) ─▶ session.Manager
//	       ─▶ ideagen.Client (when an API key is set) ─▶ ideagen.Gateway
//
// Everything is wired in New, so a test can build the whole application
// from a Config and drive it through Handler().
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/sakif/creatorverse/internal/auth"
	"github.com/sakif/creatorverse/internal/config"
	"github.com/sakif/creatorverse/internal/handler"
	"github.com/sakif/creatorverse/internal/ideagen"
	"github.com/sakif/creatorverse/internal/metrics"
	"github.com/sakif/creatorverse/internal/middleware"
	sqliteRepo "github.com/sakif/creatorverse/internal/repository/sqlite"
	"github.com/sakif/creatorverse/internal/service"
	"github.com/sakif/creatorverse/internal/session"
)

// sweepInterval is how often the in-memory session store drops expired slots.
const sweepInterval = time.Minute

// Server owns every long-lived resource of the process. Close releases them.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	router   *chi.Mux
	registry *prometheus.Registry

	// closers run in reverse order on Close.
	closers []func() error
}

// New opens storage, seeds the default admin if there is none, and builds
// the router. On error everything opened so far is closed again.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		router:   chi.NewRouter(),
		registry: prometheus.NewRegistry(),
	}
	if err := s.build(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Server) build(ctx context.Context) error {
	cfg, logger := s.cfg, s.logger

	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	s.closers = append(s.closers, db.Close)

	store, err := s.sessionStore(ctx)
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokenService(cfg.Session.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords, err := auth.NewPasswordServiceWithCost(cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("creating password service: %w", err)
	}

	m := metrics.New(s.registry)
	sessions := session.NewManager(store, tokens, cfg.Session.TTL, cfg.Session.CookieSecure, logger)

	// === SERVICES ===
	authSvc := service.NewAuthService(db, db, passwords, store, logger, m)
	resetSvc := service.NewPasswordResetService(db, passwords, cfg.PublicBaseURL, logger, m)
	ideaSvc := service.NewIdeaService(db, s.gateway(m), logger)
	scheduleSvc := service.NewScheduleService(db, logger)
	adminSvc := service.NewAdminService(db, db, db, logger)
	dashboardSvc := service.NewDashboardService(db, db)
	healthSvc := service.NewHealthService(db, db, db, logger)

	if _, err := authSvc.EnsureDefaultAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		return fmt.Errorf("seeding default admin: %w", err)
	}

	// === HANDLERS ===
	s.routes(routeDeps{
		sessions: sessions,
		limiter:  middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		metrics:  m,
		auth:     handler.NewAuthHandler(authSvc, resetSvc, sessions, logger),
		ideas:    handler.NewIdeaHandler(ideaSvc, logger),
		schedule: handler.NewScheduleHandler(scheduleSvc, logger),
		admin:    handler.NewAdminHandler(adminSvc, dashboardSvc, logger),
		health:   handler.NewHealthHandler(healthSvc),
	})

	return nil
}

// sessionStore picks Redis when REDIS_ADDR is set and process memory
// otherwise.
func (s *Server) sessionStore(ctx context.Context) (session.Store, error) {
	if s.cfg.Redis.Addr == "" {
		mem := session.NewMemoryStore(sweepInterval)
		s.closers = append(s.closers, mem.Close)
		s.logger.Info("using in-memory session store")
		return mem, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     s.cfg.Redis.Addr,
		Password: s.cfg.Redis.Password,
		DB:       s.cfg.Redis.DB,
	})
	s.closers = append(s.closers, client.Close)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis at %s: %w", s.cfg.Redis.Addr, err)
	}

	s.logger.Info("using redis session store", slog.String("addr", s.cfg.Redis.Addr))
	return session.NewRedisStore(client), nil
}

// gateway builds the idea generator. Without an API key it runs in demo
// mode and never touches the network.
func (s *Server) gateway(m *metrics.Metrics) *ideagen.Gateway {
	gc := s.cfg.Generation
	if gc.APIKey == "" {
		s.logger.Warn("OPENAI_API_KEY not set, idea generation runs in demo mode")
		return ideagen.NewGateway(nil, gc.Timeout, s.logger, m)
	}

	client := ideagen.NewClient(ideagen.ClientConfig{
		APIKey:     gc.APIKey,
		BaseURL:    gc.BaseURL,
		Model:      gc.Model,
		HTTPClient: &http.Client{},
	})
	return ideagen.NewGateway(client, gc.Timeout, s.logger, m)
}

type routeDeps struct {
	sessions *session.Manager
	limiter  *middleware.RateLimiter
	metrics  *metrics.Metrics
	auth     *handler.AuthHandler
	ideas    *handler.IdeaHandler
	schedule *handler.ScheduleHandler
	admin    *handler.AdminHandler
	health   *handler.HealthHandler
}

// routes mounts every endpoint.
//
// MIDDLEWARE ORDER:
//  1. RequestID, RealIP  → request metadata for logs and the rate limiter
//  2. Logger             → one line and one metric per request
//  3. Recoverer          → a panicking handler becomes a 500
//  4. session middleware → principal in the request context
//
// Route groups then add RequireUser / RequireAdmin and the rate limiter.
func (s *Server) routes(d routeDeps) {
	r := s.router

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger, d.metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(d.sessions.Middleware)

	r.Get("/health", d.health.HandleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(d.limiter.Middleware)
				r.Post("/register", d.auth.HandleRegister)
				r.Post("/login", d.auth.HandleLogin)
				r.Post("/forgot-password", d.auth.HandleForgotPassword)
				r.Post("/reset-password/{token}", d.auth.HandleResetPassword)
			})
			r.Post("/logout", d.auth.HandleLogout)
			r.Get("/me", d.auth.HandleMe)
			r.Get("/reset-password/{token}", d.auth.HandleValidateReset)
		})

		r.With(d.limiter.Middleware).Post("/admin/login", d.auth.HandleAdminLogin)

		// Creator area.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser)
			r.Get("/dashboard", d.admin.HandleDashboard)

			r.Get("/ideas", d.ideas.HandleList)
			r.Post("/ideas", d.ideas.HandleCreate)
			r.Post("/ideas/generate", d.ideas.HandleGenerate)
			r.Delete("/ideas/{id}", d.ideas.HandleDelete)

			r.Get("/schedules", d.schedule.HandleList)
			r.Post("/schedules", d.schedule.HandleCreate)
			r.Delete("/schedules/{id}", d.schedule.HandleDelete)
		})

		// Admin area.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Get("/admin", d.admin.HandleAdminDashboard)
			r.Delete("/admin/users/{id}", d.admin.HandleDeleteUser)
		})
	})
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully:
// new connections are refused and in-flight requests get
// HTTP.ShutdownTimeout to finish. Start does not close storage; call Close
// afterwards.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.HTTP.Port),
		Handler:      s.router,
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
		IdleTimeout:  s.cfg.HTTP.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.HTTP.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.cfg.HTTP.Port)),
			slog.String("database", s.cfg.Database.Path),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	}
}

// Close releases the database, the session store and the Redis client.
// It is safe to call more than once.
func (s *Server) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
