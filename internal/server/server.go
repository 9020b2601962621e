package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mblog/apiserver/config"
	"github.com/mblog/apiserver/internal/auth"
	"github.com/mblog/apiserver/internal/db"
	"github.com/mblog/apiserver/internal/handlers"
	"github.com/mblog/apiserver/internal/logging"
	"github.com/mblog/apiserver/internal/mail"
	"github.com/mblog/apiserver/internal/mq"
	"github.com/mblog/apiserver/internal/services"
	"github.com/mblog/apiserver/internal/store"
)

// Server wraps the HTTP server and its owned resources.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	bus        *mq.Bus
	mailer     *mail.Mailer
	logger     *slog.Logger
}

// New constructs a Server: opens the database, wires repositories,
// services and handlers, and mounts the routes.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	logger := logging.New(cfg.LogLevel)

	tokens, err := auth.NewTokenService(cfg.Token)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	bus, err := mq.NewFromConfig(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	var sender mail.Sender
	if strings.TrimSpace(cfg.SMTP.Host) != "" {
		sender, err = mail.NewSMTPSender(cfg.SMTP)
		if err != nil {
			_ = bus.Close()
			_ = dbConn.Close()
			return nil, err
		}
	} else {
		sender = mail.NewLogSender(logger)
	}
	mailer := mail.NewMailer(sender, cfg.BaseURL)

	userRepo := store.NewUserRepository(dbConn)
	postRepo := store.NewPostRepository(dbConn)

	userService := services.NewUserService(userRepo, tokens, mailer, bus, logger)
	postService := services.NewPostService(postRepo, bus, logger)

	authHandler := handlers.NewAuthHandler(userService, tokens)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(logging.IntoContext(r.Context(), logger)))
		})
	})
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, tokens)
	})
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, userService, authHandler)
	})
	router.Route("/posts", func(r chi.Router) {
		handlers.PostRouter(r, postService, authHandler.RequireAuth)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		bus:        bus,
		mailer:     mailer,
		logger:     logger,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown releases owned resources and stops the HTTP server.
func (s *Server) Shutdown() error {
	if s.mailer != nil {
		_ = s.mailer.Close()
	}
	if s.bus != nil {
		_ = s.bus.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
