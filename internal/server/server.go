package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/useraccounts/apiserver/config"
	"github.com/useraccounts/apiserver/internal/auth"
	"github.com/useraccounts/apiserver/internal/db"
	"github.com/useraccounts/apiserver/internal/handlers"
	"github.com/useraccounts/apiserver/internal/mq"
	"github.com/useraccounts/apiserver/internal/services"
	"github.com/useraccounts/apiserver/internal/storage"
	"github.com/useraccounts/apiserver/internal/store"
)

// Server wraps the HTTP server, router, and owned connections.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     mq.Backend
}

// New constructs a Server: it opens the database, builds the repositories,
// services, and token issuer, and wires the routes. Every dependency is
// passed explicitly; nothing lives in package-level state.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenIssuer(
		cfg.JWT.Secret,
		cfg.JWT.Algorithm,
		time.Duration(cfg.JWT.TTLMinutes)*time.Minute,
	)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	broker, err := mq.NewBackend(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	objects, err := storage.NewBackend(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		closeBroker(broker)
		return nil, err
	}
	if objects != nil {
		if err := objects.EnsureBucket(ctx); err != nil {
			_ = dbConn.Close()
			closeBroker(broker)
			return nil, err
		}
	}

	passwords := auth.NewPasswordHasher(cfg.Bcrypt.Cost)

	userRepo := store.NewUserRepository(dbConn)
	tenantRepo := store.NewTenantRepository(dbConn)

	var events services.EventPublisher
	if broker != nil {
		events = broker
	}
	userService := services.NewUserService(userRepo, passwords, events)
	tenantService := services.NewTenantService(tenantRepo)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz(dbConn))
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, userService, cfg.ExposePasswordHash)
		handlers.TenantRouter(r, tenantService)
		handlers.AvatarRouter(r, userService, objects)
	})
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, passwords, tokens)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8001
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
		broker:     broker,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	closeBroker(s.broker)
	return s.httpServer.Close()
}

func closeBroker(broker mq.Backend) {
	if broker != nil {
		_ = broker.Close()
	}
}
