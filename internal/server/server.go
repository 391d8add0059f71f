package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/snaplife/apiserver/config"
	"github.com/snaplife/apiserver/internal/db"
	"github.com/snaplife/apiserver/internal/events"
	"github.com/snaplife/apiserver/internal/handlers"
	"github.com/snaplife/apiserver/internal/services"
	"github.com/snaplife/apiserver/internal/session"
	"github.com/snaplife/apiserver/internal/storage"
	"github.com/snaplife/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	publisher  *events.Publisher
}

// New constructs a Server with its full dependency graph: database,
// session store, blob store, optional event publisher, services and routes.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sessionStore, err := newSessionStore(cfg, dbConn)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	blobStore, err := newBlobStore(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if err := blobStore.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("ensuring blob bucket: %w", err)
	}

	publisher, err := newPublisher(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	followRepo := store.NewFollowRepository(dbConn)
	postRepo := store.NewPostRepository(dbConn)

	staleAfter := time.Duration(cfg.Session.StaleAfterHours) * time.Hour

	userService := services.NewUserService(userRepo, postRepo)
	sessionService := services.NewSessionService(userRepo, sessionStore, staleAfter)
	followService := services.NewFollowService(userRepo, followRepo, sessionStore, cfg.AllowSelfFollow)

	var accountPublisher services.EventPublisher
	if publisher != nil {
		accountPublisher = publisher
	}
	accountService := services.NewAccountService(userRepo, postRepo, sessionStore, blobStore, accountPublisher, logger)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/snaplife/api", func(api chi.Router) {
		api.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, accountService, sessionService)
		})
		api.Route("/user", func(r chi.Router) {
			handlers.UserRouter(r, userService, sessionService, followService)
		})
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
		publisher:  publisher,
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
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}

func newSessionStore(cfg config.Config, dbConn *sql.DB) (session.Store, error) {
	switch cfg.Session.Backend {
	case "postgres":
		return session.NewPostgresStore(dbConn), nil
	case "memory":
		return session.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

func newBlobStore(ctx context.Context, cfg config.Config) (*storage.BlobStore, error) {
	switch cfg.Blob.Backend {
	case "minio":
		backend, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		return storage.NewBlobStore(backend, cfg.Blob.RetryAttempts), nil
	case "gcs":
		backend, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		return storage.NewBlobStore(backend, cfg.Blob.RetryAttempts), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Blob.Backend)
	}
}

func newPublisher(ctx context.Context, cfg config.Config) (*events.Publisher, error) {
	switch cfg.Events.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		backend, err := events.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return events.NewPublisher(backend, cfg.Events.Channel), nil
	case "pubsub":
		backend, err := events.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return events.NewPublisher(backend, cfg.Events.Channel), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Events.Backend)
	}
}
