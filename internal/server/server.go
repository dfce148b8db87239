package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ledgerly/apiserver/config"
	"github.com/ledgerly/apiserver/internal/db"
	"github.com/ledgerly/apiserver/internal/handlers"
	"github.com/ledgerly/apiserver/internal/mq"
	"github.com/ledgerly/apiserver/internal/services"
	"github.com/ledgerly/apiserver/internal/storage"
	"github.com/ledgerly/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		_ = dbConn.Close()
		return nil, errors.New("JWT_SECRET is required")
	}

	broker, err := newBroker(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	receiptStorage, err := newReceiptStorage(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		closeBroker(broker)
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	entryRepo := store.NewEntryRepository(dbConn)

	userService := services.NewUserService(userRepo)

	var events services.EventPublisher
	if broker != nil {
		events = broker
	}
	entryService := services.NewEntryService(entryRepo, events)

	var attachmentService *services.AttachmentService
	if receiptStorage != nil {
		attachmentRepo := store.NewAttachmentRepository(dbConn)
		attachmentService = services.NewAttachmentService(attachmentRepo, receiptStorage)
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/entries", func(r chi.Router) {
		handlers.EntryRouter(r, entryService, userService, attachmentService)
	})
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, userService, entryService, jwtSecret)
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

// newBroker builds the configured message broker. An empty backend means
// entry events are disabled.
func newBroker(ctx context.Context, cfg config.Config) (*mq.MQ, error) {
	switch cfg.MQ.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		return mq.New(client), nil
	case "pubsub":
		client, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, fmt.Errorf("pubsub: %w", err)
		}
		return mq.New(client), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.MQ.Backend)
	}
}

// newReceiptStorage builds the configured object storage. An empty backend
// means the receipt endpoints are not mounted.
func newReceiptStorage(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	var backend storage.ObjectStorage
	switch cfg.Storage.Backend {
	case "":
		return nil, nil
	case "minio":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		backend = client
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, fmt.Errorf("gcs: %w", err)
		}
		backend = client
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	s := storage.NewStorage(backend)
	if err := s.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}
	return s, nil
}

func closeBroker(broker *mq.MQ) {
	if broker != nil {
		_ = broker.Close()
	}
}
