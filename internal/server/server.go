package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/omarwdev/feedhub/internal/auth"
	"github.com/omarwdev/feedhub/internal/config"
	"github.com/omarwdev/feedhub/internal/database"
	"github.com/omarwdev/feedhub/internal/mq"
	postgresrepo "github.com/omarwdev/feedhub/internal/repository/postgres"
	"github.com/omarwdev/feedhub/internal/service"
	"github.com/omarwdev/feedhub/internal/storage"
	"github.com/omarwdev/feedhub/internal/transport/http/handlers"
	"github.com/omarwdev/feedhub/internal/transport/http/middleware"
	"github.com/omarwdev/feedhub/internal/transport/ws"
)

// Server wires the whole application together and owns its lifecycle.
type Server struct {
	httpServer *http.Server
	pool       *pgxpool.Pool
	broker     mq.Backend
	cancel     context.CancelFunc
}

func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	pool, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	postRepo := postgresrepo.NewPostRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	userService := service.NewUserService(userRepo)
	postService := service.NewPostService(postRepo)

	// Asset storage
	blobStore, localStore, err := newBlobStore(ctx, cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}

	// Event broadcaster
	hub := ws.NewHub()
	go hub.Run()

	bgCtx, cancel := context.WithCancel(context.Background())

	// With a broker configured, mutations publish to the fanout exchange and
	// every instance forwards bridged events into its local hub. Without one,
	// the notifier talks to the hub directly.
	var broker mq.Backend
	if cfg.AMQPURL != "" {
		rabbit, err := mq.NewRabbitMQClient(cfg.AMQPURL)
		if err != nil {
			cancel()
			pool.Close()
			return nil, fmt.Errorf("connecting to broker: %w", err)
		}
		broker = rabbit
		postService.SetNotifier(mq.NewBridgeNotifier(broker))
		go mq.Forward(bgCtx, broker, func(action string) {
			hub.Broadcast(ws.NewFeedEvent(action))
		})
		log.Println("Event bridge enabled")
	} else {
		postService.SetNotifier(ws.NewHubNotifier(hub))
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	uploadHandler := handlers.NewUploadHandler(blobStore)
	rpcHandler := handlers.NewRPCHandler(postService, userService)

	verifier := auth.NewVerifier(cfg.JWTSecret)

	router := chi.NewRouter()
	router.Use(
		chimiddleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		chimiddleware.Logger,
		chimiddleware.Timeout(60*time.Second),
		middleware.CORS,
		middleware.Identity(verifier),
	)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})

	router.Post("/auth/signup", authHandler.Signup)
	router.Post("/auth/login", authHandler.Login)

	router.Put("/post-image", uploadHandler.PostImage)
	router.Post("/rpc", rpcHandler.Handle)
	router.Get("/ws", ws.ServeWS(hub))

	if localStore != nil {
		fileServer := http.FileServer(http.Dir(localStore.Root()))
		router.Handle("/images/*", fileServer)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		pool:       pool,
		broker:     broker,
		cancel:     cancel,
	}, nil
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting server on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops background work and closes all connections.
func (s *Server) Shutdown() error {
	s.cancel()
	if s.broker != nil {
		_ = s.broker.Close()
	}
	s.pool.Close()
	return s.httpServer.Close()
}

func newBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, *storage.LocalStore, error) {
	switch cfg.StorageBackend {
	case "minio":
		minioStore, err := storage.NewMinioStore(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := minioStore.EnsureBucket(ctx); err != nil {
			return nil, nil, fmt.Errorf("ensuring bucket: %w", err)
		}
		return minioStore, nil, nil
	default:
		localStore, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			return nil, nil, err
		}
		return localStore, localStore, nil
	}
}
