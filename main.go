package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	gommonlog "github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"project-service/internal/audit"
	"project-service/internal/auth"
	"project-service/internal/config"
	"project-service/internal/http"
	"project-service/internal/infra/cache"
	"project-service/internal/repository/postgres"
	"project-service/internal/storage"
	"project-service/internal/submission"
)

const (
	envFilePath      = ".env"
	serverAddrPrefix = ":"
	signalBufferSize = 1
	logOutputFlags   = log.LstdFlags | log.Lshortfile
	appLoggerPrefix  = "project-service"
)

var shutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

func main() {
	if err := godotenv.Load(envFilePath); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	log.SetOutput(os.Stderr)
	log.SetFlags(logOutputFlags)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Println("Configuration loaded successfully")

	appLogger := gommonlog.New(appLoggerPrefix)
	appLogger.SetLevel(gommonlog.INFO)
	if !cfg.IsProduction() {
		appLogger.SetLevel(gommonlog.DEBUG)
	}

	version, err := postgres.Migrate(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	log.Printf("Database schema at version %d", version)

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Database connection established")

	projectRepo := postgres.NewProjectRepository(db)

	backend, uploadRoot, err := newStorageBackend(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s storage: %v", cfg.Storage.Backend, err)
	}

	log.Printf("Storage backend %q initialized", cfg.Storage.Backend)

	engine := storage.NewEngine(backend, appLogger)
	service := submission.NewService(projectRepo, engine, appLogger, submission.Options{
		MaxFileSize:        cfg.Storage.MaxFileSize,
		MaxFilesPerRequest: cfg.Storage.MaxFilesPerRequest,
		RollbackTimeout:    cfg.Storage.RollbackTimeout,
	})

	healthChecks := map[string]http.Pinger{"database": db}

	var projectCache cache.ProjectCache
	if cfg.Cache.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		defer client.Close()

		redisCache := cache.NewRedisCache(client, cfg.Cache.TTL, appLogger)
		if err := redisCache.Ping(context.Background()); err != nil {
			log.Printf("Warning: redis at %s unreachable, lookups will miss until it recovers: %v", cfg.Cache.RedisAddr, err)
		}
		healthChecks["redis"] = redisCache
		projectCache = redisCache

		log.Println("Redis project cache enabled")
	} else {
		projectCache = cache.NewLRUCache(cfg.Cache.LRUSize, cfg.Cache.TTL)

		log.Println("In-process project cache enabled")
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryDuration)
	authMiddleware := auth.NewMiddleware(jwtService)
	auditLogger := audit.NewLogger(db.Pool)

	serverDeps := &http.ServerDependencies{
		Config:         cfg,
		Service:        service,
		Reader:         projectRepo,
		Cache:          projectCache,
		AuditLogger:    auditLogger,
		AuditReader:    auditLogger,
		AuthMiddleware: authMiddleware,
		HealthChecks:   healthChecks,
		UploadRoot:     uploadRoot,
	}

	server := http.NewServer(serverDeps)

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := server.Start(serverAddrPrefix + cfg.Server.Port); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, signalBufferSize)
	signal.Notify(quit, shutdownSignals...)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}

// newStorageBackend returns the configured backend and, for the local
// backend, the directory to serve uploads from.
func newStorageBackend(cfg *config.Config) (storage.Backend, string, error) {
	if cfg.Storage.Backend == config.StorageBackendS3 {
		backend, err := storage.NewS3Backend(&cfg.AWS)
		return backend, "", err
	}

	backend, err := storage.NewLocalBackend(cfg.Storage.Root)
	if err != nil {
		return nil, "", err
	}
	return backend, backend.Root(), nil
}
