package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	_ "github.com/gemsketch/api/docs" // Swagger docs (generated)
	"github.com/gemsketch/api/internal/auth"
	"github.com/gemsketch/api/internal/config"
	httpServer "github.com/gemsketch/api/internal/http"
	"github.com/gemsketch/api/internal/logging"
	"github.com/gemsketch/api/internal/relay"
	"github.com/gemsketch/api/internal/upload"
	"github.com/gemsketch/api/internal/user"
)

// @title           Gemsketch API
// @version         1.0
// @description     REST backend for the Gemsketch jewelry sketch-to-render studio.

// @host      localhost:3001
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Initialize database connection. A failure here is fatal; everything
	// else degrades.
	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Initialize the profile cache. Redis being down is not fatal: profile
	// reads fall back to the database.
	var profileCache user.Cache
	if redisClient, err := initRedis(cfg.Redis); err != nil {
		logger.Warn("redis unavailable, running without profile cache", "error", err.Error())
	} else {
		defer redisClient.Close()
		profileCache = user.NewProfileCache(redisClient, cfg.Redis.ProfileTTL)
	}

	// Initialize PASETO token service
	tokenService, err := auth.NewPasetoService(cfg.Auth.PasetoKey)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Initialize the blob store for uploads
	blobStore, err := initBlobStore(cfg.Upload)
	if err != nil {
		return fmt.Errorf("failed to initialize blob store: %w", err)
	}

	// Initialize services and handlers
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, profileCache, tokenService, logger, cfg.Auth.TokenDuration)
	userHandler := user.NewHandler(userService, logger)

	uploadHandler := upload.NewHandler(blobStore, logger, cfg.Upload.MaxMemoryMB)

	relayClient := relay.NewClient(cfg.Relay.Endpoint, cfg.Relay.Timeout)
	relayHandler := relay.NewHandler(relayClient, logger, cfg.Upload.MaxMemoryMB)

	authMiddleware := auth.NewMiddleware(tokenService)

	// Initialize router
	router := httpServer.NewRouter(cfg, userHandler, uploadHandler, relayHandler, authMiddleware, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB initializes the database connection and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return bun.NewDB(sqlDB, pgdialect.New()), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

// initBlobStore picks the upload backend from configuration.
func initBlobStore(cfg config.UploadConfig) (upload.BlobStore, error) {
	if cfg.Backend == "s3" {
		return upload.NewS3Store(context.Background(), upload.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return upload.NewDiskStore(cfg.Dir)
}
