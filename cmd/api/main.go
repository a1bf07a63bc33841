package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logger"
	"storefront/internal/server"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Close server resources
	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(cfg.Catalog.Path)
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// openDatabase connects to postgres and brings the snapshot schema up to date
func openDatabase(cfg *config.Config, log *zap.Logger) (database.Service, error) {
	dbService, err := database.New(cfg.Database)
	if err != nil {
		return nil, err
	}

	if health := dbService.Health(); health["status"] != "up" {
		dbService.Close()
		return nil, fmt.Errorf("database unhealthy: %s", health["error"])
	}

	if err := database.RunMigrations(dbService.DB(), log); err != nil {
		dbService.Close()
		return nil, err
	}

	if cfg.IsDevelopment() {
		if err := database.GetMigrationStatus(dbService.DB()); err != nil {
			log.Warn("Failed to read migration status", zap.Error(err))
		}
	}
	return dbService, nil
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	log.Info("Starting storefront API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("store_backend", cfg.Store.Backend),
	)

	c, err := loadCatalog(cfg)
	if err != nil {
		log.Fatal("Failed to load catalog", zap.Error(err))
	}
	log.Info("Catalog loaded",
		zap.Int("products", len(c.Products())),
		zap.Int("categories", len(c.Categories())),
	)

	deps := server.Dependencies{Catalog: c}

	if cfg.Store.Backend == config.StoragePostgres {
		dbService, err := openDatabase(cfg, log)
		if err != nil {
			log.Fatal("Failed to prepare database", zap.Error(err))
		}
		deps.Database = dbService
	}

	if cfg.Store.Backend == config.StorageRedis || cfg.RateLimit.Enabled {
		client, err := connectRedis(context.Background(), cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		deps.Redis = client
	}

	// Create server
	srv, err := server.NewServer(cfg, log, deps)
	if err != nil {
		log.Fatal("Failed to create server", zap.Error(err))
	}

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
