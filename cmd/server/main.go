package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/planivia/outreach-insights/internal/api"
	"github.com/planivia/outreach-insights/internal/config"
	"github.com/planivia/outreach-insights/internal/outreach"
	"github.com/planivia/outreach-insights/internal/pkg/logger"
	"github.com/planivia/outreach-insights/internal/store"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

// buildStore selects the KV backend from configuration.
func buildStore(cfg config.StorageConfig) (store.Store, error) {
	switch cfg.Type {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		return store.NewRedisStore(client, cfg.KeyPrefix), nil
	case "local":
		path := cfg.LocalPath
		if path == "" {
			path = "./data"
		}
		return store.NewFileStore(path)
	case "memory", "":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	if cfg.Logging.RedactPII != nil {
		logger.SetRedactPII(*cfg.Logging.RedactPII)
	}

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check failed: %v", err)
	}

	kv, err := buildStore(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	logger.Info("storage initialized", "type", cfg.Storage.Type)

	recorder := outreach.NewRecorder(kv)
	aggregator := outreach.NewAggregator(kv, recorder)
	engine := outreach.NewEngine(kv, recorder, aggregator, cfg.Outreach.GetHistoryLimit())

	// The comparison analyzer reads the platform's manually-sent email log
	// when a database is configured; without one it serves the zero result.
	var source outreach.TraditionalSource
	if cfg.Traditional.Enabled && cfg.Traditional.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.Traditional.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to open platform database: %v", err)
		}
		defer db.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			logger.Warn("platform database unreachable, comparison will be empty", "error", err)
		}
		cancel()
		source = outreach.NewSQLTraditionalSource(db)
	}
	comparator := outreach.NewComparator(aggregator, source)

	handlers := api.NewHandlers(recorder, aggregator, comparator, engine)
	router := api.SetupRoutes(handlers, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
