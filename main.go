package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xiaot623/potholefix/internal/adapter/backend"
	"github.com/xiaot623/potholefix/internal/config"
	"github.com/xiaot623/potholefix/internal/guard"
	"github.com/xiaot623/potholefix/internal/hub"
	"github.com/xiaot623/potholefix/internal/notify"
	"github.com/xiaot623/potholefix/internal/policy"
	"github.com/xiaot623/potholefix/internal/repository"
	"github.com/xiaot623/potholefix/internal/service"
	"github.com/xiaot623/potholefix/internal/session"
	handler "github.com/xiaot623/potholefix/internal/transport/http"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting portal...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Backend URL: %s", cfg.BackendURL)
	log.Printf("Session backend: %s", cfg.SessionBackend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize session storage
	db, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}
	defer db.Close()
	sessions := session.NewStore(db)

	// Initialize policy engine
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize backend client
	backendClient := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout)

	// Initialize hub
	connectionHub := hub.NewHub()
	go connectionHub.Run(ctx)

	// Initialize notification poller
	poller := notify.NewPoller(backendClient, sessions,
		notify.WithInterval(cfg.PollInterval),
		notify.WithPublisher(connectionHub),
	)

	// Initialize service
	svc := service.New(sessions, guard.New(policyEngine), backendClient, poller, cfg)
	go svc.RunSessionSweeper(ctx)

	server := handler.NewServer(cfg, svc, connectionHub)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Portal started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down portal...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}
	svc.Shutdown()
	cancel()

	log.Println("Portal stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		log.Printf("Redis: %s", cfg.RedisURL)
		s, err := store.NewRedisStore(ctx, cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.SessionBackendSQLite:
		log.Printf("Database: %s", cfg.DatabaseURL)
		s, err := store.NewSQLiteStore(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}
