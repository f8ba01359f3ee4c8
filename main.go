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

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/synthpanel/synthpanel/actor"
	"github.com/synthpanel/synthpanel/api"
	"github.com/synthpanel/synthpanel/chatclient"
	"github.com/synthpanel/synthpanel/config"
	"github.com/synthpanel/synthpanel/evalclient"
	"github.com/synthpanel/synthpanel/policy"
	"github.com/synthpanel/synthpanel/service"
	"github.com/synthpanel/synthpanel/store"
)

func main() {
	// Load .env if present; real env vars win.
	_ = godotenv.Load()

	cfg := config.Load()

	log.Printf("Starting synthpanel backend...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Store driver: %s", cfg.StoreDriver)

	// Initialize session store
	sessionStore, err := newStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer sessionStore.Close()

	// Initialize evaluation provider
	var evaluator evalclient.Evaluator
	if cfg.EvalAPIURL != "" {
		evaluator = evalclient.NewClient(cfg.EvalAPIURL, cfg.EvalTimeout)
		log.Printf("Evaluation API: %s", cfg.EvalAPIURL)
	} else {
		evaluator = evalclient.NewMockEvaluator()
		log.Printf("WARN: EVAL_API_URL not set, using mock evaluator")
	}

	// Initialize chat provider
	var generator chatclient.Generator
	if cfg.ChatAPIURL != "" {
		generator = chatclient.NewClient(cfg.ChatAPIURL, cfg.ChatAPIKey, cfg.ChatModel, cfg.ChatTimeout)
		log.Printf("Chat API: %s (model %s)", cfg.ChatAPIURL, cfg.ChatModel)
	} else {
		generator = chatclient.NewMockGenerator()
		log.Printf("WARN: CHAT_API_URL not set, using mock generator")
	}

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize service
	svc := service.New(actor.NewRegistry(sessionStore), evaluator, generator, policyEngine, cfg)

	// Initialize handler
	h := api.NewHandler(svc)

	// Create Echo server
	server := echo.New()
	server.HideBanner = true

	// Middleware
	server.Use(middleware.Logger())
	server.Use(middleware.Recover())
	server.Use(middleware.CORS())

	// Register routes
	h.RegisterRoutes(server)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down synthpanel backend...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: server shutdown failed: %v", err)
	}

	log.Println("Shutdown complete")
}

func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case store.DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return store.New(store.DriverRedis,
			store.WithRedisClient(client),
			store.WithRedisTTL(cfg.RedisTTL))
	case store.DriverMemory:
		return store.New(store.DriverMemory)
	default:
		return store.New(store.DriverSQLite, store.WithSQLiteDSN(cfg.SQLiteDSN))
	}
}
