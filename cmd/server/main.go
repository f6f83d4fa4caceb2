package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pingball/backend/internal/api"
	"github.com/pingball/backend/internal/api/handlers"
	"github.com/pingball/backend/internal/config"
	"github.com/pingball/backend/internal/database"
	"github.com/pingball/backend/internal/migrations"
	"github.com/pingball/backend/internal/redis"
	"github.com/pingball/backend/internal/relay"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()
	relayPort := flag.Int("port", cfg.RelayPort, "TCP port for board connections")
	httpPort := flag.String("http", cfg.Port, "port for the admin API")
	console := flag.Bool("console", cfg.ConsoleEnabled, "read h/v commands from stdin")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sinks []relay.EventSink
	var audit handlers.AuditLog

	// Database is optional: it backs the handoff audit log
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if cfg.MigrateOnStart {
			log.Println("Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}

		eventLog := database.NewEventLog(db)
		sinks = append(sinks, eventLog)
		audit = eventLog
		log.Printf("[DB] Handoff audit log enabled")
	} else {
		log.Printf("[DB] DATABASE_URL not set - handoff audit log disabled")
	}

	// Redis is optional: it mirrors relay events and carries operator commands
	var rdbReady func(*relay.Relay)
	if cfg.RedisURL != "" {
		rdb, err := redis.Connect(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()

		publisher := redis.NewPublisher(rdb, cfg.EventsChannel)
		if err := publisher.ResetBoards(ctx); err != nil {
			log.Printf("[REDIS] Failed to reset board set: %v", err)
		}
		sinks = append(sinks, publisher)
		rdbReady = func(rl *relay.Relay) {
			redis.StartCommandSubscriber(ctx, rdb, cfg.CommandsChannel, rl)
		}
		log.Printf("[REDIS] Publishing relay events to %s", cfg.EventsChannel)
	} else {
		log.Printf("[REDIS] REDIS_URL not set - event publishing and remote commands disabled")
	}

	rl := relay.New(sinks...)
	go rl.Run(ctx)
	if rdbReady != nil {
		rdbReady(rl)
	}

	go func() {
		if err := rl.ListenAndServe(ctx, fmt.Sprintf(":%d", *relayPort)); err != nil {
			log.Fatalf("Relay listener failed: %v", err)
		}
	}()

	if *console {
		go func() {
			log.Println("[CONSOLE] Enter 'h LEFT RIGHT' or 'v TOP BOTTOM' to join boards")
			if err := rl.RunConsole(ctx, os.Stdin, os.Stdout); err != nil {
				log.Printf("[CONSOLE] stopped: %v", err)
			}
		}()
	}

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	api.SetupRoutes(router, rl, audit, cfg)

	srv := &http.Server{Addr: ":" + *httpPort, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Starting pingball relay: boards on port %d, admin API on port %s", *relayPort, *httpPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Println("Relay stopped")
}
