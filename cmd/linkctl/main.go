package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pingball/backend/internal/config"
	"github.com/pingball/backend/internal/redis"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()
	source := flag.String("source", "linkctl", "name recorded with the command")
	flag.Parse()

	if flag.NArg() != 3 {
		log.Fatalf("usage: linkctl [-source NAME] h|v FIRST SECOND")
	}
	command := strings.Join(flag.Args(), " ")

	if cfg.RedisURL == "" {
		log.Fatalf("REDIS_URL must be set")
	}
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	receivers, err := redis.PublishCommand(ctx, rdb, cfg.CommandsChannel, command, *source)
	if err != nil {
		log.Fatalf("Failed to publish command: %v", err)
	}
	if receivers == 0 {
		log.Printf("WARNING: no relay is subscribed to %s", cfg.CommandsChannel)
		os.Exit(1)
	}
	log.Printf("✓ Sent %q to %d relay(s)", command, receivers)
}
