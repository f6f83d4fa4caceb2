package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pingball/backend/internal/client"
	"github.com/pingball/backend/internal/config"
	"github.com/pingball/backend/internal/game"
	"github.com/pingball/backend/internal/transport"
	"github.com/pingball/backend/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	host := flag.String("host", cfg.RelayHost, "relay host")
	port := flag.Int("port", cfg.RelayPort, "relay TCP port")
	wsURL := flag.String("ws", "", "relay WebSocket URL (overrides host/port), e.g. ws://localhost:8080/api/v1/ws")
	name := flag.String("name", cfg.BoardName, "board name")
	layout := flag.String("layout", cfg.BoardLayout, "built-in layout: "+strings.Join(game.LayoutNames(), ", "))
	draw := flag.Duration("draw", time.Second, "how often to print the board, 0 to disable")
	flag.Parse()

	physics := game.Physics{
		Gravity:   cfg.Gravity,
		Friction1: cfg.Friction1,
		Friction2: cfg.Friction2,
	}
	build := func() (*game.Board, error) {
		return game.NewLayout(*layout, *name, physics)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var conn transport.Conn
	var err error
	if *wsURL != "" {
		conn, err = ws.Dial(ctx, *wsURL)
	} else {
		conn, err = transport.Dial(ctx, fmt.Sprintf("%s:%d", *host, *port))
	}
	if err != nil {
		log.Fatalf("Failed to connect to relay: %v", err)
	}

	c, err := client.New(build, conn, client.Options{Period: cfg.TickPeriod(), SubSteps: cfg.SubSteps})
	if err != nil {
		log.Fatalf("Failed to build board: %v", err)
	}

	// SIGHUP resets the board and asks the relay to drop its wall links
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			if err := c.Restart(); err != nil {
				log.Printf("[CLIENT] restart failed: %v", err)
			}
		}
	}()

	if *draw > 0 {
		go func() {
			ticker := time.NewTicker(*draw)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					fmt.Println(c.Snapshot().Drawing)
				}
			}
		}()
	}

	log.Printf("[CLIENT] Running board %s (layout %s)", *name, *layout)
	if err := c.Run(ctx); err != nil {
		log.Fatalf("Board stopped: %v", err)
	}
}
