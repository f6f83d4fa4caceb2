package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database (optional, enables the handoff audit log)
	DatabaseURL    string
	MigrateOnStart bool

	// Redis (optional, enables event publishing and the command channel)
	RedisURL        string
	EventsChannel   string
	CommandsChannel string

	// HTTP admin API
	Port        string
	FrontendURL string

	// Relay
	RelayHost      string
	RelayPort      int
	ConsoleEnabled bool

	// Board client
	BoardName   string
	BoardLayout string
	TickMillis  int
	SubSteps    int
	Gravity     float64
	Friction1   float64
	Friction2   float64
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),

		// Redis
		RedisURL:        getEnv("REDIS_URL", ""),
		EventsChannel:   getEnv("EVENTS_CHANNEL", "pingball:events"),
		CommandsChannel: getEnv("COMMANDS_CHANNEL", "pingball:commands"),

		// HTTP
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Relay
		RelayHost:      getEnv("RELAY_HOST", "localhost"),
		RelayPort:      getEnvInt("RELAY_PORT", 10987),
		ConsoleEnabled: getEnvBool("CONSOLE_ENABLED", true),

		// Board
		BoardName:   getEnv("BOARD_NAME", "board"),
		BoardLayout: getEnv("BOARD_LAYOUT", "default"),
		TickMillis:  getEnvInt("TICK_MS", 50),
		SubSteps:    getEnvInt("SUB_STEPS", 20),
		Gravity:     getEnvFloat("GRAVITY", 25),
		Friction1:   getEnvFloat("FRICTION1", 0.025),
		Friction2:   getEnvFloat("FRICTION2", 0.025),
	}
}

// TickPeriod is the wall-clock length of one board tick.
func (c *Config) TickPeriod() time.Duration {
	return time.Duration(c.TickMillis) * time.Millisecond
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
