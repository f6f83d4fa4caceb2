package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/pingball/backend/internal/api/handlers"
	"github.com/pingball/backend/internal/config"
	"github.com/pingball/backend/internal/middleware"
	"github.com/pingball/backend/internal/relay"
	"github.com/pingball/backend/internal/ws"
)

// SetupRoutes configures all API routes. audit may be nil when no database
// is configured.
func SetupRoutes(router *gin.Engine, rl *relay.Relay, audit handlers.AuditLog, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)
		v1.GET("/config", handlers.GetConfig(cfg))

		// Board connections over WebSocket
		v1.GET("/ws", middleware.WebSocketCORSCheck(cfg), ws.HandleWebSocket(rl, cfg))

		boards := v1.Group("/boards")
		{
			boards.GET("", handlers.GetBoards(rl))
			boards.POST("/:board/restart", handlers.RestartBoard(rl))
		}

		layouts := v1.Group("/layouts")
		{
			layouts.GET("", handlers.GetLayouts)
			layouts.GET("/:name", handlers.GetLayout)
		}

		links := v1.Group("/links")
		{
			links.GET("", handlers.GetLinks(rl))
			links.POST("", handlers.CreateLink(rl))
			links.DELETE("/:board/:wall", handlers.DeleteLink(rl))
		}

		v1.GET("/handoffs", handlers.GetHandoffs(audit))
		v1.GET("/events", handlers.GetEvents(audit))
	}
}
