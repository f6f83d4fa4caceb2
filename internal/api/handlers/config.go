package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pingball/backend/internal/config"
)

// GetConfig returns the public relay and physics settings boards should use
func GetConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"relay_port": cfg.RelayPort,
			"tick_ms":    cfg.TickMillis,
			"sub_steps":  cfg.SubSteps,
			"gravity":    cfg.Gravity,
			"friction1":  cfg.Friction1,
			"friction2":  cfg.Friction2,
		})
	}
}
