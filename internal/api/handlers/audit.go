package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pingball/backend/internal/models"
)

// AuditLog is the read side of the persisted relay history.
type AuditLog interface {
	RecentHandoffs(ctx context.Context, limit int) ([]models.Handoff, error)
	RecentEvents(ctx context.Context, limit int) ([]models.EventRecord, error)
}

// GetHandoffs returns the most recent ball handoffs
func GetHandoffs(audit AuditLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		if audit == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Audit log not configured"})
			return
		}
		handoffs, err := audit.RecentHandoffs(c.Request.Context(), queryLimit(c, 50, 500))
		if err != nil {
			log.Printf("[API] Failed to fetch handoffs: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch handoffs"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"handoffs": handoffs})
	}
}

// GetEvents returns the most recent roster and link events
func GetEvents(audit AuditLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		if audit == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Audit log not configured"})
			return
		}
		events, err := audit.RecentEvents(c.Request.Context(), queryLimit(c, 50, 500))
		if err != nil {
			log.Printf("[API] Failed to fetch events: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
	}
}
