package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pingball/backend/internal/protocol"
	"github.com/pingball/backend/internal/relay"
)

type linkRequest struct {
	Orientation string `json:"orientation" binding:"required,oneof=h v"`
	First       string `json:"first" binding:"required"`
	Second      string `json:"second" binding:"required"`
}

// GetLinks returns the joined walls
func GetLinks(rl *relay.Relay) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"links": rl.Links()})
	}
}

// CreateLink joins two boards, as the operator console's h/v commands do
func CreateLink(rl *relay.Relay) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req linkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cmd, err := relay.ParseCommand(req.Orientation + " " + req.First + " " + req.Second)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := rl.Apply(cmd); err != nil {
			if errors.Is(err, relay.ErrUnknownBoard) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			log.Printf("[API] Link %s failed: %v", cmd, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to link boards"})
			return
		}

		log.Printf("[API] Linked %s", cmd)
		c.JSON(http.StatusCreated, gin.H{"links": rl.Links()})
	}
}

// DeleteLink breaks the link on one wall of a board
func DeleteLink(rl *relay.Relay) gin.HandlerFunc {
	return func(c *gin.Context) {
		wall, err := protocol.ParseWallSide(c.Param("wall"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := rl.Break(c.Param("board"), wall); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
