package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pingball/backend/internal/game"
	"github.com/pingball/backend/internal/relay"
)

// GetBoards returns the boards currently registered with the relay
func GetBoards(rl *relay.Relay) gin.HandlerFunc {
	return func(c *gin.Context) {
		boards := rl.Boards()
		c.JSON(http.StatusOK, gin.H{
			"boards": boards,
			"count":  len(boards),
		})
	}
}

// RestartBoard unlinks every wall of a board
func RestartBoard(rl *relay.Relay) gin.HandlerFunc {
	return func(c *gin.Context) {
		board := c.Param("board")
		rl.Restart(board)
		c.JSON(http.StatusOK, gin.H{
			"board": board,
			"links": rl.Links(),
		})
	}
}

// GetLayouts lists the built-in board layouts
func GetLayouts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"layouts": game.LayoutNames()})
}

// GetLayout returns the initial state of one built-in layout
func GetLayout(c *gin.Context) {
	name := c.Param("name")
	board, err := game.NewLayout(name, name, game.DefaultPhysics())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, board.Snapshot())
}
