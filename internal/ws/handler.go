// Package ws lets board processes reach the relay over WebSocket.
package ws

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pingball/backend/internal/config"
	"github.com/pingball/backend/internal/middleware"
	"github.com/pingball/backend/internal/protocol"
	"github.com/pingball/backend/internal/relay"
)

func newUpgrader(cfg *config.Config) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return middleware.WebSocketOriginAllowed(cfg, r.Header.Get("Origin"))
		},
	}
}

// HandleWebSocket upgrades the request and serves it as a board connection.
// An optional board query parameter registers the board immediately.
func HandleWebSocket(rl *relay.Relay, cfg *config.Config) gin.HandlerFunc {
	upgrader := newUpgrader(cfg)
	return func(c *gin.Context) {
		var initial []string
		if board := c.Query("board"); board != "" {
			if !protocol.ValidName(board) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid board name"})
				return
			}
			initial = append(initial, protocol.SetBoardName{Name: board}.String())
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		go rl.Serve(NewConn(conn, initial...), "websocket")
	}
}
