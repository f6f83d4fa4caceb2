package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// queryLimit reads ?limit=N, falling back to def and capping at max
func queryLimit(c *gin.Context, def, max int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
