package handlers

import (
	"github.com/adomtravels/adomtravels-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// WebSocketHandler connects an admin dashboard to the live status update feed
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		if err := hub.ServeClient(c.Writer, c.Request, userID); err != nil {
			c.JSON(500, gin.H{"error": "Failed to upgrade connection"})
		}
	}
}
