package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/campusfit/gym-backend/internal/services"
)

// WebSocketHandler upgrades the connection and attaches it to the hub
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		userType := c.GetString("userType")

		services.HandleWebSocket(hub, c.Writer, c.Request, userID, userType)
	}
}
