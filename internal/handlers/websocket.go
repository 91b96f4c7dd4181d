package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopping-list/internal/auth"
	"shopping-list/internal/websocket"
)

type WebSocketHandler struct {
	hub *websocket.Hub
}

func NewWebSocketHandler(hub *websocket.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// HandleWebSocket upgrades the connection and streams list snapshots.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	device, ok := auth.GetDevice(c)
	if !ok || device == "" {
		device = c.DefaultQuery("device", "local")
	}

	h.hub.ServeWS(c, device)
}

// GetDevices returns the devices currently connected
func (h *WebSocketHandler) GetDevices(c *gin.Context) {
	devices := h.hub.Devices()

	c.JSON(http.StatusOK, gin.H{
		"devices": devices,
		"count":   len(devices),
	})
}
