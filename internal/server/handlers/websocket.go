package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/frogstop/payments/internal/server/websocket"
	"github.com/frogstop/payments/pkg/config"
)

// WebSocketHandler upgrades /status connections and registers them with
// the manager so they receive payment updates.
type WebSocketHandler struct {
	wsManager *websocket.Manager
	upgrader  gws.Upgrader
}

func NewWebSocketHandler(wsManager *websocket.Manager, cfg config.WebSocketConfig) *WebSocketHandler {
	readBuffer := cfg.ReadBufferSize
	if readBuffer == 0 {
		readBuffer = 1024
	}
	writeBuffer := cfg.WriteBufferSize
	if writeBuffer == 0 {
		writeBuffer = 1024
	}

	return &WebSocketHandler{
		wsManager: wsManager,
		upgrader: gws.Upgrader{
			ReadBufferSize:  readBuffer,
			WriteBufferSize: writeBuffer,
			CheckOrigin: func(r *http.Request) bool {
				if !cfg.CheckOrigin {
					return true
				}
				origin, err := url.Parse(r.Header.Get("Origin"))
				if err != nil {
					return false
				}
				return origin.Host == r.Host
			},
		},
	}
}

func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Failed to upgrade to WebSocket",
		})
		return
	}

	client := websocket.NewClient(conn)
	h.wsManager.AddClient(client)

	log.Info().Str("client_id", client.ID()).Msg("WebSocket client connected")

	defer func() {
		h.wsManager.RemoveClient(client.ID())
		client.Close()
		log.Info().Str("client_id", client.ID()).Msg("WebSocket client disconnected")
	}()

	client.Wait()
}
