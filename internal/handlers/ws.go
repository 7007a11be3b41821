package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	apierrors "github.com/tasket/tasket-server/internal/errors"
	"github.com/tasket/tasket-server/internal/middleware"
	"github.com/tasket/tasket-server/internal/realtime"
)

// WSHandler upgrades authenticated requests to WebSocket connections and
// hands them to the hub.
type WSHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	log      *logrus.Logger
}

func NewWSHandler(hub *realtime.Hub, frontendURL string, log *logrus.Logger) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == frontendURL
			},
		},
		log: log,
	}
}

// Connect handles GET /ws
func (h *WSHandler) Connect(c *gin.Context) {
	employeeID, ok := middleware.GetEmployeeID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	h.hub.HandleConnection(conn, employeeID)
}
