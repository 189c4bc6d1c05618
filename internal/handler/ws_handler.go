package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"realtime-service/internal/middleware"
	"realtime-service/internal/realtime"
	"realtime-service/internal/tenancy"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin is enforced by the gateway
	},
}

// WSHandler upgrades websocket connections and hands them to the
// connection router.
type WSHandler struct {
	hub       *realtime.Hub
	router    *realtime.Router
	validator middleware.TokenValidator
	logger    *zap.Logger
}

func NewWSHandler(hub *realtime.Hub, router *realtime.Router, validator middleware.TokenValidator, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		hub:       hub,
		router:    router,
		validator: validator,
		logger:    logger,
	}
}

// HandleWebSocket godoc
// @Summary      Open the realtime websocket
// @Description  Upgrades to a websocket connection. The token is passed as a query parameter because browser websockets cannot set headers.
// @Tags         realtime
// @Param        token query string false "JWT access token"
// @Success      101
// @Router       /ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	// A failed or absent token does not block the upgrade: the
	// connection proceeds unauthenticated and can only join public
	// scopes. Chat joins stay permanently denied for it.
	identity := h.resolveIdentity(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := realtime.NewClient(h.hub, conn, identity, h.logger)
	client.Register()
	h.router.HandleConnect(client)

	go client.WritePump()
	go client.ReadPump(h.router)
}

func (h *WSHandler) resolveIdentity(c *gin.Context) *tenancy.Identity {
	token := c.Query("token")
	if token == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	identity, err := h.validator.ValidateToken(ctx, token)
	if err != nil {
		h.logger.Warn("websocket token rejected, continuing unauthenticated",
			zap.Error(err))
		return nil
	}
	return identity
}
