package handler

import (
	"context"

	"ai-taxconsult-be/internal/dto"
	"ai-taxconsult-be/internal/pkg/logger"
	"ai-taxconsult-be/internal/pkg/serverutils"
	"ai-taxconsult-be/internal/service"
	"ai-taxconsult-be/pkg/agent/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ChatWSHandler serves interactive chat over a websocket. The client sends
// one ChatRequest JSON per turn and receives the same event frames the SSE
// endpoint produces, as {"name": ..., "data": ...} messages. The connection
// stays open across turns.
type ChatWSHandler struct {
	service service.IChatService
	logger  logger.ILogger
}

func NewChatWSHandler(service service.IChatService, log logger.ILogger) *ChatWSHandler {
	return &ChatWSHandler{
		service: service,
		logger:  log,
	}
}

func (h *ChatWSHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("ChatWS", "Starting chat websocket session", nil)
		defer h.logger.Info("ChatWS", "Chat websocket session ended", nil)

		for {
			var req dto.ChatRequest
			if err := conn.ReadJSON(&req); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Warn("ChatWS", "Unexpected websocket close", map[string]interface{}{
						"error": err.Error(),
					})
				}
				return
			}

			if err := serverutils.ValidateRequest(req); err != nil {
				h.writeEvent(conn, stream.Event{Name: stream.EventError, Data: err.Error()})
				continue
			}

			// the fiber ctx is not usable after the upgrade hijacks it
			sink := h.service.ChatStream(context.Background(), &req)
			for event := range sink.Events() {
				if !h.writeEvent(conn, event) {
					// drain so the producing goroutine can finish
					for range sink.Events() {
					}
					return
				}
			}
		}
	})(c)
}

func (h *ChatWSHandler) writeEvent(conn *websocket.Conn, event stream.Event) bool {
	if err := conn.WriteJSON(event); err != nil {
		h.logger.Warn("ChatWS", "Failed to write event frame", map[string]interface{}{
			"event": string(event.Name),
			"error": err.Error(),
		})
		return false
	}
	return true
}

// RegisterRoutes registers the websocket chat route.
func (h *ChatWSHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/chat", h.ServeWs)
}
