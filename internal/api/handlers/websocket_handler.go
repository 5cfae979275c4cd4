package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/Maanisha27/MediTriage/pkg/logger"
)

type jsonWriter interface {
	WriteJSON(v interface{}) error
}

type WebSocketHandler struct {
	routing *RoutingHandler
	timeout time.Duration
}

func NewWebSocketHandler(routing *RoutingHandler) *WebSocketHandler {
	return &WebSocketHandler{
		routing: routing,
		timeout: 30 * time.Second,
	}
}

type wsMessage struct {
	Type string `json:"type"`
	routingRequest
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg wsMessage
		err := c.ReadJSON(&msg)
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Error("Failed to read WebSocket message", zap.Error(err))
			}
			break
		}

		if msg.Type != "route" {
			continue
		}

		if err := h.streamRouting(c, msg.routingRequest); err != nil {
			logger.Error("Failed to stream routing", zap.Error(err))
			break
		}
	}
}

// streamRouting sends a status line, one message per recommendation in rank
// order, then a completion message carrying the decision path. Only a failed
// write is returned; routing errors go to the client as error messages.
func (h *WebSocketHandler) streamRouting(w jsonWriter, body routingRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if err := h.send(w, "status", map[string]interface{}{"content": "Routing patient..."}); err != nil {
		return err
	}

	result, err := h.routing.route(ctx, body)
	if err != nil {
		msg := "Failed to route patient"
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			msg = reqErr.msg
		} else {
			logger.Error("Failed to route patient", zap.Error(err))
		}
		return h.send(w, "error", map[string]interface{}{"error": msg})
	}

	for _, rec := range result.Recommendations {
		if err := h.send(w, "recommendation", map[string]interface{}{"recommendation": rec}); err != nil {
			return err
		}
	}

	return h.send(w, "complete", map[string]interface{}{
		"patient_id":       result.PatientID,
		"count":            len(result.Recommendations),
		"load_balanced":    result.LoadBalanced,
		"decision_path":    result.DecisionPath,
		"missing_profiles": result.MissingProfiles,
		"rationale":        result.Rationale,
	})
}

func (h *WebSocketHandler) send(w jsonWriter, msgType string, fields map[string]interface{}) error {
	fields["type"] = msgType
	return w.WriteJSON(fields)
}
