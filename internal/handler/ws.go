package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// clientMessage is one inbound websocket frame.
type clientMessage struct {
	Type       string `json:"type"`
	Query      string `json:"query,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
}

type wsError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Chat upgrades the connection and answers queries over it. Each "query"
// frame produces one result envelope; a sticky customer context can be set
// with a "set_customer" frame and applies to subsequent queries.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	var contextCustomerID string

	for {
		_, msgBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).Warn("websocket read failed")
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			h.sendWSError(conn, "invalid message format")
			continue
		}

		switch msg.Type {
		case "set_customer":
			contextCustomerID = msg.CustomerID
			_ = conn.WriteJSON(map[string]string{"type": "customer_set", "customer_id": contextCustomerID})

		case "query":
			if msg.Query == "" {
				h.sendWSError(conn, "query is required")
				continue
			}
			customerID := msg.CustomerID
			if customerID == "" {
				customerID = contextCustomerID
			}
			result, err := h.interp.Interpret(r.Context(), msg.Query, customerID)
			if err != nil {
				h.log.WithError(err).Error("websocket query failed on store fault")
				h.sendWSError(conn, "store unavailable")
				continue
			}
			if err := conn.WriteJSON(result); err != nil {
				h.log.WithError(err).Warn("websocket write failed")
				return
			}

		default:
			h.sendWSError(conn, "unknown message type: "+msg.Type)
		}
	}
}

func (h *Handler) sendWSError(conn *websocket.Conn, msg string) {
	if err := conn.WriteJSON(wsError{Type: "error", Error: msg}); err != nil {
		h.log.WithError(err).Warn("websocket write failed")
	}
}
