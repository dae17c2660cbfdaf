package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/finwell-io/wellness-service/internal/models"
)

func dialChat(t *testing.T, h *Handler) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.Chat))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestChatQueryRoundTrip(t *testing.T) {
	h, d := newTestHandler()
	d.interp.result = models.NewSuccess("list customers", models.CustomerListResult{
		Type:  models.ResultTypeCustomerList,
		Count: 2,
	})
	conn := dialChat(t, h)

	if err := conn.WriteJSON(clientMessage{Type: "query", Query: "list customers"}); err != nil {
		t.Fatal(err)
	}
	var got models.QueryResult
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatal(err)
	}
	if !got.Success {
		t.Errorf("expected success envelope, got %+v", got)
	}
}

func TestChatStickyCustomerContext(t *testing.T) {
	h, d := newTestHandler()
	d.interp.result = models.NewSuccess("balance", nil)
	conn := dialChat(t, h)

	if err := conn.WriteJSON(clientMessage{Type: "set_customer", CustomerID: "CUST000009"}); err != nil {
		t.Fatal(err)
	}
	var ack map[string]string
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatal(err)
	}
	if ack["type"] != "customer_set" {
		t.Fatalf("expected customer_set ack, got %v", ack)
	}

	if err := conn.WriteJSON(clientMessage{Type: "query", Query: "what is the balance"}); err != nil {
		t.Fatal(err)
	}
	var result models.QueryResult
	if err := conn.ReadJSON(&result); err != nil {
		t.Fatal(err)
	}
	if d.interp.gotCtx != "CUST000009" {
		t.Errorf("sticky customer not forwarded, got %q", d.interp.gotCtx)
	}
}

func TestChatRejectsBadFrames(t *testing.T) {
	h, _ := newTestHandler()
	conn := dialChat(t, h)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{bad")); err != nil {
		t.Fatal(err)
	}
	var got wsError
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatal(err)
	}
	if got.Type != "error" {
		t.Errorf("expected error frame, got %+v", got)
	}

	if err := conn.WriteJSON(clientMessage{Type: "unknown_thing"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got.Error, "unknown message type") {
		t.Errorf("expected unknown type error, got %+v", got)
	}
}
