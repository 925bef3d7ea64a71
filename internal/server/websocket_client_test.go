package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialEcho(t *testing.T, handle func(*websocket.Conn)) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketClient_ReadRequest(t *testing.T) {
	conn := dialEcho(t, func(c *websocket.Conn) {
		c.WriteMessage(websocket.TextMessage, []byte(`{"type":"recompute","targets":["monster:chicken","task:easy"]}`))
		c.WriteMessage(websocket.TextMessage, []byte(`not json`))
		time.Sleep(100 * time.Millisecond)
	})
	client := NewWebSocketClient(conn, 0)

	req, err := client.ReadRequest()
	if err != nil {
		t.Fatalf("ReadRequest: %v", err)
	}
	if req.Type != RequestRecompute || len(req.Targets) != 2 || req.Targets[1].Task != "easy" {
		t.Errorf("ReadRequest = %+v", req)
	}

	req, err = client.ReadRequest()
	if err != nil {
		t.Fatalf("ReadRequest: %v", err)
	}
	if req.Type != requestInvalid || req.Error == "" {
		t.Errorf("malformed frame gave %+v, want invalid request", req)
	}
}

func TestWebSocketClient_Send(t *testing.T) {
	received := make(chan string, 1)
	conn := dialEcho(t, func(c *websocket.Conn) {
		_, msg, err := c.ReadMessage()
		if err != nil {
			return
		}
		received <- string(msg)
	})
	client := NewWebSocketClient(conn, 0)

	if err := client.Send(Event{Type: EventError, Message: "boom"}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case msg := <-received:
		if !strings.Contains(msg, `"type":"error"`) || !strings.Contains(msg, `"message":"boom"`) {
			t.Errorf("unexpected frame %s", msg)
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for message")
	}
}

func TestWebSocketClient_RemoteAddr(t *testing.T) {
	done := make(chan struct{})
	conn := dialEcho(t, func(*websocket.Conn) { <-done })
	defer close(done)

	if NewWebSocketClient(conn, 1024).RemoteAddr() == "" {
		t.Error("RemoteAddr should not be empty")
	}
}

func TestWebSocketClient_KeepAlive(t *testing.T) {
	pinged := make(chan struct{}, 1)
	conn := dialEcho(t, func(c *websocket.Conn) {
		c.SetPingHandler(func(string) error {
			select {
			case pinged <- struct{}{}:
			default:
			}
			return nil
		})
		c.ReadMessage()
	})
	client := NewWebSocketClient(conn, 0)
	go client.keepAlive(10 * time.Millisecond)

	select {
	case <-pinged:
	case <-time.After(time.Second):
		t.Fatal("no ping received")
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
