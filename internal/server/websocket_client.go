package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// pongWait bounds how long a silent subscriber is kept; pings go out
	// every pingPeriod so an idle but healthy client stays well inside it.
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// WebSocketClient is one feed subscriber. Reads happen on the connection's
// own goroutine; writes may come from any goroutine.
type WebSocketClient struct {
	conn *websocket.Conn
	mu   sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
}

// NewWebSocketClient wraps conn. A positive maxMessageSize caps inbound
// frames.
func NewWebSocketClient(conn *websocket.Conn, maxMessageSize int64) *WebSocketClient {
	if maxMessageSize > 0 {
		conn.SetReadLimit(maxMessageSize)
	}
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	return &WebSocketClient{conn: conn, done: make(chan struct{})}
}

// ReadRequest blocks for the next request frame. A frame that is not valid
// JSON yields an invalid request rather than an error so the subscriber can
// be told what went wrong.
func (c *WebSocketClient) ReadRequest() (Request, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return Request{}, err
	}
	c.conn.SetReadDeadline(time.Now().Add(pongWait))

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{Type: requestInvalid, Error: err.Error()}, nil
	}
	return req, nil
}

// Send writes ev as one JSON text frame.
func (c *WebSocketClient) Send(ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(ev)
}

// keepAlive pings the subscriber every period until Close or a failed ping.
func (c *WebSocketClient) keepAlive(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// Close stops keepalive and closes the connection. It is safe to call more
// than once.
func (c *WebSocketClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

// RemoteAddr returns the remote address as a string.
func (c *WebSocketClient) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
