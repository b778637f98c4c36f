package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// WebSocketBridge dials a WebSocket server and emits the JSON-decoded
// payload of each inbound text message, generalizing the teacher's
// cmd/sio WebSocketCouplings (which bridges the same connection to a
// whole sio.Crew) down to a single configured Emit.
type WebSocketBridge struct {
	URL  string
	Emit EmitFunc

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebSocketBridge builds a Bridge that will dial url once Start is
// called.
func NewWebSocketBridge(url string, emit EmitFunc) *WebSocketBridge {
	return &WebSocketBridge{URL: url, Emit: emit}
}

// Start dials the server and begins reading inbound messages on a
// background goroutine, stopping when the connection errors or when
// ctx is found done. ctx is checked between messages, so a read that
// is already waiting is not interrupted by ctx alone.
func (b *WebSocketBridge) Start(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, b.URL, nil)
	if err != nil {
		return fmt.Errorf("chym/transport: websocket dial %s: %w", b.URL, err)
	}

	b.mu.Lock()
	b.conn = conn
	b.mu.Unlock()

	go b.readLoop(ctx, conn)
	return nil
}

func (b *WebSocketBridge) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, payload, err := conn.ReadMessage()
		if err != nil {
			log.Printf("chym/transport: websocket read: %v", err)
			return
		}
		if len(payload) == 0 {
			continue
		}

		var x interface{}
		if err := json.Unmarshal(payload, &x); err != nil {
			x = string(payload)
		}

		if err := b.Emit(x); err != nil {
			log.Printf("chym/transport: websocket emit failed: %v", err)
		}
	}
}

// Send writes value, JSON-encoded, as a single text frame — used to
// forward a reaction's reply or output molecule back to the peer.
func (b *WebSocketBridge) Send(value interface{}) error {
	js, err := json.Marshal(value)
	if err != nil {
		return err
	}

	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("chym/transport: websocket not connected")
	}
	return conn.WriteMessage(websocket.TextMessage, js)
}

// Close closes the underlying connection.
func (b *WebSocketBridge) Close() error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}
