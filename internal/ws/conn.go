package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
)

const (
	// outBuffer bounds the per-connection send queue; a slow reader loses
	// frames rather than stalling fanout for the whole room.
	outBuffer  = 256
	pingPeriod = 20 * time.Second
)

// Conn wraps a websocket connection with an ID for logging and a buffered
// outbound queue drained by WriteLoop.
type Conn struct {
	id  string
	ws  *websocket.Conn
	out chan []byte
}

// Accept upgrades HTTP to websocket. Origin enforcement happens in the CORS
// layer of the router, so the upgrade itself allows any origin.
func Accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{
		id:  uuid.NewString(),
		ws:  ws,
		out: make(chan []byte, outBuffer),
	}
}

// ID is the server-assigned connection identifier.
func (c *Conn) ID() string { return c.id }

// Read blocks until the next text/binary frame arrives.
// Returns false once the connection is closed.
func (c *Conn) Read(ctx context.Context) ([]byte, bool) {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			return nil, false
		}
		if typ == websocket.MessageText || typ == websocket.MessageBinary {
			return data, true
		}
	}
}

// WriteLoop sends queued frames plus periodic pings until ctx is cancelled.
func (c *Conn) WriteLoop(ctx context.Context) {
	t := time.NewTicker(pingPeriod)
	defer t.Stop()

	for {
		select {
		case b := <-c.out:
			_ = c.ws.Write(ctx, websocket.MessageText, b)
		case <-t.C:
			_ = c.ws.Ping(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// enqueue adds a frame to the send queue, dropping it if the queue is full.
func (c *Conn) enqueue(b []byte) {
	select {
	case c.out <- b:
	default:
	}
}

// Close closes the websocket normally.
func (c *Conn) Close() error { return c.ws.Close(websocket.StatusNormalClosure, "bye") }
