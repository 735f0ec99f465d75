// Package transport wraps the edge<->server WebSocket connection: the same
// coder/websocket dial/accept and wsjson read/write pair the teacher's
// LokutorTTS provider client uses against its own streaming endpoint,
// repurposed here as the primary edge transport rather than a provider leg.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// Conn serializes writes with a mutex because coder/websocket forbids
// concurrent writers on one connection; voxbridge's own single-writer
// discipline (session.Controller's tts_sender task) makes this a belt-and-
// braces guard rather than the primary safeguard.
type Conn struct {
	ws         *websocket.Conn
	writeMu    sync.Mutex
	maxMsgSize int64
}

// Dial opens an outbound connection, used by cmd/edge to reach the server.
func Dial(ctx context.Context, url string) (*Conn, error) {
	ws, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", url, err)
	}
	ws.SetReadLimit(1 << 20)
	return &Conn{ws: ws, maxMsgSize: 1 << 20}, nil
}

// Accept upgrades an inbound HTTP request, used by cmd/server's handler.
func Accept(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		return nil, fmt.Errorf("transport: accept: %w", err)
	}
	ws.SetReadLimit(1 << 20)
	return &Conn{ws: ws, maxMsgSize: 1 << 20}, nil
}

// SetMaxMessageSize bounds inbound frame size (spec §4.2); the default of
// 1MiB comfortably covers one uplink audio chunk.
func (c *Conn) SetMaxMessageSize(n int64) {
	c.maxMsgSize = n
	c.ws.SetReadLimit(n)
}

// ReadBinary blocks for the next binary audio chunk, discarding (and
// logging nothing about) any text frame it encounters, since the uplink
// direction carries no client-originated control frames in this spec.
func (c *Conn) ReadBinary(ctx context.Context) ([]byte, error) {
	for {
		msgType, data, err := c.ws.Read(ctx)
		if err != nil {
			return nil, err
		}
		if msgType == websocket.MessageBinary {
			return data, nil
		}
	}
}

// WriteControl marshals frame as JSON and sends it as a text message.
func (c *Conn) WriteControl(ctx context.Context, frame any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wsjson.Write(ctx, c.ws, frame)
}

// WriteBinary sends one raw PCM synthesis frame as a binary message.
func (c *Conn) WriteBinary(ctx context.Context, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.Write(ctx, websocket.MessageBinary, data)
}

// Ping sends a websocket ping frame and blocks until the matching pong
// arrives or ctx expires, the liveness probe spec §4.2 calls for.
// Controller's heartbeat task calls this on a ticker and tears the session
// down when it errors.
func (c *Conn) Ping(ctx context.Context) error {
	return c.ws.Ping(ctx)
}

// FrameKind distinguishes the two downlink message shapes the edge reads.
type FrameKind int

const (
	FrameControl FrameKind = iota
	FrameBinary
)

// ReadAny reads the next downlink message and reports whether it was a JSON
// control frame or a binary synthesis frame, used by cmd/edge since (unlike
// the server's uplink-only ReadBinary) the edge must multiplex both frame
// kinds off the same read loop.
func (c *Conn) ReadAny(ctx context.Context) (FrameKind, []byte, error) {
	msgType, data, err := c.ws.Read(ctx)
	if err != nil {
		return 0, nil, err
	}
	if msgType == websocket.MessageBinary {
		return FrameBinary, data, nil
	}
	return FrameControl, data, nil
}

// Close closes the underlying connection with a normal closure status.
func (c *Conn) Close() error {
	return c.ws.Close(websocket.StatusNormalClosure, "")
}

// CloseWithError closes the connection abnormally, used when a cooperative
// task fails and the session must be torn down.
func (c *Conn) CloseWithError(reason string) error {
	return c.ws.Close(websocket.StatusInternalError, reason)
}
