// Package synthesize implements the Synthesis Stage's provider adapters.
package synthesize

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/lokutor-ai/voxbridge/pkg/session"
)

// LokutorSynthesizer is a session.Synthesizer against Lokutor's own
// streaming TTS websocket, kept close to the teacher's LokutorTTS client:
// same persistent-connection-with-reconnect-on-error shape, now producing
// session.SynthesisFrame values instead of raw []byte chunks so the session
// controller can track per-utterance sequence and finality uniformly
// across providers.
type LokutorSynthesizer struct {
	apiKey string
	host   string
	scheme string
	mu     sync.Mutex
	conn   *websocket.Conn
}

func NewLokutorSynthesizer(apiKey string) *LokutorSynthesizer {
	return &LokutorSynthesizer{apiKey: apiKey, host: "api.lokutor.com", scheme: "wss"}
}

func (t *LokutorSynthesizer) getConn(ctx context.Context) (*websocket.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		return t.conn, nil
	}

	u := url.URL{Scheme: t.scheme, Host: t.host, Path: "/ws", RawQuery: "api_key=" + t.apiKey}
	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to lokutor: %w", err)
	}

	t.conn = conn
	return conn, nil
}

func (t *LokutorSynthesizer) StreamSynthesize(ctx context.Context, text, voice string, onFrame func(session.SynthesisFrame) error) error {
	conn, err := t.getConn(ctx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	req := map[string]interface{}{
		"text":    text,
		"voice":   voice,
		"speed":   1.05,
		"steps":   5,
		"version": "versa-1.0",
	}

	if err := wsjson.Write(ctx, conn, req); err != nil {
		t.conn = nil
		conn.Close(websocket.StatusAbnormalClosure, "failed to write json")
		return fmt.Errorf("failed to send synthesis request: %w", err)
	}

	for {
		messageType, payload, err := conn.Read(ctx)
		if err != nil {
			t.conn = nil
			conn.Close(websocket.StatusAbnormalClosure, "failed to read")
			return fmt.Errorf("failed to read from lokutor: %w", err)
		}

		switch messageType {
		case websocket.MessageBinary:
			if err := onFrame(session.SynthesisFrame{Data: payload}); err != nil {
				return err
			}
		case websocket.MessageText:
			msg := string(payload)
			if msg == "EOS" {
				return onFrame(session.SynthesisFrame{Final: true})
			}
			if len(msg) >= 4 && msg[:4] == "ERR:" {
				return fmt.Errorf("lokutor error: %s", msg)
			}
		}
	}
}

// Synthesize is the one-shot, complete-buffer fallback (spec §4.7): it
// drives the same streaming request as StreamSynthesize but accumulates
// every binary chunk into a single buffer before returning, instead of
// delivering them incrementally. Kept from the teacher's own
// Synthesize/StreamSynthesize pair in pkg/providers/tts/lokutor.go, which
// offered exactly this accumulate-then-return mode alongside its streaming
// one.
func (t *LokutorSynthesizer) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	var pcm []byte
	err := t.StreamSynthesize(ctx, text, voice, func(f session.SynthesisFrame) error {
		pcm = append(pcm, f.Data...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pcm, nil
}

func (t *LokutorSynthesizer) Name() string { return "lokutor" }

func (t *LokutorSynthesizer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn != nil {
		err := t.conn.Close(websocket.StatusNormalClosure, "")
		t.conn = nil
		return err
	}
	return nil
}
