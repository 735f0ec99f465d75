package synthesize

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/lokutor-ai/voxbridge/pkg/session"
)

func TestLokutorSynthesizer_StreamsFramesThenFinal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "closing")

		var req map[string]interface{}
		if err := wsjson.Read(r.Context(), conn, &req); err != nil {
			return
		}
		conn.Write(r.Context(), websocket.MessageBinary, []byte{1, 2, 3})
		conn.Write(r.Context(), websocket.MessageBinary, []byte{4, 5, 6})
		conn.Write(r.Context(), websocket.MessageText, []byte("EOS"))
	}))
	defer server.Close()

	synth := &LokutorSynthesizer{apiKey: "test-key", host: strings.TrimPrefix(server.URL, "http://"), scheme: "ws"}

	var frames []session.SynthesisFrame
	err := synth.StreamSynthesize(context.Background(), "hello", "default", func(f session.SynthesisFrame) error {
		frames = append(frames, f)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("expected 2 data frames + 1 final, got %d", len(frames))
	}
	if !frames[len(frames)-1].Final {
		t.Fatal("expected last frame to be final")
	}
	if synth.Name() != "lokutor" {
		t.Fatalf("unexpected name: %s", synth.Name())
	}
}
