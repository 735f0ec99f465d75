package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

func TestConn_WriteControlAndBinaryOrdering(t *testing.T) {
	received := make(chan string, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "closing")

		for i := 0; i < 3; i++ {
			msgType, data, err := conn.Read(r.Context())
			if err != nil {
				return
			}
			if msgType == websocket.MessageText {
				received <- "text:" + string(data)
			} else {
				received <- "bin"
			}
		}
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/"
	conn, err := Dial(context.Background(), url)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteControl(context.Background(), map[string]string{"type": "ready"}); err != nil {
		t.Fatalf("WriteControl: %v", err)
	}
	if err := conn.WriteBinary(context.Background(), []byte{1, 2, 3}); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	if err := conn.WriteControl(context.Background(), map[string]string{"type": "tts_end"}); err != nil {
		t.Fatalf("WriteControl: %v", err)
	}

	if got := <-received; !strings.Contains(got, "ready") {
		t.Fatalf("expected ready frame first, got %s", got)
	}
	if got := <-received; got != "bin" {
		t.Fatalf("expected binary frame second, got %s", got)
	}
	if got := <-received; !strings.Contains(got, "tts_end") {
		t.Fatalf("expected tts_end frame third, got %s", got)
	}
}

func TestConn_ReadBinarySkipsText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "closing")
		wsjson.Write(r.Context(), conn, map[string]string{"type": "noise"})
		conn.Write(r.Context(), websocket.MessageBinary, []byte{9, 8, 7})
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/"
	conn, err := Dial(context.Background(), url)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	data, err := conn.ReadBinary(context.Background())
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}
	if len(data) != 3 {
		t.Fatalf("expected 3 bytes, got %d", len(data))
	}
}
