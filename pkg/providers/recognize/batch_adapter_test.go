package recognize

import (
	"context"
	"testing"
	"time"

	"github.com/lokutor-ai/voxbridge/pkg/session"
)

type stubBatchRecognizer struct{ text string }

func (s *stubBatchRecognizer) Transcribe(ctx context.Context, audioPCM []byte, locale string) (string, error) {
	return s.text, nil
}
func (s *stubBatchRecognizer) Name() string { return "stub" }

func TestBatchAdapter_FlushesAccumulatedAudio(t *testing.T) {
	a := NewBatchAdapter(&stubBatchRecognizer{text: "hola mundo"}, 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Start(ctx, "es-ES"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	a.Submit(session.AudioChunk{1, 2, 3})

	select {
	case ev := <-a.Events():
		if ev.Type != session.RecognizerFinal || ev.Text != "hola mundo" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for flushed transcript")
	}
}

func TestBatchAdapter_SkipsEmptyBuffer(t *testing.T) {
	a := NewBatchAdapter(&stubBatchRecognizer{text: "should not appear"}, 15*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Start(ctx, "es-ES"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case ev := <-a.Events():
		t.Fatalf("expected no event for an empty buffer, got %+v", ev)
	case <-time.After(60 * time.Millisecond):
	}
}
