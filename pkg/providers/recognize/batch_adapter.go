package recognize

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/lokutor-ai/voxbridge/pkg/session"
)

// BatchAdapter turns a BatchRecognizer into a session.StreamingRecognizer
// by accumulating ingress chunks into a buffer and flushing it to the
// underlying provider on a fixed cadence, the same buffer-then-dispatch
// shape the teacher's ManagedStream used around its own audioBuf
// *bytes.Buffer before handing audio to a one-shot STT call. It exists for
// operators who configure a recognizer that has no realtime endpoint.
type BatchAdapter struct {
	recognizer BatchRecognizer
	flushEvery time.Duration

	mu     sync.Mutex
	buf    *bytes.Buffer
	locale string
	events chan session.RecognizerEvent
	cancel context.CancelFunc
}

func NewBatchAdapter(recognizer BatchRecognizer, flushEvery time.Duration) *BatchAdapter {
	if flushEvery <= 0 {
		flushEvery = 2 * time.Second
	}
	return &BatchAdapter{recognizer: recognizer, flushEvery: flushEvery}
}

func (a *BatchAdapter) Name() string { return a.recognizer.Name() }

func (a *BatchAdapter) Start(ctx context.Context, locale string) error {
	loopCtx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.buf = new(bytes.Buffer)
	a.locale = locale
	a.events = make(chan session.RecognizerEvent, 8)
	a.cancel = cancel
	a.mu.Unlock()

	go a.flushLoop(loopCtx)
	return nil
}

func (a *BatchAdapter) Submit(chunk session.AudioChunk) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.buf == nil {
		return nil
	}
	a.buf.Write(chunk)
	return nil
}

func (a *BatchAdapter) Events() <-chan session.RecognizerEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.events
}

func (a *BatchAdapter) Stop() error {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.mu.Unlock()
	return nil
}

func (a *BatchAdapter) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(a.flushEvery)
	defer ticker.Stop()
	defer close(a.events)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.flush(ctx)
		}
	}
}

func (a *BatchAdapter) flush(ctx context.Context) {
	a.mu.Lock()
	if a.buf == nil || a.buf.Len() == 0 {
		a.mu.Unlock()
		return
	}
	pcm := append([]byte{}, a.buf.Bytes()...)
	locale := a.locale
	a.buf.Reset()
	a.mu.Unlock()

	text, err := a.recognizer.Transcribe(ctx, pcm, locale)
	if err != nil {
		select {
		case a.events <- session.RecognizerEvent{Type: session.RecognizerError, Err: err}:
		case <-ctx.Done():
		}
		return
	}
	select {
	case a.events <- session.RecognizerEvent{Type: session.RecognizerFinal, Text: text}:
	case <-ctx.Done():
	}
}
