package session

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeLink is an in-memory Link grounded on the teacher's MockSTTProvider /
// MockLongRunningTTS pattern of recording-and-replaying via a mutex-guarded
// slice, rather than a real socket.
type fakeLink struct {
	mu       sync.Mutex
	uplink   chan []byte
	controls []any
	binaries [][]byte
}

func newFakeLink() *fakeLink {
	return &fakeLink{uplink: make(chan []byte, 16)}
}

func (f *fakeLink) ReadBinary(ctx context.Context) ([]byte, error) {
	select {
	case b, ok := <-f.uplink:
		if !ok {
			return nil, context.Canceled
		}
		return b, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeLink) WriteControl(ctx context.Context, frame any) error {
	f.mu.Lock()
	f.controls = append(f.controls, frame)
	f.mu.Unlock()
	return nil
}

func (f *fakeLink) WriteBinary(ctx context.Context, data []byte) error {
	f.mu.Lock()
	f.binaries = append(f.binaries, append([]byte{}, data...))
	f.mu.Unlock()
	return nil
}

func (f *fakeLink) Ping(ctx context.Context) error { return nil }

func (f *fakeLink) controlCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.controls)
}

func (f *fakeLink) binaryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.binaries)
}

// mockRecognizer emits one RecognizerFinal event per Submit call, echoing a
// fixed transcript -- enough to drive the pipeline deterministically without
// a real speech provider.
type mockRecognizer struct {
	events chan RecognizerEvent
	text   string
}

func newMockRecognizer(text string) *mockRecognizer {
	return &mockRecognizer{events: make(chan RecognizerEvent, 16), text: text}
}

func (m *mockRecognizer) Start(ctx context.Context, locale string) error { return nil }
func (m *mockRecognizer) Submit(chunk AudioChunk) error {
	m.events <- RecognizerEvent{Type: RecognizerFinal, Text: m.text}
	return nil
}
func (m *mockRecognizer) Events() <-chan RecognizerEvent { return m.events }
func (m *mockRecognizer) Stop() error                    { close(m.events); return nil }
func (m *mockRecognizer) Name() string                   { return "mock-recognizer" }

type mockTranslator struct{ prefix string }

func (m *mockTranslator) Translate(ctx context.Context, text, src, dst string) (string, error) {
	return m.prefix + text, nil
}
func (m *mockTranslator) Name() string { return "mock-translator" }

// mockSynth emits a fixed number of frames before the final frame, grounded
// on the teacher's MockLongRunningTTS ticking-until-done pattern.
type mockSynth struct{ frameCount int }

func (m *mockSynth) StreamSynthesize(ctx context.Context, text, voice string, onFrame func(SynthesisFrame) error) error {
	for i := 0; i < m.frameCount; i++ {
		if err := onFrame(SynthesisFrame{Data: []byte{byte(i)}}); err != nil {
			return err
		}
	}
	return onFrame(SynthesisFrame{Final: true})
}
func (m *mockSynth) Name() string { return "mock-synth" }

func newTestController(t *testing.T, recognizer StreamingRecognizer, translator Translator, synth Synthesizer) (*Controller, *Session) {
	t.Helper()
	sess := NewSession(Config{Channel: "a", SourceLocale: "es-ES", TargetLang: "en", Voice: "default"})
	cfg := DefaultConfig()
	cfg.TranslateTimeout = time.Second
	cfg.SynthesisTimeout = time.Second
	c, err := NewController(sess, cfg, recognizer, translator, synth, NoOpLogger{})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return c, sess
}

func TestNewController_RejectsNilProvider(t *testing.T) {
	sess := NewSession(DefaultConfig())
	if _, err := NewController(sess, DefaultConfig(), nil, &mockTranslator{}, &mockSynth{}, nil); err != ErrNilProvider {
		t.Fatalf("expected ErrNilProvider, got %v", err)
	}
}

func TestController_EndToEndSingleUtterance(t *testing.T) {
	rec := newMockRecognizer("hola")
	c, _ := newTestController(t, rec, &mockTranslator{prefix: "[en] "}, &mockSynth{frameCount: 3})
	link := newFakeLink()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, link) }()

	link.uplink <- []byte{1, 2, 3, 4}

	deadline := time.After(2 * time.Second)
	for link.controlCount() < 5 { // ready, stt, translate, tts_start, tts_end
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for control frames, got %d", link.controlCount())
		case <-time.After(10 * time.Millisecond):
		}
	}

	if link.binaryCount() != 3 {
		t.Fatalf("expected 3 binary frames, got %d", link.binaryCount())
	}

	cancel()
	<-done
}

func TestController_SpeakingFlagSuppressesRecognizedEcho(t *testing.T) {
	c, _ := newTestController(t, newMockRecognizer("echo"), &mockTranslator{}, &mockSynth{frameCount: 1})
	c.speaking.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go c.recognizerForwarder(ctx)
	c.recognizer.(*mockRecognizer).events <- RecognizerEvent{Type: RecognizerFinal, Text: "i heard myself"}

	select {
	case <-c.utterance.Dequeue():
		t.Fatal("utterance should have been dropped while SpeakingFlag is set")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestController_EmptyTranscriptNeverEnqueued(t *testing.T) {
	c, _ := newTestController(t, newMockRecognizer(""), &mockTranslator{}, &mockSynth{frameCount: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.recognizerForwarder(ctx)
	c.recognizer.(*mockRecognizer).events <- RecognizerEvent{Type: RecognizerFinal, Text: "   "}

	select {
	case <-c.utterance.Dequeue():
		t.Fatal("blank transcript should never reach the utterance queue")
	case <-time.After(50 * time.Millisecond):
	}
}
