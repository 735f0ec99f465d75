package recognize

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/coder/websocket"
	"github.com/lokutor-ai/voxbridge/pkg/session"
)

// DeepgramStream is the primary session.StreamingRecognizer: it opens one
// Deepgram realtime connection per session and pushes audio over it as it
// arrives, the same persistent-streaming-connection shape the teacher's
// LokutorTTS client uses against its own websocket endpoint, pointed here
// at recognition instead of synthesis.
type DeepgramStream struct {
	apiKey     string
	sampleRate int

	mu         sync.Mutex
	conn       *websocket.Conn
	cancel     context.CancelFunc
	events     chan session.RecognizerEvent
	locale     string
	generation int  // bumped on every (re)connect; invalidates stale readLoop callbacks
	restarted  bool // spec §7 RecognizerFailed: restart once, then terminate
	stopped    bool // set by Stop; suppresses the restart-on-failure path
}

func NewDeepgramStream(apiKey string, sampleRate int) *DeepgramStream {
	if sampleRate == 0 {
		sampleRate = 16000
	}
	return &DeepgramStream{apiKey: apiKey, sampleRate: sampleRate}
}

func (d *DeepgramStream) Name() string { return "deepgram-stream" }

func (d *DeepgramStream) Start(ctx context.Context, locale string) error {
	d.mu.Lock()
	d.locale = locale
	d.events = make(chan session.RecognizerEvent, 32)
	d.mu.Unlock()
	return d.connect()
}

// connect dials a fresh Deepgram stream and starts its read loop, bumping
// the generation counter so callbacks from any prior connection (the one
// being replaced by a restart) are recognized as stale and dropped. Grounded
// on the teacher's sttGeneration field in managed_stream.go, repurposed
// here to invalidate stale provider callbacks after a reconnect instead of
// after a barge-in.
func (d *DeepgramStream) connect() error {
	u := url.URL{
		Scheme: "wss",
		Host:   "api.deepgram.com",
		Path:   "/v1/listen",
	}
	q := u.Query()
	q.Set("model", "nova-2")
	q.Set("encoding", "linear16")
	q.Set("sample_rate", fmt.Sprintf("%d", d.sampleRate))
	q.Set("channels", "1")
	q.Set("interim_results", "true")

	d.mu.Lock()
	locale := d.locale
	d.mu.Unlock()
	if locale != "" {
		q.Set("language", localeToISO639(locale))
	}
	u.RawQuery = q.Encode()

	streamCtx, cancel := context.WithCancel(context.Background())
	conn, _, err := websocket.Dial(streamCtx, u.String(), &websocket.DialOptions{
		HTTPHeader: map[string][]string{"Authorization": {"Token " + d.apiKey}},
	})
	if err != nil {
		cancel()
		return fmt.Errorf("deepgram stream dial: %w", err)
	}

	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
	}
	d.conn = conn
	d.cancel = cancel
	d.generation++
	gen := d.generation
	d.mu.Unlock()

	go d.readLoop(streamCtx, gen)
	return nil
}

type deepgramResult struct {
	IsFinal bool `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

// readLoop reads one connection's frames until it errs or ctx is cancelled.
// gen identifies the connection this loop belongs to; if a restart has since
// bumped d.generation, this loop's own termination is a stale, already-
// superseded failure and it exits quietly instead of reporting or retrying.
func (d *DeepgramStream) readLoop(ctx context.Context, gen int) {
	for {
		_, data, err := d.conn.Read(ctx)
		if err != nil {
			d.handleReadFailure(gen, err)
			return
		}

		var result deepgramResult
		if err := json.Unmarshal(data, &result); err != nil {
			continue
		}
		if len(result.Channel.Alternatives) == 0 {
			continue
		}
		text := result.Channel.Alternatives[0].Transcript
		if text == "" {
			continue
		}

		evType := session.RecognizerPartial
		if result.IsFinal {
			evType = session.RecognizerFinal
		}
		select {
		case d.events <- session.RecognizerEvent{Type: evType, Text: text}:
		case <-ctx.Done():
			return
		}
	}
}

// handleReadFailure implements spec §7's RecognizerFailed policy: report the
// cancellation to the client, restart the stream once, and only report a
// terminal error (closing the event channel) if that restart itself fails
// or a second connection also drops.
func (d *DeepgramStream) handleReadFailure(gen int, readErr error) {
	d.mu.Lock()
	if gen != d.generation || d.stopped {
		d.mu.Unlock()
		return // superseded by a newer connection, or an intentional Stop
	}
	alreadyRestarted := d.restarted
	d.restarted = true
	d.mu.Unlock()

	select {
	case d.events <- session.RecognizerEvent{Type: session.RecognizerCanceled}:
	default:
	}

	if !alreadyRestarted {
		if err := d.connect(); err == nil {
			return
		}
	}

	select {
	case d.events <- session.RecognizerEvent{Type: session.RecognizerError, Err: readErr}:
	default:
	}
	close(d.events)
}

// Submit writes chunk to the current websocket connection synchronously; it
// returns once that write completes or fails.
func (d *DeepgramStream) Submit(chunk session.AudioChunk) error {
	d.mu.Lock()
	conn := d.conn
	d.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("deepgram stream: Submit before Start")
	}
	return conn.Write(context.Background(), websocket.MessageBinary, chunk)
}

func (d *DeepgramStream) Events() <-chan session.RecognizerEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.events
}

func (d *DeepgramStream) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.cancel != nil {
		d.cancel()
	}
	if d.conn != nil {
		err := d.conn.Close(websocket.StatusNormalClosure, "")
		d.conn = nil
		return err
	}
	return nil
}
