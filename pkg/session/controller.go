package session

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Link is the transport-facing dependency the controller needs: reading
// ingress binary frames and writing both control (JSON) and binary frames
// out, in the order requested. *transport.Conn implements this; the
// controller is defined against the interface so it can be driven by a
// fake in tests without a real socket, the same separation the teacher drew
// between pkg/orchestrator and its provider interfaces.
type Link interface {
	ReadBinary(ctx context.Context) ([]byte, error)
	WriteControl(ctx context.Context, frame any) error
	WriteBinary(ctx context.Context, data []byte) error

	// Ping is the transport-level liveness probe (spec §4.2): it blocks
	// until a pong arrives or ctx expires. Controller's heartbeat task
	// calls it on a ticker and ends the session if it ever errors.
	Ping(ctx context.Context) error
}

type outboundFrame struct {
	control any
	binary  []byte
}

// Controller drives one channel's session state machine (spec §4.8): it
// owns the ingress queue, utterance queue, and SpeakingFlag, and runs the
// four cooperative tasks named in spec §5 (ws_reader, audio_writer,
// pipeline_worker, tts_sender), plus recognizerForwarder and heartbeat, as
// one errgroup.Group, mirroring the original
// bridge's ws_reader/stt_audio_writer/pipeline_worker/tts_sender task split
// while replacing asyncio with goroutines and asyncio.Queue with bounded Go
// channels.
type Controller struct {
	session *Session
	cfg     Config
	log     Logger

	recognizer StreamingRecognizer
	translator Translator
	synth      Synthesizer

	ingress   chan AudioChunk
	utterance *utteranceQueue
	out       chan outboundFrame

	speaking atomic.Bool
	state    atomic.Int32
}

// NewController wires one session's providers together. All three
// providers are required; a nil provider is a caller bug, not a runtime
// condition, so it is rejected eagerly.
func NewController(sess *Session, cfg Config, recognizer StreamingRecognizer, translator Translator, synth Synthesizer, log Logger) (*Controller, error) {
	if recognizer == nil || translator == nil || synth == nil {
		return nil, ErrNilProvider
	}
	if log == nil {
		log = NoOpLogger{}
	}
	c := &Controller{
		session:    sess,
		cfg:        cfg,
		log:        log,
		recognizer: recognizer,
		translator: translator,
		synth:      synth,
		ingress:    make(chan AudioChunk, cfg.IngressCapacity),
		utterance:  newUtteranceQueue(cfg.UtteranceCapacity),
		out:        make(chan outboundFrame, 8),
	}
	c.state.Store(int32(StateInit))
	return c, nil
}

func (c *Controller) State() State { return State(c.state.Load()) }

func (c *Controller) setState(s State) {
	c.state.Store(int32(s))
	c.log.Debug("session state transition", "session_id", c.session.ID, "state", s.String())
}

// Run starts the recognizer stream and the session's six tasks, and
// blocks until the link is closed, ctx is cancelled, or a task fails. Every
// task observes ctx so a single cancellation propagates promptly (spec §8's
// cancellation-promptness property).
func (c *Controller) Run(ctx context.Context, link Link) error {
	if err := c.recognizer.Start(ctx, c.session.SourceLocale); err != nil {
		return err
	}
	defer c.recognizer.Stop()

	if err := link.WriteControl(ctx, newReadyFrame(c.session.Channel)); err != nil {
		return err
	}
	c.setState(StateListening)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.wsReader(ctx, link) })
	g.Go(func() error { return c.audioWriter(ctx) })
	g.Go(func() error { return c.recognizerForwarder(ctx) })
	g.Go(func() error { return c.pipelineWorker(ctx) })
	g.Go(func() error { return c.ttsSender(ctx, link) })
	g.Go(func() error { return c.heartbeat(ctx, link) })

	err := g.Wait()
	c.setState(StateTerminated)
	return err
}

// wsReader reads binary uplink frames and admits them to the ingress queue.
// The send blocks when the queue is full, which is the backpressure spec §4.3
// calls for: a slow recognizer stalls the read loop rather than dropping
// audio silently.
func (c *Controller) wsReader(ctx context.Context, link Link) error {
	for {
		data, err := link.ReadBinary(ctx)
		if err != nil {
			return err
		}
		select {
		case c.ingress <- AudioChunk(data):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// audioWriter drains the ingress queue and submits each chunk to the
// recognizer. Submit is called inline, so an implementation that writes to
// the network synchronously (DeepgramStream) holds this loop for the length
// of each write; a stalled write fills the ingress queue and, through it,
// stalls wsReader.
func (c *Controller) audioWriter(ctx context.Context) error {
	for {
		select {
		case chunk, ok := <-c.ingress:
			if !ok {
				return nil
			}
			if err := c.recognizer.Submit(chunk); err != nil {
				c.log.Warn("recognizer submit failed", "session_id", c.session.ID, "err", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// recognizerForwarder is the Recognizer Adapter (spec §4.4): it reads
// provider callbacks off the recognizer's event channel and, for finalized
// non-empty text, enqueues an utterance -- unless the SpeakingFlag is set,
// in which case the text is the session's own voice leaking back through
// the mic and is dropped before it ever reaches the utterance queue. This
// flag check is the entire echo-suppression mechanism (spec §9): no energy
// comparison, no VAD, just "are we currently speaking". A RecognizerError
// event is terminal: it is returned, which ends the session.
func (c *Controller) recognizerForwarder(ctx context.Context) error {
	for {
		select {
		case ev, ok := <-c.recognizer.Events():
			if !ok {
				return nil
			}
			switch ev.Type {
			case RecognizerFinal:
				text := strings.TrimSpace(ev.Text)
				if text == "" {
					continue
				}
				if c.speaking.Load() {
					c.log.Debug("dropping recognized text while speaking", "session_id", c.session.ID)
					continue
				}
				c.utterance.Enqueue(text)
			case RecognizerCanceled:
				c.log.Warn("recognizer stream canceled, restarting", "session_id", c.session.ID)
				c.send(ctx, outboundFrame{control: newSTTCanceledFrame()})
			case RecognizerError:
				c.log.Warn("recognizer reported error", "session_id", c.session.ID, "err", ev.Err)
				return fmt.Errorf("recognizer failed: %w", ev.Err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// pipelineWorker is the session's central state machine (spec §4.8): it
// dequeues one utterance at a time, translates it, drives synthesis, and
// owns every control-frame send plus the SpeakingFlag lifecycle. Only one
// utterance is ever in flight, so frames for utterance n always finish
// before utterance n+1 begins (spec §8's ordering property) without any
// extra bookkeeping.
func (c *Controller) pipelineWorker(ctx context.Context) error {
	for {
		select {
		case u, ok := <-c.utterance.Dequeue():
			if !ok {
				return nil
			}
			c.processUtterance(ctx, u)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Controller) processUtterance(ctx context.Context, u Utterance) {
	c.setState(StateProcessing)
	if err := c.send(ctx, outboundFrame{control: newSTTFrame(u.Text, u.Seq)}); err != nil {
		return
	}

	tctx, cancel := context.WithTimeout(ctx, c.cfg.TranslateTimeout)
	translated, err := c.translator.Translate(tctx, u.Text, c.session.SourceLocale, c.session.TargetLang)
	cancel()
	if err != nil {
		c.log.Warn("translation failed", "session_id", c.session.ID, "seq", u.Seq, "err", err)
		c.send(ctx, outboundFrame{control: newErrorFrame(ErrTranslationFailed.Error(), u.Seq)})
		c.setState(StateListening)
		return
	}
	if translated == "" {
		c.setState(StateListening)
		return
	}
	if err := c.send(ctx, outboundFrame{control: newTranslateFrame(translated, u.Seq)}); err != nil {
		return
	}

	c.speaking.Store(true)
	c.setState(StateSpeaking)
	if err := c.send(ctx, outboundFrame{control: newTTSStartFrame(u.Seq)}); err != nil {
		c.speaking.Store(false)
		return
	}

	sctx, scancel := context.WithTimeout(ctx, c.cfg.SynthesisTimeout)
	synthErr := c.synth.StreamSynthesize(sctx, translated, c.session.Voice, func(f SynthesisFrame) error {
		f.Seq = u.Seq
		if len(f.Data) == 0 {
			return nil // a bare end-of-stream marker carries no audio to send
		}
		return c.send(ctx, outboundFrame{binary: f.Data})
	})
	scancel()

	c.speaking.Store(false)
	if synthErr != nil {
		c.log.Warn("synthesis failed", "session_id", c.session.ID, "seq", u.Seq, "err", synthErr)
		c.send(ctx, outboundFrame{control: newErrorFrame(ErrSynthesisFailed.Error(), u.Seq)})
		c.setState(StateListening)
		return
	}

	c.send(ctx, outboundFrame{control: newTTSEndFrame(u.Seq)})
	c.setState(StateListening)
}

func (c *Controller) send(ctx context.Context, f outboundFrame) error {
	select {
	case c.out <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ttsSender is the single writer of the transport's send half (spec §5):
// every control frame and every synthesis frame passes through this one
// goroutine in FIFO order, which is what prevents a translate frame for
// utterance n+1 from ever being interleaved with the binary frames still
// being sent for utterance n.
func (c *Controller) ttsSender(ctx context.Context, link Link) error {
	for {
		select {
		case f, ok := <-c.out:
			if !ok {
				return nil
			}
			var err error
			if f.control != nil {
				err = link.WriteControl(ctx, f.control)
			} else {
				err = link.WriteBinary(ctx, f.binary)
			}
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// heartbeat is the transport liveness probe (spec §4.2): a ping every
// HeartbeatTimeout, each one itself bounded by HeartbeatTimeout. A ping that
// never gets a pong back -- a stalled edge, a dropped connection the OS
// hasn't noticed yet -- fails the errgroup and tears the session down rather
// than leaving it open indefinitely. A zero timeout disables the probe.
func (c *Controller) heartbeat(ctx context.Context, link Link) error {
	if c.cfg.HeartbeatTimeout <= 0 {
		return nil
	}
	ticker := time.NewTicker(c.cfg.HeartbeatTimeout)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, c.cfg.HeartbeatTimeout)
			err := link.Ping(pingCtx)
			cancel()
			if err != nil {
				return fmt.Errorf("heartbeat ping timed out: %w", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
