// Package session implements the per-channel streaming translation session:
// the state machine that multiplexes audio capture, recognition,
// translation and synthesis over one transport connection.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Logger is the narrow logging interface the session core depends on so it
// never couples to a specific logging library. cmd/server adapts *slog.Logger
// to this.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// NoOpLogger discards everything; used when callers don't care.
type NoOpLogger struct{}

func (NoOpLogger) Debug(msg string, args ...interface{}) {}
func (NoOpLogger) Info(msg string, args ...interface{})  {}
func (NoOpLogger) Warn(msg string, args ...interface{})  {}
func (NoOpLogger) Error(msg string, args ...interface{}) {}

// AudioFormat describes linear PCM framing shared by uplink and downlink.
type AudioFormat struct {
	SampleRate int
	Channels   int
	BitsPerSamp int
}

// DefaultAudioFormat is 16kHz/16-bit/mono, the format required for streaming
// synthesis (spec §4.7) and the edge's default capture negotiation (§4.1).
func DefaultAudioFormat() AudioFormat {
	return AudioFormat{SampleRate: 16000, Channels: 1, BitsPerSamp: 16}
}

// ChunkBytes returns the byte length of one chunkMs-duration chunk at this format.
func (f AudioFormat) ChunkBytes(chunkMs int) int {
	return f.SampleRate * chunkMs / 1000 * f.Channels * (f.BitsPerSamp / 8)
}

// State is the Session Controller's lifecycle state (spec §4.8).
type State int

const (
	StateInit State = iota
	StateListening
	StateProcessing
	StateSpeaking
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateListening:
		return "LISTENING"
	case StateProcessing:
		return "PROCESSING"
	case StateSpeaking:
		return "SPEAKING"
	case StateTerminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}

// Config holds the per-server parameters named in spec §6's "Server command
// surface": format, locale pairing, voice, and the stage timeouts/capacities
// named throughout §4-§5.
type Config struct {
	Channel      string
	SourceLocale string // e.g. "es-ES"
	TargetLang   string // e.g. "en"
	Voice        string
	Format       AudioFormat
	ChunkMs      int

	IngressCapacity   int           // §4.3, ~100-200 chunks
	UtteranceCapacity int           // §4.5, ~50
	FrameCapacity     int           // §4.7 push-bridge queue, 2000
	TranslateTimeout  time.Duration // §4.6, 10s
	SynthesisTimeout  time.Duration // §4.7, 15s
	HeartbeatTimeout  time.Duration // §4.2, default 20s
	QueuePollInterval time.Duration // §5, 1s poll so cancellation is observed promptly
}

// DefaultConfig matches the numbers named throughout spec.md §4-§5.
func DefaultConfig() Config {
	return Config{
		Format:            DefaultAudioFormat(),
		ChunkMs:           20,
		IngressCapacity:   150,
		UtteranceCapacity: 50,
		FrameCapacity:     2000,
		TranslateTimeout:  10 * time.Second,
		SynthesisTimeout:  15 * time.Second,
		HeartbeatTimeout:  20 * time.Second,
		QueuePollInterval: time.Second,
	}
}

// Session is the data-model record for one bridge instance (spec §3).
// It is exclusively owned by the accepting server instance.
type Session struct {
	ID           uuid.UUID
	Channel      string
	SourceLocale string
	TargetLang   string
	Voice        string
	Format       AudioFormat
	State        State
}

// NewSession creates a session record with a fresh random ID, grounded on
// the id-generation convention used throughout NeboLoop-nebo's session/runner
// packages (google/uuid rather than a hand-rolled counter or timestamp).
func NewSession(cfg Config) *Session {
	return &Session{
		ID:           uuid.New(),
		Channel:      cfg.Channel,
		SourceLocale: cfg.SourceLocale,
		TargetLang:   cfg.TargetLang,
		Voice:        cfg.Voice,
		Format:       cfg.Format,
		State:        StateInit,
	}
}

// AudioChunk is an immutable slice of interleaved linear PCM samples (spec §3).
type AudioChunk []byte

// Utterance is a finalized, non-empty recognized source-language segment
// (spec §3). Seq is assigned when the utterance is admitted to the queue.
type Utterance struct {
	Text string
	Seq  uint64
}

// TranslationResult is the target-language string produced from an Utterance;
// it inherits the utterance's sequence number (spec §3).
type TranslationResult struct {
	Text string
	Seq  uint64
}

// SynthesisFrame is one chunk of raw PCM produced incrementally by the
// Synthesis Stage for one TranslationResult (spec §3). Final marks the last
// frame of the utterance.
type SynthesisFrame struct {
	Data  []byte
	Seq   uint64
	Final bool
}
