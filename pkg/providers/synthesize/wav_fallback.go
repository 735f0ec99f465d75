package synthesize

import (
	"context"

	"github.com/lokutor-ai/voxbridge/pkg/audio"
	"github.com/lokutor-ai/voxbridge/pkg/session"
)

// BufferSynthesizer is the one-shot, complete-buffer synthesis contract --
// the same shape as the teacher's LokutorTTS.Synthesize method: one call,
// one fully-buffered PCM result, no incremental delivery.
type BufferSynthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
	Name() string
}

// WavFallbackSynthesizer adapts a BufferSynthesizer into a session.Synthesizer
// using spec §4.7's "complete-buffer return" fallback path: the whole
// utterance is requested in one call, WAV-encoded with pkg/audio.NewWavBuffer,
// and delivered as a single final frame instead of an incremental stream.
// Chosen for providers or deployments where a stalled streaming connection
// is worse than the extra latency of waiting for the full utterance.
type WavFallbackSynthesizer struct {
	inner      BufferSynthesizer
	sampleRate int
}

// NewWavFallbackSynthesizer wraps inner. sampleRate is the PCM rate inner's
// Synthesize produces; it defaults to 16kHz, the format used throughout the
// rest of the pipeline (spec §4.1).
func NewWavFallbackSynthesizer(inner BufferSynthesizer, sampleRate int) *WavFallbackSynthesizer {
	if sampleRate == 0 {
		sampleRate = 16000
	}
	return &WavFallbackSynthesizer{inner: inner, sampleRate: sampleRate}
}

func (w *WavFallbackSynthesizer) Name() string { return w.inner.Name() + "-wav-fallback" }

// StreamSynthesize satisfies session.Synthesizer by calling inner once and
// delivering the whole WAV-encoded result as a single final frame.
func (w *WavFallbackSynthesizer) StreamSynthesize(ctx context.Context, text, voice string, onFrame func(session.SynthesisFrame) error) error {
	pcm, err := w.inner.Synthesize(ctx, text, voice)
	if err != nil {
		return err
	}
	wav := audio.NewWavBuffer(pcm, w.sampleRate)
	return onFrame(session.SynthesisFrame{Data: wav, Final: true})
}
