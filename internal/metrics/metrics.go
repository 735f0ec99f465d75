// Package metrics provides voxbridge's OpenTelemetry metrics instruments,
// grounded on the teacher pack's glyphoxa/internal/observe package: metrics
// recorded through the OTel API, exported via the Prometheus bridge so a
// standard /metrics endpoint can still be scraped.
package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/lokutor-ai/voxbridge"

// Recorder holds every metric instrument voxbridge records against the
// queues and stages named in spec §4-§5.
type Recorder struct {
	ActiveSessions metric.Int64UpDownCounter

	IngressChunksReceived metric.Int64Counter
	UtteranceDrops        metric.Int64Counter
	FrameDrops            metric.Int64Counter

	TranslationFailures metric.Int64Counter
	SynthesisFailures   metric.Int64Counter

	TranslationDuration metric.Float64Histogram
	SynthesisDuration   metric.Float64Histogram
}

var latencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15}

// New creates a fully-initialized Recorder against the given MeterProvider.
func New(mp metric.MeterProvider) (*Recorder, error) {
	m := mp.Meter(meterName)
	r := &Recorder{}
	var err error

	if r.ActiveSessions, err = m.Int64UpDownCounter("voxbridge.sessions.active",
		metric.WithDescription("Number of currently open translation sessions.")); err != nil {
		return nil, err
	}
	if r.IngressChunksReceived, err = m.Int64Counter("voxbridge.ingress.chunks",
		metric.WithDescription("Total uplink audio chunks admitted to the ingress queue.")); err != nil {
		return nil, err
	}
	if r.UtteranceDrops, err = m.Int64Counter("voxbridge.utterance_queue.drops",
		metric.WithDescription("Utterances dropped because the bounded utterance queue was full.")); err != nil {
		return nil, err
	}
	if r.FrameDrops, err = m.Int64Counter("voxbridge.frame_bridge.drops",
		metric.WithDescription("Synthesis frames dropped because the push bridge was full.")); err != nil {
		return nil, err
	}
	if r.TranslationFailures, err = m.Int64Counter("voxbridge.translation.failures",
		metric.WithDescription("Translation calls that failed or timed out.")); err != nil {
		return nil, err
	}
	if r.SynthesisFailures, err = m.Int64Counter("voxbridge.synthesis.failures",
		metric.WithDescription("Synthesis calls that failed or timed out.")); err != nil {
		return nil, err
	}
	if r.TranslationDuration, err = m.Float64Histogram("voxbridge.translation.duration",
		metric.WithDescription("Translation call latency."), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...)); err != nil {
		return nil, err
	}
	if r.SynthesisDuration, err = m.Float64Histogram("voxbridge.synthesis.duration",
		metric.WithDescription("Synthesis call latency."), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...)); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Recorder) SessionOpened(ctx context.Context)  { r.ActiveSessions.Add(ctx, 1) }
func (r *Recorder) SessionClosed(ctx context.Context)  { r.ActiveSessions.Add(ctx, -1) }

func (r *Recorder) RecordTranslationFailure(ctx context.Context, provider string) {
	r.TranslationFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

func (r *Recorder) RecordSynthesisFailure(ctx context.Context, provider string) {
	r.SynthesisFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}
