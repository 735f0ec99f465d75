package session

import (
	"context"
	"sync"
)

// Synthesizer is the Synthesis Stage's provider contract (spec §4.7). Frames
// are delivered incrementally via onFrame as the provider produces them;
// StreamSynthesize returns once onFrame has been called with a Final frame,
// or the provider/context fails first. The session controller enforces the
// 15s overall bound named in the config.
type Synthesizer interface {
	StreamSynthesize(ctx context.Context, text, voice string, onFrame func(SynthesisFrame) error) error
	Name() string
}

// FrameBridge adapts a provider whose SDK delivers audio through its own
// push callback (running on a provider-owned goroutine or OS thread) into a
// bounded Go channel a single consumer can range over. This is the same
// shape as the original bridge's push-stream-to-asyncio.Queue callback,
// translated to a channel: the producer side never blocks past the channel
// capacity, it drops and counts instead, so a slow consumer cannot stall the
// provider's network read loop.
type FrameBridge struct {
	frames  chan SynthesisFrame
	mu      sync.Mutex
	dropped uint64
	closed  bool
}

// NewFrameBridge creates a bridge with the given capacity (spec §4.7 names
// 2000 frames as the default).
func NewFrameBridge(capacity int) *FrameBridge {
	return &FrameBridge{frames: make(chan SynthesisFrame, capacity)}
}

// Push is called from the provider's callback goroutine. It never blocks:
// a full channel means the frame is dropped and counted, matching the
// producer-side behavior spec'd for the push-stream bridge.
func (b *FrameBridge) Push(f SynthesisFrame) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	select {
	case b.frames <- f:
	default:
		b.mu.Lock()
		b.dropped++
		b.mu.Unlock()
	}
}

// Frames returns the channel the consuming task ranges over.
func (b *FrameBridge) Frames() <-chan SynthesisFrame {
	return b.frames
}

// Dropped reports how many frames were discarded due to a full channel.
func (b *FrameBridge) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Close marks the bridge closed and closes the channel. Safe to call once
// the provider's callback goroutine has returned.
func (b *FrameBridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.frames)
}
