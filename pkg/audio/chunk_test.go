package audio

import "testing"

func TestChunkAccumulator_EmitsFixedSizeChunks(t *testing.T) {
	acc := NewChunkAccumulator(4, 8)

	acc.Write([]byte{1, 2, 3})
	acc.Write([]byte{4, 5, 6, 7, 8})

	first := <-acc.Chunks()
	second := <-acc.Chunks()

	if len(first) != 4 || len(second) != 4 {
		t.Fatalf("expected 4-byte chunks, got %d and %d", len(first), len(second))
	}
	if first[0] != 1 || second[3] != 8 {
		t.Fatalf("unexpected chunk contents: %v, %v", first, second)
	}

	select {
	case extra := <-acc.Chunks():
		t.Fatalf("expected no third chunk (all 8 bytes consumed), got %v", extra)
	default:
	}
}

func TestChunkAccumulator_DropsWhenChannelFull(t *testing.T) {
	acc := NewChunkAccumulator(1, 1)
	acc.Write([]byte{1})
	acc.Write([]byte{2}) // channel already full of {1}, should be dropped silently

	got := <-acc.Chunks()
	if got[0] != 1 {
		t.Fatalf("expected first chunk to survive, got %v", got)
	}
	select {
	case extra := <-acc.Chunks():
		t.Fatalf("expected second chunk dropped, got %v", extra)
	default:
	}
}
