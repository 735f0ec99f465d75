package session

import "testing"

func TestFrameBridge_DropsWhenFull(t *testing.T) {
	b := NewFrameBridge(2)
	b.Push(SynthesisFrame{Seq: 1})
	b.Push(SynthesisFrame{Seq: 2})
	b.Push(SynthesisFrame{Seq: 3}) // channel full, should be dropped

	if b.Dropped() != 1 {
		t.Fatalf("expected 1 dropped frame, got %d", b.Dropped())
	}

	first := <-b.Frames()
	second := <-b.Frames()
	if first.Seq != 1 || second.Seq != 2 {
		t.Fatalf("expected seq 1,2 got %d,%d", first.Seq, second.Seq)
	}
}

func TestFrameBridge_PushAfterCloseIsNoOp(t *testing.T) {
	b := NewFrameBridge(2)
	b.Close()
	b.Push(SynthesisFrame{Seq: 1}) // must not panic on closed channel

	if _, ok := <-b.Frames(); ok {
		t.Fatal("expected closed, empty channel")
	}
}
