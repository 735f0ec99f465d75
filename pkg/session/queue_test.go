package session

import "testing"

func TestUtteranceQueue_SequenceAssignedAtEnqueue(t *testing.T) {
	q := newUtteranceQueue(4)
	q.Enqueue("one")
	q.Enqueue("two")

	first := <-q.Dequeue()
	second := <-q.Dequeue()

	if first.Seq != 1 || second.Seq != 2 {
		t.Fatalf("expected seq 1,2 got %d,%d", first.Seq, second.Seq)
	}
	if first.Text != "one" || second.Text != "two" {
		t.Fatalf("arrival order not preserved: %q, %q", first.Text, second.Text)
	}
}

func TestUtteranceQueue_DropsNewestWhenFull(t *testing.T) {
	q := newUtteranceQueue(2)
	q.Enqueue("a")
	q.Enqueue("b")
	q.Enqueue("c") // queue full at enqueue time, "c" itself should be dropped

	first := <-q.Dequeue()
	second := <-q.Dequeue()

	if first.Text != "a" || second.Text != "b" {
		t.Fatalf("expected a,b survived, got %q,%q", first.Text, second.Text)
	}
	if q.Dropped() != 1 {
		t.Fatalf("expected 1 drop recorded, got %d", q.Dropped())
	}
}
