package download

import (
	"strings"
	"testing"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue()
	for _, id := range []string{"a", "b", "c"} {
		q.Push(id)
	}

	var got []string
	for {
		id, ok := q.Pop()
		if !ok {
			break
		}
		got = append(got, id)
	}

	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("pop order = %v, want [a b c]", got)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestQueue_Remove(t *testing.T) {
	q := NewQueue()
	q.Push("a")
	q.Push("b")
	q.Push("c")

	if !q.Remove("b") {
		t.Error("Remove(b) = false, want true")
	}
	if q.Remove("b") {
		t.Error("Remove(b) twice = true, want false")
	}

	var got []string
	for id, ok := q.Pop(); ok; id, ok = q.Pop() {
		got = append(got, id)
	}
	if s := strings.Join(got, ","); s != "a,c" {
		t.Errorf("remaining ids = %q, want %q", s, "a,c")
	}
}
