package channel

import (
	"testing"

	"github.com/momentics/hioload-kernel/session"
)

func TestPendingQueueFIFO(t *testing.T) {
	q := newPendingQueue()
	if !q.Empty() || q.Len() != 0 {
		t.Fatal("fresh queue not empty")
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("pop on empty queue succeeded")
	}

	sess := session.New()
	var ids []string
	for i := 0; i < 5; i++ {
		env := sess.Msg("execute_request", nil)
		ids = append(ids, env.MsgID())
		q.Add(env)
	}
	if q.Len() != 5 {
		t.Fatalf("Len = %d, want 5", q.Len())
	}

	for i, id := range ids {
		env, ok := q.Pop()
		if !ok {
			t.Fatalf("pop %d failed", i)
		}
		if env.MsgID() != id {
			t.Fatalf("pop %d out of order: got %s want %s", i, env.MsgID(), id)
		}
	}
	if !q.Empty() {
		t.Fatal("queue not empty after draining")
	}
}
