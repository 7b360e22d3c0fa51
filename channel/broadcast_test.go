//go:build linux
// +build linux

package channel_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/momentics/hioload-kernel/channel"
	"github.com/momentics/hioload-kernel/protocol"
	"github.com/momentics/hioload-kernel/session"
)

func TestBroadcastDeliversInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	kern := startKernel(t)
	handler := channel.NewBlockingHandler(0)
	ch, err := channel.NewBroadcast(newTestContext(t), session.New(), handler)
	require.NoError(t, err)
	require.NoError(t, ch.SetAddress(kern.Addr()))
	require.NoError(t, ch.Start())
	require.NoError(t, kern.WaitSubscribers(1, 5*time.Second))

	pub := session.New()
	var want []string
	for _, code := range []string{"a = 1", "b = 2", "c = 3"} {
		env := pub.Msg("pyin", map[string]any{"code": code})
		want = append(want, env.MsgID())
		require.NoError(t, kern.Publish(env))
	}

	for i, id := range want {
		env, err := handler.GetMsg(5 * time.Second)
		require.NoError(t, err, "message %d never arrived", i)
		require.Equal(t, id, env.MsgID(), "out-of-order delivery at %d", i)
		require.Equal(t, "pyin", env.MsgType())
	}

	require.NoError(t, ch.Stop())
	require.NoError(t, kern.Close())
}

func TestBroadcastGreeting(t *testing.T) {
	kern := startKernel(t)
	sess := session.New()
	ch, err := channel.NewBroadcast(newTestContext(t), sess, channel.NewBlockingHandler(0))
	require.NoError(t, err)
	require.NoError(t, ch.SetAddress(kern.Addr()))
	require.NoError(t, ch.Start())
	require.NoError(t, kern.WaitSubscribers(1, 5*time.Second))

	greetings := kern.Greetings()
	require.Len(t, greetings, 1)
	require.Equal(t, protocol.KindSub, greetings[0].Kind)
	require.Equal(t, sess.ID(), greetings[0].Identity)

	require.NoError(t, ch.Stop())
}

func TestBroadcastFlush(t *testing.T) {
	kern := startKernel(t)
	handler := channel.NewBlockingHandler(0)
	ch, err := channel.NewBroadcast(newTestContext(t), session.New(), handler)
	require.NoError(t, err)
	require.NoError(t, ch.SetAddress(kern.Addr()))
	require.NoError(t, ch.Start())
	require.NoError(t, kern.WaitSubscribers(1, 5*time.Second))

	env := session.New().Msg("status", map[string]any{"execution_state": "idle"})
	require.NoError(t, kern.Publish(env))
	got, err := handler.GetMsg(5 * time.Second)
	require.NoError(t, err)
	require.Equal(t, env.MsgID(), got.MsgID())

	// With the loop idle and responsive a flush completes well inside the
	// timeout instead of consuming it.
	start := time.Now()
	ch.Flush(5 * time.Second)
	require.Less(t, time.Since(start), 2*time.Second, "flush consumed the whole timeout")

	require.NoError(t, ch.Stop())
}

func TestBroadcastFlushAfterStop(t *testing.T) {
	kern := startKernel(t)
	ch, err := channel.NewBroadcast(newTestContext(t), session.New(), channel.NewBlockingHandler(0))
	require.NoError(t, err)
	require.NoError(t, ch.SetAddress(kern.Addr()))
	require.NoError(t, ch.Start())
	require.NoError(t, ch.Stop())

	// Flush on a stopped channel must return once the timeout elapses rather
	// than hang on a loop that no longer runs callbacks.
	done := make(chan struct{})
	go func() {
		ch.Flush(50 * time.Millisecond)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("flush hung on a stopped channel")
	}
}
