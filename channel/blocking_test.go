package channel_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-kernel/channel"
	"github.com/momentics/hioload-kernel/session"
)

func TestBlockingHandlerGetMsg(t *testing.T) {
	h := channel.NewBlockingHandler(0)
	sess := session.New()

	env := sess.Msg("status", map[string]any{"execution_state": "busy"})
	require.NoError(t, h.HandleMessage(env))

	got, err := h.GetMsg(time.Second)
	require.NoError(t, err)
	require.Equal(t, env.MsgID(), got.MsgID())
}

func TestBlockingHandlerTimeout(t *testing.T) {
	h := channel.NewBlockingHandler(0)
	_, err := h.GetMsg(10 * time.Millisecond)
	require.ErrorIs(t, err, channel.ErrEmpty)
}

func TestBlockingHandlerNegativeTimeoutBlocks(t *testing.T) {
	h := channel.NewBlockingHandler(0)
	sess := session.New()
	env := sess.Msg("pyout", map[string]any{"data": "2"})

	go func() {
		time.Sleep(20 * time.Millisecond)
		h.HandleMessage(env)
	}()

	got, err := h.GetMsg(-1)
	require.NoError(t, err)
	require.Equal(t, env.MsgID(), got.MsgID())
}

func TestBlockingHandlerFullBuffer(t *testing.T) {
	h := channel.NewBlockingHandler(1)
	sess := session.New()

	require.NoError(t, h.HandleMessage(sess.Msg("status", nil)))
	require.Error(t, h.HandleMessage(sess.Msg("status", nil)))
}

func TestBlockingHandlerGetAll(t *testing.T) {
	h := channel.NewBlockingHandler(0)
	sess := session.New()

	var want []string
	for i := 0; i < 3; i++ {
		env := sess.Msg("stream", map[string]any{"name": "stdout"})
		want = append(want, env.MsgID())
		require.NoError(t, h.HandleMessage(env))
	}

	got := h.GetAll()
	require.Len(t, got, 3)
	for i, env := range got {
		require.Equal(t, want[i], env.MsgID())
	}
	require.Empty(t, h.GetAll())
}
