package session_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-kernel/session"
)

func TestMsgBuildsUniqueIDs(t *testing.T) {
	sess := session.New()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		env := sess.Msg("execute_request", map[string]any{"code": "x=1"})
		require.NotEmpty(t, env.MsgID())
		require.False(t, seen[env.MsgID()], "duplicate message id")
		seen[env.MsgID()] = true
	}
}

func TestMsgHeaderFields(t *testing.T) {
	sess := session.New()
	env := sess.Msg("object_info_request", map[string]any{"oname": "foo"})

	require.Equal(t, "object_info_request", env.MsgType())
	require.Equal(t, sess.ID(), env.Header.Session)
	require.Equal(t, sess.Username(), env.Header.Username)
	require.False(t, env.Header.Date.IsZero())
	require.Equal(t, "foo", env.Content["oname"])
}

func TestMsgNilContent(t *testing.T) {
	sess := session.New()
	env := sess.Msg("status", nil)
	require.NotNil(t, env.Content)
}

func TestSessionIDsDistinct(t *testing.T) {
	require.NotEqual(t, session.New().ID(), session.New().ID())
}
