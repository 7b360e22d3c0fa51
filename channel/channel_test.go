//go:build linux
// +build linux

package channel_test

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/momentics/hioload-kernel/api"
	"github.com/momentics/hioload-kernel/channel"
	"github.com/momentics/hioload-kernel/fake"
	"github.com/momentics/hioload-kernel/session"
)

func newTestContext(t *testing.T) *channel.Context {
	t.Helper()
	return channel.NewContext(
		channel.WithLogger(zaptest.NewLogger(t)),
		channel.WithDialTimeout(2*time.Second),
	)
}

func startKernel(t *testing.T) *fake.Kernel {
	t.Helper()
	kern, err := fake.NewKernel(zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { kern.Close() })
	return kern
}

// waitFor polls cond until it holds or the deadline expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// deadPort returns a loopback port with nothing listening on it.
func deadPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestChannelLifecycle(t *testing.T) {
	kern := startKernel(t)
	ctx := newTestContext(t)
	sess := session.New()

	ch, err := channel.NewReverse(ctx, sess, channel.NewBlockingHandler(0))
	require.NoError(t, err)
	require.False(t, ch.IsAlive())
	require.NoError(t, ch.SetAddress(kern.Addr()))

	require.NoError(t, ch.Start())
	require.True(t, ch.IsAlive())
	require.ErrorIs(t, ch.SetAddress(kern.Addr()), api.ErrAlreadyRunning)

	require.NoError(t, ch.Stop())
	require.False(t, ch.IsAlive())
	require.NoError(t, ch.Err())

	require.ErrorIs(t, ch.Start(), api.ErrAlreadyStarted)
}

func TestChannelStopWithoutStart(t *testing.T) {
	ch, err := channel.NewReverse(newTestContext(t), session.New(), nil)
	require.NoError(t, err)
	require.NoError(t, ch.Stop())
}

func TestChannelSetAddress(t *testing.T) {
	ch, err := channel.NewReverse(newTestContext(t), session.New(), nil)
	require.NoError(t, err)

	require.NoError(t, ch.SetAddress(api.Address{Host: "10.0.0.1", Port: 4242}))
	require.Equal(t, api.Address{Host: "10.0.0.1", Port: 4242}, ch.Address())

	// The zero value resets to the default address.
	require.NoError(t, ch.SetAddress(api.Address{}))
	require.Equal(t, api.DefaultAddress(), ch.Address())
}

func TestChannelConnectFailure(t *testing.T) {
	ctx := newTestContext(t)
	ch, err := channel.NewReverse(ctx, session.New(), channel.NewBlockingHandler(0))
	require.NoError(t, err)
	require.NoError(t, ch.SetAddress(api.Address{Host: api.Localhost, Port: deadPort(t)}))

	require.NoError(t, ch.Start())
	waitFor(t, 5*time.Second, func() bool { return !ch.IsAlive() },
		"channel stayed alive after failed connect")

	var terr *api.TransportError
	require.ErrorAs(t, ch.Err(), &terr)
	require.Equal(t, "connect", terr.Op)
	require.NoError(t, ch.Stop())
}

func TestChannelPeerDisconnectRecordsError(t *testing.T) {
	kern := startKernel(t)
	ch, err := channel.NewReverse(newTestContext(t), session.New(), channel.NewBlockingHandler(0))
	require.NoError(t, err)
	require.NoError(t, ch.SetAddress(kern.Addr()))
	require.NoError(t, ch.Start())
	waitFor(t, 5*time.Second, func() bool { return len(kern.Greetings()) > 0 },
		"kernel never saw the greeting")

	// Tearing the kernel down severs the connection under the channel.
	require.NoError(t, kern.Close())
	waitFor(t, 5*time.Second, func() bool { return !ch.IsAlive() },
		"channel stayed alive after peer close")

	var terr *api.TransportError
	require.ErrorAs(t, ch.Err(), &terr)
	require.NoError(t, ch.Stop())
}
