//go:build linux
// +build linux

package kernel_test

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-kernel/kernel"
)

func TestCommandLauncherSubstitutesPorts(t *testing.T) {
	l := &kernel.CommandLauncher{
		Path: "sleep",
		Args: []string{"60", kernel.PlaceholderRequestPort, kernel.PlaceholderBroadcastPort},
	}
	res, err := l.Launch(0, 0)
	require.NoError(t, err)
	t.Cleanup(func() { res.Process.Kill() })

	require.NotZero(t, res.RequestPort)
	require.NotZero(t, res.BroadcastPort)
	require.NotEqual(t, res.RequestPort, res.BroadcastPort)

	// The placeholders must have been replaced in the child's argv.
	cmdline, err := os.ReadFile(fmt.Sprintf("/proc/%d/cmdline", res.Process.Pid()))
	require.NoError(t, err)
	argv := strings.Split(strings.TrimRight(string(cmdline), "\x00"), "\x00")
	require.Contains(t, argv, strconv.Itoa(res.RequestPort))
	require.Contains(t, argv, strconv.Itoa(res.BroadcastPort))
}

func TestCommandLauncherHonorsRequestedPorts(t *testing.T) {
	l := &kernel.CommandLauncher{Path: "sleep", Args: []string{"60"}}
	res, err := l.Launch(7100, 7200)
	require.NoError(t, err)
	t.Cleanup(func() { res.Process.Kill() })

	require.Equal(t, 7100, res.RequestPort)
	require.Equal(t, 7200, res.BroadcastPort)
}

func TestCommandLauncherBadExecutable(t *testing.T) {
	l := &kernel.CommandLauncher{Path: "/nonexistent/kernel-binary"}
	_, err := l.Launch(0, 0)
	require.Error(t, err)
}

func TestOSProcessLiveness(t *testing.T) {
	l := &kernel.CommandLauncher{Path: "sleep", Args: []string{"60"}}
	res, err := l.Launch(0, 0)
	require.NoError(t, err)

	proc := res.Process
	require.True(t, proc.Alive())
	require.Positive(t, proc.Pid())

	require.NoError(t, proc.Kill())
	deadline := time.Now().Add(5 * time.Second)
	for proc.Alive() {
		if time.Now().After(deadline) {
			t.Fatal("process still alive after kill")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
