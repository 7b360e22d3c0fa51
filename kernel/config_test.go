package kernel_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-kernel/api"
	"github.com/momentics/hioload-kernel/kernel"
)

func TestConnectionFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernel.yaml")
	in := &kernel.ConnectionInfo{
		IP:            "127.0.0.1",
		RequestPort:   5555,
		BroadcastPort: 5556,
		ReversePort:   5557,
	}
	require.NoError(t, in.WriteFile(path))

	out, err := kernel.LoadConnectionFile(path)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestConnectionFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernel.yaml")
	ci := &kernel.ConnectionInfo{RequestPort: 1, BroadcastPort: 2, ReversePort: 3}
	require.NoError(t, ci.WriteFile(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestConnectionInfoValidate(t *testing.T) {
	ci := &kernel.ConnectionInfo{RequestPort: 5555}
	require.NoError(t, ci.Validate())
	require.Equal(t, api.Localhost, ci.IP, "empty IP defaults to loopback")

	bad := &kernel.ConnectionInfo{RequestPort: 70000}
	require.Error(t, bad.Validate())

	neg := &kernel.ConnectionInfo{BroadcastPort: -1}
	require.Error(t, neg.Validate())
}

func TestLoadConnectionFileErrors(t *testing.T) {
	_, err := kernel.LoadConnectionFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "garbage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o600))
	_, err = kernel.LoadConnectionFile(path)
	require.Error(t, err)
}
