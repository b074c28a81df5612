package remote

import (
	"context"
	"path/filepath"
	"testing"

	"unik-bench/internal/config"

	"github.com/stretchr/testify/require"
)

func TestNewSSHClient_RequiresCredentials(t *testing.T) {
	_, err := NewSSHClient(config.SSHConfig{Host: "esxi", User: "root"})
	require.Error(t, err)

	_, err = NewSSHClient(config.SSHConfig{Host: "esxi", Password: "secret"})
	require.Error(t, err)
}

func TestNewSSHClient_Defaults(t *testing.T) {
	c, err := NewSSHClient(config.SSHConfig{Host: "esxi", User: "root", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, "esxi:22", c.addr())
	require.Equal(t, DefaultTimeout, c.timeout)
	require.Len(t, c.clientConfig.Auth, 2)
}

func TestNewSSHClient_MissingKnownHosts(t *testing.T) {
	_, err := NewSSHClient(config.SSHConfig{
		Host:       "esxi",
		User:       "root",
		Password:   "secret",
		KnownHosts: filepath.Join(t.TempDir(), "missing"),
	})
	require.Error(t, err)
}

func TestWithHost(t *testing.T) {
	c, err := NewSSHClient(config.SSHConfig{Host: "esxi", User: "samuel", Password: "secret", Port: 2222})
	require.NoError(t, err)

	guest := c.WithHost("10.3.1.174")
	require.Equal(t, "10.3.1.174", guest.Host())
	require.Equal(t, "10.3.1.174:2222", guest.addr())
	require.Equal(t, "esxi", c.Host())
}

func TestRun_WithoutHost(t *testing.T) {
	c, err := NewSSHClient(config.SSHConfig{User: "root", Password: "secret"})
	require.NoError(t, err)
	_, err = c.Run(context.Background(), "true")
	require.Error(t, err)
}

func TestRun_CanceledContext(t *testing.T) {
	c, err := NewSSHClient(config.SSHConfig{Host: "192.0.2.1", User: "root", Password: "secret"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Run(ctx, "true")
	require.Error(t, err)
}

func TestDetachedCommand(t *testing.T) {
	require.Equal(t,
		"nohup stress -c 10 > /dev/null 2>&1 < /dev/null &",
		DetachedCommand("stress -c 10", ""))
	require.Equal(t,
		"nohup ./cyclictest -D 4h -v -i 100 > logs/cyclictest_100.txt 2>&1 < /dev/null &",
		DetachedCommand("./cyclictest -D 4h -v -i 100", "logs/cyclictest_100.txt"))
}

func TestShellQuote(t *testing.T) {
	require.Equal(t, "/tmp/a.txt", ShellQuote("/tmp/a.txt"))
	require.Equal(t, "'my logs/a.txt'", ShellQuote("my logs/a.txt"))
	require.Equal(t, `'it'\''s'`, ShellQuote("it's"))
	require.Equal(t, "''", ShellQuote(""))
}
