// Package remote runs shell commands on hypervisors and guests over SSH.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"unik-bench/internal/config"
	"unik-bench/internal/logging"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Executor runs commands on one remote host.
type Executor interface {
	// Run executes command and waits for it, returning its trimmed stdout.
	Run(ctx context.Context, command string) (string, error)
	// Start launches command in the background and returns once it is
	// detached. Its output goes to output, or is discarded when empty.
	Start(ctx context.Context, command, output string) error
	Host() string
}

const DefaultTimeout = 30 * time.Second

// SSHClient opens a fresh connection per command, so a dropped link never
// affects later commands of a campaign.
type SSHClient struct {
	host         string
	port         int
	clientConfig *ssh.ClientConfig
	timeout      time.Duration
	logger       *logrus.Logger
}

func NewSSHClient(cfg config.SSHConfig) (*SSHClient, error) {
	if cfg.User == "" {
		return nil, fmt.Errorf("ssh user is required")
	}

	auth, err := authMethods(cfg)
	if err != nil {
		return nil, err
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if cfg.KnownHosts != "" {
		hostKeyCallback, err = knownhosts.New(cfg.KnownHosts)
		if err != nil {
			return nil, fmt.Errorf("failed to load known_hosts %s: %w", cfg.KnownHosts, err)
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	port := cfg.Port
	if port == 0 {
		port = config.DefaultSSHPort
	}

	return &SSHClient{
		host: cfg.Host,
		port: port,
		clientConfig: &ssh.ClientConfig{
			User:            cfg.User,
			Auth:            auth,
			HostKeyCallback: hostKeyCallback,
			Timeout:         timeout,
		},
		timeout: timeout,
		logger:  logging.GetRemoteLogger(),
	}, nil
}

// authMethods prefers the key file and falls back to the password. ESXi
// only offers keyboard-interactive for passwords, so both variants are
// registered.
func authMethods(cfg config.SSHConfig) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if cfg.KeyFile != "" {
		buffer, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, err
		}
		key, err := ssh.ParsePrivateKey(buffer)
		if err != nil {
			return nil, fmt.Errorf("failed to parse key %s: %w", cfg.KeyFile, err)
		}
		methods = append(methods, ssh.PublicKeys(key))
	}

	if cfg.Password != "" {
		password := cfg.Password
		methods = append(methods,
			ssh.Password(password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		)
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("ssh needs a password or a key file")
	}
	return methods, nil
}

// WithHost returns a client using the same credentials against host.
func (c *SSHClient) WithHost(host string) *SSHClient {
	clone := *c
	clone.host = host
	return &clone
}

func (c *SSHClient) Host() string {
	return c.host
}

func (c *SSHClient) addr() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

func (c *SSHClient) Run(ctx context.Context, command string) (string, error) {
	if c.host == "" {
		return "", fmt.Errorf("no host configured for %q", command)
	}

	logger := c.logger.WithFields(logrus.Fields{
		"host":    c.host,
		"command": command,
	})
	logger.Debug("Executing remote command")

	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr())
	if err != nil {
		return "", fmt.Errorf("failed to connect to %s: %w", c.addr(), err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, c.addr(), c.clientConfig)
	if err != nil {
		_ = conn.Close()
		return "", fmt.Errorf("ssh handshake with %s failed: %w", c.addr(), err)
	}
	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to open session on %s: %w", c.host, err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- session.Run(command)
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = client.Close()
		return "", ctx.Err()
	}

	output := strings.TrimSpace(stdout.String())
	if err != nil {
		return output, fmt.Errorf("command %q on %s failed: %w: %s", command, c.host, err, strings.TrimSpace(stderr.String()))
	}

	logger.WithField("output_bytes", len(output)).Debug("Remote command finished")
	return output, nil
}

func (c *SSHClient) Start(ctx context.Context, command, output string) error {
	_, err := c.Run(ctx, DetachedCommand(command, output))
	return err
}

// DetachedCommand wraps command so it keeps running after the SSH session
// closes.
func DetachedCommand(command, output string) string {
	if output == "" {
		output = "/dev/null"
	}
	return fmt.Sprintf("nohup %s > %s 2>&1 < /dev/null &", command, ShellQuote(output))
}

// ShellQuote quotes s for a POSIX shell.
func ShellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !(r == '/' || r == '.' || r == '_' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	}) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
