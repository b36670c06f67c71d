// Package netdev runs operational commands on real lab devices over SSH.
package netdev

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/netsage/netsage/internal/config"
)

// PlatformLinux marks hosts that speak a plain shell instead of an
// IOS-style CLI. Everything else is treated as a network OS.
const PlatformLinux = "linux"

// Runner executes a single command on a named device.
type Runner interface {
	Run(ctx context.Context, device, command string) (string, error)
	Device(name string) (Device, bool)
	DeviceNames() []string
}

// Device is one entry in the lab inventory.
type Device struct {
	Name     string
	Host     string
	Platform string
}

// SSHRunner connects to inventory devices with password auth. Lab
// devices get reimaged constantly, so host keys are not checked.
type SSHRunner struct {
	devices  map[string]Device
	username string
	password string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewSSHRunner builds a runner from the lab section of the config.
func NewSSHRunner(cfg config.LabConfig, logger *slog.Logger) *SSHRunner {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	devices := make(map[string]Device, len(cfg.Devices))
	for _, d := range cfg.Devices {
		devices[d.Name] = Device{Name: d.Name, Host: d.Host, Platform: d.Platform}
	}

	return &SSHRunner{
		devices:  devices,
		username: cfg.Username,
		password: cfg.Password,
		timeout:  timeout,
		logger:   logger,
	}
}

// Device looks up an inventory entry by name.
func (r *SSHRunner) Device(name string) (Device, bool) {
	d, ok := r.devices[name]
	return d, ok
}

// DeviceNames returns the inventory names in sorted order.
func (r *SSHRunner) DeviceNames() []string {
	names := make([]string, 0, len(r.devices))
	for name := range r.devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run opens a fresh SSH session to the device and executes one command.
func (r *SSHRunner) Run(ctx context.Context, device, command string) (string, error) {
	d, ok := r.devices[device]
	if !ok {
		return "", fmt.Errorf("device '%s' not found. Available: %s",
			device, strings.Join(r.DeviceNames(), ", "))
	}

	r.logger.Debug("running device command", "device", d.Name, "command", command)

	addr := d.Host
	if !strings.Contains(addr, ":") {
		addr += ":22"
	}

	sshCfg := &ssh.ClientConfig{
		User:            r.username,
		Auth:            []ssh.AuthMethod{ssh.Password(r.password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         r.timeout,
	}

	dialer := &net.Dialer{Timeout: r.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("connecting to %s: %w", d.Name, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, sshCfg)
	if err != nil {
		conn.Close()
		return "", fmt.Errorf("ssh handshake with %s: %w", d.Name, err)
	}
	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("opening session on %s: %w", d.Name, err)
	}
	defer session.Close()

	// Honor context cancellation while the command runs.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			session.Close()
		case <-done:
		}
	}()

	out, err := session.CombinedOutput(command)
	close(done)
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		return "", fmt.Errorf("running %q on %s: %w", command, d.Name, err)
	}

	return strings.TrimRight(string(out), "\r\n"), nil
}
