package config

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Restarter restarts a systemd unit after a configuration change.
type Restarter interface {
	Restart(unit string) error
}

// SystemdRestarter shells out to systemctl. Cockpit handles privilege
// escalation via polkit on the calling side.
type SystemdRestarter struct {
	Timeout time.Duration
}

const defaultRestartTimeout = 30 * time.Second

// Restart runs "systemctl restart <unit>" with a timeout.
func (r SystemdRestarter) Restart(unit string) error {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultRestartTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "systemctl", "restart", unit)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("service restart timed out")
	}
	if err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("%s", bytes.TrimSpace(stderr.Bytes()))
		}
		return err
	}
	return nil
}
