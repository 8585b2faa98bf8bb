// Package restart implements the advisory restart signal raised after
// configuration writes. Signalers request a restart of the certificate
// service from the host's service manager; the reconciler never waits for
// or verifies completion.
package restart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/20100g/ActiveDirectoryCSDsc/interfaces"
)

// systemd returns exit status 5 for operations on units that do not exist.
const systemdUnitNotFound = 5

// Exec signals restarts by invoking the host's service manager command.
// The default invocation is "systemctl restart <service>"; an alternative
// command (e.g. "sc.exe", "service") can be supplied for other hosts.
type Exec struct {
	command []string
	log     *slog.Logger
}

// NewExec creates an exec-based signaler. command is the service-manager
// invocation without the trailing service name; empty means the systemctl
// default.
func NewExec(command []string, log *slog.Logger) *Exec {
	if len(command) == 0 {
		command = []string{"systemctl", "restart"}
	}
	return &Exec{command: command, log: log}
}

// RequestRestart runs the service-manager command for the named service.
// A service that is not installed on the host is a no-op outcome, not an
// error.
func (e *Exec) RequestRestart(ctx context.Context, service string) (interfaces.RestartOutcome, error) {
	argv := append(append([]string{}, e.command...), service)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	output, err := cmd.CombinedOutput()
	if err == nil {
		e.log.Info("Service restart requested", slog.String("service", service))
		return interfaces.RestartRequested, nil
	}

	if isNotPresent(err, output) {
		e.log.Info("Service not present, restart skipped", slog.String("service", service))
		return interfaces.ServiceNotPresent, nil
	}

	return interfaces.RestartRequested, fmt.Errorf("restart of %q failed: %w: %s", service, err, strings.TrimSpace(string(output)))
}

// isNotPresent distinguishes "no such service" from a genuine restart
// failure using the service manager's exit code and output.
func isNotPresent(err error, output []byte) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == systemdUnitNotFound {
		return true
	}
	return strings.Contains(strings.ToLower(string(output)), "not found")
}
