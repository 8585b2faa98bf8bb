package interfaces

import "context"

// RestartOutcome is the result of a restart request.
type RestartOutcome int

const (
	// RestartRequested means the service manager accepted the restart.
	RestartRequested RestartOutcome = iota
	// ServiceNotPresent means the named service is not installed on the
	// host. This is a no-op outcome, not an error.
	ServiceNotPresent
)

// String returns the outcome name.
func (o RestartOutcome) String() string {
	switch o {
	case RestartRequested:
		return "restart requested"
	case ServiceNotPresent:
		return "service not present"
	default:
		return "unknown outcome"
	}
}

// RestartSignaler requests a restart of the certificate service after
// configuration writes. The signal is advisory and fire-and-forget: the
// reconciler never waits for or verifies restart completion.
type RestartSignaler interface {
	RequestRestart(ctx context.Context, service string) (RestartOutcome, error)
}
