// Package common holds shared service metadata and logger setup used by
// every command and server in the repository.
package common

import (
	"log/slog"
	"os"
)

// PackageName identifies this service in metrics namespaces.
const PackageName = "adcs_ca_settings"

// Version is the service version, overridable at build time via
// -ldflags "-X github.com/20100g/ActiveDirectoryCSDsc/common.Version=...".
var Version = "dev"

// LoggingOpts configures SetupLogger.
type LoggingOpts struct {
	// Debug enables debug-level output.
	Debug bool
	// JSON switches from text to JSON output.
	JSON bool
	// Service is added as a "service" attribute on every record.
	Service string
	// Version is added as a "version" attribute on every record.
	Version string
}

// SetupLogger creates the process-wide structured logger. Components
// receive it through their constructors; there is no package-level logger.
func SetupLogger(opts *LoggingOpts) *slog.Logger {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	log := slog.New(handler)
	if opts.Service != "" {
		log = log.With(slog.String("service", opts.Service))
	}
	if opts.Version != "" {
		log = log.With(slog.String("version", opts.Version))
	}
	return log
}
