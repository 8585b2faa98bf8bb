package reconciler

import (
	"context"
	"log/slog"

	"github.com/20100g/ActiveDirectoryCSDsc/interfaces"
	"github.com/20100g/ActiveDirectoryCSDsc/schema"
)

// Resource is the public surface of the reconciler, mirroring a
// declarative resource: Get reports current state, Test checks
// convergence, Set converges. One Resource serves one backing store and
// one restartable service; all three operations run a fresh synchronous
// cycle against the store with no caching between calls.
type Resource struct {
	schema  *schema.Schema
	reader  *Reader
	applier *Applier
	restart interfaces.RestartSignaler
	service string
	log     *slog.Logger
}

// NewResource wires the engine together. The restart signaler is raised at
// most once per Set, only when at least one write was issued.
func NewResource(sch *schema.Schema, store interfaces.RegistryStore, restart interfaces.RestartSignaler, service string, log *slog.Logger) *Resource {
	return &Resource{
		schema:  sch,
		reader:  NewReader(sch, store, log),
		applier: NewApplier(sch, store, log),
		restart: restart,
		service: service,
		log:     log,
	}
}

// Schema returns the setting table the resource reconciles against.
func (r *Resource) Schema() *schema.Schema {
	return r.schema
}

// Get returns the full current configuration snapshot. It fails with
// ErrStoreUnavailable when no active target can be resolved.
func (r *Resource) Get(ctx context.Context) (interfaces.Snapshot, error) {
	_, current, err := r.reader.ReadCurrent(ctx)
	return current, err
}

// Test reports whether the current configuration matches every setting
// asserted in desired.
func (r *Resource) Test(ctx context.Context, desired interfaces.Snapshot) (bool, error) {
	_, current, err := r.reader.ReadCurrent(ctx)
	if err != nil {
		return false, err
	}
	return Converged(r.schema, current, desired)
}

// Set runs the full read-diff-apply cycle and returns the number of writes
// issued. When at least one write occurred it requests a restart of the
// certificate service, exactly once; an absent service is a no-op outcome.
// The cycle is idempotent: a second Set with the same desired snapshot
// issues zero writes and raises no signal.
func (r *Resource) Set(ctx context.Context, desired interfaces.Snapshot) (int, error) {
	target, current, err := r.reader.ReadCurrent(ctx)
	if err != nil {
		return 0, err
	}

	diff, err := Diff(r.schema, current, desired)
	if err != nil {
		return 0, err
	}
	if len(diff) == 0 {
		r.log.Debug("Configuration already converged", slog.String("target", target))
		return 0, nil
	}

	applied, err := r.applier.Apply(ctx, target, diff, desired)
	if applied > 0 {
		r.signalRestart(ctx)
	}
	return applied, err
}

// signalRestart raises the advisory restart signal. The signal is
// fire-and-forget: failures are logged, never propagated, and completion
// is not verified.
func (r *Resource) signalRestart(ctx context.Context) {
	outcome, err := r.restart.RequestRestart(ctx, r.service)
	if err != nil {
		r.log.Error("Restart signal failed",
			slog.String("service", r.service),
			"err", err)
		return
	}
	r.log.Info("Restart signal raised",
		slog.String("service", r.service),
		slog.String("outcome", outcome.String()))
}
