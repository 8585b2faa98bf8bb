// Package reconciler implements the declarative reconciliation engine for
// certification authority settings: reading the current configuration from
// the backing registry store, diffing it against a partial desired
// snapshot, and applying the minimal set of writes needed to converge.
package reconciler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/20100g/ActiveDirectoryCSDsc/interfaces"
	"github.com/20100g/ActiveDirectoryCSDsc/schema"
)

// Reader pulls the full current configuration snapshot from the backing
// store, decoding every setting per its schema kind.
type Reader struct {
	schema *schema.Schema
	store  interfaces.RegistryStore
	log    *slog.Logger
}

// NewReader creates a reader over the given schema and store.
func NewReader(sch *schema.Schema, store interfaces.RegistryStore, log *slog.Logger) *Reader {
	return &Reader{schema: sch, store: store, log: log}
}

// ReadCurrent resolves the active configuration target and reads the
// current value of every setting in the schema. It returns the target
// identifier alongside the fully populated snapshot. When no target is
// active the store reports ErrStoreUnavailable and the read fails as a
// whole; snapshots are never cached across calls since the store can
// change out-of-band.
func (r *Reader) ReadCurrent(ctx context.Context) (string, interfaces.Snapshot, error) {
	target, err := r.store.ResolveActiveTarget(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("resolving active target: %w", err)
	}

	current := make(interfaces.Snapshot, len(r.schema.Descriptors()))
	for _, d := range r.schema.Descriptors() {
		raw, err := r.store.ReadValue(ctx, target, d.Name)
		if err != nil {
			return "", nil, fmt.Errorf("reading %q: %w", d.Name, err)
		}
		value, err := decodeValue(d, raw)
		if err != nil {
			return "", nil, err
		}
		current[d.Name] = value
	}

	r.log.Debug("Read current configuration",
		slog.String("target", target),
		slog.Int("settings", len(current)))

	return target, current, nil
}
