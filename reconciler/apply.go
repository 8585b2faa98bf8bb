package reconciler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/20100g/ActiveDirectoryCSDsc/interfaces"
	"github.com/20100g/ActiveDirectoryCSDsc/schema"
)

// Applier converges differing settings by re-encoding the desired value of
// each one and issuing exactly one store write per name.
type Applier struct {
	schema *schema.Schema
	store  interfaces.RegistryStore
	log    *slog.Logger
}

// NewApplier creates an applier over the given schema and store.
func NewApplier(sch *schema.Schema, store interfaces.RegistryStore, log *slog.Logger) *Applier {
	return &Applier{schema: sch, store: store, log: log}
}

// Apply encodes the desired value of every name in diff and writes it to
// the store for the given target, returning the number of writes issued.
//
// The whole batch is encoded and validated before the first write, so an
// invalid desired value (for example a flag set naming an unknown flag)
// fails with zero writes issued. There is no rollback: when write k of n
// fails, writes before it are retained and the error names the failed
// setting; re-running the full cycle converges the remainder.
func (a *Applier) Apply(ctx context.Context, target string, diff []string, desired interfaces.Snapshot) (int, error) {
	pending := make([]interfaces.PendingWrite, 0, len(diff))
	for _, name := range diff {
		d, err := a.schema.Lookup(name)
		if err != nil {
			return 0, err
		}
		value, asserted := desired[name]
		if !asserted {
			return 0, fmt.Errorf("%w: %q is in the diff but not asserted", interfaces.ErrUnknownSetting, name)
		}
		encoded, err := encodeValue(a.schema, d, value)
		if err != nil {
			return 0, err
		}
		pending = append(pending, interfaces.PendingWrite{Name: name, Encoded: encoded})
	}

	applied := 0
	for _, w := range pending {
		if err := a.store.WriteValue(ctx, target, w.Name, w.Encoded); err != nil {
			return applied, fmt.Errorf("writing %q: %w", w.Name, err)
		}
		a.log.Info("Applied setting",
			slog.String("target", target),
			slog.String("setting", w.Name))
		applied++
	}
	return applied, nil
}
