package interfaces

import (
	"context"
	"errors"
)

// RegistryStore is the backing key/value store holding the certification
// authority configuration. Implementations address values by target (the
// configuration instance, e.g. a CA name) and setting name.
//
// Reads return typed raw values; writes always take the encoded string
// form produced by the applier.
type RegistryStore interface {
	// ResolveActiveTarget returns the identifier of the configuration
	// target currently designated active. When no target is active it
	// returns ErrStoreUnavailable.
	ResolveActiveTarget(ctx context.Context) (string, error)

	// ReadValue fetches the raw stored value for one setting of the given
	// target. A missing value is not an error: it is reported as a
	// RawValue of kind RawAbsent.
	ReadValue(ctx context.Context, target, name string) (RawValue, error)

	// WriteValue stores the encoded value for one setting of the given
	// target. A rejected write is reported wrapping ErrWriteFailed.
	WriteValue(ctx context.Context, target, name, encoded string) error
}

// Sentinel errors for the reconciliation cycle. Every failure surfaces the
// specific kind and the offending setting name to the caller; nothing is
// swallowed or retried inside the core.
var (
	// ErrStoreUnavailable indicates no active configuration target could
	// be resolved, or the backing store could not be reached at all. It is
	// fatal to the whole cycle and reported distinctly from a successful
	// read of a missing value.
	ErrStoreUnavailable = errors.New("registry store unavailable")

	// ErrInvalidFlagValue indicates a stored bitmask carries bits outside
	// the union of defined flag bits. Decoding rejects such values rather
	// than silently masking them off, since truncation would hide a
	// misconfigured store.
	ErrInvalidFlagValue = errors.New("flag value outside defined bits")

	// ErrUnknownFlagName indicates a desired flag set names a flag the
	// schema does not define. It is raised before any write is issued.
	ErrUnknownFlagName = errors.New("unknown flag name")

	// ErrWriteFailed indicates an individual store write was rejected.
	// Writes issued earlier in the same batch are retained; convergence is
	// reached by re-running the cycle.
	ErrWriteFailed = errors.New("registry write failed")

	// ErrUnknownSetting indicates a setting name that does not exist in
	// the schema table. This is a programming or configuration defect, not
	// a runtime condition to tolerate.
	ErrUnknownSetting = errors.New("unknown setting name")
)
