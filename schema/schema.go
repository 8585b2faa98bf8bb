// Package schema defines the setting table for the certification authority
// configuration: which settings exist, how each one is encoded in the
// registry, and the named bits of flag-set settings. The table is built
// once at process start and is immutable afterwards; a malformed table is a
// configuration-time error, so construction fails fast instead of
// deferring problems to individual reconciliation calls.
package schema

import (
	"fmt"

	"github.com/20100g/ActiveDirectoryCSDsc/interfaces"
)

// Schema is an ordered, immutable table of setting descriptors with
// constant-time lookup by name.
type Schema struct {
	descriptors []interfaces.SettingDescriptor
	byName      map[string]interfaces.SettingDescriptor
}

// New builds a schema from an ordered descriptor list, validating it
// fully. It returns an error when a descriptor has an empty or duplicate
// name, when a FlagSet descriptor defines no flags or carries a flag whose
// bit is zero, not a power of two, or already claimed, or when a
// non-FlagSet descriptor carries flags.
func New(descriptors []interfaces.SettingDescriptor) (*Schema, error) {
	byName := make(map[string]interfaces.SettingDescriptor, len(descriptors))

	for _, d := range descriptors {
		if d.Name == "" {
			return nil, fmt.Errorf("schema: descriptor with empty name")
		}
		if _, dup := byName[d.Name]; dup {
			return nil, fmt.Errorf("schema: duplicate setting %q", d.Name)
		}

		switch d.Kind {
		case interfaces.Scalar, interfaces.StringList:
			if len(d.Flags) != 0 {
				return nil, fmt.Errorf("schema: setting %q is %s but defines flags", d.Name, d.Kind)
			}
		case interfaces.FlagSet:
			if len(d.Flags) == 0 {
				return nil, fmt.Errorf("schema: flag-set setting %q defines no flags", d.Name)
			}
			var mask uint32
			seen := make(map[string]bool, len(d.Flags))
			for _, f := range d.Flags {
				if f.Name == "" {
					return nil, fmt.Errorf("schema: setting %q has a flag with empty name", d.Name)
				}
				if seen[f.Name] {
					return nil, fmt.Errorf("schema: setting %q defines flag %q twice", d.Name, f.Name)
				}
				seen[f.Name] = true
				if f.Bit == 0 || f.Bit&(f.Bit-1) != 0 {
					return nil, fmt.Errorf("schema: setting %q flag %q bit %d is not a power of two", d.Name, f.Name, f.Bit)
				}
				if mask&f.Bit != 0 {
					return nil, fmt.Errorf("schema: setting %q flag %q reuses bit %d", d.Name, f.Name, f.Bit)
				}
				mask |= f.Bit
			}
		default:
			return nil, fmt.Errorf("schema: setting %q has invalid kind %d", d.Name, int(d.Kind))
		}

		byName[d.Name] = d
	}

	return &Schema{descriptors: descriptors, byName: byName}, nil
}

// MustNew builds a schema and panics on validation failure. Intended for
// static tables constructed at process start.
func MustNew(descriptors []interfaces.SettingDescriptor) *Schema {
	s, err := New(descriptors)
	if err != nil {
		panic(err)
	}
	return s
}

// Descriptors returns the table's descriptors in declaration order. The
// returned slice must not be modified.
func (s *Schema) Descriptors() []interfaces.SettingDescriptor {
	return s.descriptors
}

// Lookup returns the descriptor for a setting name, or ErrUnknownSetting
// when the name is not in the table.
func (s *Schema) Lookup(name string) (interfaces.SettingDescriptor, error) {
	d, ok := s.byName[name]
	if !ok {
		return interfaces.SettingDescriptor{}, fmt.Errorf("%w: %q", interfaces.ErrUnknownSetting, name)
	}
	return d, nil
}

// FlagBitFor returns the bit value of a named flag of a FlagSet setting.
// An unrecognized flag name yields ErrUnknownFlagName.
func (s *Schema) FlagBitFor(setting, flag string) (uint32, error) {
	d, err := s.Lookup(setting)
	if err != nil {
		return 0, err
	}
	for _, f := range d.Flags {
		if f.Name == flag {
			return f.Bit, nil
		}
	}
	return 0, fmt.Errorf("%w: %q is not a flag of %q", interfaces.ErrUnknownFlagName, flag, setting)
}
