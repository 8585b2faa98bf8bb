// Package interfaces defines the core types and collaborator interfaces for
// the certification authority settings reconciler. It provides the contract
// between the reconciliation engine, the backing registry store, and the
// service restart signaler without implementation details.
package interfaces

import (
	"fmt"
	"sort"
	"strconv"
)

// ValueKind identifies how a setting's value is encoded in the registry and
// which equality semantics apply to it.
type ValueKind int

const (
	// Scalar values compare by exact equality.
	Scalar ValueKind = iota
	// StringList values are delimiter-joined strings that compare as
	// unordered sets of elements.
	StringList
	// FlagSet values are integer bitmasks exposed as sets of flag names.
	FlagSet
)

// String returns the kind name.
func (k ValueKind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case StringList:
		return "stringlist"
	case FlagSet:
		return "flagset"
	default:
		return fmt.Sprintf("valuekind(%d)", int(k))
	}
}

// ListDelimiter is the literal two-character token (backslash followed by
// 'n') used to join and split string-list values in their stored form. It
// must be preserved exactly for compatibility with previously persisted
// state, and must not appear inside any list element.
const ListDelimiter = `\n`

// FlagBit pairs a flag name with its bit value. Bit values are powers of
// two; they need not be contiguous.
type FlagBit struct {
	Name string
	Bit  uint32
}

// SettingDescriptor describes a single setting: its name, its value kind,
// and, for FlagSet settings, the defined flag bits. Descriptors are built
// once at startup and immutable thereafter.
type SettingDescriptor struct {
	Name  string
	Kind  ValueKind
	Flags []FlagBit
}

// FlagMask returns the union of all defined bits for a FlagSet descriptor.
// For other kinds it returns zero.
func (d SettingDescriptor) FlagMask() uint32 {
	var mask uint32
	for _, f := range d.Flags {
		mask |= f.Bit
	}
	return mask
}

// Value is the decoded form of a setting, a closed tagged variant over the
// three value kinds. Exactly one of the payload fields is meaningful,
// selected by Kind.
//
// Scalar payloads carry a canonical text form: integer-typed raw values are
// decimal-formatted on decode, so scalar equality is plain string equality
// and re-encoding is the identity.
type Value struct {
	Kind   ValueKind
	Scalar string
	List   []string
	Flags  []string
}

// ScalarValue constructs a scalar Value from its canonical text form.
func ScalarValue(s string) Value {
	return Value{Kind: Scalar, Scalar: s}
}

// NumberValue constructs a scalar Value from an integer.
func NumberValue(n uint32) Value {
	return Value{Kind: Scalar, Scalar: strconv.FormatUint(uint64(n), 10)}
}

// ListValue constructs a string-list Value.
func ListValue(elems ...string) Value {
	return Value{Kind: StringList, List: elems}
}

// FlagsValue constructs a flag-set Value from flag names.
func FlagsValue(names ...string) Value {
	return Value{Kind: FlagSet, Flags: names}
}

// Equal reports whether two values are equal under their kind's semantics:
// exact equality for scalars, unordered set equality for string lists and
// flag sets. Values of different kinds are never equal.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case Scalar:
		return v.Scalar == other.Scalar
	case StringList:
		return stringSetEqual(v.List, other.List)
	case FlagSet:
		return stringSetEqual(v.Flags, other.Flags)
	default:
		return false
	}
}

// stringSetEqual compares two string slices as sets: same membership,
// order and duplication ignored. Both sides go through the same
// symmetric-difference check so duplicates cannot skew the result.
func stringSetEqual(a, b []string) bool {
	inA := make(map[string]bool, len(a))
	for _, s := range a {
		inA[s] = true
	}
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		if !inA[s] {
			return false
		}
		inB[s] = true
	}
	for _, s := range a {
		if !inB[s] {
			return false
		}
	}
	return true
}

// Snapshot maps setting names to decoded values. A current snapshot holds
// one entry per schema descriptor. A desired snapshot is partial: settings
// the caller does not wish to assert are absent from the map, never
// present with a zero value.
type Snapshot map[string]Value

// Names returns the snapshot's setting names in sorted order, for
// deterministic iteration.
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RawKind identifies the representation of a value read from the backing
// store.
type RawKind int

const (
	// RawAbsent marks a value not present in the store.
	RawAbsent RawKind = iota
	// RawString marks a string-typed stored value.
	RawString
	// RawNumber marks an integer-typed stored value.
	RawNumber
)

// RawValue is the undecoded form of a stored value as returned by a
// registry store read. Writes always use the string form, so RawNumber
// only occurs on reads from stores with typed values.
type RawValue struct {
	Kind RawKind
	Str  string
	Num  uint32
}

// AbsentRaw returns a RawValue marking an absent stored value.
func AbsentRaw() RawValue {
	return RawValue{Kind: RawAbsent}
}

// StringRaw returns a string-typed RawValue.
func StringRaw(s string) RawValue {
	return RawValue{Kind: RawString, Str: s}
}

// NumberRaw returns an integer-typed RawValue.
func NumberRaw(n uint32) RawValue {
	return RawValue{Kind: RawNumber, Num: n}
}

// PendingWrite is a single encoded write produced by the applier and
// consumed immediately by the store's write primitive. It is never
// persisted.
type PendingWrite struct {
	Name    string
	Encoded string
}
