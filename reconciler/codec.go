package reconciler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/20100g/ActiveDirectoryCSDsc/interfaces"
	"github.com/20100g/ActiveDirectoryCSDsc/schema"
)

// decodeValue turns a raw stored value into its decoded form per the
// descriptor's kind. Absent values decode to the kind's empty value: empty
// scalar text, empty list, empty flag set.
func decodeValue(d interfaces.SettingDescriptor, raw interfaces.RawValue) (interfaces.Value, error) {
	switch d.Kind {
	case interfaces.Scalar:
		return interfaces.ScalarValue(rawText(raw)), nil

	case interfaces.StringList:
		text := rawText(raw)
		if text == "" {
			return interfaces.ListValue(), nil
		}
		return interfaces.ListValue(strings.Split(text, interfaces.ListDelimiter)...), nil

	case interfaces.FlagSet:
		mask, err := rawMask(d.Name, raw)
		if err != nil {
			return interfaces.Value{}, err
		}
		if invalid := mask &^ d.FlagMask(); invalid != 0 {
			return interfaces.Value{}, fmt.Errorf("%w: setting %q mask %d has undefined bits %d",
				interfaces.ErrInvalidFlagValue, d.Name, mask, invalid)
		}
		names := make([]string, 0, len(d.Flags))
		for _, f := range d.Flags {
			if mask&f.Bit != 0 {
				names = append(names, f.Name)
			}
		}
		return interfaces.FlagsValue(names...), nil

	default:
		return interfaces.Value{}, fmt.Errorf("%w: %q has unsupported kind %s", interfaces.ErrUnknownSetting, d.Name, d.Kind)
	}
}

// encodeValue is the inverse of decodeValue: it renders a decoded value to
// the string form written to the store. Flag names are resolved through
// the schema so an unrecognized name fails with ErrUnknownFlagName.
func encodeValue(sch *schema.Schema, d interfaces.SettingDescriptor, v interfaces.Value) (string, error) {
	switch d.Kind {
	case interfaces.Scalar:
		return v.Scalar, nil

	case interfaces.StringList:
		return strings.Join(v.List, interfaces.ListDelimiter), nil

	case interfaces.FlagSet:
		var mask uint32
		for _, name := range v.Flags {
			bit, err := sch.FlagBitFor(d.Name, name)
			if err != nil {
				return "", err
			}
			mask |= bit
		}
		return strconv.FormatUint(uint64(mask), 10), nil

	default:
		return "", fmt.Errorf("%w: %q has unsupported kind %s", interfaces.ErrUnknownSetting, d.Name, d.Kind)
	}
}

// rawText renders a raw value as text. Absent values render empty;
// integer-typed values render in canonical decimal form.
func rawText(raw interfaces.RawValue) string {
	switch raw.Kind {
	case interfaces.RawNumber:
		return strconv.FormatUint(uint64(raw.Num), 10)
	case interfaces.RawString:
		return raw.Str
	default:
		return ""
	}
}

// rawMask interprets a raw value as a flag bitmask. Absent counts as zero;
// string-typed values must parse as an unsigned integer.
func rawMask(name string, raw interfaces.RawValue) (uint32, error) {
	switch raw.Kind {
	case interfaces.RawAbsent:
		return 0, nil
	case interfaces.RawNumber:
		return raw.Num, nil
	case interfaces.RawString:
		n, err := strconv.ParseUint(raw.Str, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%w: setting %q value %q is not a bitmask",
				interfaces.ErrInvalidFlagValue, name, raw.Str)
		}
		return uint32(n), nil
	default:
		return 0, fmt.Errorf("%w: setting %q has unsupported raw kind", interfaces.ErrInvalidFlagValue, name)
	}
}
