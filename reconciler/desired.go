package reconciler

import (
	"fmt"
	"strconv"

	"github.com/20100g/ActiveDirectoryCSDsc/interfaces"
	"github.com/20100g/ActiveDirectoryCSDsc/schema"
)

// ParseDesired converts a generically decoded document (JSON object or
// YAML mapping) into a partial desired snapshot. Only keys present in the
// document are asserted; there is no implicit zero for omitted settings.
//
// Accepted shapes per kind: scalars take strings or integers (integers are
// canonicalized to decimal text), string lists and flag sets take arrays
// of strings. Flag names are not resolved here; the applier validates them
// against the schema before any write.
func ParseDesired(sch *schema.Schema, doc map[string]any) (interfaces.Snapshot, error) {
	desired := make(interfaces.Snapshot, len(doc))
	for name, rawVal := range doc {
		d, err := sch.Lookup(name)
		if err != nil {
			return nil, err
		}

		switch d.Kind {
		case interfaces.Scalar:
			text, err := scalarText(rawVal)
			if err != nil {
				return nil, fmt.Errorf("setting %q: %w", name, err)
			}
			desired[name] = interfaces.ScalarValue(text)

		case interfaces.StringList:
			elems, err := stringSlice(rawVal)
			if err != nil {
				return nil, fmt.Errorf("setting %q: %w", name, err)
			}
			desired[name] = interfaces.ListValue(elems...)

		case interfaces.FlagSet:
			names, err := stringSlice(rawVal)
			if err != nil {
				return nil, fmt.Errorf("setting %q: %w", name, err)
			}
			desired[name] = interfaces.FlagsValue(names...)
		}
	}
	return desired, nil
}

func scalarText(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case uint64:
		return strconv.FormatUint(t, 10), nil
	case float64:
		// JSON numbers decode as float64; only integral values are valid.
		if t != float64(int64(t)) {
			return "", fmt.Errorf("non-integral number %v", t)
		}
		return strconv.FormatInt(int64(t), 10), nil
	default:
		return "", fmt.Errorf("expected string or integer, got %T", v)
	}
}

func stringSlice(v any) ([]string, error) {
	switch t := v.(type) {
	case []string:
		return t, nil
	case []any:
		elems := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("expected string element, got %T", e)
			}
			elems = append(elems, s)
		}
		return elems, nil
	default:
		return nil, fmt.Errorf("expected list of strings, got %T", v)
	}
}
