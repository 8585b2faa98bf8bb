package reconciler

import (
	"github.com/20100g/ActiveDirectoryCSDsc/interfaces"
	"github.com/20100g/ActiveDirectoryCSDsc/schema"
)

// Diff returns the names of settings asserted in desired whose value
// differs from current under kind-specific equality: exact for scalars,
// unordered set equality for string lists and flag sets. Settings absent
// from desired are not asserted and never appear in the result. The result
// follows schema declaration order for deterministic output.
//
// Diff is pure and side-effect free. A desired name not present in the
// schema is a defect and fails with ErrUnknownSetting.
func Diff(sch *schema.Schema, current, desired interfaces.Snapshot) ([]string, error) {
	for name := range desired {
		if _, err := sch.Lookup(name); err != nil {
			return nil, err
		}
	}

	var differing []string
	for _, d := range sch.Descriptors() {
		want, asserted := desired[d.Name]
		if !asserted {
			continue
		}
		if !current[d.Name].Equal(want) {
			differing = append(differing, d.Name)
		}
	}
	return differing, nil
}

// Converged reports whether the current snapshot matches every setting
// asserted in desired. It is the dry-run predicate behind Test.
func Converged(sch *schema.Schema, current, desired interfaces.Snapshot) (bool, error) {
	differing, err := Diff(sch, current, desired)
	if err != nil {
		return false, err
	}
	return len(differing) == 0, nil
}
