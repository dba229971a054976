package component

import (
	"maps"
	"slices"

	"github.com/vango-dev/tessera/pkg/value"
)

// ChangeVariables applies inbound variables to c in name order.
//
// Disabled, read-only and invisible components ignore the whole set. A
// rejected variable is reported in errs and does not stop the others. When
// any variable changed observable state, c is marked dirty once all of them
// have been applied.
func ChangeVariables(c Component, vars map[string]value.Value) (changed bool, errs []error) {
	if c == nil || len(vars) == 0 {
		return false, nil
	}
	if !c.IsEnabled() || c.IsReadOnly() || !c.IsVisible() {
		return false, nil
	}

	for _, name := range slices.Sorted(maps.Keys(vars)) {
		ch, err := c.ApplyVariable(name, vars[name])
		if err != nil {
			errs = append(errs, &VariableError{ComponentID: c.ID(), Name: name, Err: err})
			continue
		}
		changed = changed || ch
	}

	if changed {
		c.MarkDirty()
	}
	return changed, errs
}
