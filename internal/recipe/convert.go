package recipe

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// fromCty converts a cty.Value from a decoded recipe into plain Go values:
// strings, float64, bool, []any, and map[string]any.
func fromCty(val cty.Value) (any, error) {
	if val == cty.NilVal || !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	if val.Type().IsPrimitiveType() {
		switch val.Type() {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			f, _ := val.AsBigFloat().Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", val.Type().FriendlyName())
		}
	}
	if val.Type().IsObjectType() || val.Type().IsMapType() {
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			converted, err := fromCty(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = converted
		}
		return out, nil
	}
	if val.Type().IsTupleType() || val.Type().IsListType() || val.Type().IsSetType() {
		var out []any
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			converted, err := fromCty(v)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty type: %s", val.Type().FriendlyName())
}

// fromCtyMap converts an object-typed cty.Value into a kwargs map. A nil
// value yields a nil map.
func fromCtyMap(val cty.Value) (map[string]any, error) {
	converted, err := fromCty(val)
	if err != nil {
		return nil, err
	}
	if converted == nil {
		return nil, nil
	}
	m, ok := converted.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("want an object, got %T", converted)
	}
	return m, nil
}
