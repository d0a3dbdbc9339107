// Package table registers leaf operators that bring data into the graph: a
// quantity constructor from inline columnar rows, and a selector over the
// reserved config node.
package table

import (
	"context"
	"fmt"

	"github.com/vk/calcgrid/internal/quantity"
	"github.com/vk/calcgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the data operators with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("table", opTable)
	r.Register("config_value", opConfigValue)
}

func stringSlice(v any) ([]string, bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

// opTable builds a quantity from options: "name", "units", "dims" (list of
// dimension names), and "rows", where each row lists one label per
// dimension followed by the cell value.
func opTable(_ context.Context, call *registry.Call) (any, error) {
	name, _ := call.Kwarg("name", "").(string)
	units, _ := call.Kwarg("units", "").(string)
	dims, ok := stringSlice(call.Kwarg("dims", nil))
	if !ok {
		return nil, fmt.Errorf("table: bad dims option %v", call.Kwargs["dims"])
	}

	rows, ok := call.Kwarg("rows", nil).([]any)
	if !ok {
		return nil, fmt.Errorf("table: rows option is required")
	}
	records := make([]quantity.Record, 0, len(rows))
	for i, raw := range rows {
		row, ok := raw.([]any)
		if !ok || len(row) != len(dims)+1 {
			return nil, fmt.Errorf("table: row %d must list %d labels and a value", i, len(dims))
		}
		labels, ok := stringSlice(row[:len(dims)])
		if !ok {
			return nil, fmt.Errorf("table: row %d has a non-string label", i)
		}
		value, ok := asFloat(row[len(dims)])
		if !ok {
			return nil, fmt.Errorf("table: row %d has a non-numeric value %v", i, row[len(dims)])
		}
		records = append(records, quantity.Record{Labels: labels, Value: value})
	}

	return quantity.New(name, units, dims, records)
}

// opConfigValue reads one entry from a settings map, typically the reserved
// config node passed as the argument. The "key" option names the entry;
// "default" supplies a value when the entry is absent.
func opConfigValue(_ context.Context, call *registry.Call) (any, error) {
	if len(call.Args) != 1 {
		return nil, fmt.Errorf("config_value: want 1 argument, got %d", len(call.Args))
	}
	settings, ok := call.Args[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("config_value: want a settings map, got %T", call.Args[0])
	}
	name, ok := call.Kwarg("key", "").(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("config_value: key option is required")
	}
	if v, ok := settings[name]; ok {
		return v, nil
	}
	if v, ok := call.Kwargs["default"]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("config_value: %q not set and no default given", name)
}
