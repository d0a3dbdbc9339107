// Package aggregate registers dimension-reducing operators over quantities.
package aggregate

import (
	"context"
	"fmt"

	"github.com/vk/calcgrid/internal/quantity"
	"github.com/vk/calcgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the aggregation operators with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("sum", opSum)
	r.Register("total", opTotal)
}

// stringSlice coerces []string or []any-of-string kwargs, which is how
// recipe files deliver lists.
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

// opSum sums a quantity over the dimensions named by the "dimensions"
// option. The "name" option renames the result; it defaults to the input's
// name.
func opSum(_ context.Context, call *registry.Call) (any, error) {
	if len(call.Args) != 1 {
		return nil, fmt.Errorf("sum: want 1 argument, got %d", len(call.Args))
	}
	q, ok := call.Args[0].(*quantity.Quantity)
	if !ok {
		return nil, fmt.Errorf("sum: want a quantity, got %T", call.Args[0])
	}
	dims, ok := stringSlice(call.Kwarg("dimensions", nil))
	if !ok {
		return nil, fmt.Errorf("sum: bad dimensions option %v", call.Kwargs["dimensions"])
	}
	name, _ := call.Kwarg("name", q.Name()).(string)
	return q.Sum(name, dims...)
}

// opTotal collapses a quantity over all dimensions to its scalar total.
func opTotal(_ context.Context, call *registry.Call) (any, error) {
	if len(call.Args) != 1 {
		return nil, fmt.Errorf("total: want 1 argument, got %d", len(call.Args))
	}
	q, ok := call.Args[0].(*quantity.Quantity)
	if !ok {
		return nil, fmt.Errorf("total: want a quantity, got %T", call.Args[0])
	}
	name, _ := call.Kwarg("name", q.Name()).(string)
	out, err := q.Sum(name)
	if err != nil {
		return nil, err
	}
	v, _ := out.ScalarValue()
	return v, nil
}
