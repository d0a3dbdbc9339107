package table

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/calcgrid/internal/quantity"
	"github.com/vk/calcgrid/internal/registry"
)

func call(t *testing.T, name string, kwargs map[string]any, args ...any) (any, error) {
	t.Helper()
	r := registry.New()
	r.Install(&Module{})
	op, err := r.Lookup(name)
	require.NoError(t, err)
	return op(context.Background(), &registry.Call{Args: args, Kwargs: kwargs})
}

func TestTable(t *testing.T) {
	v, err := call(t, "table", map[string]any{
		"name":  "demand",
		"units": "GWh",
		"dims":  []any{"region", "year"},
		"rows": []any{
			[]any{"north", "2030", 10.0},
			[]any{"south", "2030", 20},
		},
	})
	require.NoError(t, err)

	q, ok := v.(*quantity.Quantity)
	require.True(t, ok)
	assert.Equal(t, "demand", q.Name())
	assert.Equal(t, "GWh", q.Units())
	assert.Equal(t, []string{"region", "year"}, q.Dims())
	assert.Equal(t, 2, q.Len())

	got, _ := q.Value("south", "2030")
	assert.Equal(t, 20.0, got)
}

func TestTable_Errors(t *testing.T) {
	// rows is mandatory.
	_, err := call(t, "table", map[string]any{"dims": []any{"i"}})
	require.Error(t, err)

	// Wrong row width.
	_, err = call(t, "table", map[string]any{
		"dims": []any{"i"},
		"rows": []any{[]any{"a", "b", 1.0}},
	})
	require.Error(t, err)

	// Non-numeric value.
	_, err = call(t, "table", map[string]any{
		"dims": []any{"i"},
		"rows": []any{[]any{"a", "x"}},
	})
	require.Error(t, err)

	// Non-string label.
	_, err = call(t, "table", map[string]any{
		"dims": []any{"i"},
		"rows": []any{[]any{1, 2.0}},
	})
	require.Error(t, err)
}

func TestConfigValue(t *testing.T) {
	settings := map[string]any{"rate": 1.5}

	v, err := call(t, "config_value", map[string]any{"key": "rate"}, settings)
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)

	v, err = call(t, "config_value", map[string]any{"key": "mode", "default": "slow"}, settings)
	require.NoError(t, err)
	assert.Equal(t, "slow", v)

	_, err = call(t, "config_value", map[string]any{"key": "mode"}, settings)
	require.Error(t, err)

	_, err = call(t, "config_value", map[string]any{}, settings)
	require.Error(t, err)

	_, err = call(t, "config_value", map[string]any{"key": "rate"}, "not a map")
	require.Error(t, err)
}
