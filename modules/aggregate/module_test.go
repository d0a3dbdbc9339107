package aggregate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/calcgrid/internal/quantity"
	"github.com/vk/calcgrid/internal/registry"
)

func fixture(t *testing.T) *quantity.Quantity {
	t.Helper()
	q, err := quantity.New("demand", "GWh", []string{"region", "year"}, []quantity.Record{
		{Labels: []string{"north", "2030"}, Value: 10},
		{Labels: []string{"south", "2030"}, Value: 20},
		{Labels: []string{"north", "2040"}, Value: 30},
	})
	require.NoError(t, err)
	return q
}

func call(t *testing.T, name string, kwargs map[string]any, args ...any) (any, error) {
	t.Helper()
	r := registry.New()
	r.Install(&Module{})
	op, err := r.Lookup(name)
	require.NoError(t, err)
	return op(context.Background(), &registry.Call{Args: args, Kwargs: kwargs})
}

func TestSum_OverDimensions(t *testing.T) {
	// Dimensions arrive as []any from recipe files.
	v, err := call(t, "sum", map[string]any{
		"dimensions": []any{"region"},
		"name":       "by_year",
	}, fixture(t))
	require.NoError(t, err)

	q, ok := v.(*quantity.Quantity)
	require.True(t, ok)
	assert.Equal(t, "by_year", q.Name())
	assert.Equal(t, []string{"year"}, q.Dims())

	got, _ := q.Value("2030")
	assert.Equal(t, 30.0, got)
}

func TestSum_DefaultsNameToInput(t *testing.T) {
	v, err := call(t, "sum", map[string]any{"dimensions": []string{"year"}}, fixture(t))
	require.NoError(t, err)
	q := v.(*quantity.Quantity)
	assert.Equal(t, "demand", q.Name())
}

func TestSum_Errors(t *testing.T) {
	_, err := call(t, "sum", nil, "not a quantity")
	require.Error(t, err)

	_, err = call(t, "sum", map[string]any{"dimensions": []any{1}}, fixture(t))
	require.Error(t, err)

	_, err = call(t, "sum", map[string]any{"dimensions": []any{"nope"}}, fixture(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, quantity.ErrMissingDim)
}

func TestTotal(t *testing.T) {
	v, err := call(t, "total", nil, fixture(t))
	require.NoError(t, err)
	assert.Equal(t, 60.0, v)

	_, err = call(t, "total", nil)
	require.Error(t, err)
}
