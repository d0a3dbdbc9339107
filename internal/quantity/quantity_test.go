package quantity

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, name, units string, dims []string, records []Record) *Quantity {
	t.Helper()
	q, err := New(name, units, dims, records)
	require.NoError(t, err)
	return q
}

func TestNew_RejectsMismatchedRecord(t *testing.T) {
	_, err := New("q", "", []string{"i", "j"}, []Record{
		{Labels: []string{"a"}, Value: 1},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadRecord)
}

func TestAccessors(t *testing.T) {
	q := mustNew(t, "demand", "GWh", []string{"region", "year"}, []Record{
		{Labels: []string{"north", "2030"}, Value: 10},
		{Labels: []string{"south", "2030"}, Value: 20},
	})

	assert.Equal(t, "demand", q.Name())
	assert.Equal(t, "GWh", q.Units())
	assert.Equal(t, []string{"region", "year"}, q.Dims())
	assert.Equal(t, 2, q.Len())

	v, ok := q.Value("north", "2030")
	require.True(t, ok)
	assert.Equal(t, 10.0, v)

	_, ok = q.Value("east", "2030")
	assert.False(t, ok)

	assert.Equal(t, "<demand [region, year] (GWh) 2 cells>", q.String())
}

func TestContentDigest_CoversCells(t *testing.T) {
	q1 := mustNew(t, "q", "GWh", []string{"i"}, []Record{{Labels: []string{"x"}, Value: 1}})
	q2 := mustNew(t, "q", "GWh", []string{"i"}, []Record{{Labels: []string{"x"}, Value: 2}})

	// Same header, different cells.
	require.Equal(t, q1.String(), q2.String())
	assert.NotEqual(t, q1.ContentDigest(), q2.ContentDigest())

	// Cell order in the input does not matter.
	a := mustNew(t, "q", "", []string{"i"}, []Record{
		{Labels: []string{"x"}, Value: 1},
		{Labels: []string{"y"}, Value: 2},
	})
	b := mustNew(t, "q", "", []string{"i"}, []Record{
		{Labels: []string{"y"}, Value: 2},
		{Labels: []string{"x"}, Value: 1},
	})
	assert.Equal(t, a.ContentDigest(), b.ContentDigest())
}

func TestScalar(t *testing.T) {
	q := Scalar("total", "GWh", 42)
	assert.Empty(t, q.Dims())

	v, ok := q.ScalarValue()
	require.True(t, ok)
	assert.Equal(t, 42.0, v)

	// A dimensioned quantity has no scalar value.
	dimmed := mustNew(t, "q", "", []string{"i"}, []Record{{Labels: []string{"a"}, Value: 1}})
	_, ok = dimmed.ScalarValue()
	assert.False(t, ok)
}

func TestRecords_Deterministic(t *testing.T) {
	q := mustNew(t, "q", "", []string{"i"}, []Record{
		{Labels: []string{"b"}, Value: 2},
		{Labels: []string{"a"}, Value: 1},
	})

	want := []Record{
		{Labels: []string{"a"}, Value: 1},
		{Labels: []string{"b"}, Value: 2},
	}
	if diff := cmp.Diff(want, q.Records()); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestRenameAndWithUnits_DoNotMutate(t *testing.T) {
	q := Scalar("old", "kg", 1)
	renamed := q.Rename("new").WithUnits("t")

	assert.Equal(t, "new", renamed.Name())
	assert.Equal(t, "t", renamed.Units())
	assert.Equal(t, "old", q.Name())
	assert.Equal(t, "kg", q.Units())
}

func TestApply2_AlignsDimensionOrder(t *testing.T) {
	a := mustNew(t, "a", "GWh", []string{"region", "year"}, []Record{
		{Labels: []string{"north", "2030"}, Value: 10},
	})
	// Same dimension set, transposed order.
	b := mustNew(t, "b", "GWh", []string{"year", "region"}, []Record{
		{Labels: []string{"2030", "north"}, Value: 5},
	})

	sum, err := Apply2("sum", a, b, func(x, y float64) float64 { return x + y })
	require.NoError(t, err)

	// Result carries a's dimension order.
	assert.Equal(t, []string{"region", "year"}, sum.Dims())
	v, ok := sum.Value("north", "2030")
	require.True(t, ok)
	assert.Equal(t, 15.0, v)
}

func TestApply2_UnionWithZeroFill(t *testing.T) {
	a := mustNew(t, "a", "", []string{"i"}, []Record{
		{Labels: []string{"x"}, Value: 1},
		{Labels: []string{"y"}, Value: 2},
	})
	b := mustNew(t, "b", "", []string{"i"}, []Record{
		{Labels: []string{"y"}, Value: 10},
		{Labels: []string{"z"}, Value: 20},
	})

	diff, err := Apply2("diff", a, b, func(x, y float64) float64 { return x - y })
	require.NoError(t, err)
	assert.Equal(t, 3, diff.Len())

	want := map[string]float64{"x": 1, "y": -8, "z": -20}
	for label, expected := range want {
		v, ok := diff.Value(label)
		require.True(t, ok, "label %q", label)
		assert.Equal(t, expected, v, "label %q", label)
	}
}

func TestApply2_DimensionSetMustAgree(t *testing.T) {
	a := mustNew(t, "a", "", []string{"i"}, nil)
	b := mustNew(t, "b", "", []string{"j"}, nil)
	_, err := Apply2("out", a, b, func(x, y float64) float64 { return x + y })
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimMismatch)

	c := mustNew(t, "c", "", []string{"i", "j"}, nil)
	_, err = Apply2("out", a, c, func(x, y float64) float64 { return x + y })
	assert.ErrorIs(t, err, ErrDimMismatch)
}

func TestScaleAndShift(t *testing.T) {
	q := mustNew(t, "q", "", []string{"i"}, []Record{
		{Labels: []string{"a"}, Value: 2},
		{Labels: []string{"b"}, Value: 3},
	})

	scaled := Scale(q, 10)
	v, _ := scaled.Value("a")
	assert.Equal(t, 20.0, v)

	shifted := Shift(q, 1)
	v, _ = shifted.Value("b")
	assert.Equal(t, 4.0, v)

	// Originals are untouched.
	v, _ = q.Value("a")
	assert.Equal(t, 2.0, v)
}

func TestSum_OverDimension(t *testing.T) {
	q := mustNew(t, "q", "GWh", []string{"region", "year"}, []Record{
		{Labels: []string{"north", "2030"}, Value: 10},
		{Labels: []string{"south", "2030"}, Value: 20},
		{Labels: []string{"north", "2040"}, Value: 30},
	})

	byYear, err := q.Sum("by_year", "region")
	require.NoError(t, err)
	assert.Equal(t, []string{"year"}, byYear.Dims())
	assert.Equal(t, "GWh", byYear.Units())

	v, ok := byYear.Value("2030")
	require.True(t, ok)
	assert.Equal(t, 30.0, v)
	v, ok = byYear.Value("2040")
	require.True(t, ok)
	assert.Equal(t, 30.0, v)

	_, err = q.Sum("bad", "nope")
	assert.ErrorIs(t, err, ErrMissingDim)
}

func TestSum_NoDimsCollapsesToScalar(t *testing.T) {
	q := mustNew(t, "q", "GWh", []string{"i"}, []Record{
		{Labels: []string{"a"}, Value: 1},
		{Labels: []string{"b"}, Value: 2},
	})

	total, err := q.Sum("total")
	require.NoError(t, err)
	v, ok := total.ScalarValue()
	require.True(t, ok)
	assert.Equal(t, 3.0, v)
}
