// Package quantity provides the labelled N-dimensional value passed between
// task boundaries. The computation engine never inspects these values; it
// only moves, caches, and hands them from one operator to the next. All
// arithmetic, alignment, and unit handling lives here and in the operator
// modules built on it.
package quantity

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrBadRecord indicates a record whose label count does not match the
	// declared dimensions.
	ErrBadRecord = errors.New("quantity: record labels do not match dims")
	// ErrDimMismatch indicates two quantities whose dimension sets differ
	// where they must agree.
	ErrDimMismatch = errors.New("quantity: dimension mismatch")
	// ErrMissingDim indicates an operation over a dimension the quantity
	// does not have.
	ErrMissingDim = errors.New("quantity: dimension not present")
)

// sep joins coordinate labels into cell keys. It may not appear in labels.
const sep = "\x1f"

// Record is one cell of a quantity in columnar form: coordinate labels in
// dimension order plus the value.
type Record struct {
	Labels []string
	Value  float64
}

// Quantity is an immutable, named, unit-tagged, labelled N-dimensional
// value with sparse cell storage. Manipulations return new values.
type Quantity struct {
	name  string
	units string
	dims  []string
	cells map[string]float64
}

// New builds a Quantity from a plain columnar representation plus name and
// unit metadata. Every record must carry one label per dimension.
func New(name, units string, dims []string, records []Record) (*Quantity, error) {
	q := &Quantity{
		name:  name,
		units: units,
		dims:  append([]string(nil), dims...),
		cells: make(map[string]float64, len(records)),
	}
	for _, r := range records {
		if len(r.Labels) != len(dims) {
			return nil, fmt.Errorf("%w: %d labels for %d dims", ErrBadRecord, len(r.Labels), len(dims))
		}
		q.cells[strings.Join(r.Labels, sep)] = r.Value
	}
	return q, nil
}

// Scalar returns a zero-dimensional quantity holding a single value.
func Scalar(name, units string, value float64) *Quantity {
	return &Quantity{
		name:  name,
		units: units,
		cells: map[string]float64{"": value},
	}
}

// Name returns the quantity name.
func (q *Quantity) Name() string { return q.name }

// Units returns the unit tag.
func (q *Quantity) Units() string { return q.units }

// Dims returns a copy of the dimension names in order.
func (q *Quantity) Dims() []string { return append([]string(nil), q.dims...) }

// Len returns the number of populated cells.
func (q *Quantity) Len() int { return len(q.cells) }

// Value returns the cell at the given coordinate labels, in dimension
// order.
func (q *Quantity) Value(labels ...string) (float64, bool) {
	v, ok := q.cells[strings.Join(labels, sep)]
	return v, ok
}

// ScalarValue returns the single cell of a zero-dimensional quantity.
func (q *Quantity) ScalarValue() (float64, bool) {
	if len(q.dims) != 0 {
		return 0, false
	}
	v, ok := q.cells[""]
	return v, ok
}

// Records returns every populated cell in deterministic label order.
func (q *Quantity) Records() []Record {
	keys := make([]string, 0, len(q.cells))
	for k := range q.cells {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Record, 0, len(keys))
	for _, k := range keys {
		var labels []string
		if k != "" {
			labels = strings.Split(k, sep)
		}
		out = append(out, Record{Labels: labels, Value: q.cells[k]})
	}
	return out
}

// Rename returns a copy with a new name.
func (q *Quantity) Rename(name string) *Quantity {
	out := q.clone()
	out.name = name
	return out
}

// WithUnits returns a copy with a new unit tag.
func (q *Quantity) WithUnits(units string) *Quantity {
	out := q.clone()
	out.units = units
	return out
}

func (q *Quantity) clone() *Quantity {
	cells := make(map[string]float64, len(q.cells))
	for k, v := range q.cells {
		cells[k] = v
	}
	return &Quantity{name: q.name, units: q.units, dims: append([]string(nil), q.dims...), cells: cells}
}

// String renders the quantity header, not the cells.
func (q *Quantity) String() string {
	return fmt.Sprintf("<%s [%s] (%s) %d cells>",
		q.name, strings.Join(q.dims, ", "), q.units, len(q.cells))
}

// ContentDigest renders the header plus every cell in deterministic order.
// String alone is not enough to identify a quantity: two quantities with the
// same header can hold different values, so anything keying on content (the
// engine's result cache) must use this instead.
func (q *Quantity) ContentDigest() string {
	var sb strings.Builder
	sb.WriteString(q.String())
	for _, r := range q.Records() {
		fmt.Fprintf(&sb, "|%s=%g", strings.Join(r.Labels, ","), r.Value)
	}
	return sb.String()
}

// dimIndex maps each of want to its position in q's dims, so cells of a
// quantity with the same dimensions in a different order can be aligned.
func (q *Quantity) dimIndex(want []string) ([]int, error) {
	idx := make([]int, len(want))
	for i, d := range want {
		idx[i] = -1
		for j, have := range q.dims {
			if have == d {
				idx[i] = j
				break
			}
		}
		if idx[i] < 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingDim, d)
		}
	}
	return idx, nil
}

// Apply2 combines two quantities element-wise with f over the union of
// their cells, aligning b to a's dimension order. Both quantities must
// cover the same dimension set; a missing cell on either side contributes
// zero. The result carries name and a's dimension order and units.
func Apply2(name string, a, b *Quantity, f func(x, y float64) float64) (*Quantity, error) {
	if len(a.dims) != len(b.dims) {
		return nil, fmt.Errorf("%w: [%s] vs [%s]", ErrDimMismatch,
			strings.Join(a.dims, ","), strings.Join(b.dims, ","))
	}
	idx, err := b.dimIndex(a.dims)
	if err != nil {
		return nil, fmt.Errorf("%w: [%s] vs [%s]", ErrDimMismatch,
			strings.Join(a.dims, ","), strings.Join(b.dims, ","))
	}

	// Re-key b's cells into a's dimension order.
	bAligned := make(map[string]float64, len(b.cells))
	for k, v := range b.cells {
		var labels []string
		if k != "" {
			labels = strings.Split(k, sep)
		}
		aligned := make([]string, len(labels))
		for i, j := range idx {
			aligned[i] = labels[j]
		}
		bAligned[strings.Join(aligned, sep)] = v
	}

	out := &Quantity{
		name:  name,
		units: a.units,
		dims:  append([]string(nil), a.dims...),
		cells: make(map[string]float64, len(a.cells)),
	}
	for k, av := range a.cells {
		out.cells[k] = f(av, bAligned[k])
	}
	for k, bv := range bAligned {
		if _, ok := a.cells[k]; !ok {
			out.cells[k] = f(0, bv)
		}
	}
	return out, nil
}

// Scale returns a copy with every cell multiplied by factor.
func Scale(q *Quantity, factor float64) *Quantity {
	out := q.clone()
	for k, v := range out.cells {
		out.cells[k] = v * factor
	}
	return out
}

// Shift returns a copy with delta added to every cell.
func Shift(q *Quantity, delta float64) *Quantity {
	out := q.clone()
	for k, v := range out.cells {
		out.cells[k] = v + delta
	}
	return out
}

// Sum aggregates the quantity over the named dimensions, producing a
// quantity named name without them. Summing over no dimensions collapses
// everything to a scalar.
func (q *Quantity) Sum(name string, over ...string) (*Quantity, error) {
	if len(over) == 0 {
		total := 0.0
		for _, v := range q.cells {
			total += v
		}
		return Scalar(name, q.units, total), nil
	}

	drop := make(map[int]bool, len(over))
	idx, err := q.dimIndex(over)
	if err != nil {
		return nil, err
	}
	for _, j := range idx {
		drop[j] = true
	}

	var keptDims []string
	for j, d := range q.dims {
		if !drop[j] {
			keptDims = append(keptDims, d)
		}
	}

	out := &Quantity{
		name:  name,
		units: q.units,
		dims:  keptDims,
		cells: make(map[string]float64),
	}
	for k, v := range q.cells {
		var labels []string
		if k != "" {
			labels = strings.Split(k, sep)
		}
		var kept []string
		for j, lbl := range labels {
			if !drop[j] {
				kept = append(kept, lbl)
			}
		}
		out.cells[strings.Join(kept, sep)] += v
	}
	return out, nil
}
