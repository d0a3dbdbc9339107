package key

import (
	"fmt"
	"strconv"
)

// Seq generates a family of related Keys from a base Key by appending tag
// components. It remembers every Key it has produced, in creation order, and
// keeps a counter that always points one past the highest integer label ever
// issued, so that stepping never collides with labels requested explicitly.
//
// Seq is not safe for concurrent use.
type Seq struct {
	base    Key
	order   []string
	created map[string]Key
	counter int
}

// NewSeq returns a Seq that derives Keys from base.
func NewSeq(base Key) *Seq {
	return &Seq{base: base, created: make(map[string]Key)}
}

// Base returns the Key the sequence derives from.
func (s *Seq) Base() Key { return s.base }

// At returns the Key for the given label, an int or a string, creating and
// recording it on first access. Repeated access with the same label returns
// the same Key. Integer labels (including numeric strings) advance the
// stepping counter past themselves.
func (s *Seq) At(label any) Key {
	var lbl string
	switch t := label.(type) {
	case int:
		lbl = strconv.Itoa(t)
	case string:
		lbl = t
	default:
		lbl = fmt.Sprint(t)
	}
	if n, err := strconv.Atoi(lbl); err == nil && n >= s.counter {
		s.counter = n + 1
	}
	if k, ok := s.created[lbl]; ok {
		return k
	}
	k := s.base.AddTag(lbl)
	s.created[lbl] = k
	s.order = append(s.order, lbl)
	return k
}

// Next issues the Key for the current counter value and advances it. The
// counter is monotonic past the maximum integer label ever issued: after
// At(5), Next yields 6 even if 0..4 were never used.
func (s *Seq) Next() Key {
	return s.At(s.counter)
}

// Prev returns the most recently created Key, in creation order rather than
// numeric order. The second return is false when nothing has been created.
func (s *Seq) Prev() (Key, bool) {
	if len(s.order) == 0 {
		return Key{}, false
	}
	return s.created[s.order[len(s.order)-1]], true
}

// Keys returns every created Key in creation order, for inspection.
func (s *Seq) Keys() []Key {
	out := make([]Key, 0, len(s.order))
	for _, lbl := range s.order {
		out = append(out, s.created[lbl])
	}
	return out
}

// Len returns the number of Keys created so far.
func (s *Seq) Len() int { return len(s.order) }

// Add returns a new Seq whose base carries an extra tag component and whose
// history is empty. It mirrors Key.Add.
func (s *Seq) Add(tag string) *Seq { return NewSeq(s.base.Add(tag)) }

// Sub mirrors Key.Sub on the base, returning a new Seq with empty history.
func (s *Seq) Sub(tag string) (*Seq, error) {
	b, err := s.base.Sub(tag)
	if err != nil {
		return nil, err
	}
	return NewSeq(b), nil
}

// Mul mirrors Key.Mul on the base, returning a new Seq with empty history.
func (s *Seq) Mul(other Key) *Seq { return NewSeq(s.base.Mul(other)) }

// Div mirrors Key.Div on the base, returning a new Seq with empty history.
func (s *Seq) Div(other Key) (*Seq, error) {
	b, err := s.base.Div(other)
	if err != nil {
		return nil, err
	}
	return NewSeq(b), nil
}
