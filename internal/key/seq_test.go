package key

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeq_StepsFromZero(t *testing.T) {
	s := NewSeq(MustNew("foo", "a"))

	assert.Equal(t, "foo:a:0", s.Next().String())
	assert.Equal(t, "foo:a:1", s.Next().String())
	assert.Equal(t, "foo:a:2", s.Next().String())
}

func TestSeq_MonotonicAfterMax(t *testing.T) {
	s := NewSeq(MustNew("foo", "a"))

	// Issuing label 5 out of order pushes the counter past it: the next
	// step yields 6, not 0.
	assert.Equal(t, "foo:a:5", s.At(5).String())
	assert.Equal(t, "foo:a:6", s.Next().String())

	// Numeric string labels behave like integers.
	s.At("10")
	assert.Equal(t, "foo:a:11", s.Next().String())
}

func TestSeq_LabelsAreCached(t *testing.T) {
	s := NewSeq(MustNew("foo"))

	first := s.At("x")
	again := s.At("x")
	assert.True(t, first.Equal(again))
	assert.Equal(t, 1, s.Len())

	// A string label does not disturb the counter.
	assert.Equal(t, "foo::0", s.Next().String())
}

func TestSeq_PrevIsCreationOrder(t *testing.T) {
	s := NewSeq(MustNew("foo"))

	_, ok := s.Prev()
	assert.False(t, ok)

	s.At(5)
	s.At(1)
	prev, ok := s.Prev()
	require.True(t, ok)

	// Insertion order, not numeric order.
	assert.Equal(t, "foo::1", prev.String())

	keys := s.Keys()
	require.Len(t, keys, 2)
	assert.Equal(t, "foo::5", keys[0].String())
	assert.Equal(t, "foo::1", keys[1].String())
}

func TestSeq_ArithmeticDerivesFreshSeq(t *testing.T) {
	s := NewSeq(MustNew("foo", "a"))
	s.At(3)

	derived := s.Add("t")
	assert.Equal(t, "foo:a:t", derived.Base().String())
	assert.Equal(t, 0, derived.Len())

	// The derived sequence counts from zero again.
	assert.Equal(t, "foo:a:t+0", derived.Next().String())

	mul := s.Mul(MustNew("bar", "b"))
	assert.Equal(t, "foo:a-b", mul.Base().String())

	div, err := mul.Div(MustNew("bar", "b"))
	require.NoError(t, err)
	assert.Equal(t, "foo:a", div.Base().String())
}
