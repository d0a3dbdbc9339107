package computer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/calcgrid/internal/graph"
	"github.com/vk/calcgrid/internal/registry"
)

func describeFixture(t *testing.T) *Computer {
	t.Helper()
	reg, _ := testRegistry(t)
	c := New(reg)
	_, err := c.AddLiteral("base", 1.0)
	require.NoError(t, err)
	_, err = c.AddTask("left", "add", graph.Ref("base"), graph.Lit(1.0))
	require.NoError(t, err)
	_, err = c.AddTask("right", "add", graph.Ref("base"), graph.Lit(2.0))
	require.NoError(t, err)
	_, err = c.AddTask("top", "add", graph.Ref("left"), graph.Ref("right"))
	require.NoError(t, err)
	return c
}

func TestDescribe(t *testing.T) {
	c := describeFixture(t)

	out, err := c.Describe("top")
	require.NoError(t, err)

	assert.Contains(t, out, "'top':")
	assert.Contains(t, out, "computed using add(...)")
	assert.Contains(t, out, "'left':")
	assert.Contains(t, out, "'right':")
	// The shared dependency is expanded once and marked on repeat.
	assert.Contains(t, out, "'base':")
	assert.Contains(t, out, "'base' (above)")
}

func TestDescribe_MissingReference(t *testing.T) {
	c := New(registry.New())
	_, err := c.AddTask("x", "add", graph.Ref("ghost"))
	require.NoError(t, err)

	out, err := c.Describe("x")
	require.NoError(t, err)
	assert.Contains(t, out, "'ghost' (missing)")
}

func TestDescribe_UnknownTarget(t *testing.T) {
	c := New(registry.New())
	_, err := c.Describe("nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrMissingKey)
}

func TestDescribe_DoesNotExecute(t *testing.T) {
	reg, calls := testRegistry(t)
	c := New(reg)
	_, err := c.AddTask("x", "add", graph.Lit(1.0))
	require.NoError(t, err)

	_, err = c.Describe("x")
	require.NoError(t, err)
	assert.Equal(t, int64(0), calls.Load())

	v, err := c.Get(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestDot(t *testing.T) {
	c := describeFixture(t)

	out, err := c.Dot("top")
	require.NoError(t, err)

	assert.Contains(t, out, "digraph calcgrid {")
	assert.Contains(t, out, `"base" -> "left";`)
	assert.Contains(t, out, `"base" -> "right";`)
	assert.Contains(t, out, `"left" -> "top";`)
	assert.Contains(t, out, `"right" -> "top";`)
	// Literals render as ellipses, tasks as boxes.
	assert.Contains(t, out, `"base" [shape=ellipse];`)
	assert.Contains(t, out, `"top" [shape=box];`)
}
