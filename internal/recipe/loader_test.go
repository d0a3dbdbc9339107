package recipe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/calcgrid/internal/computer"
	"github.com/vk/calcgrid/internal/graph"
	"github.com/vk/calcgrid/internal/quantity"
	"github.com/vk/calcgrid/internal/registry"
	"github.com/vk/calcgrid/modules/aggregate"
	"github.com/vk/calcgrid/modules/arith"
	"github.com/vk/calcgrid/modules/table"
)

const hclRecipe = `
config {
  rate = 2
}

literal "base" {
  value = 10
}

# Defined before the task it depends on; the queue resolves the order.
task "scaled" {
  op   = "mul"
  args = ["base", "rate_value"]
}

task "rate_value" {
  op   = "config_value"
  args = ["config"]
  kwargs = {
    key = "rate"
  }
}

alias "result" {
  target = "scaled"
}
`

const yamlRecipe = `
config:
  mode: fast
tables:
  - key: demand
    units: GWh
    dims: [region]
    rows:
      - [north, 10]
      - [south, 20]
tasks:
  - key: total_demand
    op: total
    args: [demand]
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func newComputer() *computer.Computer {
	reg := registry.New()
	reg.Install(&arith.Module{}, &aggregate.Module{}, &table.Module{})
	return computer.New(reg)
}

func TestLoad_HCL(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.hcl": hclRecipe})
	ctx := context.Background()

	r, err := Load(ctx, filepath.Join(dir, "main.hcl"))
	require.NoError(t, err)
	assert.Equal(t, 2.0, r.Config["rate"])
	assert.Len(t, r.Items, 4)

	c := newComputer()
	require.NoError(t, r.Apply(ctx, c))

	v, err := c.Get(ctx, "result")
	require.NoError(t, err)
	assert.Equal(t, 20.0, v)
}

func TestLoad_YAML(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.yaml": yamlRecipe})
	ctx := context.Background()

	r, err := Load(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, "fast", r.Config["mode"])

	c := newComputer()
	require.NoError(t, r.Apply(ctx, c))

	v, err := c.Get(ctx, "demand")
	require.NoError(t, err)
	q, ok := v.(*quantity.Quantity)
	require.True(t, ok)
	assert.Equal(t, "GWh", q.Units())

	v, err = c.Get(ctx, "total_demand")
	require.NoError(t, err)
	assert.Equal(t, 30.0, v)
}

func TestLoad_DirectoryMergesFiles(t *testing.T) {
	// References across files converge regardless of file order: a.hcl is
	// read first but depends on a definition in b.yaml.
	dir := writeFiles(t, map[string]string{
		"a.hcl": `
task "double" {
  op   = "mul"
  args = ["seed", 2]
}
`,
		"b.yaml": `
literals:
  seed: 21
`,
	})
	ctx := context.Background()

	r, err := Load(ctx, dir)
	require.NoError(t, err)

	c := newComputer()
	require.NoError(t, r.Apply(ctx, c))

	v, err := c.Get(ctx, "double")
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)
}

func TestApply_DanglingReferenceFails(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.yaml": `
tasks:
  - key: broken
    op: neg
    args: [ghost]
`})
	ctx := context.Background()

	r, err := Load(ctx, dir)
	require.NoError(t, err)

	err = r.Apply(ctx, newComputer())
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrMissingKey)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(context.Background(), "/does/not/exist")
	require.Error(t, err)

	// A directory without recipe files is an error, not an empty recipe.
	_, err = Load(context.Background(), t.TempDir())
	require.Error(t, err)

	// Invalid HCL surfaces the parser diagnostic.
	dir := writeFiles(t, map[string]string{"bad.hcl": `literal "x" {`})
	_, err = Load(context.Background(), dir)
	require.Error(t, err)

	// Invalid YAML likewise.
	dir = writeFiles(t, map[string]string{"bad.yaml": "config: [unclosed"})
	_, err = Load(context.Background(), dir)
	require.Error(t, err)
}

func TestLoad_TaskArgsStringIsReference(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.yaml": `
literals:
  base: 5
tasks:
  - key: sum
    op: add
    args: [base, 3]
`})
	ctx := context.Background()

	r, err := Load(ctx, dir)
	require.NoError(t, err)

	c := newComputer()
	require.NoError(t, r.Apply(ctx, c))

	v, err := c.Get(ctx, "sum")
	require.NoError(t, err)
	assert.Equal(t, 8.0, v)
}
