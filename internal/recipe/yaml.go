package recipe

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/vk/calcgrid/internal/graph"
)

// yamlRoot mirrors the YAML recipe layout.
type yamlRoot struct {
	Config   map[string]any    `yaml:"config"`
	Literals map[string]any    `yaml:"literals"`
	Tables   []yamlTable       `yaml:"tables"`
	Tasks    []yamlTask        `yaml:"tasks"`
	Aliases  map[string]string `yaml:"aliases"`
}

type yamlTable struct {
	Key   string   `yaml:"key"`
	Name  string   `yaml:"name"`
	Units string   `yaml:"units"`
	Dims  []string `yaml:"dims"`
	Rows  [][]any  `yaml:"rows"`
}

type yamlTask struct {
	Key    string         `yaml:"key"`
	Op     string         `yaml:"op"`
	Args   []any          `yaml:"args"`
	Kwargs map[string]any `yaml:"kwargs"`
}

// parseYAML translates one YAML recipe file into the accumulating Recipe.
func parseYAML(path string, src []byte, out *Recipe) error {
	var root yamlRoot
	if err := yaml.Unmarshal(src, &root); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	for k, v := range root.Config {
		out.Config[k] = v
	}

	// Map iteration order is random; sort for deterministic insertion.
	litKeys := make([]string, 0, len(root.Literals))
	for k := range root.Literals {
		litKeys = append(litKeys, k)
	}
	sort.Strings(litKeys)
	for _, k := range litKeys {
		out.Items = append(out.Items, item(k, graph.Literal(root.Literals[k])))
	}

	for _, t := range root.Tables {
		if t.Key == "" {
			return fmt.Errorf("table without key in %s", path)
		}
		name := t.Name
		if name == "" {
			name = t.Key
		}
		rows := make([]any, 0, len(t.Rows))
		for _, row := range t.Rows {
			rows = append(rows, append([]any(nil), row...))
		}
		task := graph.NewTask("table").
			With("name", name).
			With("units", t.Units).
			With("dims", t.Dims).
			With("rows", rows)
		out.Items = append(out.Items, item(t.Key, graph.TaskNode(task)))
	}

	for _, t := range root.Tasks {
		if t.Key == "" || t.Op == "" {
			return fmt.Errorf("task without key or op in %s", path)
		}
		args, err := translateArgs(anySlice(t.Args))
		if err != nil {
			return fmt.Errorf("task %q in %s: %w", t.Key, path, err)
		}
		task := &graph.Task{Op: t.Op, Args: args, Kwargs: t.Kwargs}
		out.Items = append(out.Items, item(t.Key, graph.TaskNode(task)))
	}

	aliasKeys := make([]string, 0, len(root.Aliases))
	for k := range root.Aliases {
		aliasKeys = append(aliasKeys, k)
	}
	sort.Strings(aliasKeys)
	for _, k := range aliasKeys {
		out.Items = append(out.Items, item(k, graph.Alias(root.Aliases[k])))
	}

	return nil
}

func anySlice(in []any) any {
	if in == nil {
		return nil
	}
	return in
}
