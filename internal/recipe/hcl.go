package recipe

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/calcgrid/internal/graph"
)

// fileRoot decodes every top-level block a recipe file may carry.
type fileRoot struct {
	Config   *configBlock    `hcl:"config,block"`
	Literals []*literalBlock `hcl:"literal,block"`
	Tables   []*tableBlock   `hcl:"table,block"`
	Tasks    []*taskBlock    `hcl:"task,block"`
	Aliases  []*aliasBlock   `hcl:"alias,block"`
}

type configBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type literalBlock struct {
	Key   string         `hcl:"key,label"`
	Value hcl.Expression `hcl:"value"`
}

type tableBlock struct {
	Key   string         `hcl:"key,label"`
	Name  string         `hcl:"name,optional"`
	Units string         `hcl:"units,optional"`
	Dims  []string       `hcl:"dims"`
	Rows  hcl.Expression `hcl:"rows"`
}

type taskBlock struct {
	Key    string         `hcl:"key,label"`
	Op     string         `hcl:"op"`
	Args   hcl.Expression `hcl:"args,optional"`
	Kwargs hcl.Expression `hcl:"kwargs,optional"`
}

type aliasBlock struct {
	Key    string `hcl:"key,label"`
	Target string `hcl:"target"`
}

// parseHCL translates one recipe file into the accumulating Recipe.
func parseHCL(path string, src []byte, out *Recipe) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return fmt.Errorf("parsing %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return fmt.Errorf("decoding %s: %w", path, diags)
	}

	if root.Config != nil {
		attrs, diags := root.Config.Body.JustAttributes()
		if diags.HasErrors() {
			return fmt.Errorf("decoding config in %s: %w", path, diags)
		}
		for name, attr := range attrs {
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return fmt.Errorf("evaluating config.%s in %s: %w", name, path, diags)
			}
			converted, err := fromCty(val)
			if err != nil {
				return fmt.Errorf("config.%s in %s: %w", name, path, err)
			}
			out.Config[name] = converted
		}
	}

	for _, block := range root.Literals {
		val, err := evalExpr(block.Value, path, "literal", block.Key)
		if err != nil {
			return err
		}
		out.Items = append(out.Items, item(block.Key, graph.Literal(val)))
	}

	for _, block := range root.Tables {
		name := block.Name
		if name == "" {
			name = block.Key
		}
		rows, err := evalExpr(block.Rows, path, "table", block.Key)
		if err != nil {
			return err
		}
		task := graph.NewTask("table").
			With("name", name).
			With("units", block.Units).
			With("dims", block.Dims).
			With("rows", rows)
		out.Items = append(out.Items, item(block.Key, graph.TaskNode(task)))
	}

	for _, block := range root.Tasks {
		rawArgs, err := evalExpr(block.Args, path, "task", block.Key)
		if err != nil {
			return err
		}
		args, err := translateArgs(rawArgs)
		if err != nil {
			return fmt.Errorf("task %q in %s: %w", block.Key, path, err)
		}
		rawKwargs, err := evalExprCty(block.Kwargs, path, "task", block.Key)
		if err != nil {
			return err
		}
		kwargs, err := fromCtyMap(rawKwargs)
		if err != nil {
			return fmt.Errorf("task %q in %s: kwargs: %w", block.Key, path, err)
		}
		task := &graph.Task{Op: block.Op, Args: args, Kwargs: kwargs}
		out.Items = append(out.Items, item(block.Key, graph.TaskNode(task)))
	}

	for _, block := range root.Aliases {
		out.Items = append(out.Items, item(block.Key, graph.Alias(block.Target)))
	}

	return nil
}

func evalExprCty(expr hcl.Expression, path, kind, key string) (cty.Value, error) {
	if expr == nil {
		return cty.NilVal, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("%s %q in %s: %w", kind, key, path, diags)
	}
	return val, nil
}

func evalExpr(expr hcl.Expression, path, kind, key string) (any, error) {
	val, err := evalExprCty(expr, path, kind, key)
	if err != nil {
		return nil, err
	}
	converted, err := fromCty(val)
	if err != nil {
		return nil, fmt.Errorf("%s %q in %s: %w", kind, key, path, err)
	}
	return converted, nil
}

// translateArgs maps decoded task arguments onto graph argument values:
// every string is a key reference, everything else is a literal.
func translateArgs(raw any) ([]graph.Arg, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("args must be a list, got %T", raw)
	}
	out := make([]graph.Arg, 0, len(list))
	for _, elem := range list {
		if s, ok := elem.(string); ok {
			out = append(out, graph.Ref(s))
		} else {
			out = append(out, graph.Lit(elem))
		}
	}
	return out, nil
}
