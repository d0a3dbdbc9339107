package computer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vk/calcgrid/internal/graph"
)

// Describe returns an indented text rendering of the dependency structure
// that produces id. It is read-only and has no effect on execution. A node
// already shown higher in the tree is marked instead of expanded again, so
// shared dependencies and cycles stay readable.
func (c *Computer) Describe(id any) (string, error) {
	checked, err := c.CheckKeys(id)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	seen := make(map[string]bool)
	c.describeID(&sb, checked[0], 0, seen)
	return sb.String(), nil
}

func (c *Computer) describeID(sb *strings.Builder, id any, depth int, seen map[string]bool) {
	indent := strings.Repeat("  ", depth)
	canon, err := graph.CanonicalID(id)
	if err != nil {
		fmt.Fprintf(sb, "%s%v (invalid identifier)\n", indent, id)
		return
	}

	node, storedID, ok := c.graph.Get(id)
	if !ok {
		fmt.Fprintf(sb, "%s'%s' (missing)\n", indent, graph.DisplayID(id))
		return
	}

	if seen[canon] {
		fmt.Fprintf(sb, "%s'%s' (above)\n", indent, graph.DisplayID(storedID))
		return
	}
	seen[canon] = true

	fmt.Fprintf(sb, "%s'%s':\n", indent, graph.DisplayID(storedID))
	c.describeNode(sb, node, depth+1, seen)
}

func (c *Computer) describeNode(sb *strings.Builder, n graph.Node, depth int, seen map[string]bool) {
	indent := strings.Repeat("  ", depth)
	switch n.Kind() {
	case graph.KindLiteral:
		fmt.Fprintf(sb, "%s%.120v\n", indent, n.Value())
	case graph.KindAlias:
		fmt.Fprintf(sb, "%salias for:\n", indent)
		c.describeID(sb, n.AliasTarget(), depth+1, seen)
	case graph.KindTask:
		t := n.Task()
		fmt.Fprintf(sb, "%scomputed using %s(...)\n", indent, t.Op)
		for _, a := range t.Args {
			if a.IsRef() {
				c.describeID(sb, a.RefID(), depth+1, seen)
			} else {
				fmt.Fprintf(sb, "%s  %.120v\n", indent, a.Literal())
			}
		}
	case graph.KindList:
		fmt.Fprintf(sb, "%slist of %d:\n", indent, len(n.List()))
		for _, elem := range n.List() {
			c.describeNode(sb, elem, depth+1, seen)
		}
	}
}

// Dot renders the dependency structure reachable from id in graphviz DOT
// form, one edge per dependency.
func (c *Computer) Dot(id any) (string, error) {
	p, err := c.buildPlan(id)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("digraph calcgrid {\n")
	sb.WriteString("  rankdir=BT;\n")
	for _, step := range p.steps {
		label := graph.DisplayID(step.id)
		shape := "box"
		if step.node.Kind() == graph.KindLiteral {
			shape = "ellipse"
		}
		fmt.Fprintf(&sb, "  %q [shape=%s];\n", label, shape)
		deps := append([]string(nil), step.deps...)
		sort.Strings(deps)
		for _, dep := range deps {
			if _, storedID, ok := c.graph.Get(dep); ok {
				fmt.Fprintf(&sb, "  %q -> %q;\n", graph.DisplayID(storedID), label)
			}
		}
	}
	sb.WriteString("}\n")
	return sb.String(), nil
}
