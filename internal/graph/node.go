package graph

// Kind discriminates the four node variants. The executor switches on Kind
// exhaustively; there is no fifth case.
type Kind int

const (
	// KindAlias redirects an identifier to another identifier.
	KindAlias Kind = iota
	// KindLiteral holds a constant value returned as-is.
	KindLiteral
	// KindTask holds an operator reference plus its arguments.
	KindTask
	// KindList holds an ordered sequence of nodes; its value is the
	// sequence with each element resolved.
	KindList
)

// String returns the variant name, for logs and diagnostics.
func (k Kind) String() string {
	switch k {
	case KindAlias:
		return "alias"
	case KindLiteral:
		return "literal"
	case KindTask:
		return "task"
	case KindList:
		return "list"
	}
	return "unknown"
}

// Node is the definition stored in the graph under one identifier. It is a
// closed tagged variant; construct via Alias, Literal, TaskNode, or List and
// inspect via Kind plus the matching accessor.
type Node struct {
	kind    Kind
	alias   any
	literal any
	task    *Task
	list    []Node
}

// Alias returns a node that redirects to target, a key.Key or string.
func Alias(target any) Node { return Node{kind: KindAlias, alias: target} }

// Literal returns a node holding the constant v.
func Literal(v any) Node { return Node{kind: KindLiteral, literal: v} }

// TaskNode returns a node that computes its value by running t.
func TaskNode(t *Task) Node { return Node{kind: KindTask, task: t} }

// List returns a node whose value is the element-wise resolution of nodes.
func List(nodes ...Node) Node { return Node{kind: KindList, list: nodes} }

// Kind returns the node's variant.
func (n Node) Kind() Kind { return n.kind }

// AliasTarget returns the redirect target of a KindAlias node.
func (n Node) AliasTarget() any { return n.alias }

// Value returns the constant of a KindLiteral node.
func (n Node) Value() any { return n.literal }

// Task returns the task of a KindTask node.
func (n Node) Task() *Task { return n.task }

// List returns the elements of a KindList node.
func (n Node) List() []Node { return n.list }

// Refs returns every identifier the node references, in declaration order:
// the alias target, task argument references, and recursively the references
// of list elements. These are the graph's dependency edges.
func (n Node) Refs() []any {
	switch n.kind {
	case KindAlias:
		return []any{n.alias}
	case KindLiteral:
		return nil
	case KindTask:
		return n.task.Refs()
	case KindList:
		var out []any
		for _, elem := range n.list {
			out = append(out, elem.Refs()...)
		}
		return out
	}
	return nil
}

// Task is an operator reference plus its arguments. Op names a capability in
// the operator registry. Positional Args may reference other identifiers or
// carry literals; Kwargs are literal-only named options passed through to
// the operator.
type Task struct {
	Op     string
	Args   []Arg
	Kwargs map[string]any
}

// NewTask builds a Task for operator op with the given positional arguments.
func NewTask(op string, args ...Arg) *Task {
	return &Task{Op: op, Args: args}
}

// With adds a named literal option and returns the task for chaining.
func (t *Task) With(name string, v any) *Task {
	if t.Kwargs == nil {
		t.Kwargs = make(map[string]any)
	}
	t.Kwargs[name] = v
	return t
}

// Refs returns the identifiers referenced by the task's arguments.
func (t *Task) Refs() []any {
	var out []any
	for _, a := range t.Args {
		if a.isRef {
			out = append(out, a.ref)
		}
	}
	return out
}

// Arg is one positional task argument: either a reference to another
// identifier, resolved before the task runs, or a literal passed through.
type Arg struct {
	ref   any
	lit   any
	isRef bool
}

// Ref returns an argument that references the identifier id (a key.Key or
// string) to be resolved recursively at execution time.
func Ref(id any) Arg { return Arg{ref: id, isRef: true} }

// Lit returns an argument carrying the literal v.
func Lit(v any) Arg { return Arg{lit: v} }

// IsRef reports whether the argument is an identifier reference.
func (a Arg) IsRef() bool { return a.isRef }

// RefID returns the referenced identifier of a reference argument.
func (a Arg) RefID() any { return a.ref }

// Literal returns the carried value of a literal argument.
func (a Arg) Literal() any { return a.lit }
