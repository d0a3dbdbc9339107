package graph

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vk/calcgrid/internal/key"
)

// ConfigKey is the reserved identifier holding the free-form settings map.
// It exists in every graph from construction and is consumable as a task
// input like any other node.
const ConfigKey = "config"

// CanonicalID reduces an identifier — a key.Key, a key-formatted string, or
// a bare name — to the canonical string used for graph addressing. Keys
// canonicalize with sorted dimensions, so identifiers naming the same
// dimensions in different orders address the same node, and a key with no
// dimensions and no tag addresses the same node as its bare name.
func CanonicalID(id any) (string, error) {
	if s, ok := key.BareName(id); ok {
		return s, nil
	}
	k, err := key.From(id)
	if err != nil {
		return "", fmt.Errorf("bad identifier %v: %w", id, err)
	}
	if k.NumDims() == 0 && k.Tag() == "" {
		return k.Name(), nil
	}
	return k.Canonical(), nil
}

// DisplayID renders an identifier for logs and error messages.
func DisplayID(id any) string {
	switch t := id.(type) {
	case key.Key:
		return t.String()
	case string:
		return t
	default:
		return fmt.Sprint(id)
	}
}

// entry pairs a node with the identifier it was stored under, preserving
// the caller's dimension order for display.
type entry struct {
	id   any
	node Node
}

// Graph is an arena mapping identifiers to node definitions. The map is
// guarded for concurrent reads during execution; construction is expected
// to be single-threaded under caller discipline.
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]*entry
	// full indexes each quantity name to the key carrying its fullest
	// dimensionality, so short references like "foo" can be completed.
	full map[string]key.Key
}

// New returns an empty Graph with the reserved config node in place.
func New() *Graph {
	g := &Graph{
		nodes: make(map[string]*entry),
		full:  make(map[string]key.Key),
	}
	g.nodes[ConfigKey] = &entry{id: ConfigKey, node: Literal(map[string]any{})}
	return g
}

// Set stores node under id, overwriting any previous definition. Referenced
// identifiers are not required to exist; dependency resolution is deferred
// to execution.
func (g *Graph) Set(id any, n Node) error {
	canon, err := CanonicalID(id)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes[canon] = &entry{id: id, node: n}
	g.index(id)
	return nil
}

// SetStrict stores node under id, failing with KeyExistsError when id is
// already defined and with MissingKeyError when any identifier the node
// references is absent. The latter is the retryable condition the queue
// inserter depends on.
func (g *Graph) SetStrict(id any, n Node) error {
	canon, err := CanonicalID(id)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.nodes[canon]; ok {
		return &KeyExistsError{ID: DisplayID(id)}
	}
	var missing []string
	for _, ref := range n.Refs() {
		rc, err := CanonicalID(ref)
		if err != nil {
			return err
		}
		if _, ok := g.nodes[rc]; !ok {
			missing = append(missing, DisplayID(ref))
		}
	}
	if len(missing) > 0 {
		return &MissingKeyError{IDs: missing}
	}
	g.nodes[canon] = &entry{id: id, node: n}
	g.index(id)
	return nil
}

// index maintains the full-dimensionality index for key identifiers. Caller
// holds the lock.
func (g *Graph) index(id any) {
	k, ok := id.(key.Key)
	if !ok {
		if _, bare := key.BareName(id); bare {
			return
		}
		parsed, err := key.From(id)
		if err != nil {
			return
		}
		k = parsed
	}
	if have, ok := g.full[k.Name()]; !ok || k.NumDims() >= have.NumDims() {
		g.full[k.Name()] = k
	}
}

// Get returns the node and original identifier stored for id.
func (g *Graph) Get(id any) (Node, any, bool) {
	canon, err := CanonicalID(id)
	if err != nil {
		return Node{}, nil, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.nodes[canon]
	if !ok {
		return Node{}, nil, false
	}
	return e.node, e.id, true
}

// Has reports whether id is defined, regardless of dimension order.
func (g *Graph) Has(id any) bool {
	_, _, ok := g.Get(id)
	return ok
}

// Delete removes id and its index entries. Deleting an absent id is a
// no-op.
func (g *Graph) Delete(id any) {
	canon, err := CanonicalID(id)
	if err != nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.nodes[canon]
	if !ok {
		return
	}
	delete(g.nodes, canon)
	if _, bare := key.BareName(e.id); bare {
		return
	}
	if k, err := key.From(e.id); err == nil {
		if have, ok := g.full[k.Name()]; ok && have.Equal(k) {
			g.reindexName(k.Name())
		}
	}
}

// reindexName recomputes the fullest-dimensionality entry for name from the
// remaining nodes, so deleting the indexed key promotes the next-fullest
// one. Caller holds the lock.
func (g *Graph) reindexName(name string) {
	delete(g.full, name)
	for _, e := range g.nodes {
		if _, bare := key.BareName(e.id); bare {
			continue
		}
		k, err := key.From(e.id)
		if err != nil || k.Name() != name {
			continue
		}
		if have, ok := g.full[name]; !ok || k.NumDims() >= have.NumDims() {
			g.full[name] = k
		}
	}
}

// Len returns the number of defined identifiers, including the config node.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Keys returns every stored identifier in deterministic (canonical) order.
func (g *Graph) Keys() []any {
	g.mu.RLock()
	defer g.mu.RUnlock()
	canons := make([]string, 0, len(g.nodes))
	for c := range g.nodes {
		canons = append(canons, c)
	}
	sort.Strings(canons)
	out := make([]any, 0, len(canons))
	for _, c := range canons {
		out = append(out, g.nodes[c].id)
	}
	return out
}

// UnsortedKey returns the identifier as originally stored — with the
// caller's dimension order — for id given in any dimension order.
func (g *Graph) UnsortedKey(id any) (any, bool) {
	_, orig, ok := g.Get(id)
	return orig, ok
}

// FullKey returns the key with the fullest dimensionality recorded for the
// quantity name of id.
func (g *Graph) FullKey(id any) (key.Key, bool) {
	name := ""
	if s, ok := key.BareName(id); ok {
		name = s
	} else if k, err := key.From(id); err == nil {
		name = k.Name()
	} else {
		return key.Key{}, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	k, ok := g.full[name]
	return k, ok
}

// Infer completes id: a defined identifier is returned in its stored form;
// a bare or dimensionless reference is completed to its fullest-dimension
// key. When dims are given, all other dimensions are dropped from the
// result.
func (g *Graph) Infer(id any, dims ...string) any {
	result, ok := g.UnsortedKey(id)
	if !ok {
		result = id
	}
	bare := false
	if _, isBare := key.BareName(id); isBare {
		bare = true
	} else if k, err := key.From(id); err == nil && k.NumDims() == 0 {
		bare = true
	}
	if bare {
		if full, ok := g.FullKey(result); ok {
			result = full
		}
	}
	k, err := key.From(result)
	if err != nil || len(dims) == 0 {
		return result
	}
	keep := make(map[string]struct{}, len(dims))
	for _, d := range dims {
		keep[d] = struct{}{}
	}
	var drop []string
	for _, d := range k.Dims() {
		if _, ok := keep[d]; !ok {
			drop = append(drop, d)
		}
	}
	dropped, err := k.Drop(drop...)
	if err != nil {
		return result
	}
	return dropped
}

// Config returns the settings map held by the reserved config node.
func (g *Graph) Config() map[string]any {
	n, _, ok := g.Get(ConfigKey)
	if !ok {
		return map[string]any{}
	}
	m, ok := n.Value().(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return m
}

// SetConfig merges settings into the config node.
func (g *Graph) SetConfig(settings map[string]any) {
	cfg := g.Config()
	for k, v := range settings {
		cfg[k] = v
	}
	// Set cannot fail for the reserved plain-string identifier.
	_ = g.Set(ConfigKey, Literal(cfg))
}
