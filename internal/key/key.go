package key

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalid indicates a malformed key expression or constructor argument.
	ErrInvalid = errors.New("key: invalid key expression")
	// ErrDuplicateDim indicates a dimension name appearing more than once.
	ErrDuplicateDim = errors.New("key: duplicate dimension")
	// ErrMissingDim indicates a Drop of a dimension the key does not have.
	ErrMissingDim = errors.New("key: dimension not present")
	// ErrMissingTag indicates a Sub of a tag component the key does not have.
	ErrMissingTag = errors.New("key: tag component not present")
	// ErrNotKeyLike indicates a value that cannot be coerced into a Key.
	ErrNotKeyLike = errors.New("key: value is not key-like")
)

// Key is an immutable identifier for a quantity that includes its
// dimensionality. The zero Key is invalid; construct via New or Parse.
type Key struct {
	name string
	dims []string
	tag  string

	// str and canon are precomputed: str preserves dimension order for
	// display, canon sorts dimensions so that equality and map addressing
	// ignore order.
	str   string
	canon string
}

// New returns a Key with the given name and dimensions. The name must be
// non-empty and free of the ':' separator; dimensions must be unique and
// free of '-' and ':'.
func New(name string, dims ...string) (Key, error) {
	return newKey(name, dims, "")
}

// MustNew is New, panicking on error. Intended for fixed keys in setup code.
func MustNew(name string, dims ...string) Key {
	k, err := New(name, dims...)
	if err != nil {
		panic(err)
	}
	return k
}

func newKey(name string, dims []string, tag string) (Key, error) {
	if name == "" || strings.Contains(name, ":") {
		return Key{}, fmt.Errorf("%w: bad name %q", ErrInvalid, name)
	}
	seen := make(map[string]struct{}, len(dims))
	for _, d := range dims {
		if d == "" || strings.ContainsAny(d, ":-") {
			return Key{}, fmt.Errorf("%w: bad dimension %q", ErrInvalid, d)
		}
		if _, ok := seen[d]; ok {
			return Key{}, fmt.Errorf("%w: %q", ErrDuplicateDim, d)
		}
		seen[d] = struct{}{}
	}
	for _, part := range splitTag(tag) {
		if part == "" || strings.ContainsAny(part, ":") {
			return Key{}, fmt.Errorf("%w: bad tag %q", ErrInvalid, tag)
		}
	}
	return build(name, append([]string(nil), dims...), tag), nil
}

// build assembles a Key from already-validated parts.
func build(name string, dims []string, tag string) Key {
	k := Key{name: name, dims: dims, tag: tag}
	k.str = render(name, dims, tag)
	if sort.StringsAreSorted(dims) {
		k.canon = k.str
	} else {
		s := append([]string(nil), dims...)
		sort.Strings(s)
		k.canon = render(name, s, tag)
	}
	return k
}

func render(name string, dims []string, tag string) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte(':')
	sb.WriteString(strings.Join(dims, "-"))
	if tag != "" {
		sb.WriteByte(':')
		sb.WriteString(tag)
	}
	return sb.String()
}

func splitTag(tag string) []string {
	if tag == "" {
		return nil
	}
	return strings.Split(tag, "+")
}

// Name returns the quantity name.
func (k Key) Name() string { return k.name }

// Dims returns a copy of the key's dimensions in display order.
func (k Key) Dims() []string { return append([]string(nil), k.dims...) }

// NumDims returns the number of dimensions.
func (k Key) NumDims() int { return len(k.dims) }

// HasDim reports whether d is among the key's dimensions.
func (k Key) HasDim(d string) bool {
	for _, have := range k.dims {
		if have == d {
			return true
		}
	}
	return false
}

// Tag returns the key's tag, or "" when untagged.
func (k Key) Tag() string { return k.tag }

// IsZero reports whether k is the invalid zero Key.
func (k Key) IsZero() bool { return k.name == "" }

// String returns the canonical display form `name:dim1-dim2:tag`, with
// dimensions in their original order.
func (k Key) String() string { return k.str }

// Canonical returns the order-insensitive form of the key: the display form
// with dimensions sorted. Two equal Keys always have the same Canonical
// string, making it suitable as a map key.
func (k Key) Canonical() string { return k.canon }

// Sorted returns a version of the Key with its dimensions sorted
// alphabetically.
func (k Key) Sorted() Key {
	s := append([]string(nil), k.dims...)
	sort.Strings(s)
	return build(k.name, s, k.tag)
}

// Equal reports whether two keys have the same name and tag and the same
// dimensions as a set.
func (k Key) Equal(other Key) bool { return k.canon == other.canon }

// EqualValue reports whether v — a Key or a key-formatted string — denotes
// the same key. Strings are parsed into canonical form before comparison.
func (k Key) EqualValue(v any) bool {
	other, err := From(v)
	if err != nil {
		return false
	}
	return k.Equal(other)
}

// Less orders keys by their sorted canonical form, giving a deterministic
// order for listings.
func (k Key) Less(other Key) bool { return k.canon < other.canon }

// Rename returns a Key with a replaced name.
func (k Key) Rename(name string) Key {
	return build(name, k.dims, k.tag)
}

// Append returns a new Key with additional dimensions. Dimensions the key
// already has are not duplicated.
func (k Key) Append(dims ...string) Key {
	out := append([]string(nil), k.dims...)
	for _, d := range dims {
		if !k.hasIn(out, d) {
			out = append(out, d)
		}
	}
	return build(k.name, out, k.tag)
}

func (Key) hasIn(dims []string, d string) bool {
	for _, have := range dims {
		if have == d {
			return true
		}
	}
	return false
}

// Drop returns a new Key with the named dimensions removed. Dropping a
// dimension the key does not have is an error, so caller typos surface
// instead of silently passing through.
func (k Key) Drop(dims ...string) (Key, error) {
	out := append([]string(nil), k.dims...)
	for _, d := range dims {
		i := -1
		for j, have := range out {
			if have == d {
				i = j
				break
			}
		}
		if i < 0 {
			return Key{}, fmt.Errorf("%w: %q not in %s", ErrMissingDim, d, k)
		}
		out = append(out[:i], out[i+1:]...)
	}
	return build(k.name, out, k.tag), nil
}

// DropAll returns a new Key with zero dimensions.
func (k Key) DropAll() Key {
	return build(k.name, nil, k.tag)
}

// AddTag returns a new Key with tag appended to any existing tag using '+'.
// A tag component already present is not duplicated, so AddTag is
// idempotent. An empty tag returns the key unchanged.
func (k Key) AddTag(tag string) Key {
	if tag == "" {
		return k
	}
	parts := splitTag(k.tag)
	for _, p := range splitTag(tag) {
		if !k.hasIn(parts, p) {
			parts = append(parts, p)
		}
	}
	return build(k.name, k.dims, strings.Join(parts, "+"))
}

// RemoveTag returns a new Key with the given tag components removed. A
// component the key does not carry is an error.
func (k Key) RemoveTag(tag string) (Key, error) {
	parts := splitTag(k.tag)
	for _, p := range splitTag(tag) {
		i := -1
		for j, have := range parts {
			if have == p {
				i = j
				break
			}
		}
		if i < 0 {
			return Key{}, fmt.Errorf("%w: %q not in %s", ErrMissingTag, p, k)
		}
		parts = append(parts[:i], parts[i+1:]...)
	}
	return build(k.name, k.dims, strings.Join(parts, "+")), nil
}

// Add is the '+' combination: it appends a tag component. See AddTag.
func (k Key) Add(tag string) Key { return k.AddTag(tag) }

// Sub is the '-' combination: it removes a tag component. See RemoveTag.
func (k Key) Sub(tag string) (Key, error) { return k.RemoveTag(tag) }

// Mul is the '*' combination: it appends the dimensions of other.
func (k Key) Mul(other Key) Key { return k.Append(other.dims...) }

// Div is the '/' combination: it drops the dimensions of other.
func (k Key) Div(other Key) (Key, error) { return k.Drop(other.dims...) }

// Product returns a new Key named name whose dimensions are the union of
// the dimensions of keys, ordered by first appearance.
func Product(name string, keys ...Key) (Key, error) {
	var dims []string
	seen := make(map[string]struct{})
	for _, k := range keys {
		for _, d := range k.dims {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			dims = append(dims, d)
		}
	}
	return New(name, dims...)
}
