package key

import (
	"fmt"
	"regexp"
	"strings"
)

// exprRegex matches the canonical key format `name`, `name:dims`,
// `name:dims:tag` or `name::tag`, where dims is a '-'-separated list.
var exprRegex = regexp.MustCompile(`^(?P<name>[^:\s]+)(:(?P<dims>([^:\s-]+-)*[^:\s-]+)?(:(?P<tag>[^:\s]+))?)?$`)

// Parse creates a Key from its canonical string representation.
func Parse(raw string) (Key, error) {
	m := exprRegex.FindStringSubmatch(raw)
	if m == nil {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalid, raw)
	}
	name := m[exprRegex.SubexpIndex("name")]
	var dims []string
	if d := m[exprRegex.SubexpIndex("dims")]; d != "" {
		dims = strings.Split(d, "-")
	}
	return newKey(name, dims, m[exprRegex.SubexpIndex("tag")])
}

// MustParse is Parse, panicking on error. Intended for fixed keys in setup
// and test code.
func MustParse(raw string) Key {
	k, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return k
}

// BareName returns v's value if v is a plain string containing no key
// structure (no ':' separator). Such strings address graph entries directly
// by name rather than through the key algebra.
func BareName(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" || strings.Contains(s, ":") {
		return "", false
	}
	return s, true
}

// From coerces v — a Key or a key-formatted string — into a Key.
func From(v any) (Key, error) {
	switch t := v.(type) {
	case Key:
		return t, nil
	case string:
		return Parse(t)
	default:
		return Key{}, fmt.Errorf("%w: %T", ErrNotKeyLike, v)
	}
}

// IterKeys coerces each of values into a Key, failing on the first value
// that is not key-like. It resolves a task's declared inputs, which may mix
// Keys and strings, into concrete Keys for dependency-edge extraction.
func IterKeys(values ...any) ([]Key, error) {
	out := make([]Key, 0, len(values))
	for _, v := range values {
		k, err := From(v)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// SingleKey coerces values into exactly one Key. Zero or more than one
// value is an error.
func SingleKey(values ...any) (Key, error) {
	switch len(values) {
	case 0:
		return Key{}, fmt.Errorf("%w: no values", ErrNotKeyLike)
	case 1:
		return From(values[0])
	default:
		return Key{}, fmt.Errorf("%w: %d values, want 1", ErrNotKeyLike, len(values))
	}
}
