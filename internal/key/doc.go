/*
Package key provides the structured, type-safe identifier used to address
quantities in a computation graph, based on the canonical format
`name:dim1-dim2-...:tag`.

A Key names a quantity together with its dimensionality and an optional tag.
Two Keys are equal when their names and tags match and their dimensions are
equal as sets; dimension order is preserved for display and for shaping
produced data, but never participates in equality. Keys are immutable: every
manipulation (Append, Drop, AddTag, ...) returns a new Key.

This package enforces the identifier schema and centralizes all formatting,
parsing, and algebraic combination logic.
*/
package key
