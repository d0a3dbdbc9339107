/*
Package graph stores the definition of a computation as a mapping from
identifiers to nodes.

An identifier is either a key.Key or a plain string. A node is a closed
tagged variant with four cases: an alias for another identifier, a literal
value, a task (operator reference plus arguments), or an ordered list of
nodes. Task arguments that reference other identifiers form the dependency
edges of the graph.

Insertion is lazy: referenced identifiers are not required to exist, and a
later insertion at the same identifier overwrites the earlier one. Strict
insertion reverses both rules, which is what makes out-of-order bulk
insertion retryable. Cycle detection is deferred to resolution time.
*/
package graph
