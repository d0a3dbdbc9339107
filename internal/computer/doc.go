/*
Package computer is the engine façade: it owns a graph, adds computations to
it singly or through the tolerant bulk-insertion queue, and resolves
requested identifiers to values.

Resolution is pull-based and lazy. Get walks the graph backward from the
requested identifier, builds a minimal execution plan as a topologically
ordered list of steps with no duplicates, then runs the plan forward —
serially, or on a worker pool when configured with more than one worker.
Each identifier is computed at most once per Get; a cycle among task
dependencies or aliases is a typed error, never an infinite loop. A Get
either fully succeeds or returns an error; there are no partial results.
*/
package computer
