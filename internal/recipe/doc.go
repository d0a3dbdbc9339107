/*
Package recipe loads declarative calculation recipes into graph insertion
requests.

A recipe defines literals, tasks, tables, aliases, and config settings in
HCL or YAML. Loading translates every definition into a queue item; the
caller applies them through the computer's tolerant bulk insertion, so
definitions may reference keys declared later in the same file or in a
different file.

In task arguments, a string always references another graph key; literal
strings reach operators through kwargs.
*/
package recipe
