package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingKey indicates a referenced identifier absent from the graph.
	ErrMissingKey = errors.New("graph: missing key")
	// ErrKeyExists indicates a strict insertion at an occupied identifier.
	ErrKeyExists = errors.New("graph: key already exists")
	// ErrCycle indicates an alias or task-dependency cycle found during
	// resolution.
	ErrCycle = errors.New("graph: cycle detected")
)

// MissingKeyError reports the identifiers that were referenced but absent.
type MissingKeyError struct {
	IDs []string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingKey, strings.Join(e.IDs, ", "))
}

func (e *MissingKeyError) Unwrap() error { return ErrMissingKey }

// KeyExistsError reports the identifier a strict insertion collided with.
type KeyExistsError struct {
	ID string
}

func (e *KeyExistsError) Error() string {
	return fmt.Sprintf("%v: %s", ErrKeyExists, e.ID)
}

func (e *KeyExistsError) Unwrap() error { return ErrKeyExists }

// CycleError reports the identifier chain that closes a cycle, outermost
// first.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCycle, strings.Join(e.Chain, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }
