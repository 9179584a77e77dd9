package ent

import "errors"

var (
	// ErrImmutableField is returned when mutating a field flagged immutable.
	ErrImmutableField = errors.New("ent: field is immutable")

	// ErrComputedField is returned when a computed field is supplied as
	// external input or mutated directly.
	ErrComputedField = errors.New("ent: field is computed")

	// ErrImmutableEdge is returned when mutating an edge flagged immutable.
	ErrImmutableEdge = errors.New("ent: edge is immutable")

	// ErrNoField is returned when no field exists with the requested name.
	ErrNoField = errors.New("ent: no field with name")

	// ErrNoEdge is returned when no edge exists with the requested name.
	ErrNoEdge = errors.New("ent: no edge with name")
)
