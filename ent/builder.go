package ent

import (
	"fmt"

	"github.com/hupe1980/entdb/value"
)

// Builder assembles an ent with the ephemeral id, rejecting duplicate field
// or edge names at Build time.
type Builder struct {
	etype  string
	fields []Field
	edges  []Edge
}

// NewBuilder creates a builder for ents of the given type.
func NewBuilder(etype string) *Builder {
	return &Builder{etype: etype}
}

// Field adds a plain mutable field.
func (b *Builder) Field(name string, v value.Value) *Builder {
	b.fields = append(b.fields, NewField(name, v))
	return b
}

// ImmutableField adds a field that rejects mutation after creation.
func (b *Builder) ImmutableField(name string, v value.Value) *Builder {
	b.fields = append(b.fields, NewImmutableField(name, v))
	return b
}

// ComputedField adds a computed field. The initial value is the declaration,
// not external input; all later mutation is rejected.
func (b *Builder) ComputedField(name string, v value.Value) *Builder {
	b.fields = append(b.fields, NewComputedField(name, v))
	return b
}

// Edge adds a mutable edge.
func (b *Builder) Edge(name string, v EdgeValue) *Builder {
	b.edges = append(b.edges, NewEdge(name, v))
	return b
}

// ImmutableEdge adds an edge that rejects mutation after creation.
func (b *Builder) ImmutableEdge(name string, v EdgeValue) *Builder {
	b.edges = append(b.edges, NewImmutableEdge(name, v))
	return b
}

// Build assembles the ent, failing on duplicate field or edge names.
func (b *Builder) Build() (*Ent, error) {
	seenFields := make(map[string]struct{}, len(b.fields))
	for _, f := range b.fields {
		if _, ok := seenFields[f.Name]; ok {
			return nil, fmt.Errorf("ent: duplicate field name %q", f.Name)
		}
		seenFields[f.Name] = struct{}{}
	}

	seenEdges := make(map[string]struct{}, len(b.edges))
	for _, e := range b.edges {
		if _, ok := seenEdges[e.Name]; ok {
			return nil, fmt.Errorf("ent: duplicate edge name %q", e.Name)
		}
		seenEdges[e.Name] = struct{}{}
	}

	return New(b.etype, b.fields, b.edges), nil
}
