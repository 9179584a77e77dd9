package ent

import "github.com/hupe1980/entdb/value"

// Field is a named value attached to an ent.
//
// Immutable fields reject mutation after creation. Computed fields reject
// being supplied as external input and reject direct mutation; they are
// populated by generated accessors layered on top of the core.
type Field struct {
	Name      string      `json:"name"`
	Value     value.Value `json:"value"`
	Immutable bool        `json:"immutable,omitempty"`
	Computed  bool        `json:"computed,omitempty"`
}

// NewField creates a plain mutable field.
func NewField(name string, v value.Value) Field {
	return Field{Name: name, Value: v}
}

// NewImmutableField creates a field that rejects mutation after creation.
func NewImmutableField(name string, v value.Value) Field {
	return Field{Name: name, Value: v, Immutable: true}
}

// NewComputedField creates a field that rejects external input and direct
// mutation.
func NewComputedField(name string, v value.Value) Field {
	return Field{Name: name, Value: v, Computed: true}
}

// Clone creates a deep copy of the field.
func (f Field) Clone() Field {
	f.Value = f.Value.Clone()
	return f
}
