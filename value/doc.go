// Package value defines the closed set of typed values carried by ent fields.
//
// Values are a tagged union over scalars (integers, floats, booleans,
// characters, text, timestamps, byte sequences) and composites (optionals,
// lists, text-keyed maps). Equality is defined for every kind pairing;
// ordering is partial: NaN floats and List/Map values never order, so
// ordering predicates over them never match.
package value
