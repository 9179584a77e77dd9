// Package query implements the composable predicate language evaluated by
// database backends.
//
// A Predicate tests one field value; an EdgePredicate tests one stored edge
// value. A Query combines named conditions by conjunction, with optional
// disjunction groups, a type filter, an ordering key and paging. Evaluation
// is side-effect free and deterministic: combinators short-circuit purely for
// performance, and explicit ordering breaks ties by id.
package query
