package core

// ID is an opaque identifier for an ent within a single database instance.
// It is strictly 64-bit so that arbitrarily long-lived databases never
// exhaust the allocator.
type ID uint64

// Ephemeral is the sentinel ID meaning "not yet assigned". A database
// replaces it with a freshly allocated ID on insert.
const Ephemeral = ID(0)

// IsEphemeral reports whether the ID still carries the unassigned sentinel.
func (id ID) IsEphemeral() bool { return id == Ephemeral }
