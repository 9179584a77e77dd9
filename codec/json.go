package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Value and Ent define their own tagged wire shapes, so JSON round-trips the
// whole data model without loss (floats travel as bit patterns).
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the default codec used by the library.
//
// NOTE: This affects newly-created snapshots and sqlite databases. Existing
// persisted data is self-describing and opened by selecting the codec by name.
var Default Codec = GoJSON{}
