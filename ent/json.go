package ent

import (
	"encoding/json"
	"time"

	"github.com/hupe1980/entdb/core"
)

// entJSON is the stable wire shape for an Ent. Timestamps travel as UnixNano;
// memoized edge loads are never serialized.
type entJSON struct {
	ID      core.ID          `json:"id"`
	Type    string           `json:"type"`
	Created int64            `json:"created,omitempty"`
	Updated int64            `json:"updated,omitempty"`
	Fields  map[string]Field `json:"fields,omitempty"`
	Edges   map[string]Edge  `json:"edges,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e *Ent) MarshalJSON() ([]byte, error) {
	aux := entJSON{
		ID:     e.id,
		Type:   e.etype,
		Fields: e.fields,
		Edges:  e.edges,
	}
	if !e.created.IsZero() {
		aux.Created = e.created.UnixNano()
	}
	if !e.updated.IsZero() {
		aux.Updated = e.updated.UnixNano()
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Ent) UnmarshalJSON(data []byte) error {
	var aux entJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*e = Ent{
		id:     aux.ID,
		etype:  aux.Type,
		fields: aux.Fields,
		edges:  aux.Edges,
	}
	if e.fields == nil {
		e.fields = make(map[string]Field)
	}
	if e.edges == nil {
		e.edges = make(map[string]Edge)
	}
	if aux.Created != 0 {
		e.created = time.Unix(0, aux.Created).UTC()
	}
	if aux.Updated != 0 {
		e.updated = time.Unix(0, aux.Updated).UTC()
	}
	return nil
}
