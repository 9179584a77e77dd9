package value

import (
	"encoding/json"
	"math"
	"time"
)

// valueJSON is the stable wire shape for a Value.
//
// Floats travel as IEEE-754 bit patterns so NaN and infinities survive the
// round trip; timestamps travel as UnixNano.
type valueJSON struct {
	Kind Kind             `json:"k"`
	I    int64            `json:"i,omitempty"`
	U    uint64           `json:"u,omitempty"`
	F    uint64           `json:"f,omitempty"`
	B    bool             `json:"b,omitempty"`
	S    string           `json:"s,omitempty"`
	T    int64            `json:"t,omitempty"`
	O    *Value           `json:"o,omitempty"`
	L    []Value          `json:"l,omitempty"`
	M    map[string]Value `json:"m,omitempty"`
	Y    []byte           `json:"y,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	aux := valueJSON{Kind: v.Kind}
	switch v.Kind {
	case KindInt, KindChar:
		aux.I = v.I64
	case KindUint:
		aux.U = v.U64
	case KindFloat:
		aux.F = math.Float64bits(v.F64)
	case KindBool:
		aux.B = v.B
	case KindText:
		aux.S = v.S
	case KindTime:
		aux.T = v.T.UnixNano()
	case KindOptional:
		aux.O = v.Opt
	case KindList:
		aux.L = v.L
	case KindMap:
		aux.M = v.M
	case KindBytes:
		aux.Y = v.Raw
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var aux valueJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*v = Value{Kind: aux.Kind}
	switch aux.Kind {
	case KindInt, KindChar:
		v.I64 = aux.I
	case KindUint:
		v.U64 = aux.U
	case KindFloat:
		v.F64 = math.Float64frombits(aux.F)
	case KindBool:
		v.B = aux.B
	case KindText:
		v.S = aux.S
	case KindTime:
		v.T = time.Unix(0, aux.T).UTC()
	case KindOptional:
		v.Opt = aux.O
	case KindList:
		v.L = aux.L
	case KindMap:
		v.M = aux.M
	case KindBytes:
		v.Raw = aux.Y
	}
	return nil
}
