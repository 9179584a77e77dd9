package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/entdb/core"
	"github.com/hupe1980/entdb/ent"
	"github.com/hupe1980/entdb/value"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want value.Value
	}{
		{in: "plain text", want: value.Text("plain text")},
		{in: "text:with:colons", want: value.Text("with:colons")},
		{in: "int:-42", want: value.Int(-42)},
		{in: "uint:42", want: value.Uint(42)},
		{in: "float:2.5", want: value.Float(2.5)},
		{in: "bool:true", want: value.Bool(true)},
		{in: "char:x", want: value.Char('x')},
		{in: "time:2026-01-02T15:04:05Z", want: value.Time(time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC))},
		{in: "urn:isbn:12345", want: value.Text("urn:isbn:12345")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseValue(tt.in)
			require.NoError(t, err)
			assert.True(t, value.Equal(tt.want, got), "got %v", got)
		})
	}

	for _, bad := range []string{"int:abc", "uint:-1", "float:x", "bool:maybe", "char:ab", "time:yesterday"} {
		t.Run(bad, func(t *testing.T) {
			_, err := parseValue(bad)
			require.Error(t, err)
		})
	}
}

func TestParseFieldFlag(t *testing.T) {
	name, v, err := parseFieldFlag("views=int:7")
	require.NoError(t, err)
	assert.Equal(t, "views", name)
	assert.True(t, value.Equal(value.Int(7), v))

	_, _, err = parseFieldFlag("no-equals-sign")
	require.Error(t, err)
}

func TestParseEdgeFlag(t *testing.T) {
	name, ev, err := parseEdgeFlag("tags=3,1,2")
	require.NoError(t, err)
	assert.Equal(t, "tags", name)
	assert.Equal(t, ent.CardinalityMany, ev.Kind)
	assert.Equal(t, []core.ID{1, 2, 3}, ev.IDs)

	_, ev, err = parseEdgeFlag("author=9")
	require.NoError(t, err)
	assert.Equal(t, ent.CardinalityOne, ev.Kind)

	_, ev, err = parseEdgeFlag("parent=")
	require.NoError(t, err)
	assert.Equal(t, ent.CardinalityNone, ev.Kind)

	_, _, err = parseEdgeFlag("tags=abc")
	require.Error(t, err)
}

func TestParseWhereFlag(t *testing.T) {
	cond, err := parseWhereFlag("views:gt:int:10")
	require.NoError(t, err)
	assert.Equal(t, "views", cond.Field)
	assert.True(t, cond.Pred.Matches(value.Int(11)))
	assert.False(t, cond.Pred.Matches(value.Int(10)))

	cond, err = parseWhereFlag("title:has_prefix:dr")
	require.NoError(t, err)
	assert.True(t, cond.Pred.Matches(value.Text("draft")))

	cond, err = parseWhereFlag("title:matches:d*t")
	require.NoError(t, err)
	assert.True(t, cond.Pred.Matches(value.Text("draft")))

	_, err = parseWhereFlag("views:between:1")
	require.Error(t, err)
	_, err = parseWhereFlag("views")
	require.Error(t, err)
}
