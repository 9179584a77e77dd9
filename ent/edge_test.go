package ent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/entdb/core"
)

func TestManyNormalizes(t *testing.T) {
	ev := Many(3, 1, 2, 3, 1)
	assert.Equal(t, CardinalityMany, ev.Kind)
	assert.Equal(t, []core.ID{1, 2, 3}, ev.IDs)
	assert.Equal(t, 3, ev.Count())
}

func TestEdgeValueContains(t *testing.T) {
	assert.True(t, One(7).Contains(7))
	assert.False(t, One(7).Contains(8))
	assert.True(t, Many(1, 2, 3).Contains(2))
	assert.False(t, NoTarget().Contains(1))
}

func TestEdgeValueWithout(t *testing.T) {
	tests := []struct {
		name        string
		ev          EdgeValue
		id          core.ID
		want        EdgeValue
		wantChanged bool
	}{
		{name: "one collapses to none", ev: One(5), id: 5, want: NoTarget(), wantChanged: true},
		{name: "one unrelated", ev: One(5), id: 6, want: One(5), wantChanged: false},
		{name: "many shrinks", ev: Many(1, 2, 3), id: 2, want: Many(1, 3), wantChanged: true},
		{name: "many unrelated", ev: Many(1, 3), id: 2, want: Many(1, 3), wantChanged: false},
		{name: "many keeps kind when emptied", ev: Many(4), id: 4, want: EdgeValue{Kind: CardinalityMany, IDs: []core.ID{}}, wantChanged: true},
		{name: "none untouched", ev: NoTarget(), id: 1, want: NoTarget(), wantChanged: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := tt.ev.Without(tt.id)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.want.Kind, got.Kind)
			assert.Equal(t, tt.want.Targets(), got.Targets())
		})
	}
}

func TestEdgeCloneIsDeep(t *testing.T) {
	orig := NewEdge("tags", Many(1, 2))
	clone := orig.Clone()
	clone.Value.IDs[0] = 99

	require.Equal(t, []core.ID{1, 2}, orig.Value.IDs)
}
