package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutFieldOnPartIsIdempotent(t *testing.T) {
	f := NewField("velocity_probe", NodeRank)
	p := NewPart("los_1", NodeRank)

	PutFieldOnPart(f, p, 3)
	PutFieldOnPart(f, p, 3)

	assert.Equal(t, 3, f.ComponentsOnPart(p))
}

func TestPutFieldOnPartRejectsConflictingComponentCounts(t *testing.T) {
	f := NewField("velocity_probe", NodeRank)
	p := NewPart("los_1", NodeRank)

	PutFieldOnPart(f, p, 3)

	assert.Panics(t, func() {
		PutFieldOnPart(f, p, 2)
	})
}

func TestFieldNotOnPartHasZeroComponents(t *testing.T) {
	f := NewField("pressure_probe", NodeRank)
	p := NewPart("los_1", NodeRank)

	assert.Equal(t, 0, f.ComponentsOnPart(p))
}

func TestSelectUnionContainsAllParts(t *testing.T) {
	p1 := NewPart("los_1", NodeRank)
	p2 := NewPart("los_2", NodeRank)
	other := NewPart("block_1", ElemRank)

	s := SelectUnion([]*Part{p1, p2})

	assert.True(t, s.Contains(p1))
	assert.True(t, s.Contains(p2))
	assert.False(t, s.Contains(other))
}

func TestSelectorUnionMergesWithoutDuplicates(t *testing.T) {
	p1 := NewPart("los_1", NodeRank)
	p2 := NewPart("los_2", NodeRank)
	p3 := NewPart("los_3", NodeRank)

	s := SelectUnion([]*Part{p1, p2}).Union(SelectUnion([]*Part{p2, p3}))

	require.Len(t, s.Parts(), 3)
	assert.True(t, s.Contains(p1))
	assert.True(t, s.Contains(p2))
	assert.True(t, s.Contains(p3))
}

func TestEntityValidity(t *testing.T) {
	assert.False(t, Entity{}.Valid())
	assert.True(t, NewEntity(42).Valid())
	assert.Equal(t, EntityID(42), NewEntity(42).ID())
}

func TestSetIOPartAttribute(t *testing.T) {
	p := NewPart("los_1", NodeRank)

	assert.False(t, p.IsIOPart())
	SetIOPartAttribute(p)
	assert.True(t, p.IsIOPart())
}
