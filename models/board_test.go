package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShipListCells(t *testing.T) {
	fleet := ShipList{
		{Positions: []Coordinate{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}}},
		{Positions: []Coordinate{{Row: 5, Col: 5}}},
	}

	assert.Equal(t, 4, fleet.TotalCells())
	assert.True(t, fleet.Contains(0, 1))
	assert.True(t, fleet.Contains(5, 5))
	assert.False(t, fleet.Contains(1, 0))

	var empty ShipList
	assert.Equal(t, 0, empty.TotalCells())
	assert.False(t, empty.Contains(0, 0))
}

func TestAttackLogFind(t *testing.T) {
	log := AttackLog{
		{Row: 2, Col: 3, IsHit: true},
		{Row: 4, Col: 4, IsHit: false},
	}

	rec, ok := log.Find(2, 3)
	require.True(t, ok)
	assert.True(t, rec.IsHit)

	_, ok = log.Find(9, 9)
	assert.False(t, ok)
}

func TestShipListScanAcceptsStringAndBytes(t *testing.T) {
	raw := `[{"positions":[{"row":1,"col":2}]}]`

	var fromBytes ShipList
	require.NoError(t, fromBytes.Scan([]byte(raw)))
	assert.True(t, fromBytes.Contains(1, 2))

	var fromString ShipList
	require.NoError(t, fromString.Scan(raw))
	assert.True(t, fromString.Contains(1, 2))

	var fromNil ShipList
	require.NoError(t, fromNil.Scan(nil))
	assert.Nil(t, fromNil)

	var bad ShipList
	assert.Error(t, bad.Scan(42))
}
