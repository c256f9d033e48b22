package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGetOrCreateIsSingleFlight(t *testing.T) {
	reg := NewSessionRegistry()

	const goroutines = 16
	sessions := make([]*RoomSession, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessions[i] = reg.GetOrCreate("room-x")
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Same(t, sessions[0], sessions[i], "every caller must see the same session")
	}
	assert.Equal(t, 1, reg.Count())
}

func TestRegistryRemove(t *testing.T) {
	reg := NewSessionRegistry()
	reg.GetOrCreate("room-x")
	reg.Remove("room-x")

	_, ok := reg.Get("room-x")
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Count())

	reg.Remove("never-existed") // no-op
}

func TestRegistryCountsDistinctRooms(t *testing.T) {
	reg := NewSessionRegistry()
	for i := 0; i < 5; i++ {
		reg.GetOrCreate(fmt.Sprintf("room-%d", i))
	}
	reg.GetOrCreate("room-0")
	assert.Equal(t, 5, reg.Count())
}

func TestSessionSeating(t *testing.T) {
	sess := newRoomSession()

	require.True(t, sess.addPlayer("alice"))
	require.True(t, sess.addPlayer("alice"), "re-seating an existing player is fine")
	require.True(t, sess.addPlayer("bob"))
	assert.False(t, sess.addPlayer("carol"), "third player is refused")
	assert.Equal(t, []string{"alice", "bob"}, sess.Players)

	opp, ok := sess.opponentOf("alice")
	require.True(t, ok)
	assert.Equal(t, "bob", opp)

	_, ok = sess.opponentOf("carol")
	assert.False(t, ok)
}

func TestOpponentNeedsTwoSeats(t *testing.T) {
	sess := newRoomSession()
	sess.addPlayer("alice")

	_, ok := sess.opponentOf("alice")
	assert.False(t, ok)
}

func TestCellKey(t *testing.T) {
	assert.Equal(t, "0,0", cellKey(0, 0))
	assert.Equal(t, "9,3", cellKey(9, 3))
	assert.NotEqual(t, cellKey(1, 12), cellKey(11, 2))
}
