package services

import (
	"testing"
	"time"

	"boardship-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaveBeforeOpponentReadyIsJustANotification(t *testing.T) {
	f := newEngineFixture(t, "classic", DefaultGameConfig())
	f.engine.SubmitReady(testRoom, "alice", twoCellShips())

	f.engine.Leave(testRoom, "alice")

	lefts := f.events.ofType(EventPlayerLeft)
	require.Len(t, lefts, 1)
	left := lefts[0].(PlayerLeftEvent)
	assert.Equal(t, "alice", left.PlayerID)
	assert.Equal(t, "Alice", left.Username)

	assert.Empty(t, f.events.ofType(EventGameOver))
	assert.Empty(t, f.matches.all())

	_, live := f.rooms.Get(testRoom)
	assert.False(t, live, "last player out tears the room down")
}

func TestLeaveDuringPlayForfeitsToOpponent(t *testing.T) {
	f := newEngineFixture(t, "classic", DefaultGameConfig())
	f.readyBoth(t, twoCellShips(), twoCellShips())
	f.engine.Attack(testRoom, "alice", 0, 0) // one hit on the board

	f.engine.Leave(testRoom, "bob")

	overs := f.events.ofType(EventGameOver)
	require.Len(t, overs, 1)
	over := overs[0].(GameOverEvent)
	assert.Equal(t, "alice", over.Winner)
	assert.Equal(t, "bob", over.Loser)
	assert.Equal(t, models.WinReasonForfeit, over.Reason)
	assert.Equal(t, "Bob left the game", over.Message)

	rows := f.matches.all()
	require.Len(t, rows, 2)
	assert.Equal(t, "1-0 (forfeit)", rows[0].Score)
	assert.Equal(t, "0-1 (forfeit)", rows[1].Score)

	state, err := f.states.Get(testRoom)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseFinished, state.GamePhase)
	assert.Equal(t, models.WinReasonForfeit, state.WinReason)

	_, live := f.rooms.Get(testRoom)
	assert.False(t, live)
}

func TestSettlementIsIdempotent(t *testing.T) {
	f := newEngineFixture(t, "classic", DefaultGameConfig())
	f.readyBoth(t, singleCellShips(0, 0), singleCellShips(0, 0))

	f.engine.Attack(testRoom, "alice", 0, 0) // victory settles the match
	f.engine.Leave(testRoom, "bob")          // late leave must not settle again

	assert.Len(t, f.events.ofType(EventGameOver), 1)
	assert.Len(t, f.matches.all(), 2, "history records exactly one pair")

	_, live := f.rooms.Get(testRoom)
	assert.False(t, live, "finished room must not be resurrected")
}

func TestRankedSettlementAppliesDeltas(t *testing.T) {
	f := newEngineFixture(t, "ranked", DefaultGameConfig())
	f.readyBoth(t, singleCellShips(0, 0), singleCellShips(0, 0))

	// alice (1000 RP) beats bob (1200 RP): upset bonus for the winner.
	f.engine.Attack(testRoom, "alice", 0, 0)

	over := f.events.ofType(EventGameOver)[0].(GameOverEvent)
	assert.Equal(t, 27, over.WinnerRatingDelta)
	assert.Equal(t, -22, over.LoserRatingDelta)

	assert.Equal(t, 1027, f.users.rating("alice"))
	assert.Equal(t, 1178, f.users.rating("bob"))

	rows := f.matches.all()
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].PointsChange)
	assert.Equal(t, 27, *rows[0].PointsChange)
	require.NotNil(t, rows[1].PointsChange)
	assert.Equal(t, -22, *rows[1].PointsChange)

	state, err := f.states.Get(testRoom)
	require.NoError(t, err)
	require.NotNil(t, state.WinnerRatingDelta)
	assert.Equal(t, 27, *state.WinnerRatingDelta)
}

func TestRankedLossNeverDropsBelowZero(t *testing.T) {
	f := newEngineFixture(t, "ranked", DefaultGameConfig())
	f.users.users["bob"].RankingPoints = 5
	f.readyBoth(t, singleCellShips(0, 0), singleCellShips(0, 0))

	f.engine.Attack(testRoom, "alice", 0, 0)

	assert.Equal(t, 0, f.users.rating("bob"))
}

func TestClassicSettlementCarriesNoDeltas(t *testing.T) {
	f := newEngineFixture(t, "classic", DefaultGameConfig())
	f.readyBoth(t, singleCellShips(0, 0), singleCellShips(0, 0))

	f.engine.Attack(testRoom, "alice", 0, 0)

	over := f.events.ofType(EventGameOver)[0].(GameOverEvent)
	assert.Zero(t, over.WinnerRatingDelta)
	assert.Zero(t, over.LoserRatingDelta)

	for _, row := range f.matches.all() {
		assert.Nil(t, row.PointsChange)
	}
	assert.Equal(t, 1000, f.users.rating("alice"), "ratings untouched outside ranked mode")
}

func TestForfeitWithoutLiveSessionFallsBackToRecordTimes(t *testing.T) {
	f := newEngineFixture(t, "classic", DefaultGameConfig())

	bob := "bob"
	created := time.Now().Add(-90 * time.Second)
	require.NoError(t, f.states.Create(&models.GameState{
		ID:           testRoom,
		Player1ID:    "alice",
		Player2ID:    &bob,
		Player1Ready: true,
		Player2Ready: true,
		GamePhase:    models.PhasePlaying,
		GameMode:     models.ModeClassic,
		CreatedAt:    created,
	}))

	f.engine.settleLocked(testRoom, nil, "alice", "bob", models.WinReasonForfeit, "Bob left the game")

	rows := f.matches.all()
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].DurationSeconds)
	assert.InDelta(t, 90, *rows[0].DurationSeconds, 2)
	assert.Equal(t, "0-0 (forfeit)", rows[0].Score)
}
