package models

import "time"

// Game phases, forward-only: placement → ready → playing → finished.
const (
	PhasePlacement = "placement"
	PhaseReady     = "ready"
	PhasePlaying   = "playing"
	PhaseFinished  = "finished"
)

// Game modes.
const (
	ModeClassic = "classic"
	ModeSpeed   = "speed"
	ModeRanked  = "ranked"
)

// Win reasons recorded at settlement.
const (
	WinReasonAllShipsDestroyed = "all_ships_destroyed"
	WinReasonForfeit           = "forfeit"
	WinReasonTimeout           = "timeout"
)

// GameState is the persisted match record, keyed by room id (= lobby id).
// It mirrors the in-memory session as a write-behind copy and is the only
// thing that survives a process restart. Never deleted while the phase is
// non-terminal; permanently read-only once finished.
type GameState struct {
	ID string `gorm:"primaryKey" json:"id"` // room id

	Player1ID string  `gorm:"index" json:"player1Id"`
	Player2ID *string `gorm:"index" json:"player2Id,omitempty"` // set when the second player readies

	Player1Ready bool `json:"player1Ready"`
	Player2Ready bool `json:"player2Ready"`

	Player1Ships ShipList `gorm:"type:jsonb" json:"player1Ships,omitempty"`
	Player2Ships ShipList `gorm:"type:jsonb" json:"player2Ships,omitempty"`

	Player1Attacks AttackLog `gorm:"type:jsonb" json:"player1Attacks,omitempty"`
	Player2Attacks AttackLog `gorm:"type:jsonb" json:"player2Attacks,omitempty"`

	GamePhase   string  `gorm:"type:varchar(16);index" json:"gamePhase"`
	GameMode    string  `gorm:"type:varchar(16)" json:"gameMode"`
	CurrentTurn *string `json:"currentTurn,omitempty"` // nil once the game ends

	Winner          *string `json:"winner,omitempty"`
	Loser           *string `json:"loser,omitempty"`
	WinReason       string  `gorm:"type:varchar(32)" json:"winReason,omitempty"`
	GameOverMessage string  `json:"gameOverMessage,omitempty"`

	WinnerRatingDelta *int `json:"winnerRatingDelta,omitempty"`
	LoserRatingDelta  *int `json:"loserRatingDelta,omitempty"`

	StartedAt     *time.Time `json:"startedAt,omitempty"`     // both players ready
	TurnStartedAt *time.Time `json:"turnStartedAt,omitempty"` // speed mode only

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// PlayerSlot reports which side of the record a player occupies.
// Returns 0 when the player is not part of the match.
func (g *GameState) PlayerSlot(playerID string) int {
	if playerID == g.Player1ID {
		return 1
	}
	if g.Player2ID != nil && playerID == *g.Player2ID {
		return 2
	}
	return 0
}

// BothReady reports whether the match has genuinely begun.
func (g *GameState) BothReady() bool {
	return g.Player1Ready && g.Player2Ready
}
