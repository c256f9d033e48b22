package models

import "time"

// Match results, stored lowercase for easier client-side styling.
const (
	MatchWon  = "won"
	MatchLost = "lost"
)

// Match is one perspective of a finished game — settlement writes two rows
// per match, one per participant. Append-only, never mutated afterward.
type Match struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	PlayerID       string `gorm:"index" json:"playerId"`
	PlayerUsername string `json:"playerUsername"`

	OpponentID       string `gorm:"index" json:"opponentId"`
	OpponentUsername string `json:"opponentUsername"`

	Mode   string `gorm:"type:varchar(16)" json:"mode"`
	Result string `gorm:"type:varchar(8)" json:"result"`
	Score  string `json:"score"` // "hits-hits", e.g. "17-9"

	PointsChange    *int `json:"pointsChange,omitempty"` // nil outside ranked mode
	DurationSeconds *int `json:"durationSeconds,omitempty"`

	PlayedAt time.Time `gorm:"index" json:"playedAt"`
}
