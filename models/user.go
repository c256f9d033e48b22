package models

import "time"

// GameUser is the local snapshot of a user that gameplay needs: identity for
// display names and the ranking-points row that ranked settlement mutates.
// Account management lives in the auth service; this table is the directory
// the engine reads and the single integer it writes.
type GameUser struct {
	ID       string `gorm:"primaryKey" json:"id"`
	Username string `gorm:"index" json:"username"`
	Email    string `json:"email,omitempty"`

	Status   string     `gorm:"type:varchar(16)" json:"status"` // online / offline
	LastSeen *time.Time `json:"lastSeen,omitempty"`

	// Clamped at zero by settlement, never negative.
	RankingPoints int `gorm:"default:0" json:"rankingPoints"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
