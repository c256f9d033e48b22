package models

import "time"

// Lobby statuses.
const (
	LobbyWaiting    = "waiting"
	LobbyInProgress = "in-progress"
)

// Lobby is the pre-game room listing. Its id doubles as the room id for the
// live session and the persisted GameState.
type Lobby struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	Name           string    `json:"name"`
	HostID         string    `gorm:"index" json:"hostId"`
	HostName       string    `json:"hostName"`
	Mode           string    `gorm:"type:varchar(16)" json:"mode"`
	MaxPlayers     int       `json:"maxPlayers"`
	CurrentPlayers int       `json:"currentPlayers"`
	Status         string    `gorm:"type:varchar(16);index" json:"status"`
	CreatedAt      time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
