package services

// Event type discriminators, as sent to room subscribers.
const (
	EventPlayerReady = "PLAYER_READY"
	EventGameStart   = "GAME_START"
	EventAttack      = "ATTACK"
	EventAttackError = "ATTACK_ERROR"
	EventTurnChange  = "TURN_CHANGE"
	EventTurnKeep    = "TURN_KEEP"
	EventTurnTimeout = "TURN_TIMEOUT"
	EventGameOver    = "GAME_OVER"
	EventPlayerLeft  = "PLAYER_LEFT"
)

// Broadcaster pushes events to every subscriber of a room. It is a pure
// sink: the engine never waits on it and never reads from it. Publish is
// called while the room's lock is held, so subscribers observe events in
// resolution order.
type Broadcaster interface {
	Publish(roomID string, event any)
}

// NopBroadcaster discards everything (worker and test wiring).
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(string, any) {}

type PlayerReadyEvent struct {
	Type       string `json:"type"`
	PlayerID   string `json:"playerId"`
	ReadyCount int    `json:"readyCount"`
}

type GameStartEvent struct {
	Type          string `json:"type"`
	FirstPlayer   string `json:"firstPlayer"`
	RoomID        string `json:"roomId"`
	GameMode      string `json:"gameMode"`
	TurnTimeLimit int    `json:"turnTimeLimit"` // seconds, 0 outside speed mode
}

type AttackEvent struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	IsHit    bool   `json:"isHit"`
}

type AttackErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	// Who previously resolved this cell and how, when the persisted record
	// still knows. Omitted otherwise.
	AttackedBy *string `json:"attackedBy,omitempty"`
	IsHit      *bool   `json:"isHit,omitempty"`
}

type TurnChangeEvent struct {
	Type           string `json:"type"`
	CurrentPlayer  string `json:"currentPlayer"`
	PreviousPlayer string `json:"previousPlayer"`
	Reason         string `json:"reason"`
}

type TurnKeepEvent struct {
	Type          string `json:"type"`
	CurrentPlayer string `json:"currentPlayer"`
	Message       string `json:"message"`
}

type TurnTimeoutEvent struct {
	Type           string `json:"type"`
	TimedOutPlayer string `json:"timedOutPlayer"`
	CurrentPlayer  string `json:"currentPlayer"`
	Message        string `json:"message"`
}

type GameOverEvent struct {
	Type              string `json:"type"`
	Winner            string `json:"winner"`
	Loser             string `json:"loser"`
	Reason            string `json:"reason"`
	Message           string `json:"message"`
	WinnerRatingDelta int    `json:"winnerRatingDelta"` // 0 outside ranked mode
	LoserRatingDelta  int    `json:"loserRatingDelta"`
}

type PlayerLeftEvent struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
}
