package services

import (
	"fmt"
	"sync"
	"time"

	"boardship-server/models"
)

// RoomSession is the volatile, authoritative state of one live match. Every
// mutating operation on a room runs under its mutex so composite invariants
// (turn holder + turn timer, attack + turn transfer) never tear.
type RoomSession struct {
	mu sync.Mutex

	// Seating order; first entrant moves first. At most two.
	Players []string

	Ships map[string]models.ShipList
	Ready map[string]bool

	// Per-player boards: cells this player has fired on, and the subset that
	// struck a ship. Keys are "row,col". Each player targets independently —
	// both may legally fire on the same coordinate.
	Targeted map[string]map[string]bool
	Hits     map[string]map[string]bool

	// Attack resolutions in order, mirrored to the persisted record.
	Attacks map[string]models.AttackLog

	CurrentTurn string // empty before start and after the game ends
	Mode        string

	StartedAt     time.Time // both players ready
	TurnStartedAt time.Time // speed mode only
}

func newRoomSession() *RoomSession {
	return &RoomSession{
		Ships:    make(map[string]models.ShipList),
		Ready:    make(map[string]bool),
		Targeted: make(map[string]map[string]bool),
		Hits:     make(map[string]map[string]bool),
		Attacks:  make(map[string]models.AttackLog),
	}
}

// addPlayer seats a player if not already seated. Returns false when the
// room is full and the player is a stranger.
func (s *RoomSession) addPlayer(playerID string) bool {
	for _, id := range s.Players {
		if id == playerID {
			return true
		}
	}
	if len(s.Players) >= 2 {
		return false
	}
	s.Players = append(s.Players, playerID)
	return true
}

// opponentOf returns the other seated player.
func (s *RoomSession) opponentOf(playerID string) (string, bool) {
	if len(s.Players) != 2 {
		return "", false
	}
	if s.Players[0] == playerID {
		return s.Players[1], true
	}
	if s.Players[1] == playerID {
		return s.Players[0], true
	}
	return "", false
}

func (s *RoomSession) targetedBy(playerID string) map[string]bool {
	set, ok := s.Targeted[playerID]
	if !ok {
		set = make(map[string]bool)
		s.Targeted[playerID] = set
	}
	return set
}

func (s *RoomSession) hitsBy(playerID string) map[string]bool {
	set, ok := s.Hits[playerID]
	if !ok {
		set = make(map[string]bool)
		s.Hits[playerID] = set
	}
	return set
}

func (s *RoomSession) hitCount(playerID string) int {
	return len(s.Hits[playerID])
}

// rehydrated reports whether the session carries enough state to resolve
// attacks (layouts present), as opposed to a placeholder created by
// GetOrCreate racing a ready submission.
func (s *RoomSession) rehydrated() bool {
	return len(s.Ships) > 0
}

func cellKey(row, col int) string {
	return fmt.Sprintf("%d,%d", row, col)
}

// SessionRegistry maps room id → live session. It is the single source of
// truth while a match is live; the persisted GameState is a write-behind
// mirror. The registry itself does no I/O and makes no game decisions.
type SessionRegistry struct {
	mu    sync.RWMutex
	rooms map[string]*RoomSession
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{rooms: make(map[string]*RoomSession)}
}

// GetOrCreate returns the session for a room, creating an empty one if
// absent. Concurrent callers for the same id get the same session.
func (r *SessionRegistry) GetOrCreate(roomID string) *RoomSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.rooms[roomID]
	if !ok {
		sess = newRoomSession()
		r.rooms[roomID] = sess
	}
	return sess
}

func (r *SessionRegistry) Get(roomID string) (*RoomSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.rooms[roomID]
	return sess, ok
}

func (r *SessionRegistry) Remove(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, roomID)
}

// Count returns the number of live rooms (stats endpoint).
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
