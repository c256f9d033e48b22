package services

import (
	"errors"

	"boardship-server/models"

	"gorm.io/gorm"
)

// Collaborator boundaries for the engine. All lookups return (nil, nil) on
// not-found so callers can treat absence as ordinary state, and all writes
// are single-row, best-effort — the engine logs and continues on failure.

// GameStateStore is the durable record keyed by room id.
type GameStateStore interface {
	Get(roomID string) (*models.GameState, error)
	Create(state *models.GameState) error
	Save(state *models.GameState) error
}

// MatchStore appends finished-match history rows.
type MatchStore interface {
	CreateAll(matches []*models.Match) error
}

// UserDirectory resolves identities and holds the one integer ranked
// settlement mutates.
type UserDirectory interface {
	Get(userID string) (*models.GameUser, error)
	SaveRating(userID string, points int) error
}

// LobbyStore resolves the originating lobby, consumed exactly once when the
// first ready submission creates the match record.
type LobbyStore interface {
	Get(lobbyID string) (*models.Lobby, error)
}

// Gorm-backed implementations.

type GormGameStateStore struct {
	DB *gorm.DB
}

func (s *GormGameStateStore) Get(roomID string) (*models.GameState, error) {
	var state models.GameState
	err := s.DB.First(&state, "id = ?", roomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *GormGameStateStore) Create(state *models.GameState) error {
	return s.DB.Create(state).Error
}

func (s *GormGameStateStore) Save(state *models.GameState) error {
	return s.DB.Save(state).Error
}

type GormMatchStore struct {
	DB *gorm.DB
}

func (s *GormMatchStore) CreateAll(matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	return s.DB.Create(matches).Error
}

type GormUserDirectory struct {
	DB *gorm.DB
}

func (d *GormUserDirectory) Get(userID string) (*models.GameUser, error) {
	var user models.GameUser
	err := d.DB.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *GormUserDirectory) SaveRating(userID string, points int) error {
	return d.DB.Model(&models.GameUser{}).
		Where("id = ?", userID).
		Update("ranking_points", points).Error
}

type GormLobbyStore struct {
	DB *gorm.DB
}

func (s *GormLobbyStore) Get(lobbyID string) (*models.Lobby, error) {
	var lobby models.Lobby
	err := s.DB.First(&lobby, "id = ?", lobbyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lobby, nil
}
