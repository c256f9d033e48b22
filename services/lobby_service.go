package services

import (
	"errors"
	"log"
	"time"

	"boardship-server/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LobbyService is the pre-game CRUD surface. Lobby updates are pushed to
// the "lobbies" channel so browsing clients see the list move in real time.
type LobbyService struct {
	DB     *gorm.DB
	Events Broadcaster
	Rooms  *SessionRegistry
}

func NewLobbyService(db *gorm.DB, events Broadcaster, rooms *SessionRegistry) *LobbyService {
	return &LobbyService{DB: db, Events: events, Rooms: rooms}
}

// LobbyChannel is the pseudo-room browsing clients subscribe to.
const LobbyChannel = "lobbies"

// ListLobbies returns all lobbies, optionally filtered by status.
func (s *LobbyService) ListLobbies(c *fiber.Ctx) error {
	var lobbies []models.Lobby
	db := s.DB.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		db = db.Where("LOWER(status) = LOWER(?)", status)
	}
	if err := db.Find(&lobbies).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list lobbies"})
	}
	return c.JSON(lobbies)
}

func (s *LobbyService) GetLobby(c *fiber.Ctx) error {
	var lobby models.Lobby
	err := s.DB.First(&lobby, "id = ?", c.Params("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.SendStatus(fiber.StatusNotFound)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load lobby"})
	}
	return c.JSON(lobby)
}

// CreateLobby registers a new waiting lobby; the host counts as seated.
func (s *LobbyService) CreateLobby(c *fiber.Ctx) error {
	var lobby models.Lobby
	if err := c.BodyParser(&lobby); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid lobby payload"})
	}

	if lobby.ID == "" {
		lobby.ID = uuid.NewString()
	}
	if lobby.Status == "" {
		lobby.Status = models.LobbyWaiting
	}
	if lobby.CurrentPlayers == 0 {
		lobby.CurrentPlayers = 1 // host is in
	}
	if lobby.MaxPlayers == 0 {
		lobby.MaxPlayers = 2
	}

	if err := s.DB.Create(&lobby).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create lobby"})
	}

	s.Events.Publish(LobbyChannel, lobby)
	return c.JSON(lobby)
}

// JoinLobby seats one more player. The increment is guarded on the observed
// count so two racing joins cannot both take the last seat.
func (s *LobbyService) JoinLobby(c *fiber.Ctx) error {
	id := c.Params("id")

	var lobby models.Lobby
	err := s.DB.First(&lobby, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.SendStatus(fiber.StatusNotFound)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load lobby"})
	}

	if lobby.Status != models.LobbyWaiting {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Lobby not available"})
	}
	if lobby.CurrentPlayers >= lobby.MaxPlayers {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Lobby full"})
	}

	res := s.DB.Model(&models.Lobby{}).
		Where("id = ? AND current_players = ?", id, lobby.CurrentPlayers).
		Update("current_players", lobby.CurrentPlayers+1)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to join lobby"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Failed to join lobby (concurrent)"})
	}

	if err := s.DB.First(&lobby, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to reload lobby"})
	}
	if lobby.CurrentPlayers >= lobby.MaxPlayers {
		s.DB.Model(&models.Lobby{}).Where("id = ?", id).Update("status", models.LobbyInProgress)
		s.DB.First(&lobby, "id = ?", id)
	}

	s.Events.Publish(LobbyChannel, lobby)
	return c.JSON(lobby)
}

// LeaveLobby unseats a player; an emptied lobby is deleted once no live
// game blocks it (empty or finished rooms only — a playing room keeps its
// lobby listed).
func (s *LobbyService) LeaveLobby(c *fiber.Ctx) error {
	id := c.Params("id")

	var lobby models.Lobby
	err := s.DB.First(&lobby, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.SendStatus(fiber.StatusNotFound)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load lobby"})
	}

	res := s.DB.Model(&models.Lobby{}).
		Where("id = ? AND current_players >= 1", id).
		UpdateColumn("current_players", gorm.Expr("current_players - 1"))
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to leave lobby"})
	}
	if res.RowsAffected == 0 {
		s.Events.Publish(LobbyChannel, lobby)
		return c.JSON(lobby)
	}

	if err := s.DB.First(&lobby, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to reload lobby"})
	}

	if lobby.Status == models.LobbyInProgress && lobby.CurrentPlayers < lobby.MaxPlayers {
		s.DB.Model(&models.Lobby{}).Where("id = ?", id).Update("status", models.LobbyWaiting)
		s.DB.First(&lobby, "id = ?", id)
	}

	if lobby.CurrentPlayers == 0 {
		var state models.GameState
		stateErr := s.DB.First(&state, "id = ?", id).Error
		if errors.Is(stateErr, gorm.ErrRecordNotFound) || (stateErr == nil && state.GamePhase == models.PhaseFinished) {
			if err := s.DB.Delete(&models.Lobby{}, "id = ?", id).Error; err == nil {
				s.Events.Publish(LobbyChannel, fiber.Map{"id": id, "deleted": true})
				return c.SendStatus(fiber.StatusNoContent)
			}
		}
	}

	s.Events.Publish(LobbyChannel, lobby)
	return c.JSON(lobby)
}

// DeleteLobby removes a lobby; only the host may do it.
func (s *LobbyService) DeleteLobby(c *fiber.Ctx) error {
	id := c.Params("id")
	userID, _ := c.Locals("user_id").(string)

	var lobby models.Lobby
	err := s.DB.First(&lobby, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.SendStatus(fiber.StatusNotFound)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load lobby"})
	}

	if userID == "" || userID != lobby.HostID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only the host can delete the lobby"})
	}

	if err := s.DB.Delete(&models.Lobby{}, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete lobby"})
	}

	s.Events.Publish(LobbyChannel, fiber.Map{"id": id, "deleted": true})
	return c.SendStatus(fiber.StatusNoContent)
}

// LobbyStats is the dashboard counter set: open games, players online and
// games in progress. Users stuck "online" past the presence window are
// swept offline on the way through.
func (s *LobbyService) LobbyStats(c *fiber.Ctx) error {
	var waiting, inProgress int64
	s.DB.Model(&models.Lobby{}).Where("LOWER(status) = ?", models.LobbyWaiting).Count(&waiting)
	s.DB.Model(&models.Lobby{}).Where("LOWER(status) = ?", models.LobbyInProgress).Count(&inProgress)

	var activeGames int64
	s.DB.Model(&models.GameState{}).Where("game_phase <> ?", models.PhaseFinished).Count(&activeGames)
	gamesInProgress := inProgress
	if activeGames > gamesInProgress {
		gamesInProgress = activeGames
	}
	if live := int64(s.Rooms.Count()); live > gamesInProgress {
		gamesInProgress = live
	}

	presenceThreshold := time.Now().Add(-60 * time.Second)
	if err := s.DB.Model(&models.GameUser{}).
		Where("status = ? AND last_seen < ?", "online", presenceThreshold).
		Updates(map[string]any{"status": "offline"}).Error; err != nil {
		log.Printf("⚠️ [LOBBY] presence sweep failed: %v", err)
	}

	var playersOnline int64
	s.DB.Model(&models.GameUser{}).Where("status = ?", "online").Count(&playersOnline)
	if playersOnline == 0 {
		var seated int64
		s.DB.Model(&models.Lobby{}).Select("COALESCE(SUM(current_players), 0)").Scan(&seated)
		playersOnline = seated
	}

	return c.JSON(fiber.Map{
		"availableGames":  waiting,
		"playersOnline":   playersOnline,
		"gamesInProgress": gamesInProgress,
	})
}
