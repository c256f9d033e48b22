package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"boardship-server/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HistoryService is the read-only reporting surface over settled matches,
// ratings and finished game records. It never touches live sessions.
type HistoryService struct {
	DB *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{DB: db}
}

// RecentMatchResponse is one history row from the requesting player's side.
type RecentMatchResponse struct {
	ID              string    `json:"id"`
	Opponent        string    `json:"opponent"`
	Mode            string    `json:"mode"`
	Result          string    `json:"result"`
	Score           string    `json:"score"`
	PointsChange    *int      `json:"pointsChange,omitempty"`
	DurationSeconds *int      `json:"durationSeconds,omitempty"`
	PlayedAt        time.Time `json:"playedAt"`
}

func toRecentMatch(m models.Match) RecentMatchResponse {
	return RecentMatchResponse{
		ID:              m.ID,
		Opponent:        m.OpponentUsername,
		Mode:            m.Mode,
		Result:          m.Result,
		Score:           m.Score,
		PointsChange:    m.PointsChange,
		DurationSeconds: m.DurationSeconds,
		PlayedAt:        m.PlayedAt,
	}
}

// MatchHistory returns the authenticated player's full history, newest first.
func (s *HistoryService) MatchHistory(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	var matches []models.Match
	if err := s.DB.Where("player_id = ?", userID).
		Order("played_at DESC").
		Find(&matches).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load match history"})
	}

	res := make([]RecentMatchResponse, len(matches))
	for i, m := range matches {
		res[i] = toRecentMatch(m)
	}
	return c.JSON(res)
}

// RecentMatches returns the player's latest matches, limit clamped to 1..20.
func (s *HistoryService) RecentMatches(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	limit, err := strconv.Atoi(c.Query("limit", "5"))
	if err != nil {
		limit = 5
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 20 {
		limit = 20
	}

	var matches []models.Match
	if err := s.DB.Where("player_id = ?", userID).
		Order("played_at DESC").
		Limit(limit).
		Find(&matches).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load recent matches"})
	}

	res := make([]RecentMatchResponse, len(matches))
	for i, m := range matches {
		res[i] = toRecentMatch(m)
	}
	return c.JSON(res)
}

// GlobalRecentMatch is one finished match for the public feed.
type GlobalRecentMatch struct {
	ID              string    `json:"id"`
	PlayerA         string    `json:"playerA"`
	PlayerB         string    `json:"playerB"`
	Mode            string    `json:"mode"`
	Result          string    `json:"result"`
	Score           string    `json:"score"`
	PointsChange    *int      `json:"pointsChange,omitempty"`
	DurationSeconds *int      `json:"durationSeconds,omitempty"`
	PlayedAt        time.Time `json:"playedAt"`
}

// globalDedupWindow buckets playedAt so the two per-participant rows of one
// match collapse into a single feed entry despite small timestamp drift.
const globalDedupWindow = 5 // seconds

// GlobalRecentMatches is the public recent-games feed, deduplicated per
// participant pair and time bucket. Limit clamped to 1..50.
func (s *HistoryService) GlobalRecentMatches(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		limit = 10
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}

	var matches []models.Match
	if err := s.DB.Order("played_at DESC").Limit(limit * 2).Find(&matches).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load matches"})
	}

	seen := make(map[string]bool)
	res := make([]GlobalRecentMatch, 0, limit)
	for _, m := range matches {
		keyA, keyB := m.PlayerID, m.OpponentID
		if keyA > keyB {
			keyA, keyB = keyB, keyA
		}
		bucket := m.PlayedAt.Unix() / globalDedupWindow
		dedupKey := fmt.Sprintf("%s:%s:%d", keyA, keyB, bucket)
		if seen[dedupKey] {
			continue
		}
		seen[dedupKey] = true

		res = append(res, GlobalRecentMatch{
			ID:              m.ID,
			PlayerA:         s.resolveName(m.PlayerUsername, m.PlayerID),
			PlayerB:         s.resolveName(m.OpponentUsername, m.OpponentID),
			Mode:            m.Mode,
			Result:          m.Result,
			Score:           m.Score,
			PointsChange:    m.PointsChange,
			DurationSeconds: m.DurationSeconds,
			PlayedAt:        m.PlayedAt,
		})
		if len(res) >= limit {
			break
		}
	}

	return c.JSON(res)
}

func (s *HistoryService) resolveName(username, userID string) string {
	if strings.TrimSpace(username) != "" {
		return username
	}
	var user models.GameUser
	if err := s.DB.First(&user, "id = ?", userID).Error; err == nil && user.Username != "" {
		return user.Username
	}
	if userID != "" {
		return userID
	}
	return "Unknown"
}

// LeaderboardEntry is one ladder row with tier info attached.
type LeaderboardEntry struct {
	UserID        string   `json:"userId"`
	Username      string   `json:"username"`
	RankingPoints int      `json:"rankingPoints"`
	Position      int      `json:"position"`
	RankInfo      RankInfo `json:"rankInfo"`
}

// Leaderboard returns the top players by ranking points.
func (s *HistoryService) Leaderboard(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 50
	}

	var users []models.GameUser
	if err := s.DB.Order("ranking_points DESC").Limit(limit).Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load leaderboard"})
	}

	res := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		res[i] = LeaderboardEntry{
			UserID:        u.ID,
			Username:      u.Username,
			RankingPoints: u.RankingPoints,
			Position:      i + 1,
			RankInfo:      GetRankInfo(u.RankingPoints),
		}
	}
	return c.JSON(res)
}

// GetGameState serves the persisted match record, which is how a refreshed
// client recovers a live board or sees the final outcome after teardown.
func (s *HistoryService) GetGameState(c *fiber.Ctx) error {
	var state models.GameState
	err := s.DB.First(&state, "id = ?", c.Params("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.SendStatus(fiber.StatusNotFound)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load game state"})
	}
	return c.JSON(state)
}
