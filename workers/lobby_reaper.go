package workers

import (
	"log"
	"time"

	"boardship-server/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Lobby reaper: the engine never expires rooms on its own, so abandoned
// lobbies pile up. Every sweep deletes empty waiting lobbies past the age
// threshold and lobbies whose match already finished. Live (non-finished)
// game records are never touched — finished ones stay for history, only the
// listing goes away.

const (
	reapInterval = 1 * time.Minute
	lobbyMaxIdle = 30 * time.Minute
)

// StartLobbyReaper schedules the sweep. The returned scheduler should be
// shut down on exit.
func StartLobbyReaper(db *gorm.DB) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(reapInterval),
		gocron.NewTask(func() { reapLobbies(db) }),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	log.Printf("🧹 [REAPER] lobby reaper running (every %s, idle cutoff %s)", reapInterval, lobbyMaxIdle)
	return sched, nil
}

func reapLobbies(db *gorm.DB) {
	cutoff := time.Now().Add(-lobbyMaxIdle)

	var stale []models.Lobby
	err := db.Where("status = ? AND current_players = 0 AND created_at < ?", models.LobbyWaiting, cutoff).
		Find(&stale).Error
	if err != nil {
		log.Printf("❌ [REAPER] DB error: %v", err)
		return
	}

	for _, lobby := range stale {
		if err := db.Delete(&models.Lobby{}, "id = ?", lobby.ID).Error; err != nil {
			log.Printf("❌ [REAPER] failed to delete lobby %s: %v", lobby.ID, err)
		} else {
			log.Printf("🧹 [REAPER] removed stale lobby %s (%s)", lobby.ID, lobby.Name)
		}
	}

	// Lobbies whose game is already settled have nothing left to list.
	var finished []models.Lobby
	err = db.Joins("JOIN game_states ON game_states.id = lobbies.id").
		Where("game_states.game_phase = ?", models.PhaseFinished).
		Find(&finished).Error
	if err != nil {
		log.Printf("❌ [REAPER] DB error: %v", err)
		return
	}

	for _, lobby := range finished {
		if err := db.Delete(&models.Lobby{}, "id = ?", lobby.ID).Error; err != nil {
			log.Printf("❌ [REAPER] failed to delete finished lobby %s: %v", lobby.ID, err)
		}
	}
	if len(finished) > 0 {
		log.Printf("🧹 [REAPER] removed %d finished-game lobbies", len(finished))
	}
}
