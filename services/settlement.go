package services

import (
	"fmt"
	"log"
	"time"

	"boardship-server/models"

	"github.com/google/uuid"
)

// settleLocked finalizes a match exactly once: history rows, ranked rating
// updates, the finished record, the GAME_OVER broadcast and room teardown.
// The persisted-phase guard makes retries and the victory/leave race a
// no-op. Caller holds the session lock when a session exists; sess may be
// nil for a forfeit that arrives after the registry entry was evicted.
func (s *GameService) settleLocked(roomID string, sess *RoomSession, winnerID, loserID, reason, message string) {
	state, err := s.states.Get(roomID)
	if err != nil {
		log.Printf("❌ [SETTLE] could not read game state for room %s: %v", roomID, err)
	}
	if state != nil && state.GamePhase == models.PhaseFinished {
		log.Printf("⚠️ [SETTLE] room %s already settled, skipping", roomID)
		return
	}

	endedAt := time.Now()
	duration := settleDuration(sess, state, endedAt)

	winnerHits, loserHits := 0, 0
	if sess != nil {
		winnerHits = sess.hitCount(winnerID)
		loserHits = sess.hitCount(loserID)
	}

	mode := models.ModeClassic
	switch {
	case sess != nil && sess.Mode != "":
		mode = sess.Mode
	case state != nil && state.GameMode != "":
		mode = state.GameMode
	}

	winner := s.lookupUser(winnerID)
	loser := s.lookupUser(loserID)

	var winnerDelta, loserDelta *int
	if mode == models.ModeRanked {
		winnerRP, loserRP := 0, 0
		if winner != nil {
			winnerRP = winner.RankingPoints
		}
		if loser != nil {
			loserRP = loser.RankingPoints
		}

		wd := RatingDelta(true, winnerRP, loserRP)
		ld := RatingDelta(false, loserRP, winnerRP)
		winnerDelta, loserDelta = &wd, &ld
		log.Printf("📈 [SETTLE] ranked deltas for room %s: %s %+d, %s %+d", roomID, winnerID, wd, loserID, ld)

		if winner != nil {
			if err := s.users.SaveRating(winnerID, ClampRating(winnerRP+wd)); err != nil {
				log.Printf("❌ [SETTLE] failed to update rating for %s: %v", winnerID, err)
			}
		}
		if loser != nil {
			if err := s.users.SaveRating(loserID, ClampRating(loserRP+ld)); err != nil {
				log.Printf("❌ [SETTLE] failed to update rating for %s: %v", loserID, err)
			}
		}
	}

	scoreSuffix := ""
	if reason == models.WinReasonForfeit {
		scoreSuffix = " (forfeit)"
	}

	rows := []*models.Match{
		{
			ID:               uuid.NewString(),
			PlayerID:         winnerID,
			PlayerUsername:   displayName(winner, winnerID),
			OpponentID:       loserID,
			OpponentUsername: displayName(loser, loserID),
			Mode:             mode,
			Result:           models.MatchWon,
			Score:            fmt.Sprintf("%d-%d%s", winnerHits, loserHits, scoreSuffix),
			PointsChange:     winnerDelta,
			DurationSeconds:  duration,
			PlayedAt:         endedAt,
		},
		{
			ID:               uuid.NewString(),
			PlayerID:         loserID,
			PlayerUsername:   displayName(loser, loserID),
			OpponentID:       winnerID,
			OpponentUsername: displayName(winner, winnerID),
			Mode:             mode,
			Result:           models.MatchLost,
			Score:            fmt.Sprintf("%d-%d%s", loserHits, winnerHits, scoreSuffix),
			PointsChange:     loserDelta,
			DurationSeconds:  duration,
			PlayedAt:         endedAt,
		},
	}
	if err := s.store.CreateAll(rows); err != nil {
		log.Printf("❌ [SETTLE] failed to write match history for room %s: %v", roomID, err)
	}

	if state != nil {
		w, l := winnerID, loserID
		state.GamePhase = models.PhaseFinished
		state.CurrentTurn = nil
		state.Winner = &w
		state.Loser = &l
		state.WinReason = reason
		state.GameOverMessage = message
		state.WinnerRatingDelta = winnerDelta
		state.LoserRatingDelta = loserDelta
		if err := s.states.Save(state); err != nil {
			log.Printf("❌ [SETTLE] failed to persist finished game state for room %s: %v", roomID, err)
		}
	}

	s.events.Publish(roomID, GameOverEvent{
		Type:              EventGameOver,
		Winner:            winnerID,
		Loser:             loserID,
		Reason:            reason,
		Message:           message,
		WinnerRatingDelta: intOrZero(winnerDelta),
		LoserRatingDelta:  intOrZero(loserDelta),
	})

	if sess != nil {
		sess.CurrentTurn = ""
	}
	s.rooms.Remove(roomID)

	log.Printf("🏁 [SETTLE] room %s finished: %s beat %s (%s)", roomID, winnerID, loserID, reason)
}

// settleDuration measures from the live match start, falling back to the
// persisted start and finally record creation (forfeit before the match had
// a live start). Nil when nothing durable anchors a start time.
func settleDuration(sess *RoomSession, state *models.GameState, endedAt time.Time) *int {
	var startedAt time.Time
	switch {
	case sess != nil && !sess.StartedAt.IsZero():
		startedAt = sess.StartedAt
	case state != nil && state.StartedAt != nil:
		startedAt = *state.StartedAt
	case state != nil:
		startedAt = state.CreatedAt
	default:
		return nil
	}

	secs := int(endedAt.Sub(startedAt).Seconds())
	if secs <= 0 {
		return nil
	}
	return &secs
}

func displayName(user *models.GameUser, fallbackID string) string {
	if user != nil && user.Username != "" {
		return user.Username
	}
	return fallbackID
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
