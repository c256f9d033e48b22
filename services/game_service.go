package services

import (
	"log"
	"strings"
	"time"

	"boardship-server/models"
)

// GameConfig carries the engine tunables.
type GameConfig struct {
	// Hard per-turn limit in speed mode, enforced at resolution time.
	SpeedTurnLimit time.Duration

	// Whether a hit renews the speed-mode turn timer. Off by default: a
	// streak runs on the clock it started with. Kept as a policy flag so
	// game-feel tuning is a config change.
	ResetTimerOnHit bool
}

func DefaultGameConfig() GameConfig {
	return GameConfig{SpeedTurnLimit: 3 * time.Second}
}

// GameService is the session engine: it owns the live state of every active
// match and resolves every inbound action (ready, attack, timeout, leave).
// All gameplay decisions are made against in-memory sessions; the durable
// record is a write-behind mirror, updated best-effort after each action.
type GameService struct {
	cfg    GameConfig
	rooms  *SessionRegistry
	states GameStateStore
	store  MatchStore
	users  UserDirectory
	lobbys LobbyStore
	events Broadcaster
}

func NewGameService(cfg GameConfig, rooms *SessionRegistry, states GameStateStore, matches MatchStore, users UserDirectory, lobbies LobbyStore, events Broadcaster) *GameService {
	return &GameService{
		cfg:    cfg,
		rooms:  rooms,
		states: states,
		store:  matches,
		users:  users,
		lobbys: lobbies,
		events: events,
	}
}

// Rooms exposes the registry for stats and teardown checks.
func (s *GameService) Rooms() *SessionRegistry {
	return s.rooms
}

// SubmitReady registers a player's layout. The first submission for a room
// creates both the live session and, if missing, the persisted record from
// the originating lobby. Resubmission replaces the stored layout. When the
// second player readies, the game starts: first-seated player moves first.
func (s *GameService) SubmitReady(roomID, playerID string, ships models.ShipList) {
	log.Printf("📋 [GAME] player %s ready in room %s (%d ships)", playerID, roomID, len(ships))

	sess := s.rooms.GetOrCreate(roomID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	state, isNew := s.loadOrCreateState(roomID)
	if state != nil && state.GamePhase == models.PhaseFinished {
		log.Printf("⚠️ [GAME] ready from %s ignored, room %s already finished", playerID, roomID)
		return
	}

	if !sess.addPlayer(playerID) {
		log.Printf("⚠️ [GAME] ready from %s ignored, room %s already seats two players", playerID, roomID)
		return
	}
	sess.Ships[playerID] = ships
	sess.Ready[playerID] = true

	if state != nil && state.GameMode != "" {
		sess.Mode = state.GameMode
	}

	starting := len(sess.Ready) >= 2
	turnLimit := 0
	if starting {
		now := time.Now()
		sess.CurrentTurn = sess.Players[0]
		sess.StartedAt = now
		if sess.Mode == models.ModeSpeed {
			sess.TurnStartedAt = now
			turnLimit = int(s.cfg.SpeedTurnLimit / time.Second)
		}
	}

	if state != nil {
		s.applyReadyToState(state, sess, playerID, ships, starting)
		var err error
		if isNew {
			err = s.states.Create(state)
		} else {
			err = s.states.Save(state)
		}
		if err != nil {
			log.Printf("❌ [GAME] failed to persist game state for room %s: %v", roomID, err)
		}
	}

	s.events.Publish(roomID, PlayerReadyEvent{
		Type:       EventPlayerReady,
		PlayerID:   playerID,
		ReadyCount: len(sess.Ready),
	})

	if starting {
		log.Printf("🚀 [GAME] both players ready in room %s, %s moves first (%s)", roomID, sess.CurrentTurn, modeOrClassic(sess.Mode))
		s.events.Publish(roomID, GameStartEvent{
			Type:          EventGameStart,
			FirstPlayer:   sess.CurrentTurn,
			RoomID:        roomID,
			GameMode:      modeOrClassic(sess.Mode),
			TurnTimeLimit: turnLimit,
		})
	}
}

// Attack resolves one shot. Out-of-turn and after-game attacks are stale
// messages and ignored silently; a duplicate coordinate answers with
// ATTACK_ERROR and mutates nothing. In speed mode an attack landing after
// the turn deadline is discarded in favor of a forced turn transfer.
func (s *GameService) Attack(roomID, attackerID string, row, col int) {
	sess := s.ensureLoaded(roomID)
	if sess == nil {
		log.Printf("⚠️ [GAME] attack for unknown room %s ignored", roomID)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.CurrentTurn == "" {
		log.Printf("⚠️ [GAME] %s attacked in room %s but the game is already over", attackerID, roomID)
		return
	}
	if sess.CurrentTurn != attackerID {
		log.Printf("⚠️ [GAME] %s attacked out of turn in room %s", attackerID, roomID)
		return
	}

	if sess.Mode == models.ModeSpeed && !sess.TurnStartedAt.IsZero() {
		if elapsed := time.Since(sess.TurnStartedAt); elapsed > s.cfg.SpeedTurnLimit {
			log.Printf("⏱️ [GAME] %s blew the turn limit in room %s (%.1fs elapsed)", attackerID, roomID, elapsed.Seconds())
			s.forceTurnTimeoutLocked(roomID, sess, attackerID)
			return
		}
	}

	key := cellKey(row, col)
	targeted := sess.targetedBy(attackerID)
	if targeted[key] {
		log.Printf("⚠️ [GAME] %s re-attacked cell [%d,%d] in room %s", attackerID, row, col, roomID)
		s.publishDuplicateAttack(roomID, row, col)
		return
	}

	defenderID, ok := sess.opponentOf(attackerID)
	if !ok {
		log.Printf("⚠️ [GAME] attack in room %s with no opponent seated", roomID)
		return
	}

	targeted[key] = true
	isHit := sess.Ships[defenderID].Contains(row, col)
	if isHit {
		sess.hitsBy(attackerID)[key] = true
	}
	sess.Attacks[attackerID] = append(sess.Attacks[attackerID], models.AttackRecord{Row: row, Col: col, IsHit: isHit})

	s.events.Publish(roomID, AttackEvent{
		Type:     EventAttack,
		PlayerID: attackerID,
		Row:      row,
		Col:      col,
		IsHit:    isHit,
	})

	s.persistAttack(roomID, attackerID, row, col, isHit)

	if isHit {
		total := sess.Ships[defenderID].TotalCells()
		hits := sess.hitCount(attackerID)
		log.Printf("🎯 [GAME] %s hit [%d,%d] in room %s (%d/%d cells)", attackerID, row, col, roomID, hits, total)
		if total > 0 && hits >= total {
			s.settleLocked(roomID, sess, attackerID, defenderID, models.WinReasonAllShipsDestroyed, "All ships destroyed!")
			return
		}
	}

	if !isHit {
		sess.CurrentTurn = defenderID
		if sess.Mode == models.ModeSpeed {
			sess.TurnStartedAt = time.Now()
		}
		s.persistTurn(roomID, defenderID)
		s.events.Publish(roomID, TurnChangeEvent{
			Type:           EventTurnChange,
			CurrentPlayer:  defenderID,
			PreviousPlayer: attackerID,
			Reason:         "miss",
		})
		return
	}

	// Hit keeps the turn; the timer keeps running unless policy says renew.
	if s.cfg.ResetTimerOnHit && sess.Mode == models.ModeSpeed {
		sess.TurnStartedAt = time.Now()
	}
	s.events.Publish(roomID, TurnKeepEvent{
		Type:          EventTurnKeep,
		CurrentPlayer: attackerID,
		Message:       "HIT! You get another shot!",
	})
}

// Timeout is the explicit client-side deadline signal: same forced turn
// transfer the engine applies when a late attack arrives, without waiting
// for one.
func (s *GameService) Timeout(roomID, playerID string) {
	sess := s.ensureLoaded(roomID)
	if sess == nil {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.CurrentTurn == "" {
		return // stale signal, match already over
	}
	log.Printf("⏱️ [GAME] timeout signal from %s in room %s", playerID, roomID)
	s.forceTurnTimeoutLocked(roomID, sess, playerID)
}

// Leave removes a player. If the opponent is still seated and the persisted
// record shows the match had genuinely begun, the opponent wins by forfeit;
// leaving before that is just a notification.
func (s *GameService) Leave(roomID, playerID string) {
	log.Printf("👋 [GAME] player %s leaving room %s", playerID, roomID)

	sess := s.ensureLoaded(roomID)
	username := s.lookupUsername(playerID)

	if sess != nil {
		sess.mu.Lock()
		defer sess.mu.Unlock()
	}

	remaining := ""
	if sess != nil {
		remaining, _ = sess.opponentOf(playerID)
	}

	if remaining != "" {
		state, err := s.states.Get(roomID)
		if err != nil {
			log.Printf("❌ [GAME] could not read game state for room %s: %v", roomID, err)
		}
		active := state != nil && state.BothReady() &&
			(state.GamePhase == models.PhasePlaying || state.GamePhase == models.PhaseReady)

		if active {
			s.settleLocked(roomID, sess, remaining, playerID, models.WinReasonForfeit, username+" left the game")
		} else {
			log.Printf("ℹ️ [GAME] room %s never started, no forfeit recorded", roomID)
			s.events.Publish(roomID, PlayerLeftEvent{Type: EventPlayerLeft, PlayerID: playerID, Username: username})
		}
	} else {
		s.events.Publish(roomID, PlayerLeftEvent{Type: EventPlayerLeft, PlayerID: playerID, Username: username})
	}

	if sess == nil {
		return
	}

	delete(sess.Ready, playerID)
	delete(sess.Ships, playerID)
	for i, id := range sess.Players {
		if id == playerID {
			sess.Players = append(sess.Players[:i], sess.Players[i+1:]...)
			break
		}
	}
	if len(sess.Ready) == 0 {
		s.rooms.Remove(roomID)
	}
}

// forceTurnTimeoutLocked hands the turn to the opponent, renews the timer,
// persists the new holder and announces TURN_TIMEOUT. It never ends the
// match. Caller holds the session lock.
func (s *GameService) forceTurnTimeoutLocked(roomID string, sess *RoomSession, timedOutID string) {
	opponentID, ok := sess.opponentOf(timedOutID)
	if !ok {
		return
	}

	sess.CurrentTurn = opponentID
	sess.TurnStartedAt = time.Now()
	s.persistTurn(roomID, opponentID)

	s.events.Publish(roomID, TurnTimeoutEvent{
		Type:           EventTurnTimeout,
		TimedOutPlayer: timedOutID,
		CurrentPlayer:  opponentID,
		Message:        "Time's up! Turn switched.",
	})
}

// ensureLoaded returns the live session, rehydrating it from the persisted
// record when the registry entry was evicted (process restart). Returns nil
// when neither memory nor durable state knows the room.
func (s *GameService) ensureLoaded(roomID string) *RoomSession {
	if sess, ok := s.rooms.Get(roomID); ok {
		sess.mu.Lock()
		loaded := sess.rehydrated()
		sess.mu.Unlock()
		if loaded {
			return sess
		}
	}

	state, err := s.states.Get(roomID)
	if err != nil {
		log.Printf("❌ [GAME] failed to read game state for room %s: %v", roomID, err)
	}
	if state == nil || !state.BothReady() || state.GamePhase == models.PhaseFinished {
		sess, ok := s.rooms.Get(roomID)
		if !ok {
			return nil
		}
		return sess
	}

	sess := s.rooms.GetOrCreate(roomID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.rehydrated() {
		return sess // lost the race to a concurrent loader
	}
	rehydrateLocked(sess, state)
	log.Printf("♻️ [GAME] restored room %s from database", roomID)
	return sess
}

func rehydrateLocked(sess *RoomSession, state *models.GameState) {
	sess.Mode = state.GameMode

	seat := func(id string, ships models.ShipList, attacks models.AttackLog) {
		sess.Players = append(sess.Players, id)
		sess.Ships[id] = ships
		sess.Ready[id] = true
		targeted := sess.targetedBy(id)
		hits := sess.hitsBy(id)
		for _, rec := range attacks {
			key := cellKey(rec.Row, rec.Col)
			targeted[key] = true
			if rec.IsHit {
				hits[key] = true
			}
			sess.Attacks[id] = append(sess.Attacks[id], rec)
		}
	}

	seat(state.Player1ID, state.Player1Ships, state.Player1Attacks)
	if state.Player2ID != nil {
		seat(*state.Player2ID, state.Player2Ships, state.Player2Attacks)
	}

	if state.CurrentTurn != nil {
		sess.CurrentTurn = *state.CurrentTurn
	}
	if state.StartedAt != nil {
		sess.StartedAt = *state.StartedAt
	}
	if state.GameMode == models.ModeSpeed && state.TurnStartedAt != nil {
		sess.TurnStartedAt = *state.TurnStartedAt
	}
}

// loadOrCreateState fetches the persisted record, building a fresh one from
// the originating lobby when none exists yet. The bool reports whether the
// record is new (Create vs Save). Returns nil when neither record nor lobby
// is known — gameplay then runs memory-only, by design.
func (s *GameService) loadOrCreateState(roomID string) (*models.GameState, bool) {
	state, err := s.states.Get(roomID)
	if err != nil {
		log.Printf("❌ [GAME] failed to read game state for room %s: %v", roomID, err)
		return nil, false
	}
	if state != nil {
		return state, false
	}

	lobby, err := s.lobbys.Get(roomID)
	if err != nil {
		log.Printf("❌ [GAME] failed to read lobby %s: %v", roomID, err)
		return nil, false
	}
	if lobby == nil {
		log.Printf("⚠️ [GAME] no lobby found for room %s, playing without a durable record", roomID)
		return nil, false
	}

	mode := strings.ToLower(lobby.Mode)
	if mode == "" {
		mode = models.ModeClassic
	}
	return &models.GameState{
		ID:        roomID,
		Player1ID: lobby.HostID,
		GamePhase: models.PhasePlacement,
		GameMode:  mode,
	}, true
}

func (s *GameService) applyReadyToState(state *models.GameState, sess *RoomSession, playerID string, ships models.ShipList, starting bool) {
	switch state.PlayerSlot(playerID) {
	case 1:
		state.Player1Ships = ships
		state.Player1Ready = true
	case 2:
		state.Player2Ships = ships
		state.Player2Ready = true
	default:
		if state.Player2ID == nil {
			id := playerID
			state.Player2ID = &id
			state.Player2Ships = ships
			state.Player2Ready = true
		} else {
			log.Printf("⚠️ [GAME] ready from %s does not match either seat of room %s", playerID, state.ID)
			return
		}
	}

	if starting {
		turn := sess.CurrentTurn
		state.GamePhase = models.PhasePlaying
		state.CurrentTurn = &turn
		started := sess.StartedAt
		state.StartedAt = &started
		if sess.Mode == models.ModeSpeed {
			turnStarted := sess.TurnStartedAt
			state.TurnStartedAt = &turnStarted
		}
	} else if state.GamePhase == models.PhasePlacement {
		state.GamePhase = models.PhaseReady
	}
}

// publishDuplicateAttack answers a re-attacked cell with what the persisted
// record still knows about the original resolution.
func (s *GameService) publishDuplicateAttack(roomID string, row, col int) {
	evt := AttackErrorEvent{
		Type:    EventAttackError,
		Message: "This cell was already attacked!",
		Row:     row,
		Col:     col,
	}

	state, err := s.states.Get(roomID)
	if err == nil && state != nil {
		if rec, ok := state.Player1Attacks.Find(row, col); ok {
			attacker := state.Player1ID
			hit := rec.IsHit
			evt.AttackedBy = &attacker
			evt.IsHit = &hit
		} else if rec, ok := state.Player2Attacks.Find(row, col); ok && state.Player2ID != nil {
			attacker := *state.Player2ID
			hit := rec.IsHit
			evt.AttackedBy = &attacker
			evt.IsHit = &hit
		}
	}

	s.events.Publish(roomID, evt)
}

func (s *GameService) persistAttack(roomID, attackerID string, row, col int, isHit bool) {
	state, err := s.states.Get(roomID)
	if err != nil {
		log.Printf("❌ [GAME] failed to read game state for room %s: %v", roomID, err)
		return
	}
	if state == nil {
		log.Printf("⚠️ [GAME] no game state for room %s when persisting attack", roomID)
		return
	}

	rec := models.AttackRecord{Row: row, Col: col, IsHit: isHit}
	switch state.PlayerSlot(attackerID) {
	case 1:
		state.Player1Attacks = append(state.Player1Attacks, rec)
	case 2:
		state.Player2Attacks = append(state.Player2Attacks, rec)
	default:
		log.Printf("⚠️ [GAME] attacker %s matches neither seat of room %s", attackerID, roomID)
		return
	}

	if err := s.states.Save(state); err != nil {
		log.Printf("❌ [GAME] failed to persist attack for room %s: %v", roomID, err)
	}
}

func (s *GameService) persistTurn(roomID, playerID string) {
	state, err := s.states.Get(roomID)
	if err != nil || state == nil {
		return
	}
	state.CurrentTurn = &playerID
	if state.GameMode == models.ModeSpeed {
		now := time.Now()
		state.TurnStartedAt = &now
	}
	if err := s.states.Save(state); err != nil {
		log.Printf("❌ [GAME] failed to persist turn for room %s: %v", roomID, err)
	}
}

func (s *GameService) lookupUser(userID string) *models.GameUser {
	user, err := s.users.Get(userID)
	if err != nil {
		log.Printf("❌ [GAME] user lookup failed for %s: %v", userID, err)
		return nil
	}
	return user
}

func (s *GameService) lookupUsername(userID string) string {
	if user := s.lookupUser(userID); user != nil {
		return user.Username
	}
	return userID
}

func modeOrClassic(mode string) string {
	if mode == "" {
		return models.ModeClassic
	}
	return mode
}
