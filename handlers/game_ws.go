package handlers

import (
	"log"

	"boardship-server/models"
	"boardship-server/services"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// inboundAction is a decoded client frame. The transport guarantees ordered
// per-connection delivery; anything beyond that (replays, stale turns) is
// the engine's problem.
type inboundAction struct {
	Action   string          `json:"action"`
	PlayerID string          `json:"playerId"`
	Ships    models.ShipList `json:"ships,omitempty"`
	Row      int             `json:"row"`
	Col      int             `json:"col"`
}

// GameSocket upgrades a connection into a room channel: every outbound room
// event is pushed to it, every inbound frame is dispatched to the engine.
func GameSocket(hub *Hub, engine *services.GameService) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		roomID := conn.Params("id")
		if roomID == "" {
			return
		}

		cl := newClient(conn)
		hub.subscribe(roomID, cl)
		go cl.writePump()
		defer func() {
			hub.unsubscribe(roomID, cl)
			cl.close()
		}()

		log.Printf("🔌 [WS] subscriber joined room %s", roomID)

		for {
			var action inboundAction
			if err := conn.ReadJSON(&action); err != nil {
				log.Printf("🔌 [WS] subscriber left room %s: %v", roomID, err)
				return
			}
			if action.PlayerID == "" {
				continue
			}

			switch action.Action {
			case "ready":
				engine.SubmitReady(roomID, action.PlayerID, action.Ships)
			case "attack":
				engine.Attack(roomID, action.PlayerID, action.Row, action.Col)
			case "timeout":
				engine.Timeout(roomID, action.PlayerID)
			case "leave":
				engine.Leave(roomID, action.PlayerID)
			default:
				log.Printf("⚠️ [WS] unknown action %q in room %s", action.Action, roomID)
			}
		}
	})
}

// LobbyFeed streams lobby list updates; inbound frames are ignored.
func LobbyFeed(hub *Hub) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		cl := newClient(conn)
		hub.subscribe(services.LobbyChannel, cl)
		go cl.writePump()
		defer func() {
			hub.unsubscribe(services.LobbyChannel, cl)
			cl.close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
