package handlers

import (
	"boardship-server/middleware"
	"boardship-server/services"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// SetupLobbyRoutes wires the pre-game lobby surface.
func SetupLobbyRoutes(app *fiber.App, lobbies *services.LobbyService) {
	// 🔓 Public — browsing needs no user context
	app.Get("/api/lobbies", lobbies.ListLobbies)
	app.Get("/api/lobbies/stats", lobbies.LobbyStats)
	app.Get("/api/lobbies/:id", lobbies.GetLobby)

	// 🔐 Secured — require user context from the gateway
	secured := app.Group("/api", middleware.UserContextMiddleware())
	secured.Post("/lobbies", lobbies.CreateLobby)
	secured.Patch("/lobbies/:id/join", lobbies.JoinLobby)
	secured.Patch("/lobbies/:id/leave", lobbies.LeaveLobby)
	secured.Delete("/lobbies/:id", lobbies.DeleteLobby)
}

// SetupMatchRoutes wires the reporting surface over settled matches.
func SetupMatchRoutes(app *fiber.App, history *services.HistoryService) {
	// 🔓 Public
	app.Get("/api/matches/recent/global", history.GlobalRecentMatches)
	app.Get("/api/leaderboard", history.Leaderboard)
	app.Get("/api/game-states/:id", history.GetGameState)

	// 🔐 Secured
	secured := app.Group("/api", middleware.UserContextMiddleware())
	secured.Get("/matches/history", history.MatchHistory)
	secured.Get("/matches/recent", history.RecentMatches)
}

// SetupGameSocket wires the realtime channels.
func SetupGameSocket(app *fiber.App, hub *Hub, engine *services.GameService) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/game/:id", GameSocket(hub, engine))
	app.Get("/ws/lobbies", LobbyFeed(hub))
}
