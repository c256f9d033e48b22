package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"boardship-server/handlers"
	"boardship-server/models"
	"boardship-server/services"
	"boardship-server/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	origins := strings.Split(allowedOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-User-ID",
		AllowCredentials: true,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Lobby{},
		&models.GameState{},
		&models.Match{},
		&models.GameUser{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	hub := handlers.NewHub()
	rooms := services.NewSessionRegistry()

	engine := services.NewGameService(
		services.DefaultGameConfig(),
		rooms,
		&services.GormGameStateStore{DB: db},
		&services.GormMatchStore{DB: db},
		&services.GormUserDirectory{DB: db},
		&services.GormLobbyStore{DB: db},
		hub,
	)
	lobbyService := services.NewLobbyService(db, hub, rooms)
	historyService := services.NewHistoryService(db)

	handlers.SetupLobbyRoutes(app, lobbyService)
	handlers.SetupMatchRoutes(app, historyService)
	handlers.SetupGameSocket(app, hub, engine)

	reaper, err := workers.StartLobbyReaper(db)
	if err != nil {
		log.Fatal("failed to start lobby reaper:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Game socket mounted at /ws/game/:id")
	log.Println("✅ Lobby reaper running")

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := reaper.Shutdown(); err != nil {
		log.Printf("reaper shutdown error: %v", err)
	}
	if err := app.Shutdown(); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}
