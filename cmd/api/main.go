package main

import (
	"flag"
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/quizforge/quizforge_service/internal/auth"
	"github.com/quizforge/quizforge_service/internal/cache"
	"github.com/quizforge/quizforge_service/internal/config"
	"github.com/quizforge/quizforge_service/internal/db"
	"github.com/quizforge/quizforge_service/internal/middleware"
	"github.com/quizforge/quizforge_service/internal/quiz"
	"github.com/quizforge/quizforge_service/internal/telemetry"
	"github.com/quizforge/quizforge_service/internal/ws"
)

func main() {
	doMigrate := flag.Bool("migrate", false, "run migrations and exit")
	flag.Parse()

	cfg := config.Load()
	sqlxDB := db.MustConnect(cfg.DBDSN)
	rdb := cache.MustConnect(cfg.RedisAddr, cfg.RedisDB)

	tlog := telemetry.Init(telemetry.FromEnv(config.GetEnv))
	tlog.Info().Str("port", cfg.AppPort).Str("topic", cfg.QuizTopic).Msg("booting quizforge_service")

	if *doMigrate {
		db.MustMigrate(sqlxDB)
		log.Println("migrations done")
		return
	}

	app := fiber.New()

	app.Use(middleware.RateLimiter())
	app.Use(middleware.RequestID())
	app.Use(middleware.Recover())
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.RequestLog())
	app.Use(middleware.SecureHeaders())

	authReg := auth.NewRegistry(cfg, sqlxDB, rdb)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Post("/api/v1/session", authReg.CreateSession)

	qh := quiz.NewHandler(cfg, sqlxDB, rdb)
	protected := app.Group("/api/v1", middleware.AuthSession(authReg))

	protected.Post("/auth/logout", authReg.Logout)
	protected.Get("/me", authReg.Me)

	protected.Get("/questions/:index", qh.GetQuestion)
	protected.Post("/questions/:index/answer", qh.SubmitAnswer)
	protected.Get("/state", qh.GetState)
	protected.Get("/attempts", qh.ListAttempts)

	app.Get("/ws", middleware.WSUpgradeMiddleware(), websocket.New(ws.HandleWS))

	log.Fatal(app.Listen(":" + cfg.AppPort))
}
