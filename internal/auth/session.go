package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/quizforge/quizforge_service/internal/config"
	"github.com/quizforge/quizforge_service/internal/middleware"
	"github.com/quizforge/quizforge_service/internal/telemetry"
)

const sessionTTL = 24 * time.Hour

// Registry issues and tears down anonymous quiz sessions. A session is a
// uuid cookie backed by a redis key; no accounts, no identity.
type Registry struct {
	cfg *config.Config
	db  *sqlx.DB
	rdb *redis.Client
}

func NewRegistry(cfg *config.Config, db *sqlx.DB, rdb *redis.Client) *Registry {
	return &Registry{cfg: cfg, db: db, rdb: rdb}
}

func (r *Registry) Rdb() *redis.Client {
	return r.rdb
}

func (r *Registry) CookieName() string {
	return r.cfg.SessionCookieName
}

func (r *Registry) CreateSession(c *fiber.Ctx) error {
	log := telemetry.L().With().
		Str("req_id", c.Locals(middleware.ReqIDKey).(string)).
		Logger()

	// reuse a live session instead of minting a new cookie
	if sid := c.Cookies(r.cfg.SessionCookieName); sid != "" {
		if err := r.rdb.Get(c.Context(), "sess:"+sid).Err(); err == nil {
			return c.JSON(fiber.Map{"session_id": sid, "resumed": true})
		}
	}

	sid := uuid.New().String()
	if err := r.rdb.Set(c.Context(), "sess:"+sid, time.Now().UTC().Format(time.RFC3339), sessionTTL).Err(); err != nil {
		log.Error().Err(err).Msg("session_store_failed")
		return c.Status(500).SendString("session store error")
	}

	c.Cookie(&fiber.Cookie{
		Name:     r.cfg.SessionCookieName,
		Value:    sid,
		HTTPOnly: true,
		SameSite: "Lax",
		MaxAge:   int(sessionTTL / time.Second),
	})

	log.Info().Str("session_id", sid).Msg("session_created")
	return c.JSON(fiber.Map{"session_id": sid, "resumed": false})
}

func (r *Registry) Logout(c *fiber.Ctx) error {
	sid := c.Cookies(r.cfg.SessionCookieName)
	if sid != "" {
		r.rdb.Del(c.Context(), "sess:"+sid)
		c.ClearCookie(r.cfg.SessionCookieName)
	}
	return c.SendString("ok")
}

func (r *Registry) Me(c *fiber.Ctx) error {
	sid := c.Locals(middleware.SessionIDKey).(string)

	createdAt, err := r.rdb.Get(c.Context(), "sess:"+sid).Result()
	if err != nil {
		return c.Status(401).SendString("unauthorized")
	}

	var attempts int
	if err := r.db.Get(&attempts, `SELECT COUNT(*) FROM attempts WHERE session_id=?`, sid); err != nil {
		return c.Status(500).SendString("db error")
	}

	return c.JSON(fiber.Map{
		"session_id": sid,
		"created_at": createdAt,
		"attempts":   attempts,
	})
}
