package quiz

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/quizforge/quizforge_service/internal/config"
	"github.com/quizforge/quizforge_service/internal/middleware"
	"github.com/quizforge/quizforge_service/internal/model"
	"github.com/quizforge/quizforge_service/internal/providers"
	"github.com/quizforge/quizforge_service/internal/question"
	"github.com/quizforge/quizforge_service/internal/quota"
	"github.com/quizforge/quizforge_service/internal/telemetry"
)

type Handler struct {
	cfg *config.Config
	db  *sqlx.DB
	rdb *redis.Client
	svc *Service
}

func buildProviders(cfg *config.Config) []providers.Client {
	var list []providers.Client
	if cfg.OpenAIKey != "" || cfg.ProviderDryRun {
		list = append(list, providers.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel, cfg.ProviderRPS, cfg.ProviderBurst, cfg.ProviderDryRun))
	}
	if cfg.AnthropicKey != "" {
		list = append(list, &providers.Anthropic{Key: cfg.AnthropicKey, Model: cfg.AnthropicModel, DryRun: cfg.ProviderDryRun})
	}
	if cfg.GeminiKey != "" {
		list = append(list, &providers.Gemini{Key: cfg.GeminiKey, Model: cfg.GeminiModel, DryRun: cfg.ProviderDryRun})
	}
	return list
}

// pickProvider: QUIZ_PROVIDER selects by source name, otherwise the first
// configured client wins.
func pickProvider(cfg *config.Config, list []providers.Client) providers.Client {
	if len(list) == 0 {
		return nil
	}
	for _, cl := range list {
		if string(cl.Name()) == cfg.QuizProvider {
			return cl
		}
	}
	return list[0]
}

func NewHandler(cfg *config.Config, db *sqlx.DB, rdb *redis.Client) *Handler {
	gen := pickProvider(cfg, buildProviders(cfg))
	if gen == nil {
		// no key configured: wire the default provider anyway; the missing
		// credential surfaces as a generation failure at request time
		gen = providers.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel, cfg.ProviderRPS, cfg.ProviderBurst, cfg.ProviderDryRun)
	}
	svc := NewService(db, gen, cfg.QuizTopic, cfg.PrefetchAhead, cfg.SessionQuota)
	return &Handler{cfg: cfg, db: db, rdb: rdb, svc: svc}
}

func (h *Handler) GetQuestion(c *fiber.Ctx) error {
	sid := mustSessionID(c)
	rid := c.Locals(middleware.ReqIDKey).(string)

	index, err := strconv.Atoi(c.Params("index"))
	if err != nil || index < 0 {
		return c.Status(400).SendString("bad index")
	}

	log := telemetry.L().With().Str("req_id", rid).Str("session_id", sid).Int("index", index).Logger()

	rec, err := h.svc.RequestQuestion(c.Context(), sid, index)
	if err != nil {
		log.Error().Err(err).Msg("question_request_failed")
		switch {
		case errors.Is(err, quota.ErrQuotaExceeded):
			return c.Status(403).SendString("quota exceeded")
		case errors.Is(err, question.ErrGenerationFailed):
			return c.Status(502).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, question.ErrMalformedResponse):
			return c.Status(422).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(Question{Index: index, Question: rec.Question, Options: rec.Options})
}

type answerRequest struct {
	Option string `json:"option"`
}

func (h *Handler) SubmitAnswer(c *fiber.Ctx) error {
	sid := mustSessionID(c)

	index, err := strconv.Atoi(c.Params("index"))
	if err != nil || index < 0 {
		return c.Status(400).SendString("bad index")
	}

	var req answerRequest
	if err := c.BodyParser(&req); err != nil || req.Option == "" {
		return c.Status(400).SendString("option required")
	}

	res, err := h.svc.Evaluate(sid, index, req.Option)
	if err != nil {
		if errors.Is(err, question.ErrNoActiveQuestion) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(res)
}

func (h *Handler) GetState(c *fiber.Ctx) error {
	return c.JSON(h.svc.State(mustSessionID(c)))
}

func (h *Handler) ListAttempts(c *fiber.Ctx) error {
	sid := mustSessionID(c)

	var rows []model.Attempt
	if err := h.db.Select(&rows, `
        SELECT id,session_id,question_index,selected,correct,created_at
        FROM attempts
        WHERE session_id=? ORDER BY id ASC`, sid); err != nil {
		return c.Status(500).SendString("db fail")
	}
	return c.JSON(rows)
}

func mustSessionID(c *fiber.Ctx) string {
	sid, ok := c.Locals(middleware.SessionIDKey).(string)
	if !ok {
		return ""
	}
	return sid
}
