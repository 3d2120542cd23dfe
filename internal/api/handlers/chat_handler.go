package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/profile-chat/backend/internal/conversation"
	"github.com/profile-chat/backend/internal/storage/models"
	"github.com/profile-chat/backend/pkg/logger"
)

// HistoryStore lists past exchanges for a session. Nil when persistence is
// disabled.
type HistoryStore interface {
	ListBySession(sessionID string, limit int) ([]models.ExchangeRecord, error)
}

type ChatHandler struct {
	gateway *conversation.Gateway
	history HistoryStore
}

func NewChatHandler(gateway *conversation.Gateway, history HistoryStore) *ChatHandler {
	return &ChatHandler{
		gateway: gateway,
		history: history,
	}
}

type chatRequest struct {
	Message      string              `json:"message"`
	SessionID    string              `json:"sessionId"`
	Locale       string              `json:"locale"`
	CaptchaToken string              `json:"captchaToken"`
	History      []conversation.Turn `json:"history"`
}

func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	response, err := h.gateway.Process(c.Context(), conversation.Request{
		SessionID:    req.SessionID,
		ClientIP:     c.IP(),
		Message:      req.Message,
		Locale:       req.Locale,
		CaptchaToken: req.CaptchaToken,
		History:      req.History,
	})
	if err != nil {
		return h.handleProcessError(c, err)
	}

	return c.JSON(fiber.Map{
		"reply":              response.Reply,
		"sessionId":          response.SessionID,
		"references":         response.References,
		"usedFallback":       response.UsedFallback,
		"promptCount":        response.PromptCount,
		"rateLimitRemaining": response.RateLimitRemaining,
		"captchaRequired":    false,
		"notice":             response.Notice,
	})
}

func (h *ChatHandler) handleProcessError(c *fiber.Ctx, err error) error {
	if errors.Is(err, conversation.ErrEmptyMessage) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	var limited *conversation.RateLimitedError
	if errors.As(err, &limited) {
		seconds := int(limited.RetryAfter / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		c.Set("Retry-After", fmt.Sprintf("%d", seconds))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":        "rate_limited",
			"message":      "Too many questions for now. Please try again later.",
			"retryAfterMs": limited.RetryAfter.Milliseconds(),
		})
	}

	var challenged *conversation.CaptchaRequiredError
	if errors.As(err, &challenged) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":           "captcha_required",
			"message":         "Please solve the challenge to continue",
			"captchaRequired": true,
			"captchaChallenge": fiber.Map{
				"code":      challenged.Challenge.Code,
				"expiresAt": challenged.Challenge.ExpiresAt.Unix(),
			},
			"promptCount": challenged.PromptCount,
		})
	}

	logger.Error("Failed to process chat request", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to process request",
	})
}

func (h *ChatHandler) GetHistory(c *fiber.Ctx) error {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "sessionId is required",
		})
	}

	if h.history == nil {
		return c.JSON(fiber.Map{"history": []interface{}{}})
	}

	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	records, err := h.history.ListBySession(sessionID, limit)
	if err != nil {
		logger.Error("Failed to list exchange history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load history",
		})
	}

	entries := make([]fiber.Map, 0, len(records))
	for _, r := range records {
		entries = append(entries, fiber.Map{
			"question":     r.Question,
			"reply":        r.Reply,
			"locale":       r.Locale,
			"usedFallback": r.UsedFallback,
			"createdAt":    r.CreatedAt.Unix(),
		})
	}

	return c.JSON(fiber.Map{"history": entries})
}
