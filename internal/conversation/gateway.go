package conversation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/profile-chat/backend/internal/captcha"
	"github.com/profile-chat/backend/internal/corpus"
	"github.com/profile-chat/backend/internal/llm"
	"github.com/profile-chat/backend/internal/metrics"
	"github.com/profile-chat/backend/internal/ratelimit"
	"github.com/profile-chat/backend/internal/retrieval"
	"github.com/profile-chat/backend/internal/session"
	"github.com/profile-chat/backend/internal/storage/models"
)

// Turn is one prior exchange replayed by the client. Role is "user" or
// "assistant"; anything else is treated as "user".
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	SessionID    string
	ClientIP     string
	Message      string
	Locale       string
	CaptchaToken string
	History      []Turn
}

type Response struct {
	SessionID          string
	Reply              string
	References         []retrieval.Reference
	UsedFallback       bool
	PromptCount        int
	RateLimitRemaining int
	Notice             string
}

// ExchangeStore persists completed exchanges for later review.
type ExchangeStore interface {
	InsertExchange(record *models.ExchangeRecord) error
}

type Config struct {
	Locales         []string
	DefaultLocale   string
	MaxMessageChars int
	MaxHistory      int
	TopK            int
	SnippetChars    int
	ContextMaxChars int
	SubjectName     string
	ResumeHref      string
	Logger          *zap.Logger
}

type Deps struct {
	Engine    *retrieval.Engine
	Limiter   ratelimit.Limiter
	Captcha   *captcha.Manager
	Counter   session.Counter
	Responder llm.Responder
	Store     ExchangeStore
}

// Gateway runs one visitor prompt through admission control, retrieval and
// reply generation. It is safe for concurrent use.
type Gateway struct {
	cfg  Config
	deps Deps
	now  func() time.Time
}

func NewGateway(cfg Config, deps Deps) *Gateway {
	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = corpus.DefaultLocale
	}
	if len(cfg.Locales) == 0 {
		cfg.Locales = []string{cfg.DefaultLocale}
	}
	if cfg.MaxMessageChars == 0 {
		cfg.MaxMessageChars = 2000
	}
	if cfg.MaxHistory == 0 {
		cfg.MaxHistory = 6
	}
	if cfg.TopK == 0 {
		cfg.TopK = 5
	}
	if cfg.SubjectName == "" {
		cfg.SubjectName = "the candidate"
	}
	if cfg.ResumeHref == "" {
		cfg.ResumeHref = "/resume"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Gateway{cfg: cfg, deps: deps, now: time.Now}
}

// Process handles one prompt end to end. Admission failures surface as typed
// errors; everything past the captcha gate produces a reply, falling back to
// a deterministic summary when the model is unavailable or fails.
func (g *Gateway) Process(ctx context.Context, req Request) (*Response, error) {
	started := g.now()

	message := corpus.Truncate(corpus.Sanitize(req.Message), g.cfg.MaxMessageChars)
	if message == "" {
		metrics.ChatTotal.WithLabelValues("empty").Inc()
		return nil, ErrEmptyMessage
	}

	sessionID := session.Resolve(req.SessionID)
	locale := g.resolveLocale(req.Locale)

	// the limiter keys on the caller's address so minting a fresh session id
	// does not reset the budget
	limiterKey := req.ClientIP
	if limiterKey == "" {
		limiterKey = sessionID
	}
	decision, err := g.deps.Limiter.Allow(ctx, limiterKey)
	if err != nil {
		// a broken limiter backend must not take the whole gateway down
		g.cfg.Logger.Error("Rate limiter unavailable, admitting request", zap.Error(err))
		decision = ratelimit.Decision{Allowed: true}
	}
	if !decision.Allowed {
		metrics.RateLimited.Inc()
		metrics.ChatTotal.WithLabelValues("rate_limited").Inc()
		g.cfg.Logger.Warn("Request rate limited",
			zap.String("key", limiterKey),
			zap.Duration("retry_after", decision.RetryAfter),
		)
		return nil, &RateLimitedError{RetryAfter: decision.RetryAfter}
	}

	promptCount, err := g.deps.Counter.Peek(ctx, sessionID)
	if err != nil {
		g.cfg.Logger.Error("Prompt counter unavailable", zap.Error(err))
	}

	allowed, challenge := g.deps.Captcha.Gate(sessionID, req.CaptchaToken, promptCount)
	if !allowed {
		metrics.ChatTotal.WithLabelValues("captcha_required").Inc()
		return nil, &CaptchaRequiredError{Challenge: challenge, PromptCount: promptCount}
	}

	hits := g.deps.Engine.Retrieve(message, locale, g.cfg.TopK)
	references := g.deps.Engine.BuildReferences(hits, locale)
	contextBlock := g.deps.Engine.BuildContextBlock(hits, g.cfg.SnippetChars, g.cfg.ContextMaxChars)

	factsBlock := ""
	if g.deps.Engine.IsDateOriented(message, locale) {
		factsBlock = buildFactsBlock(g.deps.Engine.BuildWorkEducationFacts(message, locale, 0))
	}

	metrics.RetrievalHits.Observe(float64(len(hits)))
	if len(hits) > 0 {
		metrics.RetrievalTopScore.Observe(hits[0].Score)
	}

	reply, usedFallback := g.generateReply(ctx, message, locale, hits, contextBlock, factsBlock, req.History)

	newCount, err := g.deps.Counter.Increment(ctx, sessionID)
	if err != nil {
		g.cfg.Logger.Error("Failed to increment prompt counter", zap.Error(err))
		newCount = promptCount + 1
	}

	g.recordExchange(sessionID, locale, message, reply, hits, usedFallback, started)

	metrics.ChatTotal.WithLabelValues("ok").Inc()
	metrics.ChatDuration.WithLabelValues(locale).Observe(g.now().Sub(started).Seconds())

	return &Response{
		SessionID:          sessionID,
		Reply:              reply,
		References:         references,
		UsedFallback:       usedFallback,
		PromptCount:        newCount,
		RateLimitRemaining: decision.Remaining,
		Notice:             g.notice(decision.Remaining, locale),
	}, nil
}

func (g *Gateway) resolveLocale(locale string) string {
	for _, l := range g.cfg.Locales {
		if l == locale {
			return locale
		}
	}
	return g.cfg.DefaultLocale
}

func (g *Gateway) generateReply(ctx context.Context, message, locale string, hits []retrieval.Hit, contextBlock, factsBlock string, history []Turn) (string, bool) {
	responder := g.deps.Responder
	if responder == nil || !responder.Enabled() {
		metrics.FallbackReplies.Inc()
		return fallbackReply(g.cfg.SubjectName, g.cfg.ResumeHref, locale, hits, g.cfg.SnippetChars), true
	}

	systemPrompt := buildSystemPrompt(g.cfg.SubjectName, contextBlock, factsBlock, locale)
	reply, err := responder.Chat(ctx, systemPrompt, g.truncateHistory(history), message)
	if err != nil {
		g.cfg.Logger.Warn("LLM call failed, serving fallback reply", zap.Error(err))
		metrics.FallbackReplies.Inc()
		return fallbackReply(g.cfg.SubjectName, g.cfg.ResumeHref, locale, hits, g.cfg.SnippetChars), true
	}
	return reply, false
}

// truncateHistory keeps the most recent turns and sanitizes each one; the
// client controls this payload, so it gets the same scrubbing as the message.
func (g *Gateway) truncateHistory(history []Turn) []llm.Message {
	if len(history) > g.cfg.MaxHistory {
		history = history[len(history)-g.cfg.MaxHistory:]
	}
	messages := make([]llm.Message, 0, len(history))
	for _, turn := range history {
		content := corpus.Truncate(corpus.Sanitize(turn.Content), g.cfg.MaxMessageChars)
		if content == "" {
			continue
		}
		role := "user"
		if turn.Role == "assistant" {
			role = "assistant"
		}
		messages = append(messages, llm.Message{Role: role, Content: content})
	}
	return messages
}

var lowRemainingNotice = map[string]string{
	"en": "Heads up: only a few questions remain in this hour's quota.",
	"ja": "ご注意: 今の時間帯に送れる質問は残りわずかです。",
	"zh": "提示: 本小时剩余的提问次数不多了。",
}

func (g *Gateway) notice(remaining int, locale string) string {
	if remaining > 2 {
		return ""
	}
	notice, ok := lowRemainingNotice[locale]
	if !ok {
		notice = lowRemainingNotice["en"]
	}
	return notice
}

func (g *Gateway) recordExchange(sessionID, locale, question, reply string, hits []retrieval.Hit, usedFallback bool, started time.Time) {
	if g.deps.Store == nil {
		return
	}

	record := &models.ExchangeRecord{
		ID:           uuid.NewString(),
		SessionID:    sessionID,
		Locale:       locale,
		Question:     question,
		Reply:        reply,
		HitCount:     len(hits),
		UsedFallback: usedFallback,
		LatencyMS:    int(g.now().Sub(started).Milliseconds()),
		CreatedAt:    g.now(),
	}
	if len(hits) > 0 {
		record.TopAnchorID = hits[0].AnchorID
		record.TopScore = hits[0].Score
	}

	if err := g.deps.Store.InsertExchange(record); err != nil {
		g.cfg.Logger.Error("Failed to record exchange", zap.Error(err))
	}
}
