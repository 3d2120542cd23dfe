package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ChatDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "profile_chat_request_duration_seconds",
			Help:    "Chat request processing duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"locale"},
	)

	ChatTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_chat_requests_total",
			Help: "Total chat requests by outcome",
		},
		[]string{"status"},
	)

	RetrievalHits = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "profile_chat_retrieval_hits",
			Help:    "Number of retrieval hits per question",
			Buckets: []float64{0, 1, 2, 3, 5, 8},
		},
	)

	RetrievalTopScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "profile_chat_retrieval_top_score",
			Help:    "Top lexical overlap score per question",
			Buckets: []float64{0.05, 0.1, 0.2, 0.3, 0.4, 0.5, 0.7, 1.0},
		},
	)

	FallbackReplies = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_chat_fallback_replies_total",
			Help: "Replies synthesized without the language model",
		},
	)

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_chat_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	CaptchaChallenges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_chat_captcha_events_total",
			Help: "Captcha challenges issued and solved",
		},
		[]string{"event"},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_chat_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"model", "type"},
	)
)

func Init() {
	prometheus.MustRegister(ChatDuration)
	prometheus.MustRegister(ChatTotal)
	prometheus.MustRegister(RetrievalHits)
	prometheus.MustRegister(RetrievalTopScore)
	prometheus.MustRegister(FallbackReplies)
	prometheus.MustRegister(RateLimited)
	prometheus.MustRegister(CaptchaChallenges)
	prometheus.MustRegister(LLMTokensUsed)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
