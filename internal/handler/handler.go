package handler

import (
	"fx-sentiment/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/trace"
)

// SentimentSource is the controller surface the HTTP API reads and triggers.
type SentimentSource interface {
	Current() domain.CacheEntry
	Instruments() []string
	Refresh() error
}

type Handler struct {
	tracer    trace.Tracer
	clock     clockwork.Clock
	sentiment SentimentSource
}

func New(tracer trace.Tracer, clock clockwork.Clock, sentiment SentimentSource) *Handler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Handler{
		tracer:    tracer,
		clock:     clock,
		sentiment: sentiment,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)
	r.GET("/api/sentiment", h.GetSentiment)
	r.GET("/api/sentiment/:instrument", h.GetInstrumentSentiment)
	r.POST("/api/sentiment/refresh", APIKeyAuth(apiKey), h.TriggerRefresh)
}
