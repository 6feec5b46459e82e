package handler

import (
	"errors"
	"net/http"
	"time"

	"fx-sentiment/internal/domain"
	"fx-sentiment/internal/job"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type SentimentResponse struct {
	Records    []domain.SentimentRecord `json:"records"`
	Status     domain.Status            `json:"status"`
	FetchedAt  *time.Time               `json:"fetched_at,omitempty"`
	AgeSeconds *float64                 `json:"age_seconds,omitempty"`
	LastError  domain.FailureKind       `json:"last_error,omitempty"`
}

type InstrumentResponse struct {
	Record     domain.SentimentRecord `json:"record"`
	Status     domain.Status          `json:"status"`
	FetchedAt  *time.Time             `json:"fetched_at,omitempty"`
	AgeSeconds *float64               `json:"age_seconds,omitempty"`
	LastError  domain.FailureKind     `json:"last_error,omitempty"`
}

// GetSentiment godoc
// @Summary      Get current market sentiment
// @Description  Returns the cached sentiment records for all tracked instruments along with cache status
// @Tags         sentiment
// @Produce      json
// @Success      200  {object}  SentimentResponse
// @Router       /api/sentiment [get]
func (h *Handler) GetSentiment(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-sentiment")
	defer span.End()

	entry := h.sentiment.Current()
	span.SetAttributes(
		attribute.String("sentiment.status", string(entry.Status)),
		attribute.Int("sentiment.records", len(entry.Records)),
	)

	resp := SentimentResponse{
		Records:   entry.Records,
		Status:    entry.Status,
		LastError: entry.LastError,
	}
	if resp.Records == nil {
		resp.Records = []domain.SentimentRecord{}
	}
	resp.FetchedAt, resp.AgeSeconds = h.age(entry)
	c.JSON(http.StatusOK, resp)
}

// GetInstrumentSentiment godoc
// @Summary      Get sentiment for one instrument
// @Description  Returns the cached sentiment record for a tracked currency pair
// @Tags         sentiment
// @Produce      json
// @Param        instrument  path  string  true  "Currency pair (e.g., EURUSD)"
// @Success      200  {object}  InstrumentResponse
// @Failure      404  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/sentiment/{instrument} [get]
func (h *Handler) GetInstrumentSentiment(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-instrument-sentiment")
	defer span.End()

	instrument := domain.NormalizeInstrument(c.Param("instrument"))
	span.SetAttributes(attribute.String("instrument", instrument))

	tracked := h.sentiment.Instruments()
	if !containsInstrument(tracked, instrument) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":               "untracked instrument: " + c.Param("instrument"),
			"tracked_instruments": tracked,
		})
		return
	}

	entry := h.sentiment.Current()
	record, ok := entry.Record(instrument)
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":  "sentiment not available yet",
			"status": entry.Status,
		})
		return
	}

	resp := InstrumentResponse{
		Record:    record,
		Status:    entry.Status,
		LastError: entry.LastError,
	}
	resp.FetchedAt, resp.AgeSeconds = h.age(entry)
	c.JSON(http.StatusOK, resp)
}

// TriggerRefresh godoc
// @Summary      Trigger an immediate sentiment refresh
// @Description  Starts a fetch cycle now; rejected while a cycle is already running
// @Tags         sentiment
// @Produce      json
// @Security     ApiKeyAuth
// @Success      202  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/sentiment/refresh [post]
func (h *Handler) TriggerRefresh(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.trigger-refresh")
	defer span.End()

	err := h.sentiment.Refresh()
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, gin.H{"status": "refresh scheduled"})
	case errors.Is(err, job.ErrCycleInFlight), errors.Is(err, job.ErrRefreshPending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, job.ErrNotRunning):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) age(entry domain.CacheEntry) (*time.Time, *float64) {
	if entry.FetchedAt.IsZero() {
		return nil, nil
	}
	fetchedAt := entry.FetchedAt
	age := h.clock.Since(fetchedAt).Seconds()
	return &fetchedAt, &age
}

func containsInstrument(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
