package domain

import (
	"errors"
	"fmt"
	"time"
)

// CommentaryPlaceholder is used when an instrument is not mentioned in the report.
const CommentaryPlaceholder = "Analysis pending..."

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusFresh   Status = "fresh"
	StatusStale   Status = "stale"
	StatusFailed  Status = "failed"
)

type FailureKind string

const (
	FailureRateLimited FailureKind = "rate_limited"
	FailureTransient   FailureKind = "transient"
	FailureFatal       FailureKind = "fatal"
)

// Retryable reports whether another attempt within the same cycle can help.
func (k FailureKind) Retryable() bool {
	return k == FailureTransient
}

var ErrMissingCredentials = errors.New("upstream credentials not configured")

// FetchError is the classified failure of a single report fetch attempt.
type FetchError struct {
	Kind       FailureKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ClassifyFailure returns the failure kind carried by err.
// Errors that were never classified are treated as transient.
func ClassifyFailure(err error) FailureKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return FailureTransient
}

type SentimentRecord struct {
	Instrument   string  `json:"instrument"`
	BullishScore float64 `json:"bullish_score"`
	BearishScore float64 `json:"bearish_score"`
	Commentary   string  `json:"commentary"`
	// ScoresParsed is false when the scores are synthesized placeholders.
	ScoresParsed bool `json:"scores_parsed"`
}

type CacheEntry struct {
	Records   []SentimentRecord `json:"records"`
	FetchedAt time.Time         `json:"fetched_at"`
	Status    Status            `json:"status"`
	LastError FailureKind       `json:"last_error,omitempty"`
}

// Clone returns a copy that shares no backing storage with e.
func (e CacheEntry) Clone() CacheEntry {
	out := e
	if e.Records != nil {
		out.Records = make([]SentimentRecord, len(e.Records))
		copy(out.Records, e.Records)
	}
	return out
}

// Record returns the record for instrument, if present.
func (e CacheEntry) Record(instrument string) (SentimentRecord, bool) {
	for _, r := range e.Records {
		if r.Instrument == instrument {
			return r, true
		}
	}
	return SentimentRecord{}, false
}

type AlertEvent struct {
	Kind    FailureKind
	Title   string
	Message string
	At      time.Time
}

// RateLimitAlert builds the user-facing event emitted when a cycle is throttled.
func RateLimitAlert(at time.Time) AlertEvent {
	return AlertEvent{
		Kind:    FailureRateLimited,
		Title:   "Rate limit reached",
		Message: "Sentiment analysis will resume shortly",
		At:      at,
	}
}
