package job

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"fx-sentiment/internal/domain"
	"fx-sentiment/internal/metrics"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrNotRunning     = errors.New("sentiment controller not running")
	ErrCycleInFlight  = errors.New("sentiment cycle already in flight")
	ErrRefreshPending = errors.New("sentiment refresh already pending")
)

type ReportFetcher interface {
	FetchReport(ctx context.Context) (string, error)
}

type RecordExtractor interface {
	Extract(report string, instruments []string) []domain.SentimentRecord
}

// AlertNotifier surfaces user-facing events; only rate-limit alerts are emitted.
type AlertNotifier interface {
	Notify(ctx context.Context, event domain.AlertEvent) error
}

// SnapshotPublisher mirrors every committed entry to an external store.
type SnapshotPublisher interface {
	Publish(ctx context.Context, entry domain.CacheEntry) error
}

type ControllerConfig struct {
	Instruments     []string
	RefetchInterval time.Duration
	StaleAfter      time.Duration
	MaxRetries      int
	BaseBackoff     time.Duration
	MaxBackoff      time.Duration
}

func (c ControllerConfig) withDefaults() ControllerConfig {
	if len(c.Instruments) == 0 {
		c.Instruments = append([]string(nil), domain.DefaultInstruments...)
	}
	if c.RefetchInterval <= 0 {
		c.RefetchInterval = 5 * time.Minute
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = 4 * time.Minute
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = time.Second
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 30 * time.Second
	}
	if c.MaxBackoff < c.BaseBackoff {
		c.MaxBackoff = c.BaseBackoff
	}
	return c
}

// Backoff is the wait before retry number attemptIndex+1 of a cycle:
// min(BaseBackoff * 2^attemptIndex, MaxBackoff).
func (c ControllerConfig) Backoff(attemptIndex int) time.Duration {
	d := c.BaseBackoff
	for i := 0; i < attemptIndex; i++ {
		d *= 2
		if d >= c.MaxBackoff {
			return c.MaxBackoff
		}
	}
	if d > c.MaxBackoff {
		return c.MaxBackoff
	}
	return d
}

// SentimentController owns the cached sentiment entry and is the only component
// that decides when to fetch, when to retry and when to give up.
//
// At most one cycle runs at a time. Readers always get a full copy of the last
// committed entry; a cycle in progress is visible only as a Loading status.
type SentimentController struct {
	tracer    trace.Tracer
	clock     clockwork.Clock
	fetcher   ReportFetcher
	extractor RecordExtractor
	notifier  AlertNotifier
	publisher SnapshotPublisher
	cfg       ControllerConfig

	mu          sync.RWMutex
	entry       domain.CacheEntry
	lastSuccess time.Time
	lastCycleAt time.Time

	inFlight atomic.Bool
	refresh  chan struct{}

	lifeMu  sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}
}

func NewSentimentController(
	tracer trace.Tracer,
	clock clockwork.Clock,
	fetcher ReportFetcher,
	extractor RecordExtractor,
	notifier AlertNotifier,
	publisher SnapshotPublisher,
	cfg ControllerConfig,
) *SentimentController {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	done := make(chan struct{})
	close(done)
	return &SentimentController{
		tracer:    tracer,
		clock:     clock,
		fetcher:   fetcher,
		extractor: extractor,
		notifier:  notifier,
		publisher: publisher,
		cfg:       cfg.withDefaults(),
		entry: domain.CacheEntry{
			Records: []domain.SentimentRecord{},
			Status:  domain.StatusIdle,
		},
		refresh: make(chan struct{}, 1),
		done:    done,
	}
}

// SetNotifier replaces the alert notifier. It must be called before Start.
func (c *SentimentController) SetNotifier(n AlertNotifier) {
	c.notifier = n
}

func (c *SentimentController) Instruments() []string {
	return append([]string(nil), c.cfg.Instruments...)
}

// Current returns the last committed entry without waiting on any cycle.
// A Fresh entry older than StaleAfter is reported as Stale.
func (c *SentimentController) Current() domain.CacheEntry {
	c.mu.RLock()
	entry := c.entry.Clone()
	c.mu.RUnlock()

	if entry.Status == domain.StatusFresh && c.clock.Since(entry.FetchedAt) > c.cfg.StaleAfter {
		entry.Status = domain.StatusStale
	}
	return entry
}

// Start begins the polling lifecycle. Calling Start while running is a no-op.
func (c *SentimentController) Start(ctx context.Context) {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.done = make(chan struct{})

	log.Info("Sentiment controller starting",
		"instruments", c.cfg.Instruments,
		"refetch_interval", c.cfg.RefetchInterval,
		"stale_after", c.cfg.StaleAfter,
	)
	go c.run(ctx, c.stopCh, c.done)
}

// Stop halts scheduling. An attempt already in flight completes, but pending
// backoff waits are abandoned and no further cycles start.
func (c *SentimentController) Stop() {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	if !c.running {
		return
	}
	close(c.stopCh)
	c.running = false
}

// Done is closed once the polling goroutine of the latest Start has exited.
func (c *SentimentController) Done() <-chan struct{} {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	return c.done
}

// Refresh requests an immediate cycle. It is rejected while a cycle is active.
func (c *SentimentController) Refresh() error {
	c.lifeMu.Lock()
	running := c.running
	c.lifeMu.Unlock()
	if !running {
		return ErrNotRunning
	}
	if c.inFlight.Load() {
		return ErrCycleInFlight
	}
	select {
	case c.refresh <- struct{}{}:
		return nil
	default:
		return ErrRefreshPending
	}
}

func (c *SentimentController) run(ctx context.Context, stopCh chan struct{}, done chan struct{}) {
	defer func() {
		c.lifeMu.Lock()
		if c.stopCh == stopCh {
			c.running = false
		}
		c.lifeMu.Unlock()
		close(done)
		log.Info("Sentiment controller stopped")
	}()

	first := true
	for {
		wait := c.untilNextCycle(first)
		first = false

		if wait > 0 {
			timer := c.clock.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-stopCh:
				timer.Stop()
				return
			case <-c.refresh:
			case <-timer.Chan():
			}
			timer.Stop()
		}

		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		default:
		}

		c.runCycle(ctx, stopCh)
	}
}

// untilNextCycle is zero on start-up when nothing was ever fetched; otherwise the
// next cycle is due RefetchInterval after the previous one began.
func (c *SentimentController) untilNextCycle(starting bool) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastCycleAt.IsZero() || (starting && c.lastSuccess.IsZero()) {
		return 0
	}
	return c.lastCycleAt.Add(c.cfg.RefetchInterval).Sub(c.clock.Now())
}

func (c *SentimentController) runCycle(ctx context.Context, stopCh <-chan struct{}) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer c.inFlight.Store(false)

	// a refresh queued before this cycle is satisfied by it
	select {
	case <-c.refresh:
	default:
	}

	ctx, span := c.tracer.Start(ctx, "sentiment-controller.cycle")
	defer span.End()

	c.beginCycle()

	var lastErr error
	attempts := 0
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.cfg.Backoff(attempt - 1)
			metrics.BackoffWaitSeconds.Observe(delay.Seconds())
			log.Debug("Sentiment fetch backing off", "attempt", attempt+1, "delay", delay)
			if !c.sleep(ctx, stopCh, delay) {
				log.Info("Sentiment cycle abandoned during backoff", "attempts", attempts)
				break
			}
		}

		attempts++
		report, err := c.fetcher.FetchReport(ctx)
		if err == nil {
			records := c.extractor.Extract(report, c.cfg.Instruments)
			c.commitSuccess(ctx, records)
			span.SetAttributes(attribute.Int("cycle.attempts", attempts), attribute.String("cycle.result", "fresh"))
			return
		}

		lastErr = err
		kind := domain.ClassifyFailure(err)
		span.RecordError(err)
		log.Warn("Sentiment fetch attempt failed", "attempt", attempts, "kind", kind, "err", err)

		if kind == domain.FailureRateLimited {
			c.commitFailure(ctx, kind)
			c.notify(ctx, domain.RateLimitAlert(c.clock.Now()))
			span.SetAttributes(attribute.Int("cycle.attempts", attempts))
			span.SetStatus(codes.Error, string(kind))
			return
		}
		if !kind.Retryable() {
			break
		}
	}

	kind := domain.ClassifyFailure(lastErr)
	c.commitFailure(ctx, kind)
	span.SetAttributes(attribute.Int("cycle.attempts", attempts))
	span.SetStatus(codes.Error, string(kind))
}

func (c *SentimentController) sleep(ctx context.Context, stopCh <-chan struct{}, d time.Duration) bool {
	timer := c.clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.Chan():
		return true
	case <-ctx.Done():
		return false
	case <-stopCh:
		return false
	}
}

func (c *SentimentController) beginCycle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastCycleAt = c.clock.Now()
	c.entry.Status = domain.StatusLoading
	c.entry.LastError = ""
}

func (c *SentimentController) commitSuccess(ctx context.Context, records []domain.SentimentRecord) {
	now := c.clock.Now()

	c.mu.Lock()
	c.entry = domain.CacheEntry{
		Records:   records,
		FetchedAt: now,
		Status:    domain.StatusFresh,
	}
	c.lastSuccess = now
	snapshot := c.entry.Clone()
	c.mu.Unlock()

	metrics.CyclesTotal.WithLabelValues(string(domain.StatusFresh)).Inc()
	metrics.LastSuccessTimestamp.Set(float64(now.Unix()))
	log.Info("Sentiment refreshed", "records", len(records))
	c.publish(ctx, snapshot)
}

// commitFailure keeps the last-known-good records and only changes status and error.
func (c *SentimentController) commitFailure(ctx context.Context, kind domain.FailureKind) {
	c.mu.Lock()
	c.entry.Status = domain.StatusFailed
	c.entry.LastError = kind
	snapshot := c.entry.Clone()
	c.mu.Unlock()

	metrics.CyclesTotal.WithLabelValues(string(kind)).Inc()
	log.Error("Sentiment cycle failed", "kind", kind, "records_kept", len(snapshot.Records))
	c.publish(ctx, snapshot)
}

func (c *SentimentController) notify(ctx context.Context, event domain.AlertEvent) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(ctx, event); err != nil {
		metrics.AlertsTotal.WithLabelValues(string(event.Kind), "error").Inc()
		log.Warn("failed to deliver alert", "kind", event.Kind, "err", err)
		return
	}
	metrics.AlertsTotal.WithLabelValues(string(event.Kind), "sent").Inc()
}

func (c *SentimentController) publish(ctx context.Context, entry domain.CacheEntry) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, entry); err != nil {
		log.Warn("failed to publish sentiment snapshot", "err", err)
	}
}
