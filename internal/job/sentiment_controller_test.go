package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fx-sentiment/internal/domain"
	"fx-sentiment/internal/sentiment"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/trace"
)

const goodReport = "EURUSD bullish=70 bearish=30 ECB on hold\nGBPUSD bullish=40 bearish=60 soft retail\nUSDJPY firm\nAUDUSD bullish=55 bearish=45 china data"

var (
	errTransient   = &domain.FetchError{Kind: domain.FailureTransient, StatusCode: 503, Err: errors.New("unavailable")}
	errRateLimited = &domain.FetchError{Kind: domain.FailureRateLimited, StatusCode: 429, Err: errors.New("slow down")}
	errFatal       = &domain.FetchError{Kind: domain.FailureFatal, Err: domain.ErrMissingCredentials}
)

func testConfig() ControllerConfig {
	return ControllerConfig{
		Instruments:     []string{"EURUSD", "GBPUSD", "USDJPY", "AUDUSD"},
		RefetchInterval: 300000 * time.Millisecond,
		StaleAfter:      240000 * time.Millisecond,
		MaxRetries:      3,
		BaseBackoff:     1000 * time.Millisecond,
		MaxBackoff:      30000 * time.Millisecond,
	}
}

func newTestController(clock clockwork.Clock, fetcher ReportFetcher, notifier AlertNotifier, publisher SnapshotPublisher) *SentimentController {
	return NewSentimentController(
		trace.NewNoopTracerProvider().Tracer("test"),
		clock, fetcher, sentiment.NewExtractor(), notifier, publisher, testConfig(),
	)
}

func TestBackoffSchedule(t *testing.T) {
	cfg := testConfig()
	cases := map[int]time.Duration{
		0:   time.Second,
		1:   2 * time.Second,
		2:   4 * time.Second,
		4:   16 * time.Second,
		5:   30 * time.Second,
		100: 30 * time.Second,
	}
	for idx, want := range cases {
		if got := cfg.Backoff(idx); got != want {
			t.Fatalf("Backoff(%d): expected %v, got %v", idx, want, got)
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := ControllerConfig{}.withDefaults()
	if cfg.RefetchInterval != 5*time.Minute || cfg.StaleAfter != 4*time.Minute {
		t.Fatalf("unexpected interval defaults: %+v", cfg)
	}
	if cfg.MaxRetries != 3 || cfg.BaseBackoff != time.Second || cfg.MaxBackoff != 30*time.Second {
		t.Fatalf("unexpected retry defaults: %+v", cfg)
	}
	if len(cfg.Instruments) != len(domain.DefaultInstruments) {
		t.Fatalf("unexpected instruments: %v", cfg.Instruments)
	}
}

func TestConfigMaxBackoffBelowBaseIsClamped(t *testing.T) {
	cfg := ControllerConfig{BaseBackoff: 2 * time.Second, MaxBackoff: 500 * time.Millisecond}.withDefaults()
	if cfg.MaxBackoff != 2*time.Second {
		t.Fatalf("expected max backoff clamped to base, got %v", cfg.MaxBackoff)
	}

	cfg = ControllerConfig{BaseBackoff: 2 * time.Second}.withDefaults()
	if cfg.MaxBackoff != 30*time.Second {
		t.Fatalf("expected default max backoff, got %v", cfg.MaxBackoff)
	}
}

func TestControllerInitialEntryIsIdle(t *testing.T) {
	c := newTestController(clockwork.NewFakeClock(), &scriptedFetcher{}, nil, nil)
	entry := c.Current()
	if entry.Status != domain.StatusIdle || len(entry.Records) != 0 || entry.LastError != "" {
		t.Fatalf("unexpected initial entry: %+v", entry)
	}
}

func TestControllerSuccessCommitsFresh(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &scriptedFetcher{results: []fetchResult{{report: goodReport}}}
	publisher := &recordingPublisher{}
	c := newTestController(clock, fetcher, nil, publisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)
	defer c.Stop()

	eventually(t, func() bool { return c.Current().Status == domain.StatusFresh })

	entry := c.Current()
	if !entry.FetchedAt.Equal(clock.Now()) {
		t.Fatalf("expected fetchedAt %v, got %v", clock.Now(), entry.FetchedAt)
	}
	assertInstrumentOrder(t, entry, testConfig().Instruments)
	if entry.Records[0].Commentary != " bullish=70 bearish=30 ECB on hold" || !entry.Records[0].ScoresParsed {
		t.Fatalf("unexpected EURUSD record: %+v", entry.Records[0])
	}
	if entry.Records[2].ScoresParsed {
		t.Fatalf("USDJPY carries no scores and should use placeholders: %+v", entry.Records[2])
	}
	eventually(t, func() bool { return publisher.count() == 1 })
	if got := publisher.last().Status; got != domain.StatusFresh {
		t.Fatalf("expected published fresh snapshot, got %s", got)
	}
}

func TestControllerRateLimitedNotifiesOnceAndKeepsRecords(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &scriptedFetcher{results: []fetchResult{{report: goodReport}, {err: errRateLimited}}}
	notifier := &recordingNotifier{}
	c := newTestController(clock, fetcher, notifier, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.Start(ctx)
	defer c.Stop()

	eventually(t, func() bool { return c.Current().Status == domain.StatusFresh })
	before := c.Current()

	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("controller never scheduled the next cycle: %v", err)
	}
	clock.Advance(testConfig().RefetchInterval)

	eventually(t, func() bool { return c.Current().Status == domain.StatusFailed })
	after := c.Current()
	if after.LastError != domain.FailureRateLimited {
		t.Fatalf("expected rate_limited, got %s", after.LastError)
	}
	assertSameRecords(t, before, after)
	if !after.FetchedAt.Equal(before.FetchedAt) {
		t.Fatal("fetchedAt must keep pointing at the last good fetch")
	}

	// no retry inside the cycle: the only pending timer is the next scheduled cycle
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("controller never scheduled the next cycle: %v", err)
	}
	if got := fetcher.callCount(); got != 2 {
		t.Fatalf("expected 2 fetches, got %d", got)
	}
	if got := notifier.count(); got != 1 {
		t.Fatalf("expected exactly one notification, got %d", got)
	}
	if ev := notifier.last(); ev.Kind != domain.FailureRateLimited || ev.Message == "" {
		t.Fatalf("unexpected alert: %+v", ev)
	}
}

func TestControllerRetriesTransientWithBackoff(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &scriptedFetcher{results: []fetchResult{{err: errTransient}, {err: errTransient}, {report: goodReport}}}
	c := newTestController(clock, fetcher, &recordingNotifier{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.Start(ctx)
	defer c.Stop()

	// first backoff: 1000ms
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("no backoff timer: %v", err)
	}
	if got := fetcher.callCount(); got != 1 {
		t.Fatalf("expected 1 attempt before backoff, got %d", got)
	}
	if got := c.Current().Status; got != domain.StatusLoading {
		t.Fatalf("expected loading during backoff, got %s", got)
	}
	clock.Advance(999 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	if got := fetcher.callCount(); got != 1 {
		t.Fatalf("retried before backoff elapsed: %d attempts", got)
	}
	clock.Advance(time.Millisecond)
	eventually(t, func() bool { return fetcher.callCount() == 2 })

	// second backoff: 2000ms
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("no second backoff timer: %v", err)
	}
	clock.Advance(1999 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	if got := fetcher.callCount(); got != 2 {
		t.Fatalf("retried before second backoff elapsed: %d attempts", got)
	}
	clock.Advance(time.Millisecond)

	eventually(t, func() bool { return c.Current().Status == domain.StatusFresh })
	if got := fetcher.callCount(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	assertInstrumentOrder(t, c.Current(), testConfig().Instruments)
}

func TestControllerExhaustedRetriesKeepLastKnownGood(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &scriptedFetcher{results: []fetchResult{
		{report: goodReport},
		{err: errTransient}, {err: errTransient}, {err: errTransient},
	}}
	c := newTestController(clock, fetcher, &recordingNotifier{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.Start(ctx)
	defer c.Stop()

	eventually(t, func() bool { return c.Current().Status == domain.StatusFresh })
	before := c.Current()

	advanceNext(ctx, t, clock, testConfig().RefetchInterval)
	advanceNext(ctx, t, clock, time.Second)
	advanceNext(ctx, t, clock, 2*time.Second)

	eventually(t, func() bool { return c.Current().Status == domain.StatusFailed })
	after := c.Current()
	if after.LastError != domain.FailureTransient {
		t.Fatalf("expected transient, got %s", after.LastError)
	}
	if got := fetcher.callCount(); got != 4 {
		t.Fatalf("expected 1 + 3 attempts, got %d", got)
	}
	assertSameRecords(t, before, after)
}

func TestControllerExhaustedRetriesWithoutPriorSuccess(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &scriptedFetcher{results: []fetchResult{{err: errTransient}}}
	c := newTestController(clock, fetcher, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.Start(ctx)
	defer c.Stop()

	advanceNext(ctx, t, clock, time.Second)
	advanceNext(ctx, t, clock, 2*time.Second)

	eventually(t, func() bool { return c.Current().Status == domain.StatusFailed })
	entry := c.Current()
	if entry.LastError != domain.FailureTransient || len(entry.Records) != 0 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if got := fetcher.callCount(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}

	// the failed first cycle must not be retried early
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("next cycle not scheduled: %v", err)
	}
	// 3s of backoff already elapsed since the cycle began
	clock.Advance(testConfig().RefetchInterval - 4*time.Second)
	time.Sleep(20 * time.Millisecond)
	if got := fetcher.callCount(); got != 3 {
		t.Fatalf("cycle started before refetch interval: %d attempts", got)
	}
	clock.Advance(time.Second)
	eventually(t, func() bool { return fetcher.callCount() == 4 })
}

func TestControllerFatalIsNotRetried(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &scriptedFetcher{results: []fetchResult{{err: errFatal}}}
	notifier := &recordingNotifier{}
	c := newTestController(clock, fetcher, notifier, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.Start(ctx)
	defer c.Stop()

	eventually(t, func() bool { return c.Current().Status == domain.StatusFailed })
	if got := c.Current().LastError; got != domain.FailureFatal {
		t.Fatalf("expected fatal, got %s", got)
	}
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("next cycle not scheduled: %v", err)
	}
	if got := fetcher.callCount(); got != 1 {
		t.Fatalf("fatal failures must not be retried, got %d attempts", got)
	}
	if notifier.count() != 0 {
		t.Fatal("only rate limiting should notify")
	}
}

func TestControllerMarksStaleAfterWindow(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &scriptedFetcher{results: []fetchResult{{report: goodReport}}}
	c := newTestController(clock, fetcher, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.Start(ctx)
	defer c.Stop()

	eventually(t, func() bool { return c.Current().Status == domain.StatusFresh })
	fresh := c.Current()

	clock.Advance(testConfig().StaleAfter)
	if got := c.Current().Status; got != domain.StatusFresh {
		t.Fatalf("expected fresh at exactly the stale window, got %s", got)
	}
	clock.Advance(time.Millisecond)
	stale := c.Current()
	if stale.Status != domain.StatusStale {
		t.Fatalf("expected stale, got %s", stale.Status)
	}
	assertSameRecords(t, fresh, stale)
	if got := fetcher.callCount(); got != 1 {
		t.Fatalf("staleness must not trigger a fetch, got %d", got)
	}
}

func TestControllerStopPreventsFurtherCycles(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &scriptedFetcher{results: []fetchResult{{report: goodReport}}}
	c := newTestController(clock, fetcher, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.Start(ctx)

	eventually(t, func() bool { return c.Current().Status == domain.StatusFresh })
	c.Stop()
	c.Stop()

	select {
	case <-c.Done():
	case <-ctx.Done():
		t.Fatal("controller did not stop")
	}

	clock.Advance(testConfig().RefetchInterval)
	time.Sleep(20 * time.Millisecond)
	if got := fetcher.callCount(); got != 1 {
		t.Fatalf("expected no fetch after stop, got %d", got)
	}
	if err := c.Refresh(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning after stop, got %v", err)
	}
}

func TestControllerStopAbandonsBackoff(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &scriptedFetcher{results: []fetchResult{{err: errTransient}}}
	c := newTestController(clock, fetcher, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.Start(ctx)

	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("no backoff timer: %v", err)
	}
	c.Stop()
	<-c.Done()

	entry := c.Current()
	if entry.Status != domain.StatusFailed || entry.LastError != domain.FailureTransient {
		t.Fatalf("unexpected entry after stop: %+v", entry)
	}
	if got := fetcher.callCount(); got != 1 {
		t.Fatalf("expected no attempts after stop, got %d", got)
	}
}

func TestControllerStartIsIdempotent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &scriptedFetcher{results: []fetchResult{{report: goodReport}}}
	c := newTestController(clock, fetcher, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.Start(ctx)
	c.Start(ctx)
	defer c.Stop()

	eventually(t, func() bool { return c.Current().Status == domain.StatusFresh })
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("next cycle not scheduled: %v", err)
	}
	if got := fetcher.callCount(); got != 1 {
		t.Fatalf("expected a single initial fetch, got %d", got)
	}
}

func TestControllerRestartWaitsForInterval(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &scriptedFetcher{results: []fetchResult{{report: goodReport}}}
	c := newTestController(clock, fetcher, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.Start(ctx)
	eventually(t, func() bool { return c.Current().Status == domain.StatusFresh })
	c.Stop()
	<-c.Done()

	c.Start(ctx)
	defer c.Stop()
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("restart did not schedule: %v", err)
	}
	if got := fetcher.callCount(); got != 1 {
		t.Fatalf("restart within the interval must not fetch, got %d", got)
	}
	clock.Advance(testConfig().RefetchInterval)
	eventually(t, func() bool { return fetcher.callCount() == 2 })
}

func TestControllerManualRefresh(t *testing.T) {
	clock := clockwork.NewFakeClock()
	gate := make(chan struct{})
	fetcher := &scriptedFetcher{results: []fetchResult{
		{report: goodReport},
		{report: "EURUSD refreshed", gate: gate},
	}}
	c := newTestController(clock, fetcher, nil, nil)

	if err := c.Refresh(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning before start, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.Start(ctx)
	defer c.Stop()

	eventually(t, func() bool { return c.Current().Status == domain.StatusFresh })
	before := c.Current()
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("next cycle not scheduled: %v", err)
	}

	if err := c.Refresh(); err != nil {
		t.Fatalf("unexpected refresh error: %v", err)
	}
	eventually(t, func() bool { return fetcher.callCount() == 2 })

	loading := c.Current()
	if loading.Status != domain.StatusLoading {
		t.Fatalf("expected loading while in flight, got %s", loading.Status)
	}
	assertSameRecords(t, before, loading)
	if err := c.Refresh(); !errors.Is(err, ErrCycleInFlight) {
		t.Fatalf("expected ErrCycleInFlight, got %v", err)
	}

	close(gate)
	eventually(t, func() bool {
		e := c.Current()
		return e.Status == domain.StatusFresh && e.Records[0].Commentary == " refreshed"
	})
	if got := fetcher.callCount(); got != 2 {
		t.Fatalf("rejected refresh must not run a cycle, got %d fetches", got)
	}
}

func TestControllerConcurrentReadsSeeWholeEntries(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &scriptedFetcher{results: []fetchResult{{report: goodReport}}}
	c := newTestController(clock, fetcher, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				e := c.Current()
				if n := len(e.Records); n != 0 && n != 4 {
					t.Errorf("torn read: %d records", n)
					return
				}
			}
		}()
	}

	c.Start(ctx)
	for i := 0; i < 3; i++ {
		advanceNext(ctx, t, clock, testConfig().RefetchInterval)
	}
	c.Stop()
	<-c.Done()
	close(stop)
	wg.Wait()
}

func TestControllerPublishesFailures(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &scriptedFetcher{results: []fetchResult{{err: errRateLimited}}}
	publisher := &recordingPublisher{err: errors.New("redis down")}
	notifier := &recordingNotifier{err: errors.New("telegram down")}
	c := newTestController(clock, fetcher, notifier, publisher)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.Start(ctx)
	defer c.Stop()

	eventually(t, func() bool { return c.Current().Status == domain.StatusFailed })
	eventually(t, func() bool { return publisher.count() == 1 })
	if got := publisher.last(); got.Status != domain.StatusFailed || got.LastError != domain.FailureRateLimited {
		t.Fatalf("unexpected published entry: %+v", got)
	}
	if notifier.count() != 1 {
		t.Fatalf("expected notifier to be called even if it fails, got %d", notifier.count())
	}
}

// --- helpers ---

func advanceNext(ctx context.Context, t *testing.T, clock *clockwork.FakeClock, d time.Duration) {
	t.Helper()
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("no pending timer: %v", err)
	}
	clock.Advance(d)
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

func assertInstrumentOrder(t *testing.T, entry domain.CacheEntry, instruments []string) {
	t.Helper()
	if len(entry.Records) != len(instruments) {
		t.Fatalf("expected %d records, got %d", len(instruments), len(entry.Records))
	}
	for i, inst := range instruments {
		if entry.Records[i].Instrument != inst {
			t.Fatalf("record %d: expected %s, got %s", i, inst, entry.Records[i].Instrument)
		}
	}
}

func assertSameRecords(t *testing.T, a, b domain.CacheEntry) {
	t.Helper()
	if len(a.Records) != len(b.Records) {
		t.Fatalf("record count changed: %d -> %d", len(a.Records), len(b.Records))
	}
	for i := range a.Records {
		if a.Records[i] != b.Records[i] {
			t.Fatalf("record %d changed: %+v -> %+v", i, a.Records[i], b.Records[i])
		}
	}
}

// --- stubs ---

type fetchResult struct {
	report string
	err    error
	gate   chan struct{}
}

// scriptedFetcher replays results in order and repeats the last one.
type scriptedFetcher struct {
	mu      sync.Mutex
	results []fetchResult
	calls   int
}

func (f *scriptedFetcher) FetchReport(ctx context.Context) (string, error) {
	f.mu.Lock()
	i := f.calls
	f.calls++
	var r fetchResult
	if len(f.results) > 0 {
		if i >= len(f.results) {
			i = len(f.results) - 1
		}
		r = f.results[i]
	}
	f.mu.Unlock()

	if r.gate != nil {
		<-r.gate
	}
	return r.report, r.err
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.AlertEvent
	err    error
}

func (n *recordingNotifier) Notify(ctx context.Context, event domain.AlertEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func (n *recordingNotifier) last() domain.AlertEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events[len(n.events)-1]
}

type recordingPublisher struct {
	mu      sync.Mutex
	entries []domain.CacheEntry
	err     error
}

func (p *recordingPublisher) Publish(ctx context.Context, entry domain.CacheEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, entry)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

func (p *recordingPublisher) last() domain.CacheEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entries[len(p.entries)-1]
}

func TestControllerSetNotifierBeforeStart(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &scriptedFetcher{results: []fetchResult{{err: errRateLimited}}}
	c := newTestController(clock, fetcher, nil, nil)
	notifier := &recordingNotifier{}
	c.SetNotifier(notifier)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.Start(ctx)
	defer c.Stop()

	eventually(t, func() bool { return notifier.count() == 1 })
}
