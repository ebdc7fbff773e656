package check

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/uberswe/domaingen/pkg/domain"
	"github.com/uberswe/domaingen/pkg/lookup"
)

const (
	DefaultBatchSize   = 50
	DefaultBatchDelay  = 200 * time.Millisecond
	DefaultSuffixDelay = 50 * time.Millisecond
	DefaultCooldown    = 5 * time.Second
)

// Options controls batching and pacing of one CheckAll run
type Options struct {
	BatchSize   int
	BatchDelay  time.Duration
	SuffixDelay time.Duration
}

// DefaultOptions returns batches of 50, 200ms between batches and 50ms
// between the suffixes of a candidate
func DefaultOptions() Options {
	return Options{
		BatchSize:   DefaultBatchSize,
		BatchDelay:  DefaultBatchDelay,
		SuffixDelay: DefaultSuffixDelay,
	}
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.BatchDelay < 0 {
		o.BatchDelay = 0
	}
	if o.SuffixDelay < 0 {
		o.SuffixDelay = 0
	}
	return o
}

// Observer receives check events. Nil callbacks are skipped. Callbacks are
// serialized, so they never run concurrently with each other.
type Observer struct {
	OnCheck    func(candidate, suffix string, result domain.CheckResult)
	OnProgress func(p domain.CheckProgress)
	OnComplete func()
	OnError    func(err error, candidate string)
}

// Report summarizes a finished run
type Report struct {
	RunID     string
	Total     int
	Checked   int
	Available int
	Failed    int
	CacheHits int
	Duration  time.Duration
}

// SchedulerOption configures a Scheduler
type SchedulerOption func(*Scheduler)

// WithCache replaces the default in-memory cache
func WithCache(c Cache) SchedulerOption {
	return func(s *Scheduler) { s.cache = c }
}

// WithLimiter replaces the default 60 per minute window
func WithLimiter(w *Window) SchedulerOption {
	return func(s *Scheduler) { s.limiter = w }
}

// WithStatus sets the status map results are written to
func WithStatus(st *Status) SchedulerOption {
	return func(s *Scheduler) { s.status = st }
}

// WithCooldown sets the wait after a rate-limited lookup
func WithCooldown(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.cooldown = d }
}

// Scheduler checks candidates against suffixes in sequential batches.
// It exclusively owns its cache, limiter and status map.
type Scheduler struct {
	lookup   lookup.Lookup
	cache    Cache
	limiter  *Window
	status   *Status
	cooldown time.Duration

	// flight collapses concurrent misses on the same cache key
	flight singleflight.Group
}

// NewScheduler returns a scheduler using l for cache misses
func NewScheduler(l lookup.Lookup, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		lookup:   l,
		cache:    NewMemoryCache(),
		limiter:  NewWindow(DefaultMaxRequests, DefaultWindow),
		status:   NewStatus(),
		cooldown: DefaultCooldown,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status returns the status map the scheduler writes to
func (s *Scheduler) Status() *Status {
	return s.status
}

// CheckAll checks every candidate against every suffix. Batches run one after
// the other; inside a batch all candidates are checked concurrently. A batch
// that has started always runs to completion. Once ctx is done no further
// batch is started and ctx's error is returned with the partial report.
func (s *Scheduler) CheckAll(ctx context.Context, candidates, suffixes []string, opts Options, obs Observer) (Report, error) {
	opts = opts.withDefaults()
	started := time.Now()

	t := &tracker{
		obs:    obs,
		report: Report{RunID: uuid.NewString(), Total: len(candidates) * len(suffixes)},
	}
	logger := log.With().Str("run_id", t.report.RunID).Logger()

	logger.Info().
		Int("candidates", len(candidates)).
		Strs("suffixes", suffixes).
		Int("batch_size", opts.BatchSize).
		Dur("batch_delay", opts.BatchDelay).
		Dur("suffix_delay", opts.SuffixDelay).
		Msg("Starting availability check")

	// work inside a batch is not cancelled with ctx
	work := context.WithoutCancel(ctx)

	for i, batchNo := 0, 1; i < len(candidates); i, batchNo = i+opts.BatchSize, batchNo+1 {
		if i > 0 {
			if err := sleep(ctx, opts.BatchDelay); err != nil {
				return s.finish(t, started, logger, err)
			}
		}
		if err := ctx.Err(); err != nil {
			return s.finish(t, started, logger, err)
		}

		batch := candidates[i:min(i+opts.BatchSize, len(candidates))]
		logger.Debug().Int("batch", batchNo).Int("size", len(batch)).Msg("Checking batch")

		var g errgroup.Group
		for _, candidate := range batch {
			g.Go(func() error {
				s.checkCandidate(work, candidate, suffixes, opts.SuffixDelay, t, logger)
				return nil
			})
		}
		_ = g.Wait()
	}

	report, err := s.finish(t, started, logger, nil)
	if obs.OnComplete != nil {
		obs.OnComplete()
	}
	return report, err
}

func (s *Scheduler) finish(t *tracker, started time.Time, logger zerolog.Logger, err error) (Report, error) {
	t.mu.Lock()
	t.report.Duration = time.Since(started)
	report := t.report
	t.mu.Unlock()

	ev := logger.Info()
	if err != nil {
		ev = logger.Warn().Err(err)
	}
	ev.Int("checked", report.Checked).
		Int("total", report.Total).
		Int("available", report.Available).
		Int("failed", report.Failed).
		Int("cache_hits", report.CacheHits).
		Dur("duration", report.Duration).
		Msg("Availability check finished")
	return report, err
}

// checkCandidate checks each suffix, starting suffix i after i*delay
func (s *Scheduler) checkCandidate(ctx context.Context, candidate string, suffixes []string, delay time.Duration, t *tracker, logger zerolog.Logger) {
	var g errgroup.Group
	for i, suffix := range suffixes {
		g.Go(func() error {
			_ = sleep(ctx, time.Duration(i)*delay)
			result, hit, err := s.checkOne(ctx, candidate, suffix, logger)
			s.status.Merge(candidate, suffix, result)
			t.record(candidate, suffix, result, hit, err)
			return nil
		})
	}
	_ = g.Wait()
}

// checkOne resolves one pair from the cache or the lookup. Concurrent checks
// of the same pair share a single lookup.
func (s *Scheduler) checkOne(ctx context.Context, candidate, suffix string, logger zerolog.Logger) (domain.CheckResult, bool, error) {
	key := CacheKey(candidate, suffix)
	fqdn := candidate + suffix

	if cached, ok := s.cached(ctx, key, fqdn, logger); ok {
		return cached, true, nil
	}

	// only the caller that runs the lookup sets led; the others reuse its result
	led := false
	v, err, _ := s.flight.Do(key, func() (any, error) {
		led = true
		// a lookup for this key may have finished between the read above and here
		if cached, ok := s.cached(ctx, key, fqdn, logger); ok {
			return flightResult{result: cached, hit: true}, nil
		}
		result, err := s.resolve(ctx, key, fqdn, logger)
		return flightResult{result: result}, err
	})
	if err != nil {
		return failed(err), false, err
	}
	r := v.(flightResult)
	return r.result, r.hit || !led, nil
}

type flightResult struct {
	result domain.CheckResult
	hit    bool
}

func (s *Scheduler) cached(ctx context.Context, key, fqdn string, logger zerolog.Logger) (domain.CheckResult, bool) {
	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn().Err(err).Str("domain", fqdn).Msg("Cache read failed, looking up instead")
		return domain.CheckResult{}, false
	}
	return cached, ok
}

// resolve calls the lookup. Rate-limited lookups are retried after the
// cooldown until they succeed or fail otherwise.
func (s *Scheduler) resolve(ctx context.Context, key, fqdn string, logger zerolog.Logger) (domain.CheckResult, error) {
	for attempt := 1; ; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return domain.CheckResult{}, err
		}

		verdict, err := s.lookup.Lookup(ctx, fqdn)
		if err == nil {
			result := domain.ResultFromVerdict(verdict, time.Now())
			if err := s.cache.Put(ctx, key, result); err != nil {
				logger.Warn().Err(err).Str("domain", fqdn).Msg("Cache write failed")
			}
			logger.Debug().
				Str("domain", fqdn).
				Bool("available", result.Available).
				Str("status", result.Status).
				Msg("Lookup complete")
			return result, nil
		}

		if errors.Is(err, domain.ErrRateLimited) {
			logger.Warn().
				Str("domain", fqdn).
				Int("attempt", attempt).
				Dur("cooldown", s.cooldown).
				Msg("Lookup rate limited, retrying after cooldown")
			if err := sleep(ctx, s.cooldown); err != nil {
				return domain.CheckResult{}, err
			}
			continue
		}

		logger.Error().Err(err).Str("domain", fqdn).Msg("Lookup failed")
		return domain.CheckResult{}, err
	}
}

func failed(err error) domain.CheckResult {
	return domain.CheckResult{Error: err.Error(), CheckedAt: time.Now()}
}

// tracker counts progress and serializes observer callbacks
type tracker struct {
	mu     sync.Mutex
	obs    Observer
	report Report
}

func (t *tracker) record(candidate, suffix string, result domain.CheckResult, cacheHit bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.report.Checked++
	switch {
	case result.Failed():
		t.report.Failed++
	case result.Available:
		t.report.Available++
	}
	if cacheHit {
		t.report.CacheHits++
	}

	if err != nil && t.obs.OnError != nil {
		t.obs.OnError(err, candidate)
	}
	if t.obs.OnCheck != nil {
		t.obs.OnCheck(candidate, suffix, result)
	}
	if t.obs.OnProgress != nil {
		t.obs.OnProgress(domain.CheckProgress{
			Checked: t.report.Checked,
			Total:   t.report.Total,
			Current: candidate,
		})
	}
}
