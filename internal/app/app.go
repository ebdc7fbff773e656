// Package app builds the generator, checker and store from a Config
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/uberswe/domaingen/internal/check"
	"github.com/uberswe/domaingen/internal/generate"
	"github.com/uberswe/domaingen/pkg/domain"
	"github.com/uberswe/domaingen/pkg/lookup"
	"github.com/uberswe/domaingen/pkg/store"
)

// App holds the wired components of one process
type App struct {
	Config    domain.Config
	Generator *generate.Controller
	Scheduler *check.Scheduler
	Store     store.Store

	closers []func() error
}

// New validates cfg and connects every backend it selects
func New(ctx context.Context, cfg domain.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l, err := lookup.New(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:    cfg,
		Generator: generate.NewController(generate.WithSliceBudget(cfg.SliceBudget())),
	}

	cache, err := a.cache(ctx)
	if err != nil {
		return nil, err
	}

	a.Scheduler = check.NewScheduler(l,
		check.WithCache(cache),
		check.WithLimiter(check.NewWindow(cfg.MaxRequests, cfg.Window())),
		check.WithCooldown(cfg.Cooldown()),
	)

	st, err := store.Open(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	a.Store = st
	a.closers = append(a.closers, st.Close)

	log.Info().
		Str("backend", cfg.Backend).
		Str("cache", cfg.Cache).
		Str("store", cfg.Store).
		Strs("suffixes", cfg.Suffixes).
		Msg("Application ready")
	return a, nil
}

func (a *App) cache(ctx context.Context) (check.Cache, error) {
	switch a.Config.Cache {
	case "", "memory":
		return check.NewMemoryCache(), nil
	case "redis":
		rdb, err := store.ConnectRedis(ctx, a.Config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)
		return check.NewRedisCache(rdb,
			check.WithCachePrefix(a.Config.RedisPrefix),
			check.WithCacheTTL(a.Config.CacheTTL()),
		), nil
	default:
		return nil, &domain.ConfigError{Field: "cache", Reason: fmt.Sprintf("unknown cache %q", a.Config.Cache)}
	}
}

// CheckOptions returns the batching and pacing from the config
func (a *App) CheckOptions() check.Options {
	return check.Options{
		BatchSize:   a.Config.BatchSize,
		BatchDelay:  a.Config.BatchDelay(),
		SuffixDelay: a.Config.SuffixDelay(),
	}
}

// Generate runs the generator to completion and returns its candidates.
// Cancelling ctx stops the run and returns what was produced with ctx's error.
func (a *App) Generate(ctx context.Context, cfg domain.GenerationConfig) ([]string, error) {
	a.Generator.SetObserver(generate.Observer{
		OnProgress: func(p domain.GenerationProgress) {
			log.Debug().
				Int("produced", p.Produced).
				Int("length", p.CurrentLength).
				Msg("Generation progress")
		},
	})
	if err := a.Generator.Start(ctx, cfg); err != nil {
		return nil, err
	}
	<-a.Generator.Done()

	candidates := a.Generator.Candidates()
	state := a.Generator.State()
	log.Info().
		Int("candidates", len(candidates)).
		Str("phase", string(state.Phase)).
		Msg("Generation finished")

	if state.Phase != domain.PhaseCompleted {
		if err := ctx.Err(); err != nil {
			return candidates, err
		}
	}
	return candidates, nil
}

// OnClose registers f to run on Close, before the backends registered earlier
func (a *App) OnClose(f func() error) {
	a.closers = append(a.closers, f)
}

// Close releases every backend connection. Calling it again does nothing.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
