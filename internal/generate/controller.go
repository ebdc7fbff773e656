package generate

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uberswe/domaingen/pkg/domain"
)

// DefaultSliceBudget is how long the worker produces before reporting progress
// and looking at its control state again
const DefaultSliceBudget = 100 * time.Millisecond

// Observer receives generation events. Nil callbacks are skipped. Callbacks
// run on the worker goroutine; they may call Pause, Resume and Stop but must
// not call Start.
type Observer struct {
	OnCandidate func(candidate string)
	OnProgress  func(p domain.GenerationProgress)
	OnComplete  func()
}

// Option configures a Controller
type Option func(*Controller)

// WithSliceBudget sets the wall-clock budget of one production slice
func WithSliceBudget(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.sliceBudget = d
		}
	}
}

// WithObserver sets the callbacks used for the following runs
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// Controller runs a Sequence on a background goroutine and owns its state.
// Every run gets an id so a worker that outlived its run never touches the
// state of the next one.
type Controller struct {
	mu   sync.Mutex
	cond *sync.Cond

	sliceBudget time.Duration
	observer    Observer

	run        uint64
	phase      domain.Phase
	length     int
	cursor     domain.Cursor
	produced   int
	candidates []string
	done       chan struct{}
}

// NewController returns an idle controller
func NewController(opts ...Option) *Controller {
	c := &Controller{
		sliceBudget: DefaultSliceBudget,
		phase:       domain.PhaseIdle,
	}
	c.cond = sync.NewCond(&c.mu)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetObserver replaces the callbacks. It takes effect on the next Start.
func (c *Controller) SetObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = o
}

// Start validates cfg and begins generating in the background. A paused run
// is discarded and replaced. Cancelling ctx stops the run.
func (c *Controller) Start(ctx context.Context, cfg domain.GenerationConfig) error {
	seq, err := NewSequence(cfg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.phase == domain.PhaseRunning {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	if c.phase == domain.PhasePaused {
		old := c.done
		c.stopLocked()
		c.mu.Unlock()
		<-old
		c.mu.Lock()
		if c.phase == domain.PhaseRunning {
			c.mu.Unlock()
			return ErrAlreadyRunning
		}
	}
	defer c.mu.Unlock()

	c.run++
	c.phase = domain.PhaseRunning
	c.length = seq.Length()
	c.cursor = seq.Position()
	c.produced = 0
	c.candidates = nil
	c.done = make(chan struct{})

	log.Info().
		Int("min_length", cfg.MinLength).
		Int("max_length", cfg.MaxLength).
		Str("alphabet", cfg.BuildAlphabet()).
		Strs("constraints", cfg.WordConstraints).
		Msg("Starting generation")

	go c.work(seq, c.run, c.observer, c.done)
	go c.watch(ctx, c.run, c.done)
	return nil
}

// watch stops the run when ctx ends before the worker does
func (c *Controller) watch(ctx context.Context, run uint64, done <-chan struct{}) {
	select {
	case <-ctx.Done():
		c.mu.Lock()
		if c.run == run {
			c.stopLocked()
		}
		c.mu.Unlock()
	case <-done:
	}
}

// Pause suspends production after the current candidate. The cursor is kept.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != domain.PhaseRunning || !canTransition(c.phase, domain.PhasePaused) {
		return &TransitionError{From: c.phase, To: domain.PhasePaused}
	}
	c.phase = domain.PhasePaused
	log.Debug().Int("produced", c.produced).Msg("Generation paused")
	return nil
}

// Resume continues a paused run from its saved cursor
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != domain.PhasePaused {
		return &TransitionError{From: c.phase, To: domain.PhaseRunning}
	}
	c.phase = domain.PhaseRunning
	c.cond.Broadcast()
	log.Debug().Int("produced", c.produced).Msg("Generation resumed")
	return nil
}

// Stop ends the run from any phase and discards the cursor.
// Candidates produced so far are kept.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Controller) stopLocked() {
	if c.phase == domain.PhaseRunning || c.phase == domain.PhasePaused {
		log.Info().Int("produced", c.produced).Msg("Generation stopped")
	}
	c.phase = domain.PhaseStopped
	c.cursor = domain.Cursor{}
	c.cond.Broadcast()
}

// Clear stops any run and forgets every produced candidate
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.run++
	c.phase = domain.PhaseIdle
	c.length = 0
	c.produced = 0
	c.candidates = nil
}

// Candidates returns a snapshot of the accepted candidates in production order
func (c *Controller) Candidates() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.candidates...)
}

// State returns a snapshot of the run state
func (c *Controller) State() domain.GenerationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.GenerationState{
		Phase:         c.phase,
		CurrentLength: c.length,
		Cursor:        c.cursor.Clone(),
		Produced:      c.produced,
	}
}

// Done is closed when the worker of the latest run exits
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return c.done
}

// Wait blocks until the latest run's worker exits or ctx ends
func (c *Controller) Wait(ctx context.Context) error {
	select {
	case <-c.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) work(seq *Sequence, run uint64, obs Observer, done chan struct{}) {
	defer close(done)

	for {
		c.mu.Lock()
		for c.run == run && c.phase == domain.PhasePaused {
			c.cond.Wait()
		}
		if c.run != run || c.phase != domain.PhaseRunning {
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		finished := c.slice(seq, run, obs)

		c.mu.Lock()
		if c.run != run {
			c.mu.Unlock()
			return
		}
		if c.phase != domain.PhaseStopped {
			c.cursor = seq.Position()
			c.length = seq.Length()
		}
		progress := domain.GenerationProgress{Produced: c.produced, CurrentLength: c.length}
		completed := false
		if finished && c.phase == domain.PhaseRunning && canTransition(c.phase, domain.PhaseCompleted) {
			c.phase = domain.PhaseCompleted
			completed = true
		}
		phase := c.phase
		c.mu.Unlock()

		if obs.OnProgress != nil {
			obs.OnProgress(progress)
		}

		if completed {
			log.Info().Int("produced", progress.Produced).Msg("Generation complete")
			if obs.OnComplete != nil {
				obs.OnComplete()
			}
			return
		}
		// a run paused right after its last candidate completes on resume
		if finished && phase != domain.PhasePaused {
			return
		}
	}
}

// slice produces candidates until the budget expires, the run leaves the
// running phase, or the sequence is exhausted. It returns true in the last case.
func (c *Controller) slice(seq *Sequence, run uint64, obs Observer) bool {
	start := time.Now()
	for time.Since(start) < c.sliceBudget {
		c.mu.Lock()
		if c.run != run || c.phase != domain.PhaseRunning {
			c.mu.Unlock()
			return false
		}
		candidate, accepted, more := seq.Step()
		if !more {
			c.mu.Unlock()
			return true
		}
		if accepted {
			c.candidates = append(c.candidates, candidate)
			c.produced++
		}
		c.mu.Unlock()

		if accepted && obs.OnCandidate != nil {
			obs.OnCandidate(candidate)
		}
	}
	return seq.Done()
}
