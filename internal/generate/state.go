package generate

import (
	"errors"
	"fmt"

	"github.com/uberswe/domaingen/pkg/domain"
)

// ErrAlreadyRunning is returned by Start while a run is in progress
var ErrAlreadyRunning = errors.New("generation already running")

// TransitionError is returned when an operation is not legal in the current phase
type TransitionError struct {
	From domain.Phase
	To   domain.Phase
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move generation from %s to %s", e.From, e.To)
}

// IsTransitionError reports whether err is or wraps a *TransitionError
func IsTransitionError(err error) bool {
	var e *TransitionError
	return errors.As(err, &e)
}

// transitions lists the legal phase changes. Stopping is legal from anywhere
// and handled separately.
var transitions = map[domain.Phase][]domain.Phase{
	domain.PhaseIdle:      {domain.PhaseRunning},
	domain.PhaseRunning:   {domain.PhasePaused, domain.PhaseCompleted},
	domain.PhasePaused:    {domain.PhaseRunning},
	domain.PhaseCompleted: {domain.PhaseRunning},
	domain.PhaseStopped:   {domain.PhaseRunning},
}

func canTransition(from, to domain.Phase) bool {
	if to == domain.PhaseStopped {
		return true
	}
	for _, p := range transitions[from] {
		if p == to {
			return true
		}
	}
	return false
}
