package generate

import (
	"fmt"

	"github.com/uberswe/domaingen/pkg/domain"
)

// Sequence enumerates every length from MinLength to MaxLength in turn and
// filters the output. Its whole state is the current length and cursor, so it
// can be suspended after any step and resumed later.
type Sequence struct {
	alphabet    string
	constraints []string
	maxLength   int
	minUseful   int

	length int
	enum   *Enumerator
	done   bool
}

// NewSequence validates cfg and positions the sequence at its first candidate
func NewSequence(cfg domain.GenerationConfig) (*Sequence, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Sequence{
		alphabet:    cfg.BuildAlphabet(),
		constraints: append([]string(nil), cfg.WordConstraints...),
		maxLength:   cfg.MaxLength,
		minUseful:   cfg.LongestConstraint(),
	}
	s.enterLength(cfg.MinLength)
	return s, nil
}

// ResumeSequence rebuilds a sequence at a position returned by Position
func ResumeSequence(cfg domain.GenerationConfig, pos domain.Cursor) (*Sequence, error) {
	s, err := NewSequence(cfg)
	if err != nil {
		return nil, err
	}
	if pos.Exhausted && s.done {
		return s, nil
	}
	if pos.Length < cfg.MinLength || pos.Length > cfg.MaxLength {
		return nil, fmt.Errorf("cursor length %d outside %d..%d", pos.Length, cfg.MinLength, cfg.MaxLength)
	}
	if pos.Exhausted {
		s.enterLength(pos.Length + 1)
		return s, nil
	}

	enum, err := ResumeEnumerator(s.alphabet, pos)
	if err != nil {
		return nil, err
	}
	s.length = pos.Length
	s.enum = enum
	return s, nil
}

// enterLength moves to the first length >= l that can hold every constraint
func (s *Sequence) enterLength(l int) {
	if len(s.constraints) > 0 && l < s.minUseful {
		l = s.minUseful
	}
	if l > s.maxLength {
		s.done = true
		s.enum = nil
		return
	}
	s.length = l
	s.enum = NewEnumerator(s.alphabet, l)
}

// Step advances the enumeration by exactly one string. accepted reports
// whether that string passed the filter; more is false once every length has
// been exhausted.
func (s *Sequence) Step() (candidate string, accepted bool, more bool) {
	for !s.done {
		c, ok := s.enum.Next()
		if !ok {
			s.enterLength(s.length + 1)
			continue
		}
		return c, IsValid(c, s.constraints), true
	}
	return "", false, false
}

// Next returns the next accepted candidate
func (s *Sequence) Next() (string, bool) {
	for {
		c, accepted, more := s.Step()
		if !more {
			return "", false
		}
		if accepted {
			return c, true
		}
	}
}

// Length is the length currently being enumerated
func (s *Sequence) Length() int {
	return s.length
}

// Done reports whether the sequence is exhausted
func (s *Sequence) Done() bool {
	return s.done
}

// Position returns the cursor of the next step
func (s *Sequence) Position() domain.Cursor {
	if s.done || s.enum == nil {
		return domain.Cursor{Length: s.length, Exhausted: true}
	}
	return s.enum.Cursor()
}
