package check

import (
	"sort"
	"sync"

	"github.com/uberswe/domaingen/pkg/domain"
)

// Status maps each candidate to its per-suffix results. The scheduler is the
// only writer; readers get copies.
type Status struct {
	mu      sync.RWMutex
	results map[string]map[string]domain.CheckResult
}

// NewStatus returns an empty status map
func NewStatus() *Status {
	return &Status{results: make(map[string]map[string]domain.CheckResult)}
}

// Merge records the result of one suffix for a candidate
func (s *Status) Merge(candidate, suffix string, r domain.CheckResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.results[candidate]
	if !ok {
		m = make(map[string]domain.CheckResult)
		s.results[candidate] = m
	}
	m[suffix] = r
}

// Get returns a copy of the results recorded for candidate
func (s *Status) Get(candidate string) (map[string]domain.CheckResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.results[candidate]
	if !ok {
		return nil, false
	}
	out := make(map[string]domain.CheckResult, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, true
}

// Snapshot copies the whole map
func (s *Status) Snapshot() map[string]map[string]domain.CheckResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]map[string]domain.CheckResult, len(s.results))
	for c, m := range s.results {
		cp := make(map[string]domain.CheckResult, len(m))
		for k, v := range m {
			cp[k] = v
		}
		out[c] = cp
	}
	return out
}

// Available lists "candidate+suffix" names that were reported available, sorted
func (s *Status) Available() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for c, m := range s.results {
		for suffix, r := range m {
			if !r.Failed() && r.Available {
				out = append(out, c+suffix)
			}
		}
	}
	sort.Strings(out)
	return out
}

func (s *Status) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Clear forgets every result
func (s *Status) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = make(map[string]map[string]domain.CheckResult)
}

// Visible is the display predicate: a candidate is hidden only when every
// recorded suffix was checked without error and all of them are taken.
// Unchecked candidates are visible.
func (s *Status) Visible(candidate string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.results[candidate]
	if !ok {
		return true
	}
	for _, r := range m {
		if r.Failed() || r.Available {
			return true
		}
	}
	return false
}
