package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/uberswe/domaingen/pkg/domain"
)

// Memory keeps everything in process memory
type Memory struct {
	mu         sync.RWMutex
	order      []string
	candidates map[string]domain.CandidateRecord
	favorites  map[string]domain.Favorite
	configs    map[string]domain.SavedConfig
	now        func() time.Time
}

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		candidates: make(map[string]domain.CandidateRecord),
		favorites:  make(map[string]domain.Favorite),
		configs:    make(map[string]domain.SavedConfig),
		now:        time.Now,
	}
}

func (m *Memory) SaveCandidate(ctx context.Context, name string) error {
	_, err := m.SaveCandidates(ctx, []string{name})
	return err
}

func (m *Memory) SaveCandidates(_ context.Context, names []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	added := 0
	now := m.now()
	for _, name := range names {
		if _, ok := m.candidates[name]; ok {
			continue
		}
		m.candidates[name] = domain.CandidateRecord{Domain: name, Status: domain.RecordPending, CreatedAt: now}
		m.order = append(m.order, name)
		added++
	}
	return added, nil
}

func (m *Memory) UpdateStatus(_ context.Context, name, status string, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.candidates[name]
	if !ok {
		return ErrNotFound
	}
	now := m.now()
	rec.Status = status
	rec.Available = &available
	rec.CheckedAt = &now
	m.candidates[name] = rec
	return nil
}

func (m *Memory) Candidates(context.Context) ([]domain.CandidateRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.CandidateRecord, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.candidates[name])
	}
	return out, nil
}

// AddFavorite stores or replaces the favorite for name
func (m *Memory) AddFavorite(_ context.Context, name, category, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.favorites[name] = domain.Favorite{Domain: name, Category: category, Note: note, AddedAt: m.now()}
	return nil
}

func (m *Memory) RemoveFavorite(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.favorites[name]; !ok {
		return ErrNotFound
	}
	delete(m.favorites, name)
	return nil
}

// Favorites returns favorites sorted by name
func (m *Memory) Favorites(context.Context) ([]domain.Favorite, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Favorite, 0, len(m.favorites))
	for _, f := range m.favorites {
		out = append(out, f)
	}
	slices.SortFunc(out, compareFavorites)
	return out, nil
}

func (m *Memory) SaveConfig(_ context.Context, cfg domain.SavedConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cfg.SavedAt.IsZero() {
		cfg.SavedAt = m.now()
	}
	m.configs[cfg.Name] = cfg
	return nil
}

func (m *Memory) GetConfig(_ context.Context, name string) (domain.SavedConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.configs[name]
	if !ok {
		return domain.SavedConfig{}, ErrNotFound
	}
	return cfg, nil
}

func (m *Memory) Clear(_ context.Context, c Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch c {
	case Candidates:
		m.candidates = make(map[string]domain.CandidateRecord)
		m.order = nil
	case Favorites:
		m.favorites = make(map[string]domain.Favorite)
	case Configs:
		m.configs = make(map[string]domain.SavedConfig)
	default:
		_, err := ParseCollection(string(c))
		return err
	}
	return nil
}

func (m *Memory) Close() error { return nil }

func compareFavorites(a, b domain.Favorite) int {
	return strings.Compare(a.Domain, b.Domain)
}
