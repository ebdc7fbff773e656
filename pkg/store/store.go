// Package store persists candidates, favorites and saved generation setups.
// Backends: in-memory, Redis and PostgreSQL.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/uberswe/domaingen/pkg/domain"
)

var (
	// ErrStorage wraps every backend failure
	ErrStorage = errors.New("storage error")
	// ErrNotFound is returned when the named record does not exist
	ErrNotFound = errors.New("record not found")
)

// Collection names a group of records that can be cleared at once
type Collection string

const (
	Candidates Collection = "candidates"
	Favorites  Collection = "favorites"
	Configs    Collection = "configs"
)

// ParseCollection validates a collection name
func ParseCollection(name string) (Collection, error) {
	switch c := Collection(name); c {
	case Candidates, Favorites, Configs:
		return c, nil
	default:
		return "", fmt.Errorf("unknown collection %q", name)
	}
}

// Store is the persistence collaborator. Operations either succeed or return
// an error wrapping ErrStorage; nothing is retried.
type Store interface {
	// SaveCandidate records name as pending. Saving a known name is a no-op.
	SaveCandidate(ctx context.Context, name string) error
	// SaveCandidates records names in order and returns how many were new
	SaveCandidates(ctx context.Context, names []string) (int, error)
	// UpdateStatus sets the check outcome of a saved candidate
	UpdateStatus(ctx context.Context, name, status string, available bool) error
	// Candidates returns every saved candidate in insertion order
	Candidates(ctx context.Context) ([]domain.CandidateRecord, error)

	AddFavorite(ctx context.Context, name, category, note string) error
	RemoveFavorite(ctx context.Context, name string) error
	Favorites(ctx context.Context) ([]domain.Favorite, error)

	SaveConfig(ctx context.Context, cfg domain.SavedConfig) error
	GetConfig(ctx context.Context, name string) (domain.SavedConfig, error)

	Clear(ctx context.Context, c Collection) error
	Close() error
}

// Open returns the store selected by cfg.Store
func Open(ctx context.Context, cfg domain.Config) (Store, error) {
	switch cfg.Store {
	case "", "memory":
		return NewMemory(), nil
	case "redis":
		rdb, err := ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return NewRedis(rdb, cfg.RedisPrefix), nil
	case "postgres":
		return OpenPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, &domain.ConfigError{Field: "store", Reason: fmt.Sprintf("unknown store %q", cfg.Store)}
	}
}

func storageErr(op string, err error) error {
	return errors.Join(ErrStorage, fmt.Errorf("%s: %w", op, err))
}
