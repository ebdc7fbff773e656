package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/uberswe/domaingen/pkg/domain"
)

const redisConnectTimeout = 5 * time.Second

// ConnectRedis parses url and pings the server before returning the client
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, storageErr("parse redis url", err)
	}

	ctx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, storageErr("ping redis", err)
	}
	return rdb, nil
}

// Redis keeps each collection in a hash of JSON values. Candidate insertion
// order is tracked in a separate list.
type Redis struct {
	rdb    redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedis wraps a connected client. Keys are namespaced with prefix.
func NewRedis(rdb redis.UniversalClient, prefix string) *Redis {
	prefix = strings.Trim(prefix, ":")
	if prefix == "" {
		prefix = "domaingen"
	}
	return &Redis{rdb: rdb, prefix: prefix, now: time.Now}
}

func (r *Redis) key(c Collection) string {
	return fmt.Sprintf("%s:%s", r.prefix, c)
}

func (r *Redis) orderKey() string {
	return r.key(Candidates) + ":order"
}

func (r *Redis) SaveCandidate(ctx context.Context, name string) error {
	_, err := r.SaveCandidates(ctx, []string{name})
	return err
}

func (r *Redis) SaveCandidates(ctx context.Context, names []string) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}
	now := r.now()

	cmds := make([]*redis.BoolCmd, len(names))
	_, err := r.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, name := range names {
			data, err := json.Marshal(domain.CandidateRecord{Domain: name, Status: domain.RecordPending, CreatedAt: now})
			if err != nil {
				return err
			}
			cmds[i] = p.HSetNX(ctx, r.key(Candidates), name, data)
		}
		return nil
	})
	if err != nil {
		return 0, storageErr("save candidates", err)
	}

	var added []any
	for i, cmd := range cmds {
		if cmd.Val() {
			added = append(added, names[i])
		}
	}
	if len(added) == 0 {
		return 0, nil
	}
	if err := r.rdb.RPush(ctx, r.orderKey(), added...).Err(); err != nil {
		return 0, storageErr("save candidate order", err)
	}
	return len(added), nil
}

func (r *Redis) UpdateStatus(ctx context.Context, name, status string, available bool) error {
	data, err := r.rdb.HGet(ctx, r.key(Candidates), name).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return storageErr("get candidate", err)
	}

	var rec domain.CandidateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return storageErr("decode candidate", err)
	}
	now := r.now()
	rec.Status = status
	rec.Available = &available
	rec.CheckedAt = &now

	if data, err = json.Marshal(rec); err != nil {
		return storageErr("encode candidate", err)
	}
	if err := r.rdb.HSet(ctx, r.key(Candidates), name, data).Err(); err != nil {
		return storageErr("update candidate", err)
	}
	return nil
}

func (r *Redis) Candidates(ctx context.Context) ([]domain.CandidateRecord, error) {
	names, err := r.rdb.LRange(ctx, r.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, storageErr("list candidates", err)
	}
	if len(names) == 0 {
		return []domain.CandidateRecord{}, nil
	}

	values, err := r.rdb.HMGet(ctx, r.key(Candidates), names...).Result()
	if err != nil {
		return nil, storageErr("get candidates", err)
	}
	out := make([]domain.CandidateRecord, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var rec domain.CandidateRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, storageErr("decode candidate", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *Redis) AddFavorite(ctx context.Context, name, category, note string) error {
	data, err := json.Marshal(domain.Favorite{Domain: name, Category: category, Note: note, AddedAt: r.now()})
	if err != nil {
		return storageErr("encode favorite", err)
	}
	if err := r.rdb.HSet(ctx, r.key(Favorites), name, data).Err(); err != nil {
		return storageErr("add favorite", err)
	}
	return nil
}

func (r *Redis) RemoveFavorite(ctx context.Context, name string) error {
	n, err := r.rdb.HDel(ctx, r.key(Favorites), name).Result()
	if err != nil {
		return storageErr("remove favorite", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Redis) Favorites(ctx context.Context) ([]domain.Favorite, error) {
	all, err := r.rdb.HGetAll(ctx, r.key(Favorites)).Result()
	if err != nil {
		return nil, storageErr("list favorites", err)
	}
	out := make([]domain.Favorite, 0, len(all))
	for _, v := range all {
		var f domain.Favorite
		if err := json.Unmarshal([]byte(v), &f); err != nil {
			return nil, storageErr("decode favorite", err)
		}
		out = append(out, f)
	}
	slices.SortFunc(out, compareFavorites)
	return out, nil
}

func (r *Redis) SaveConfig(ctx context.Context, cfg domain.SavedConfig) error {
	if cfg.SavedAt.IsZero() {
		cfg.SavedAt = r.now()
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return storageErr("encode config", err)
	}
	if err := r.rdb.HSet(ctx, r.key(Configs), cfg.Name, data).Err(); err != nil {
		return storageErr("save config", err)
	}
	return nil
}

func (r *Redis) GetConfig(ctx context.Context, name string) (domain.SavedConfig, error) {
	var cfg domain.SavedConfig
	data, err := r.rdb.HGet(ctx, r.key(Configs), name).Bytes()
	if errors.Is(err, redis.Nil) {
		return cfg, ErrNotFound
	}
	if err != nil {
		return cfg, storageErr("get config", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, storageErr("decode config", err)
	}
	return cfg, nil
}

func (r *Redis) Clear(ctx context.Context, c Collection) error {
	if _, err := ParseCollection(string(c)); err != nil {
		return err
	}
	keys := []string{r.key(c)}
	if c == Candidates {
		keys = append(keys, r.orderKey())
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		return storageErr("clear "+string(c), err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
