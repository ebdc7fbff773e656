package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"

	"github.com/uberswe/domaingen/pkg/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Postgres stores collections in PostgreSQL tables
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects, pings and migrates the schema
func OpenPostgres(ctx context.Context, url string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, storageErr("parse database url", err)
	}
	cfg.MaxConns = 10
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, storageErr("connect database", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, storageErr("ping database", err)
	}
	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Postgres{pool: pool}, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	// goose needs database/sql, the pool is shared underneath
	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close migration connection")
		}
	}()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return storageErr("migrate", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return storageErr("migrate", err)
	}
	return nil
}

// gooseLogger routes migration output through zerolog
type gooseLogger struct{}

func (gooseLogger) Fatalf(format string, v ...any) {
	log.Error().Str("component", "migrate").Msg(fmt.Sprintf(format, v...))
}

func (gooseLogger) Printf(format string, v ...any) {
	log.Info().Str("component", "migrate").Msg(fmt.Sprintf(format, v...))
}

func (p *Postgres) SaveCandidate(ctx context.Context, name string) error {
	_, err := p.SaveCandidates(ctx, []string{name})
	return err
}

func (p *Postgres) SaveCandidates(ctx context.Context, names []string) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	for _, name := range names {
		batch.Queue(`INSERT INTO candidates (domain, status) VALUES ($1, $2) ON CONFLICT (domain) DO NOTHING`, name, domain.RecordPending)
	}

	results := p.pool.SendBatch(ctx, batch)
	defer results.Close()

	added := 0
	for range names {
		tag, err := results.Exec()
		if err != nil {
			return added, storageErr("save candidates", err)
		}
		added += int(tag.RowsAffected())
	}
	return added, nil
}

func (p *Postgres) UpdateStatus(ctx context.Context, name, status string, available bool) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE candidates SET status = $2, available = $3, checked_at = now() WHERE domain = $1`,
		name, status, available)
	if err != nil {
		return storageErr("update candidate", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Candidates(ctx context.Context) ([]domain.CandidateRecord, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT domain, status, available, created_at, checked_at FROM candidates ORDER BY id`)
	if err != nil {
		return nil, storageErr("list candidates", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CandidateRecord, error) {
		var rec domain.CandidateRecord
		err := row.Scan(&rec.Domain, &rec.Status, &rec.Available, &rec.CreatedAt, &rec.CheckedAt)
		return rec, err
	})
	if err != nil {
		return nil, storageErr("scan candidates", err)
	}
	return out, nil
}

func (p *Postgres) AddFavorite(ctx context.Context, name, category, note string) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO favorites (domain, category, note) VALUES ($1, $2, $3)
		ON CONFLICT (domain) DO UPDATE SET category = EXCLUDED.category, note = EXCLUDED.note, added_at = now()`,
		name, category, note)
	if err != nil {
		return storageErr("add favorite", err)
	}
	return nil
}

func (p *Postgres) RemoveFavorite(ctx context.Context, name string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM favorites WHERE domain = $1`, name)
	if err != nil {
		return storageErr("remove favorite", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Favorites(ctx context.Context) ([]domain.Favorite, error) {
	rows, err := p.pool.Query(ctx, `SELECT domain, category, note, added_at FROM favorites ORDER BY domain`)
	if err != nil {
		return nil, storageErr("list favorites", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Favorite, error) {
		var f domain.Favorite
		err := row.Scan(&f.Domain, &f.Category, &f.Note, &f.AddedAt)
		return f, err
	})
	if err != nil {
		return nil, storageErr("scan favorites", err)
	}
	return out, nil
}

func (p *Postgres) SaveConfig(ctx context.Context, cfg domain.SavedConfig) error {
	if cfg.SavedAt.IsZero() {
		cfg.SavedAt = time.Now()
	}
	if cfg.Suffixes == nil {
		cfg.Suffixes = []string{}
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO configs (name, generation, suffixes, saved_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET generation = EXCLUDED.generation, suffixes = EXCLUDED.suffixes, saved_at = EXCLUDED.saved_at`,
		cfg.Name, cfg.Generation, cfg.Suffixes, cfg.SavedAt)
	if err != nil {
		return storageErr("save config", err)
	}
	return nil
}

func (p *Postgres) GetConfig(ctx context.Context, name string) (domain.SavedConfig, error) {
	cfg := domain.SavedConfig{Name: name}
	err := p.pool.QueryRow(ctx, `SELECT generation, suffixes, saved_at FROM configs WHERE name = $1`, name).
		Scan(&cfg.Generation, &cfg.Suffixes, &cfg.SavedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SavedConfig{}, ErrNotFound
	}
	if err != nil {
		return domain.SavedConfig{}, storageErr("get config", err)
	}
	return cfg, nil
}

func (p *Postgres) Clear(ctx context.Context, c Collection) error {
	if _, err := ParseCollection(string(c)); err != nil {
		return err
	}
	table := pgx.Identifier{string(c)}.Sanitize()
	if _, err := p.pool.Exec(ctx, "TRUNCATE "+table+" RESTART IDENTITY"); err != nil {
		return storageErr("clear "+string(c), err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
