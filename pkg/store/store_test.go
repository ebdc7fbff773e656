package store_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uberswe/domaingen/pkg/domain"
	"github.com/uberswe/domaingen/pkg/store"
)

func TestMemory_Candidates(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	added, err := s.SaveCandidates(ctx, []string{"cd", "ab", "cd"})
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	require.NoError(t, s.SaveCandidate(ctx, "ab"))

	recs, err := s.Candidates(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "cd", recs[0].Domain)
	assert.Equal(t, "ab", recs[1].Domain)
	assert.Equal(t, domain.RecordPending, recs[0].Status)
	assert.Nil(t, recs[0].Available)

	require.NoError(t, s.UpdateStatus(ctx, "ab", domain.RecordAvailable, true))
	assert.ErrorIs(t, s.UpdateStatus(ctx, "zz", domain.RecordTaken, false), store.ErrNotFound)

	recs, err = s.Candidates(ctx)
	require.NoError(t, err)
	require.NotNil(t, recs[1].Available)
	assert.True(t, *recs[1].Available)
	assert.NotNil(t, recs[1].CheckedAt)

	require.NoError(t, s.Clear(ctx, store.Candidates))
	recs, err = s.Candidates(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestMemory_Favorites(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	require.NoError(t, s.AddFavorite(ctx, "zeta.com", "short", ""))
	require.NoError(t, s.AddFavorite(ctx, "alpha.com", "brand", "nice"))
	require.NoError(t, s.AddFavorite(ctx, "alpha.com", "brand", "updated"))

	favs, err := s.Favorites(ctx)
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, "alpha.com", favs[0].Domain)
	assert.Equal(t, "updated", favs[0].Note)

	require.NoError(t, s.RemoveFavorite(ctx, "zeta.com"))
	assert.ErrorIs(t, s.RemoveFavorite(ctx, "zeta.com"), store.ErrNotFound)
}

func TestMemory_Configs(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	_, err := s.GetConfig(ctx, "short")
	assert.ErrorIs(t, err, store.ErrNotFound)

	want := domain.SavedConfig{Name: "short", Generation: domain.DefaultGenerationConfig(), Suffixes: []string{".io"}}
	require.NoError(t, s.SaveConfig(ctx, want))

	got, err := s.GetConfig(ctx, "short")
	require.NoError(t, err)
	assert.Equal(t, want.Generation, got.Generation)
	assert.Equal(t, want.Suffixes, got.Suffixes)
	assert.False(t, got.SavedAt.IsZero())

	require.NoError(t, s.Clear(ctx, store.Configs))
	_, err = s.GetConfig(ctx, "short")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestParseCollection(t *testing.T) {
	c, err := store.ParseCollection("favorites")
	require.NoError(t, err)
	assert.Equal(t, store.Favorites, c)

	_, err = store.ParseCollection("everything")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	cfg := domain.DefaultConfig()
	s, err := store.Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &store.Memory{}, s)

	cfg.Store = "floppy"
	_, err = store.Open(context.Background(), cfg)
	assert.True(t, domain.IsConfigError(err))
}

func exportFixture(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemory()
	_, err := s.SaveCandidates(ctx, []string{"ab", "cd", "ef"})
	require.NoError(t, err)
	require.NoError(t, s.UpdateStatus(ctx, "ab", domain.RecordAvailable, true))
	require.NoError(t, s.UpdateStatus(ctx, "cd", domain.RecordTaken, false))
	return s
}

func TestExport_TXT(t *testing.T) {
	s := exportFixture(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, store.ExportStore(context.Background(), s, store.FormatTXT, &buf, store.ExportOptions{}))
	assert.Equal(t, "ab\ncd\nef\n", buf.String())

	buf.Reset()
	require.NoError(t, store.ExportStore(context.Background(), s, store.FormatTXT, &buf, store.ExportOptions{Header: true, OnlyAvailable: true, Now: now}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "# Generated: 2024-05-01T12:00:00Z", lines[0])
	assert.Equal(t, "# Count: 1", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "# Export: "))
	assert.Equal(t, "ab", lines[3])
}

func TestExport_CSV(t *testing.T) {
	s := exportFixture(t)

	var buf bytes.Buffer
	require.NoError(t, store.ExportStore(context.Background(), s, store.FormatCSV, &buf, store.ExportOptions{}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"domain", "status", "available", "created_at", "checked_at"}, rows[0])
	assert.Equal(t, "ab", rows[1][0])
	assert.Equal(t, "true", rows[1][2])
	assert.Equal(t, "false", rows[2][2])
	assert.Equal(t, "", rows[3][2])
	assert.Equal(t, "", rows[3][4])
}

func TestExport_JSON(t *testing.T) {
	s := exportFixture(t)

	var buf bytes.Buffer
	require.NoError(t, store.ExportStore(context.Background(), s, store.FormatJSON, &buf, store.ExportOptions{OnlyAvailable: true}))

	var recs []domain.CandidateRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "ab", recs[0].Domain)
}

func TestExport_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, store.Export(&buf, nil, store.Format("xml"), store.ExportOptions{}))

	_, err := store.ParseFormat("xml")
	assert.Error(t, err)
}
