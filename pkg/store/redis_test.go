package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uberswe/domaingen/pkg/domain"
	"github.com/uberswe/domaingen/pkg/store"
)

// redisStore connects to TEST_REDIS_URL or skips
func redisStore(t *testing.T) *store.Redis {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	rdb, err := store.ConnectRedis(ctx, url)
	require.NoError(t, err)

	s := store.NewRedis(rdb, "domaingen-test-"+uuid.NewString())
	t.Cleanup(func() {
		for _, c := range []store.Collection{store.Candidates, store.Favorites, store.Configs} {
			_ = s.Clear(ctx, c)
		}
		_ = s.Close()
	})
	return s
}

func TestRedis_Candidates(t *testing.T) {
	s := redisStore(t)
	ctx := context.Background()

	added, err := s.SaveCandidates(ctx, []string{"cd", "ab", "cd"})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	require.NoError(t, s.UpdateStatus(ctx, "ab", domain.RecordAvailable, true))
	assert.ErrorIs(t, s.UpdateStatus(ctx, "zz", domain.RecordTaken, false), store.ErrNotFound)

	recs, err := s.Candidates(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "cd", recs[0].Domain)
	require.NotNil(t, recs[1].Available)
	assert.True(t, *recs[1].Available)
}

func TestRedis_FavoritesAndConfigs(t *testing.T) {
	s := redisStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddFavorite(ctx, "b.com", "", ""))
	require.NoError(t, s.AddFavorite(ctx, "a.com", "brand", "note"))
	favs, err := s.Favorites(ctx)
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, "a.com", favs[0].Domain)
	assert.ErrorIs(t, s.RemoveFavorite(ctx, "c.com"), store.ErrNotFound)

	require.NoError(t, s.SaveConfig(ctx, domain.SavedConfig{Name: "x", Generation: domain.DefaultGenerationConfig()}))
	got, err := s.GetConfig(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultGenerationConfig(), got.Generation)
	_, err = s.GetConfig(ctx, "y")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
