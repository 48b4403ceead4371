package server

import (
	"context"
	"testing"

	"github.com/barengs/smp/pkg/config"
	"github.com/barengs/smp/services/menu/internal/menu"
	"github.com/barengs/smp/services/menu/internal/model"
	"github.com/barengs/smp/services/menu/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTreeCache(t *testing.T) {
	rdb, mr := testutil.NewRedis(t)
	ctx := context.Background()
	menus := []model.Menu{{Key: "dashboard", Title: "Dasbor"}}

	tc, closeFn := newTreeCache(&config.RedisConfig{TreeMode: "none"}, rdb)
	assert.IsType(t, menu.NopTreeCache{}, tc)
	closeFn()

	tc, closeFn = newTreeCache(&config.RedisConfig{TreeMode: "redis"}, nil)
	assert.IsType(t, menu.NopTreeCache{}, tc)
	closeFn()

	tc, closeFn = newTreeCache(&config.RedisConfig{TreeMode: "redis", TreeTTL: 60}, rdb)
	require.NoError(t, tc.Set(ctx, menus))
	assert.True(t, mr.Exists("menu:tree"))
	closeFn()

	mr.FlushAll()
	tc, closeFn = newTreeCache(&config.RedisConfig{TreeMode: "local", TreeTTL: 60}, rdb)
	require.NoError(t, tc.Set(ctx, menus))
	assert.False(t, mr.Exists("menu:tree"), "local mode keeps the catalog in process")
	got, ok, err := tc.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dashboard", got[0].Key)
	require.NoError(t, tc.Invalidate(ctx))
	closeFn()

	tc, closeFn = newTreeCache(&config.RedisConfig{TreeMode: "local"}, nil)
	require.NoError(t, tc.Set(ctx, menus))
	require.NoError(t, tc.Invalidate(ctx))
	_, ok, _ = tc.Get(ctx)
	assert.False(t, ok)
	closeFn()
}
