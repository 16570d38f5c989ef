package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disfruleg/disfruleg-api/pkg/config"
)

type precio struct {
	Final string `json:"final"`
}

func setupCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestFetchJSON_GuardaYReutiliza(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return precio{Final: "18.00"}, nil
	}

	key, err := c.BuildKey(ctx, "precios", "1", "2")
	require.NoError(t, err)
	assert.Equal(t, "precios:1:2:1", key)

	var got precio
	require.NoError(t, c.FetchJSON(ctx, key, &got, loader))
	require.NoError(t, c.FetchJSON(ctx, key, &got, loader))
	assert.Equal(t, "18.00", got.Final)
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestBump_CambiaLaClave(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	before, err := c.BuildKey(ctx, "precios", "1")
	require.NoError(t, err)
	require.NoError(t, c.Bump(ctx))
	after, err := c.BuildKey(ctx, "precios", "1")
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
	assert.Equal(t, "precios:1:2", after)
}

func TestFetchJSON_ErrorDelLoaderNoSeGuarda(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()
	boom := errors.New("sin conexión")

	var got precio
	err := c.FetchJSON(ctx, "k", &got, func(context.Context) (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestCacheNil_PasaDirecto(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	key, err := c.BuildKey(ctx, "precios", "7")
	require.NoError(t, err)
	assert.Equal(t, "precios:7", key)

	var got precio
	require.NoError(t, c.FetchJSON(ctx, key, &got, func(context.Context) (any, error) { return precio{Final: "1.00"}, nil }))
	assert.Equal(t, "1.00", got.Final)
	assert.NoError(t, c.Bump(ctx))
}

func TestNewClient_SinDireccionDesactiva(t *testing.T) {
	client, err := NewClient(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NotNil(t, client)
	_ = client.Close()
}

func TestElevationStore_UnSoloUso(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s := NewElevationStore(client)
	ctx := context.Background()

	ok, err := s.Consume(ctx, "jti-1", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5*time.Minute, mr.TTL("elevacion:usada:jti-1"))

	ok, err = s.Consume(ctx, "jti-1", 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(6 * time.Minute)
	ok, err = s.Consume(ctx, "jti-1", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.Consume(ctx, "", time.Minute)
	assert.Error(t, err)
}
