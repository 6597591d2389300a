package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cotizaciones-api/pkg/config"
)

func newTestStore(t *testing.T) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdempotencyStore(client, "quotes", time.Minute), mr
}

func TestIdempotency_Lifecycle(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	id, err := s.Begin(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, id)

	_, err = s.Begin(ctx, "abc")
	assert.ErrorIs(t, err, ErrInFlight)

	require.NoError(t, s.Complete(ctx, "abc", "quote-1"))
	id, err = s.Begin(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "quote-1", id)

	mr.FastForward(2 * time.Minute)
	id, err = s.Begin(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, id, "la clave expiró")
}

func TestIdempotency_ReleaseAllowsRetry(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	_, err := s.Begin(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, s.Release(ctx, "k"))
	assert.False(t, mr.Exists("idem:quotes:k"))

	id, err := s.Begin(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestIdempotency_EmptyKey(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Begin(context.Background(), "")
	assert.Error(t, err)
}

func TestNew_PingsServer(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client, err := New(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	_ = client.Close()

	mr.Close()
	_, err = New(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	assert.Error(t, err)
}
