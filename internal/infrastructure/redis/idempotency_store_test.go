package redis

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *goredis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis no disponible: %v", err)
	}
	return client
}

func TestSetIdempotency_SegundaVezFalla(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()
	ctx := context.Background()
	store := NewIdempotencyStore(client)
	client.Del(ctx, idempotencyKeyPrefix+"test-key")

	ok, err := store.SetIdempotency(ctx, "test-key")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.SetIdempotency(ctx, "test-key")
	require.NoError(t, err)
	assert.False(t, ok, "la clave repetida debe rechazarse")

	require.NoError(t, store.ReleaseIdempotency(ctx, "test-key"))
	ok, err = store.SetIdempotency(ctx, "test-key")
	require.NoError(t, err)
	assert.True(t, ok, "tras liberar la clave se puede reservar de nuevo")
	client.Del(ctx, idempotencyKeyPrefix+"test-key")
}

func TestSetIdempotency_Concurrente(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()
	ctx := context.Background()
	store := NewIdempotencyStore(client)
	client.Del(ctx, idempotencyKeyPrefix+"concurrent-key")
	defer client.Del(ctx, idempotencyKeyPrefix+"concurrent-key")

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.SetIdempotency(ctx, "concurrent-key")
			if err == nil && ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins, "solo una reserva debe ganar")
}
