package counter

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/go-pethotel-pos/internal/mongox/mongotest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "T01", Format(Transaction, 1))
	assert.Equal(t, "T09", Format(Transaction, 9))
	assert.Equal(t, "T100", Format(Transaction, 100))
	assert.Equal(t, "B07", Format(Booking, 7))
}

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb, mr
}

func TestRedisAllocator_Sequential(t *testing.T) {
	rdb, _ := newRedis(t)
	a := NewRedisAllocator(rdb)
	ctx := context.Background()

	for _, want := range []string{"T01", "T02", "T03"} {
		got, err := a.Next(ctx, Transaction)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	got, err := a.Next(ctx, Booking)
	require.NoError(t, err)
	assert.Equal(t, "B01", got)
}

func TestRedisAllocator_ContinuesExistingSequence(t *testing.T) {
	rdb, mr := newRedis(t)
	require.NoError(t, mr.Set("counter:transaction", "99"))

	got, err := NewRedisAllocator(rdb).Next(context.Background(), Transaction)
	require.NoError(t, err)
	assert.Equal(t, "T100", got)
}

func TestRedisAllocator_ConcurrentNeverRepeats(t *testing.T) {
	rdb, _ := newRedis(t)
	a := NewRedisAllocator(rdb)

	const n = 50
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := a.Next(context.Background(), Transaction)
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestSnowflakeAllocator(t *testing.T) {
	a, err := NewSnowflakeAllocator(3)
	require.NoError(t, err)

	first, err := a.Next(context.Background(), Booking)
	require.NoError(t, err)
	second, err := a.Next(context.Background(), Booking)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first, "B"))
	assert.NotEqual(t, first, second)

	_, err = NewSnowflakeAllocator(5000)
	assert.Error(t, err)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New("zookeeper", nil, nil, 1)
	assert.Error(t, err)
}

func TestMongoAllocator_Sequential(t *testing.T) {
	a := NewMongoAllocator(mongotest.New(t))
	ctx := context.Background()

	for _, want := range []string{"B01", "B02"} {
		got, err := a.Next(ctx, Booking)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	got, err := a.Next(ctx, Transaction)
	require.NoError(t, err)
	assert.Equal(t, "T01", got)
}
