package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheHelper(client, "test:"), mr
}

func TestCacheHelperGetSet(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, helper.Set(ctx, "k1", payload{Name: "alpha", Count: 3}, time.Minute))

	var got payload
	require.NoError(t, helper.Get(ctx, "k1", &got))
	assert.Equal(t, payload{Name: "alpha", Count: 3}, got)

	err := helper.Get(ctx, "missing", &got)
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestCacheHelperStrings(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	require.NoError(t, helper.SetString(ctx, "otp", "482913", time.Minute))

	got, err := helper.GetString(ctx, "otp")
	require.NoError(t, err)
	assert.Equal(t, "482913", got)

	_, err = helper.GetString(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestCacheHelperGetDelConsumesKey(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	require.NoError(t, helper.SetString(ctx, "token", "one-shot", time.Minute))

	got, err := helper.GetDel(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "one-shot", got)

	// Second read must miss: the token is single-use.
	_, err = helper.GetDel(ctx, "token")
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestCacheHelperDelete(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	require.NoError(t, helper.SetString(ctx, "a", "1", time.Minute))
	require.NoError(t, helper.SetString(ctx, "b", "2", time.Minute))

	require.NoError(t, helper.Delete(ctx, "a", "b"))

	_, err := helper.GetString(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestCacheHelperTTLExpiry(t *testing.T) {
	helper, mr := newTestHelper(t)
	ctx := context.Background()

	require.NoError(t, helper.SetString(ctx, "short", "gone soon", time.Minute))

	mr.FastForward(2 * time.Minute)

	_, err := helper.GetString(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestCacheOrExecute(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return map[string]int{"value": 7}, nil
	}

	var first map[string]int
	require.NoError(t, helper.CacheOrExecute(ctx, "expensive", &first, time.Minute, fetch))
	assert.Equal(t, 7, first["value"])
	assert.Equal(t, 1, calls)

	// Second call is served from cache.
	var second map[string]int
	require.NoError(t, helper.CacheOrExecute(ctx, "expensive", &second, time.Minute, fetch))
	assert.Equal(t, 7, second["value"])
	assert.Equal(t, 1, calls)
}

func TestCacheHelperDegradesWithoutClient(t *testing.T) {
	helper := NewCacheHelper(nil, "")
	ctx := context.Background()

	assert.NoError(t, helper.Set(ctx, "k", "v", time.Minute))
	assert.ErrorIs(t, helper.Get(ctx, "k", new(string)), ErrCacheNotAvailable)
	assert.ErrorIs(t, helper.SetString(ctx, "k", "v", time.Minute), ErrCacheNotAvailable)

	// CacheOrExecute still serves data straight from the fetch function.
	var got map[string]int
	require.NoError(t, helper.CacheOrExecute(ctx, "k", &got, time.Minute, func() (interface{}, error) {
		return map[string]int{"value": 9}, nil
	}))
	assert.Equal(t, 9, got["value"])
}
