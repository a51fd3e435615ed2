package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T) (*RedisAdapter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	adapter, err := NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	return adapter, mr
}

func TestRedisAdapter_GetSet(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	err := adapter.Set(ctx, "products", []byte(`[{"id":1}]`), 10*time.Second)
	assert.NoError(t, err)

	value, err := adapter.Get(ctx, "products")
	assert.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":1}]`), value)
}

func TestRedisAdapter_GetNotFound(t *testing.T) {
	adapter, _ := newTestAdapter(t)

	_, err := adapter.Get(context.Background(), "non_existent_key")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "non_existent_key")
}

func TestRedisAdapter_Delete(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "cart:abc", []byte("value"), 0))
	assert.NoError(t, adapter.Delete(ctx, "cart:abc"))

	_, err := adapter.Get(ctx, "cart:abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisAdapter_SetIfAbsent(t *testing.T) {
	adapter, mr := newTestAdapter(t)
	ctx := context.Background()

	ok, err := adapter.SetIfAbsent(ctx, "order_completion:ord-1", []byte("1"), 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = adapter.SetIfAbsent(ctx, "order_completion:ord-1", []byte("2"), 0)
	require.NoError(t, err)
	assert.False(t, ok)

	value, err := mr.Get("order_completion:ord-1")
	require.NoError(t, err)
	assert.Equal(t, "1", value)
}

func TestRedisAdapter_TTL(t *testing.T) {
	adapter, mr := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "categories", []byte("expires_soon"), 1*time.Second))

	_, err := adapter.Get(ctx, "categories")
	assert.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = adapter.Get(ctx, "categories")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisAdapter_Sets(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	members, err := adapter.SetMembers(ctx, "orders")
	require.NoError(t, err)
	assert.Empty(t, members)

	require.NoError(t, adapter.AddToSet(ctx, "orders", "a", "b"))
	require.NoError(t, adapter.AddToSet(ctx, "orders", "a"))
	require.NoError(t, adapter.AddToSet(ctx, "orders"))

	members, err = adapter.SetMembers(ctx, "orders")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, members)
}

func TestRedisAdapter_Ping(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	assert.NoError(t, adapter.Ping(context.Background()))
}

func TestRedisAdapter_InvalidURL(t *testing.T) {
	_, err := NewRedisAdapter("invalid://url")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse Redis URL")
}

func TestJSONHelpers(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}

	var out payload
	found, err := GetJSON(ctx, adapter, "missing", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, adapter, "present", payload{Name: "jacket"}, 0))

	found, err = GetJSON(ctx, adapter, "present", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "jacket", out.Name)

	require.NoError(t, adapter.Set(ctx, "broken", []byte("{"), 0))
	_, err = GetJSON(ctx, adapter, "broken", &out)
	assert.Error(t, err)
}
