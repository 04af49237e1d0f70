package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutritrack/config"
	"nutritrack/pkg/logger"
)

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, m.Set(ctx, "forever", []byte("x"), 0))

	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	now = now.Add(time.Minute)
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)

	_, ok, _ = m.Get(ctx, "forever")
	assert.True(t, ok)

	require.NoError(t, m.Delete(ctx, "forever"))
	_, ok, _ = m.Get(ctx, "forever")
	assert.False(t, ok)
}

func TestMemoryCopiesValue(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf, time.Hour))
	buf[0] = 'z'

	v, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(v))
}

func TestNewWithoutAddrUsesMemory(t *testing.T) {
	c := New(context.Background(), config.RedisConfig{}, logger.Nop())
	_, isMemory := c.(*Memory)
	assert.True(t, isMemory)
}

func TestMemorySetSweepsExpiredKeys(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "usda:search:arroz", []byte("a"), time.Minute))
	require.NoError(t, m.Set(ctx, "usda:search:feijao", []byte("b"), time.Hour))
	require.NoError(t, m.Set(ctx, "forever", []byte("c"), 0))

	now = now.Add(2 * time.Minute)
	require.NoError(t, m.Set(ctx, "usda:search:frango", []byte("d"), time.Minute))

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Len(t, m.items, 3)
	assert.NotContains(t, m.items, "usda:search:arroz")
	assert.Contains(t, m.items, "forever")
}
