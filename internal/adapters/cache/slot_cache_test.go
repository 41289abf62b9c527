package cache

import (
	"context"
	"testing"
	"time"

	"eclat-salon/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	client, err := NewRedis(config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)

	c := NewSlotCache(client, time.Minute, zap.NewNop())
	assert.False(t, c.Enabled())

	ctx := context.Background()
	c.Set(ctx, 1, "2026-10-20", 60, []string{"09:00"})
	slots, ok := c.Get(ctx, 1, "2026-10-20", 60)
	assert.False(t, ok)
	assert.Nil(t, slots)
	c.Invalidate(ctx, 1, "")
	assert.NoError(t, c.Close())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "slots:7:2026-10-20:45", slotKey(7, "2026-10-20", 45))
	assert.Equal(t, "slots:7:2026-10-20:*", invalidationPattern(7, "2026-10-20"))
	assert.Equal(t, "slots:7:*", invalidationPattern(7, ""))
}
