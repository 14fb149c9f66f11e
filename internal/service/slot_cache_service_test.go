package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSlotCache(t *testing.T) (*SlotCacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSlotCacheService(client, quietLogger(), time.Minute), mr
}

func TestSlotCacheRoundTrip(t *testing.T) {
	cache, mr := newTestSlotCache(t)
	ctx := context.Background()
	slots := []time.Time{clock(9, 0), clock(9, 15)}

	_, ok := cache.Get(ctx, 1, monday, 30)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, 1, monday, 30, slots, cache.Version(ctx, 1, monday)))

	cached, ok := cache.Get(ctx, 1, monday, 30)
	require.True(t, ok)
	require.Len(t, cached, 2)
	assert.True(t, cached[0].Equal(slots[0]))
	assert.True(t, cached[1].Equal(slots[1]))

	// a different duration is a different entry
	_, ok = cache.Get(ctx, 1, monday, 45)
	assert.False(t, ok)

	mr.FastForward(2 * time.Minute)
	_, ok = cache.Get(ctx, 1, monday, 30)
	assert.False(t, ok, "entries expire after the ttl")
}

func TestSlotCacheInvalidateDay(t *testing.T) {
	cache, _ := newTestSlotCache(t)
	ctx := context.Background()
	tuesday := monday.AddDate(0, 0, 1)

	require.NoError(t, cache.Set(ctx, 1, monday, 30, []time.Time{clock(9, 0)}, cache.Version(ctx, 1, monday)))
	require.NoError(t, cache.Set(ctx, 1, monday, 60, []time.Time{clock(9, 0)}, cache.Version(ctx, 1, monday)))
	require.NoError(t, cache.Set(ctx, 1, tuesday, 30, []time.Time{tuesday.Add(9 * time.Hour)}, cache.Version(ctx, 1, tuesday)))
	require.NoError(t, cache.Set(ctx, 2, monday, 30, []time.Time{clock(9, 0)}, cache.Version(ctx, 2, monday)))

	require.NoError(t, cache.InvalidateDay(ctx, 1, clock(14, 0)))

	_, ok := cache.Get(ctx, 1, monday, 30)
	assert.False(t, ok)
	_, ok = cache.Get(ctx, 1, monday, 60)
	assert.False(t, ok)
	_, ok = cache.Get(ctx, 1, tuesday, 30)
	assert.True(t, ok)
	_, ok = cache.Get(ctx, 2, monday, 30)
	assert.True(t, ok)
}

func TestSlotCacheInvalidateDoctor(t *testing.T) {
	cache, _ := newTestSlotCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, 1, monday, 30, []time.Time{clock(9, 0)}, cache.Version(ctx, 1, monday)))
	require.NoError(t, cache.Set(ctx, 1, monday.AddDate(0, 0, 7), 30, []time.Time{clock(9, 0)}, cache.Version(ctx, 1, monday.AddDate(0, 0, 7))))
	require.NoError(t, cache.Set(ctx, 12, monday, 30, []time.Time{clock(9, 0)}, cache.Version(ctx, 12, monday)))

	require.NoError(t, cache.InvalidateDoctor(ctx, 1))

	_, ok := cache.Get(ctx, 1, monday, 30)
	assert.False(t, ok)
	_, ok = cache.Get(ctx, 1, monday.AddDate(0, 0, 7), 30)
	assert.False(t, ok)
	_, ok = cache.Get(ctx, 12, monday, 30)
	assert.True(t, ok)
}

func TestSlotCacheDisabled(t *testing.T) {
	var cache *SlotCacheService
	ctx := context.Background()

	assert.NoError(t, cache.Set(ctx, 1, monday, 30, []time.Time{clock(9, 0)}, cache.Version(ctx, 1, monday)))
	_, ok := cache.Get(ctx, 1, monday, 30)
	assert.False(t, ok)
	assert.NoError(t, cache.InvalidateDay(ctx, 1, monday))
	assert.NoError(t, cache.InvalidateDoctor(ctx, 1))

	noClient := NewSlotCacheService(nil, quietLogger(), 0)
	_, ok = noClient.Get(ctx, 1, monday, 30)
	assert.False(t, ok)
}

func TestSlotCacheRefusesFillAfterInvalidation(t *testing.T) {
	cache, _ := newTestSlotCache(t)
	ctx := context.Background()
	slots := []time.Time{clock(9, 0), clock(11, 0)}

	version := cache.Version(ctx, 1, monday)
	require.NoError(t, cache.InvalidateDay(ctx, 1, clock(11, 0)))

	err := cache.Set(ctx, 1, monday, 30, slots, version)
	assert.ErrorIs(t, err, ErrStaleSlots)
	_, ok := cache.Get(ctx, 1, monday, 30)
	assert.False(t, ok)

	// other days and doctors keep their versions
	tuesday := monday.AddDate(0, 0, 1)
	require.NoError(t, cache.Set(ctx, 1, tuesday, 30, slots, cache.Version(ctx, 1, tuesday)))
	require.NoError(t, cache.Set(ctx, 2, monday, 30, slots, cache.Version(ctx, 2, monday)))

	fresh := cache.Version(ctx, 1, monday)
	require.NoError(t, cache.Set(ctx, 1, monday, 30, slots, fresh))
	_, ok = cache.Get(ctx, 1, monday, 30)
	assert.True(t, ok)
}

func TestSlotCacheRefusesFillAfterDoctorInvalidation(t *testing.T) {
	cache, _ := newTestSlotCache(t)
	ctx := context.Background()

	version := cache.Version(ctx, 1, monday)
	require.NoError(t, cache.InvalidateDoctor(ctx, 1))

	err := cache.Set(ctx, 1, monday, 30, []time.Time{clock(9, 0)}, version)
	assert.ErrorIs(t, err, ErrStaleSlots)
	_, ok := cache.Get(ctx, 1, monday, 30)
	assert.False(t, ok)
}

func TestSlotCacheSkipsFillWithoutVersion(t *testing.T) {
	cache, mr := newTestSlotCache(t)
	ctx := context.Background()

	mr.SetError("server unavailable")
	version := cache.Version(ctx, 1, monday)
	mr.SetError("")

	require.NoError(t, cache.Set(ctx, 1, monday, 30, []time.Time{clock(9, 0)}, version))
	_, ok := cache.Get(ctx, 1, monday, 30)
	assert.False(t, ok, "a fill without a known version is dropped")
}
