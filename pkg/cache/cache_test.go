package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewaykit/portalsync/pkg/edge"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	c, err := NewRedisCache(client, DefaultConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return c, mr
}

func testDeveloper() *edge.Developer {
	return &edge.Developer{
		DeveloperID: "dev-uuid-1",
		Email:       "jane@example.com",
		Companies:   []string{"acme", "globex"},
	}
}

func TestPutAndGetBothKeys(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Put(ctx, testDeveloper())

	byUUID, ok := c.GetByUUID(ctx, "dev-uuid-1")
	require.True(t, ok)
	assert.Equal(t, "jane@example.com", byUUID.Email)

	byEmail, ok := c.GetByEmail(ctx, "jane@example.com")
	require.True(t, ok)
	assert.Equal(t, "dev-uuid-1", byEmail.DeveloperID)
}

func TestGetReturnsIndependentCopies(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	original := testDeveloper()
	c.Put(ctx, original)

	// Mutations through the caller's pointer must not reach the cache.
	original.Email = "caller-mutated@example.com"

	first, ok := c.GetByEmail(ctx, "jane@example.com")
	require.True(t, ok)
	first.Email = "reader-mutated@example.com"
	first.Companies[0] = "mutated-co"

	second, ok := c.GetByEmail(ctx, "jane@example.com")
	require.True(t, ok)
	assert.Equal(t, "jane@example.com", second.Email)
	assert.Equal(t, []string{"acme", "globex"}, second.Companies)

	byUUID, ok := c.GetByUUID(ctx, "dev-uuid-1")
	require.True(t, ok)
	assert.Equal(t, "jane@example.com", byUUID.Email)
}

func TestGetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	_, ok := c.GetByUUID(context.Background(), "unknown")
	assert.False(t, ok)
}

func TestGetFallsBackToRedisAfterL1Eviction(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	dev := testDeveloper()
	data, err := json.Marshal(dev)
	require.NoError(t, err)
	require.NoError(t, mr.Set("developer:uuid:dev-uuid-1", string(data)))

	// Nothing in L1, entry only in Redis
	got, ok := c.GetByUUID(ctx, "dev-uuid-1")
	require.True(t, ok)
	assert.Equal(t, dev.Companies, got.Companies)

	// Second read is served from L1
	got, ok = c.GetByUUID(ctx, "dev-uuid-1")
	require.True(t, ok)
	assert.Equal(t, dev.DeveloperID, got.DeveloperID)
}

func TestCorruptEntryDropped(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("developer:uuid:bad", "{not json"))

	_, ok := c.GetByUUID(ctx, "bad")
	assert.False(t, ok)
	assert.False(t, mr.Exists("developer:uuid:bad"))
}

func TestRemoveEvictsBothKeyspaces(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Put(ctx, testDeveloper())
	require.True(t, mr.Exists("developer:uuid:dev-uuid-1"))
	require.True(t, mr.Exists("developer:email:jane@example.com"))

	require.NoError(t, c.Remove(ctx, "dev-uuid-1"))

	assert.False(t, mr.Exists("developer:uuid:dev-uuid-1"))
	assert.False(t, mr.Exists("developer:email:jane@example.com"))

	_, ok := c.GetByUUID(ctx, "dev-uuid-1")
	assert.False(t, ok)
	_, ok = c.GetByEmail(ctx, "jane@example.com")
	assert.False(t, ok)
}

func TestRemoveAllBatch(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Put(ctx, &edge.Developer{DeveloperID: "id-1", Email: "a@example.com"})
	c.Put(ctx, &edge.Developer{DeveloperID: "id-2", Email: "b@example.com"})

	require.NoError(t, c.RemoveAll(ctx, []string{"id-1", "id-2"}))

	for _, key := range []string{
		"developer:uuid:id-1", "developer:email:a@example.com",
		"developer:uuid:id-2", "developer:email:b@example.com",
	} {
		assert.False(t, mr.Exists(key), key)
	}
}

func TestRemoveEmailsEvictsUUIDForm(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Put(ctx, testDeveloper())

	require.NoError(t, c.RemoveEmails(ctx, []string{"jane@example.com"}))

	assert.False(t, mr.Exists("developer:email:jane@example.com"))
	assert.False(t, mr.Exists("developer:uuid:dev-uuid-1"))
}

func TestPutRespectsTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	c, err := NewRedisCache(client, Config{TTL: time.Minute, L1Entries: 8}, nil)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	c.Put(ctx, testDeveloper())

	mr.FastForward(2 * time.Minute)

	_, err = client.Get(ctx, "developer:uuid:dev-uuid-1").Result()
	assert.ErrorIs(t, err, redis.Nil)
}
