package redisstore_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-ticket-client/tokenstore"
	"github.com/jrsteele09/go-ticket-client/tokenstore/redisstore"
	"github.com/jrsteele09/go-ticket-client/tokenstore/storetest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore(t *testing.T) {
	storetest.RunRepoContract(t, func(t *testing.T) tokenstore.Repo {
		_, client := setupTestRedis(t)
		return redisstore.New(client, "test:")
	})
}

func TestRedisStore_KeyPrefix(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := redisstore.New(client, "ticketctl:session:")

	require.NoError(t, store.Set(context.Background(), tokenstore.SlotAccessToken, "access"))

	v, err := mr.Get("ticketctl:session:access_token")
	require.NoError(t, err)
	require.Equal(t, "access", v)
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := redisstore.New(client, "test:")
	mr.Close()

	_, err := store.Get(context.Background(), tokenstore.SlotAccessToken)
	require.Error(t, err)
}
