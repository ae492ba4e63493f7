// Package storetest holds the behaviour every tokenstore.Repo must share.
package storetest

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-ticket-client/tokenstore"
	"github.com/stretchr/testify/require"
)

// RunRepoContract exercises newRepo against the tokenstore.Repo contract.
// newRepo must return an empty store on every call.
func RunRepoContract(t *testing.T, newRepo func(t *testing.T) tokenstore.Repo) {
	t.Helper()
	ctx := context.Background()

	t.Run("absent slot reads empty", func(t *testing.T) {
		repo := newRepo(t)
		for _, slot := range tokenstore.AllSlots {
			v, err := repo.Get(ctx, slot)
			require.NoError(t, err)
			require.Empty(t, v)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Set(ctx, tokenstore.SlotAccessToken, "access-1"))
		require.NoError(t, repo.Set(ctx, tokenstore.SlotRefreshToken, "refresh-1"))

		v, err := repo.Get(ctx, tokenstore.SlotAccessToken)
		require.NoError(t, err)
		require.Equal(t, "access-1", v)

		require.NoError(t, repo.Set(ctx, tokenstore.SlotAccessToken, "access-2"))
		v, err = repo.Get(ctx, tokenstore.SlotAccessToken)
		require.NoError(t, err)
		require.Equal(t, "access-2", v)

		v, err = repo.Get(ctx, tokenstore.SlotRefreshToken)
		require.NoError(t, err)
		require.Equal(t, "refresh-1", v)
	})

	t.Run("clear named slots", func(t *testing.T) {
		repo := newRepo(t)
		fill(t, repo)
		require.NoError(t, repo.Clear(ctx, tokenstore.SlotAccessToken))

		v, err := repo.Get(ctx, tokenstore.SlotAccessToken)
		require.NoError(t, err)
		require.Empty(t, v)

		v, err = repo.Get(ctx, tokenstore.SlotUserData)
		require.NoError(t, err)
		require.Equal(t, `{"id":1}`, v)
	})

	t.Run("clear everything", func(t *testing.T) {
		repo := newRepo(t)
		fill(t, repo)
		require.NoError(t, repo.Clear(ctx))
		for _, slot := range tokenstore.AllSlots {
			v, err := repo.Get(ctx, slot)
			require.NoError(t, err)
			require.Empty(t, v)
		}
		// clearing an empty store is fine
		require.NoError(t, repo.Clear(ctx))
	})
}

func fill(t *testing.T, repo tokenstore.Repo) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, tokenstore.SlotAccessToken, "access"))
	require.NoError(t, repo.Set(ctx, tokenstore.SlotRefreshToken, "refresh"))
	require.NoError(t, repo.Set(ctx, tokenstore.SlotUserData, `{"id":1}`))
}
