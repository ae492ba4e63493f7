package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-ticket-client/tokenstore"
	"github.com/jrsteele09/go-ticket-client/tokenstore/filestore"
	"github.com/jrsteele09/go-ticket-client/tokenstore/storetest"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *filestore.FileStore {
	t.Helper()
	return filestore.New(filepath.Join(t.TempDir(), "ticketctl", "session.json"))
}

func TestFileStore(t *testing.T) {
	storetest.RunRepoContract(t, func(t *testing.T) tokenstore.Repo {
		return newStore(t)
	})
}

func TestFileStore_Durability(t *testing.T) {
	ctx := context.Background()

	t.Run("survives a new instance", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, tokenstore.SlotRefreshToken, "refresh"))

		reopened := filestore.New(s.Path())
		v, err := reopened.Get(ctx, tokenstore.SlotRefreshToken)
		require.NoError(t, err)
		require.Equal(t, "refresh", v)
	})

	t.Run("file is private", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, tokenstore.SlotAccessToken, "access"))

		info, err := os.Stat(s.Path())
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("clearing every slot removes the file", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, tokenstore.SlotAccessToken, "access"))
		require.NoError(t, s.Clear(ctx))

		_, err := os.Stat(s.Path())
		require.True(t, os.IsNotExist(err))
	})

	t.Run("corrupt file", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o700))
		require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))

		_, err := s.Get(ctx, tokenstore.SlotAccessToken)
		require.Error(t, err)
		require.Contains(t, err.Error(), "parsing session file")
	})

	t.Run("clearing a corrupt file removes it", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o700))
		require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))

		require.NoError(t, s.Clear(ctx, tokenstore.SlotAccessToken))
		_, err := os.Stat(s.Path())
		require.True(t, os.IsNotExist(err))

		require.NoError(t, s.Set(ctx, tokenstore.SlotAccessToken, "access"))
		v, err := s.Get(ctx, tokenstore.SlotAccessToken)
		require.NoError(t, err)
		require.Equal(t, "access", v)
	})
}
