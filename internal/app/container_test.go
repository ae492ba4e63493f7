package app_test

import (
	"bytes"
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-ticket-client/auth"
	"github.com/jrsteele09/go-ticket-client/internal/app"
	"github.com/jrsteele09/go-ticket-client/internal/config"
	ierrors "github.com/jrsteele09/go-ticket-client/internal/errors"
	"github.com/jrsteele09/go-ticket-client/internal/testutil"
	"github.com/jrsteele09/go-ticket-client/router"
	"github.com/jrsteele09/go-ticket-client/tokenstore"
	"github.com/jrsteele09/go-ticket-client/tokenstore/filestore"
	"github.com/jrsteele09/go-ticket-client/tokenstore/redisstore"
	"github.com/jrsteele09/go-ticket-client/tokenstore/repofake"
	"github.com/jrsteele09/go-ticket-client/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	api       *testutil.FakeAPI
	store     *repofake.FakeTokenStore
	container *app.Container
}

func setupTestFixture(t *testing.T, options ...app.Option) *testFixture {
	t.Helper()
	f := &testFixture{
		api:   testutil.NewFakeAPI(t),
		store: repofake.NewFakeTokenStore(),
	}
	t.Setenv("API_URL", f.api.URL)
	t.Setenv("TICKETCTL_TRACE", "")

	options = append([]app.Option{
		app.WithStore(f.store),
		app.WithHTTPClient(f.api.Client()),
		app.WithLogger(zerolog.Nop()),
	}, options...)

	var err error
	f.container, err = app.New(config.New(), options...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.container.Close(context.Background()) })
	return f
}

func (f *testFixture) signIn(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, tokenstore.SlotAccessToken, testutil.ValidToken(t)))
	require.NoError(t, f.store.Set(ctx, tokenstore.SlotRefreshToken, "refresh-1"))
	require.NoError(t, auth.SaveProfile(ctx, f.store, &users.Profile{ID: "7", Role: users.RoleAdmin}))
}

func TestNew_StoreBackends(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "memory")
		c, err := app.New(config.New(), app.WithLogger(zerolog.Nop()))
		require.NoError(t, err)
		require.IsType(t, &repofake.FakeTokenStore{}, c.Store)
		require.NoError(t, c.Close(context.Background()))
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		t.Setenv("STORE_BACKEND", "file")
		t.Setenv("TICKETCTL_SESSION_FILE", path)
		c, err := app.New(config.New(), app.WithLogger(zerolog.Nop()))
		require.NoError(t, err)
		store, ok := c.Store.(*filestore.FileStore)
		require.True(t, ok)
		require.Equal(t, path, store.Path())
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		t.Setenv("STORE_BACKEND", "redis")
		t.Setenv("REDIS_ADDR", mr.Addr())
		t.Setenv("REDIS_KEY_PREFIX", "test:")
		c, err := app.New(config.New(), app.WithLogger(zerolog.Nop()))
		require.NoError(t, err)
		require.IsType(t, &redisstore.RedisStore{}, c.Store)

		require.NoError(t, c.Store.Set(context.Background(), tokenstore.SlotRefreshToken, "r"))
		require.True(t, mr.Exists("test:refresh_token"))
		require.NoError(t, c.Close(context.Background()))
	})
}

func TestContainer_SessionExpiryReturnsToLogin(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.signIn(t)
	f.api.JSON(http.MethodGet, "/api/tickets/", http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
	f.api.JSON(http.MethodPost, "/api/auth/jwt/refresh/", http.StatusUnauthorized, map[string]string{"detail": "Token is blacklisted"})

	nav, err := f.container.Navigator.Navigate(ctx, router.RouteTickets)
	require.NoError(t, err)
	require.Equal(t, router.RouteTickets, nav.Path)

	err = f.container.Collection.LoadTickets(ctx)
	require.ErrorIs(t, err, ierrors.ErrSessionExpired)

	require.Zero(t, f.store.Len())
	require.Nil(t, f.container.Session.User())
	require.False(t, f.container.Session.IsAuthenticated(ctx))
	require.Equal(t, router.RouteLogin, f.container.Navigator.Current())
	require.Equal(t, 1, f.api.Calls(http.MethodPost, "/api/auth/jwt/refresh/"))
}

func TestContainer_RefreshKeepsSession(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.signIn(t)
	fresh := testutil.ValidToken(t)
	f.api.Handle(http.MethodGet, "/api/tickets/stats/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+fresh {
			testutil.WriteJSON(w, http.StatusUnauthorized, map[string]string{"detail": "expired"})
			return
		}
		testutil.WriteJSON(w, http.StatusOK, map[string]int{"total": 1})
	})
	f.api.JSON(http.MethodPost, "/api/auth/jwt/refresh/", http.StatusOK, map[string]string{"access": fresh})

	require.NoError(t, f.container.Session.InitAuth(ctx))
	require.NoError(t, f.container.Collection.LoadStats(ctx))
	require.Equal(t, 1, f.container.Collection.Stats().Total)
	require.True(t, f.container.Session.IsVerified(ctx))
	require.Equal(t, 2, f.api.Calls(http.MethodGet, "/api/tickets/stats/"))
}

func TestContainer_TraceOutput(t *testing.T) {
	var buf bytes.Buffer
	f := setupTestFixture(t, app.WithTraceOutput(&buf, false))
	f.signIn(t)
	f.api.JSON(http.MethodGet, "/api/tickets/stats/", http.StatusOK, map[string]int{"total": 0})

	require.NoError(t, f.container.Collection.LoadStats(context.Background()))
	require.Contains(t, buf.String(), "/api/tickets/stats/ 200")
	require.Contains(t, buf.String(), "GET")

	req := f.api.LastRequest(t, http.MethodGet, "/api/tickets/stats/")
	require.NotEmpty(t, req.Authorization)
}
