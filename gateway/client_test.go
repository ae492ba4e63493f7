package gateway_test

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/go-ticket-client/gateway"
	ierrors "github.com/jrsteele09/go-ticket-client/internal/errors"
	"github.com/jrsteele09/go-ticket-client/internal/testutil"
	"github.com/jrsteele09/go-ticket-client/tokenstore"
	"github.com/jrsteele09/go-ticket-client/tokenstore/repofake"
	"github.com/stretchr/testify/require"
)

const (
	ticketsPath = "/api/tickets/"
	refreshPath = "/api/auth/jwt/refresh/"
)

type testFixture struct {
	api     *testutil.FakeAPI
	store   *repofake.FakeTokenStore
	client  *gateway.Client
	expired atomic.Int32
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	f := &testFixture{
		api:   testutil.NewFakeAPI(t),
		store: repofake.NewFakeTokenStore(),
	}
	f.client = gateway.New(f.api.URL, f.store,
		gateway.WithHTTPClient(f.api.Client()),
		gateway.WithSessionExpiredHandler(func(context.Context) { f.expired.Add(1) }),
	)
	return f
}

func (f *testFixture) seed(t *testing.T, access, refresh string) {
	t.Helper()
	ctx := context.Background()
	if access != "" {
		require.NoError(t, f.store.Set(ctx, tokenstore.SlotAccessToken, access))
	}
	if refresh != "" {
		require.NoError(t, f.store.Set(ctx, tokenstore.SlotRefreshToken, refresh))
	}
	require.NoError(t, f.store.Set(ctx, tokenstore.SlotUserData, `{"id":7}`))
}

// acceptOnly answers 200 for the given bearer token and 401 for anything else.
func (f *testFixture) acceptOnly(token string) {
	f.api.Handle(http.MethodGet, ticketsPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			testutil.WriteJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
			return
		}
		testutil.WriteJSON(w, http.StatusOK, []map[string]string{{"ticket_number": "T-1"}})
	})
}

func TestClient_AuthorizationHeader(t *testing.T) {
	ctx := context.Background()

	t.Run("bearer attached when stored", func(t *testing.T) {
		f := setupTestFixture(t)
		f.seed(t, "access-1", "")
		f.api.JSON(http.MethodGet, ticketsPath, http.StatusOK, []any{})

		require.NoError(t, f.client.Get(ctx, "/tickets/", nil, nil))
		req := f.api.LastRequest(t, http.MethodGet, ticketsPath)
		require.Equal(t, "Bearer access-1", req.Authorization)
	})

	t.Run("no header when logged out", func(t *testing.T) {
		f := setupTestFixture(t)
		f.api.JSON(http.MethodPost, "/api/users/smart-login/", http.StatusOK, map[string]string{"temp_session_id": "abc"})

		var out map[string]string
		require.NoError(t, f.client.Post(ctx, "/users/smart-login/", map[string]string{"email": "a@b.c"}, &out))
		require.Equal(t, "abc", out["temp_session_id"])
		require.Empty(t, f.api.LastRequest(t, http.MethodPost, "/api/users/smart-login/").Authorization)
	})

	t.Run("query string", func(t *testing.T) {
		f := setupTestFixture(t)
		f.api.JSON(http.MethodGet, ticketsPath, http.StatusOK, []any{})

		require.NoError(t, f.client.Get(ctx, "/tickets/", map[string][]string{"status": {"open"}}, nil))
		require.Equal(t, "open", f.api.LastRequest(t, http.MethodGet, ticketsPath).Query.Get("status"))
	})
}

func TestClient_RefreshAndRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("one retry with the new token", func(t *testing.T) {
		f := setupTestFixture(t)
		f.seed(t, "stale", "refresh-1")
		f.acceptOnly("fresh")
		f.api.JSON(http.MethodPost, refreshPath, http.StatusOK, map[string]string{"access": "fresh"})

		var out []map[string]string
		require.NoError(t, f.client.Get(ctx, "/tickets/", nil, &out))
		require.Equal(t, "T-1", out[0]["ticket_number"])

		reqs := f.api.Requests(http.MethodGet, ticketsPath)
		require.Len(t, reqs, 2)
		require.Equal(t, "Bearer stale", reqs[0].Authorization)
		require.Equal(t, "Bearer fresh", reqs[1].Authorization)
		require.Equal(t, 1, f.api.Calls(http.MethodPost, refreshPath))

		stored, _ := f.store.Get(ctx, tokenstore.SlotAccessToken)
		require.Equal(t, "fresh", stored)
		require.Zero(t, f.expired.Load())
	})

	t.Run("401 on the retry is returned", func(t *testing.T) {
		f := setupTestFixture(t)
		f.seed(t, "stale", "refresh-1")
		f.acceptOnly("never")
		f.api.JSON(http.MethodPost, refreshPath, http.StatusOK, map[string]string{"access": "fresh"})

		err := f.client.Get(ctx, "/tickets/", nil, nil)
		require.ErrorIs(t, err, ierrors.ErrUnauthorized)
		require.NotErrorIs(t, err, ierrors.ErrSessionExpired)
		require.Equal(t, 2, f.api.Calls(http.MethodGet, ticketsPath))
		require.Equal(t, 1, f.api.Calls(http.MethodPost, refreshPath))
	})

	t.Run("failed refresh clears the session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.seed(t, "stale", "expired-refresh")
		f.acceptOnly("fresh")
		f.api.JSON(http.MethodPost, refreshPath, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})

		err := f.client.Get(ctx, "/tickets/", nil, nil)
		require.ErrorIs(t, err, ierrors.ErrSessionExpired)
		require.Equal(t, http.StatusUnauthorized, gateway.StatusCode(err))
		require.Equal(t, 1, f.api.Calls(http.MethodGet, ticketsPath))
		require.Zero(t, f.store.Len())
		require.Equal(t, int32(1), f.expired.Load())
	})

	t.Run("no refresh token clears the session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.seed(t, "stale", "")
		f.acceptOnly("fresh")

		err := f.client.Get(ctx, "/tickets/", nil, nil)
		require.ErrorIs(t, err, ierrors.ErrSessionExpired)
		require.Zero(t, f.api.Calls(http.MethodPost, refreshPath))
		require.Zero(t, f.store.Len())
		require.Equal(t, int32(1), f.expired.Load())
	})

	t.Run("other errors pass through", func(t *testing.T) {
		f := setupTestFixture(t)
		f.seed(t, "access", "refresh")
		f.api.JSON(http.MethodGet, ticketsPath, http.StatusForbidden, map[string]string{"detail": "You do not have permission to perform this action."})

		err := f.client.Get(ctx, "/tickets/", nil, nil)
		require.ErrorIs(t, err, ierrors.ErrForbidden)
		require.Equal(t, "You do not have permission to perform this action.", gateway.Message(err, ""))
		require.Zero(t, f.api.Calls(http.MethodPost, refreshPath))
	})
}

func TestClient_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	f := setupTestFixture(t)
	f.seed(t, "stale", "refresh-1")
	f.acceptOnly("fresh")

	var refreshes atomic.Int32
	f.api.Handle(http.MethodPost, refreshPath, func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		testutil.WriteJSON(w, http.StatusOK, map[string]string{"access": "fresh"})
	})

	const callers = 10
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- f.client.Get(context.Background(), "/tickets/", nil, nil)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), refreshes.Load())
}

func TestClient_TransportError(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Close()

	err := f.client.Get(context.Background(), "/tickets/", nil, nil)
	require.ErrorIs(t, err, ierrors.ErrTransport)
	require.True(t, strings.Contains(err.Error(), "/tickets/"))
}

func TestClient_CancelledContext(t *testing.T) {
	f := setupTestFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.client.Get(ctx, "/tickets/", nil, nil)
	require.ErrorIs(t, err, context.Canceled)
}
