package router_test

import (
	"context"
	"testing"

	ierrors "github.com/jrsteele09/go-ticket-client/internal/errors"
	"github.com/jrsteele09/go-ticket-client/router"
	"github.com/stretchr/testify/require"
)

func TestNavigator_Navigate(t *testing.T) {
	ctx := context.Background()

	t.Run("follows redirects to a stable route", func(t *testing.T) {
		var moves [][2]string
		nav := router.NewNavigator(router.NewGuard(&fakeSession{}),
			router.WithOnMove(func(from, to string) { moves = append(moves, [2]string{from, to}) }))

		result, err := nav.Navigate(ctx, router.RouteHome)
		require.NoError(t, err)
		require.Equal(t, router.RouteLogin, result.Path)
		require.Equal(t, []string{router.RouteDashboard, router.RouteLogin}, result.Redirects)
		require.True(t, result.Redirected())
		require.Equal(t, router.RouteLogin, nav.Current())
		require.Equal(t, [][2]string{{"", router.RouteLogin}}, moves)
	})

	t.Run("verified session lands where asked", func(t *testing.T) {
		nav := router.NewNavigator(router.NewGuard(&fakeSession{authenticated: true, verified: true}))

		result, err := nav.Navigate(ctx, "tickets")
		require.NoError(t, err)
		require.Equal(t, router.RouteTickets, result.Path)
		require.False(t, result.Redirected())
	})

	t.Run("redirect loops are cut off", func(t *testing.T) {
		table := router.NewTable(
			router.Route{Path: "/a", Redirect: "/b"},
			router.Route{Path: "/b", Redirect: "/a"},
		)
		nav := router.NewNavigator(router.NewGuard(&fakeSession{}, router.WithRoutes(table)))

		_, err := nav.Navigate(ctx, "/a")
		require.ErrorIs(t, err, ierrors.ErrRedirectLoop)
		require.Empty(t, nav.Current())
	})

	t.Run("unknown route keeps the current one", func(t *testing.T) {
		nav := router.NewNavigator(router.NewGuard(&fakeSession{}))
		_, err := nav.Navigate(ctx, router.RouteLogin)
		require.NoError(t, err)

		_, err = nav.Navigate(ctx, "/missing")
		require.ErrorIs(t, err, ierrors.ErrRouteNotFound)
		require.Equal(t, router.RouteLogin, nav.Current())
	})
}

func TestNavigator_Hard(t *testing.T) {
	ctx := context.Background()
	session := &fakeSession{authenticated: true, verified: true}
	nav := router.NewNavigator(router.NewGuard(session))

	_, err := nav.Navigate(ctx, router.RouteTickets)
	require.NoError(t, err)

	// the session went away underneath the navigator
	session.authenticated, session.verified = false, false
	result := nav.Hard(ctx, router.RouteLogin)
	require.Equal(t, router.RouteLogin, result.Path)
	require.Equal(t, router.RouteLogin, nav.Current())

	result = nav.Hard(ctx, "/not-a-route")
	require.Equal(t, "/not-a-route", result.Path)
	require.Equal(t, "/not-a-route", nav.Current())
}
