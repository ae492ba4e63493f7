package router

import (
	"context"

	ierrors "github.com/jrsteele09/go-ticket-client/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SessionState is what the guard needs to know about the signed-in user.
type SessionState interface {
	InitAuth(ctx context.Context) error
	IsAuthenticated(ctx context.Context) bool
	IsVerified(ctx context.Context) bool
	IsAdmin() bool
}

// Decision is the outcome of guarding one navigation: either the route is
// allowed or the caller should go to Redirect instead.
type Decision struct {
	Route    Route
	Redirect string
}

func (d Decision) Allowed() bool {
	return d.Redirect == ""
}

type Guard struct {
	session SessionState
	routes  Table
	log     zerolog.Logger
}

type GuardOption func(*Guard)

func WithRoutes(t Table) GuardOption {
	return func(g *Guard) {
		g.routes = t
	}
}

func WithGuardLogger(l zerolog.Logger) GuardOption {
	return func(g *Guard) {
		g.log = l
	}
}

func NewGuard(session SessionState, options ...GuardOption) *Guard {
	g := &Guard{
		session: session,
		routes:  DefaultTable(),
		log:     log.Logger,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Resolve decides whether the session may enter path. The session is
// restored first; a failed restore does not block navigation, the checks
// simply see a signed-out user.
func (g *Guard) Resolve(ctx context.Context, path string) (Decision, error) {
	route, ok := g.routes.Lookup(path)
	if !ok {
		return Decision{}, ierrors.Wrapf(ierrors.ErrRouteNotFound, "%s", Normalize(path))
	}
	if route.Redirect != "" {
		return Decision{Route: route, Redirect: route.Redirect}, nil
	}

	if err := g.session.InitAuth(ctx); err != nil {
		g.log.Debug().Err(err).Str("route", route.Path).Msg("session restore failed, continuing")
	}

	meta := route.Meta
	switch {
	case meta.RequiresAuth && !g.session.IsAuthenticated(ctx):
		return Decision{Route: route, Redirect: RouteLogin}, nil
	case meta.RequiresVerification && !g.session.IsVerified(ctx):
		return Decision{Route: route, Redirect: RouteTwoFactorSetup}, nil
	case meta.RequiresGuest && g.session.IsAuthenticated(ctx):
		if g.session.IsVerified(ctx) {
			return Decision{Route: route, Redirect: RouteDashboard}, nil
		}
		return Decision{Route: route, Redirect: RouteTwoFactorSetup}, nil
	case meta.RequiresAdmin && !g.session.IsAdmin():
		return Decision{Route: route, Redirect: RouteDashboard}, nil
	}
	return Decision{Route: route}, nil
}
