package router

import (
	"context"
	"sync"

	ierrors "github.com/jrsteele09/go-ticket-client/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MaxRedirects bounds how many guard redirects one navigation may follow.
const MaxRedirects = 8

// Navigation is where a navigation ended and the redirects taken to get there.
type Navigation struct {
	Requested string
	Path      string
	Redirects []string
}

func (n Navigation) Redirected() bool {
	return len(n.Redirects) > 0
}

// Navigator tracks the current route and moves between routes through the guard.
type Navigator struct {
	guard *Guard
	log   zerolog.Logger

	mu      sync.RWMutex
	current string
	onMove  func(from, to string)
}

type NavigatorOption func(*Navigator)

func WithNavigatorLogger(l zerolog.Logger) NavigatorOption {
	return func(n *Navigator) {
		n.log = l
	}
}

// WithOnMove registers a callback run after every change of route.
func WithOnMove(f func(from, to string)) NavigatorOption {
	return func(n *Navigator) {
		n.onMove = f
	}
}

func NewNavigator(guard *Guard, options ...NavigatorOption) *Navigator {
	n := &Navigator{
		guard: guard,
		log:   log.Logger,
	}
	for _, opt := range options {
		opt(n)
	}
	return n
}

func (n *Navigator) Current() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current
}

// Navigate follows guard redirects from path until a route allows entry.
// The current route only changes when the navigation succeeds.
func (n *Navigator) Navigate(ctx context.Context, path string) (Navigation, error) {
	nav := Navigation{Requested: Normalize(path)}
	target := nav.Requested
	for hops := 0; ; hops++ {
		if hops > MaxRedirects {
			return nav, ierrors.Wrapf(ierrors.ErrRedirectLoop, "navigating to %s", nav.Requested)
		}
		decision, err := n.guard.Resolve(ctx, target)
		if err != nil {
			return nav, err
		}
		if decision.Allowed() {
			nav.Path = decision.Route.Path
			n.moveTo(nav.Path)
			return nav, nil
		}
		n.log.Debug().Str("from", target).Str("to", decision.Redirect).Msg("navigation redirected")
		target = Normalize(decision.Redirect)
		nav.Redirects = append(nav.Redirects, target)
	}
}

// Hard forces a navigation after the session was torn down underneath the
// caller. The guard still runs; if it cannot settle, path becomes current
// regardless.
func (n *Navigator) Hard(ctx context.Context, path string) Navigation {
	nav, err := n.Navigate(ctx, path)
	if err != nil {
		n.log.Warn().Err(err).Str("path", path).Msg("forced navigation")
		nav.Path = Normalize(path)
		n.moveTo(nav.Path)
	}
	return nav
}

func (n *Navigator) moveTo(path string) {
	n.mu.Lock()
	from := n.current
	n.current = path
	onMove := n.onMove
	n.mu.Unlock()

	if onMove != nil && from != path {
		onMove(from, path)
	}
}
