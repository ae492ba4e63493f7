// Package app assembles the client: one Container per process holds every
// service and the session state they share.
package app

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/jrsteele09/go-ticket-client/auth"
	"github.com/jrsteele09/go-ticket-client/gateway"
	"github.com/jrsteele09/go-ticket-client/internal/config"
	"github.com/jrsteele09/go-ticket-client/internal/logging"
	"github.com/jrsteele09/go-ticket-client/internal/telemetry"
	"github.com/jrsteele09/go-ticket-client/router"
	"github.com/jrsteele09/go-ticket-client/sessions"
	"github.com/jrsteele09/go-ticket-client/tickets"
	"github.com/jrsteele09/go-ticket-client/token/jwt"
	"github.com/jrsteele09/go-ticket-client/tokenstore"
	"github.com/jrsteele09/go-ticket-client/tokenstore/filestore"
	"github.com/jrsteele09/go-ticket-client/tokenstore/redisstore"
	"github.com/jrsteele09/go-ticket-client/tokenstore/repofake"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Container struct {
	Config     config.Config
	Log        zerolog.Logger
	Store      tokenstore.Repo
	Gateway    *gateway.Client
	Auth       *auth.Service
	Session    *sessions.Manager
	Tickets    *tickets.Service
	Collection *tickets.Collection
	Navigator  *router.Navigator

	closers []func(context.Context) error
}

type settings struct {
	store      tokenstore.Repo
	httpClient *http.Client
	logger     *zerolog.Logger
	notifier   tickets.Notifier
	trace      io.Writer
	colour     bool
}

type Option func(*settings)

// WithStore replaces the configured token store backend.
func WithStore(s tokenstore.Repo) Option {
	return func(o *settings) {
		o.store = s
	}
}

// WithHTTPClient sets the client whose transport the gateway builds on.
func WithHTTPClient(c *http.Client) Option {
	return func(o *settings) {
		o.httpClient = c
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *settings) {
		o.logger = &l
	}
}

func WithNotifier(n tickets.Notifier) Option {
	return func(o *settings) {
		o.notifier = n
	}
}

// WithTraceOutput writes a one line trace of every API call to w.
func WithTraceOutput(w io.Writer, colour bool) Option {
	return func(o *settings) {
		o.trace = w
		o.colour = colour
	}
}

// New wires the client together from cfg. When the gateway gives up on a
// refresh the session state is reset and the navigator is sent to the login
// route.
func New(cfg config.Config, options ...Option) (*Container, error) {
	var s settings
	for _, opt := range options {
		opt(&s)
	}

	c := &Container{Config: cfg}
	if s.logger != nil {
		c.Log = *s.logger
	} else {
		c.Log = logging.New(cfg.GetLogLevel(), cfg.GetEnv())
	}
	c.closers = append(c.closers, telemetry.Setup(cfg.GetAppName()))

	c.Store = s.store
	if c.Store == nil {
		store, closer, err := newStore(cfg)
		if err != nil {
			return nil, errors.Wrap(err, "[app.New] token store")
		}
		c.Store = store
		if closer != nil {
			c.closers = append(c.closers, closer)
		}
	}

	c.Gateway = gateway.New(cfg.GetAPIBaseURL(), c.Store,
		gateway.WithHTTPClient(c.newHTTPClient(s)),
		gateway.WithLogger(c.Log),
		gateway.WithSessionExpiredHandler(c.sessionExpired),
	)

	var err error
	if c.Auth, err = auth.NewService(c.Gateway, c.Store,
		auth.WithRefresher(c.Gateway.Refresher()),
		auth.WithLogger(c.Log),
	); err != nil {
		return nil, errors.Wrap(err, "[app.New]")
	}

	inspector := jwt.NewInspector(jwt.WithExpiryMargin(cfg.GetTokenExpiryMargin()))
	if c.Session, err = sessions.NewManager(c.Auth, c.Store, sessions.WithInspector(inspector), sessions.WithLogger(c.Log)); err != nil {
		return nil, errors.Wrap(err, "[app.New]")
	}

	if c.Tickets, err = tickets.NewService(c.Gateway, tickets.WithServiceLogger(c.Log)); err != nil {
		return nil, errors.Wrap(err, "[app.New]")
	}
	collectionOptions := []tickets.CollectionOption{
		tickets.WithRenewDays(cfg.GetDefaultRenewDays()),
		tickets.WithCollectionLogger(c.Log),
	}
	if s.notifier != nil {
		collectionOptions = append(collectionOptions, tickets.WithNotifier(s.notifier))
	}
	c.Collection = tickets.NewCollection(c.Tickets, collectionOptions...)

	guard := router.NewGuard(c.Session, router.WithGuardLogger(c.Log))
	c.Navigator = router.NewNavigator(guard, router.WithNavigatorLogger(c.Log))

	return c, nil
}

func (c *Container) sessionExpired(ctx context.Context) {
	c.Session.Reset()
	c.Navigator.Hard(ctx, router.RouteLogin)
}

// newHTTPClient layers request ids, logging, tracing and optional trace
// output over the base transport.
func (c *Container) newHTTPClient(s settings) *http.Client {
	client := &http.Client{}
	if s.httpClient != nil {
		*client = *s.httpClient
	}

	trace := s.trace
	if trace == nil && c.Config.GetTraceRequests() {
		trace = os.Stderr
	}

	middleware := []gateway.Middleware{
		gateway.RequestIDMiddleware(),
		gateway.LoggingMiddleware(c.Log),
	}
	if trace != nil {
		middleware = append(middleware, gateway.TraceMiddleware(trace, s.colour))
	}
	client.Transport = gateway.ChainTransport(telemetry.Transport(client.Transport), middleware...)
	return client
}

// Close releases the store connection and flushes pending spans.
func (c *Container) Close(ctx context.Context) error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}

func newStore(cfg config.StoreConfig) (tokenstore.Repo, func(context.Context) error, error) {
	switch cfg.GetStoreBackend() {
	case config.StoreBackendMemory:
		return repofake.NewFakeTokenStore(), nil, nil
	case config.StoreBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
			DB:       cfg.GetRedisDB(),
		})
		closer := func(context.Context) error { return client.Close() }
		return redisstore.New(client, cfg.GetRedisKeyPrefix()), closer, nil
	default:
		path := cfg.GetSessionFile()
		if path == "" {
			return nil, nil, errors.New("[app.newStore] session file path is empty")
		}
		return filestore.New(path), nil, nil
	}
}
