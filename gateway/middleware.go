package gateway

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-ticket-client/internal/ui"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

// Middleware decorates a transport.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// ChainTransport wraps base with mw. The first middleware is the outermost.
func ChainTransport(base http.RoundTripper, mw ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	chained := base
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chained = mw[i](chained)
	}
	return chained
}

// RequestIDMiddleware tags each request with an X-Request-ID unless one is set.
func RequestIDMiddleware() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(requestIDHeader) == "" {
				r = r.Clone(r.Context())
				r.Header.Set(requestIDHeader, uuid.NewString())
			}
			return next.RoundTrip(r)
		})
	}
}

// LoggingMiddleware logs every exchange at debug level.
func LoggingMiddleware(logger zerolog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			event := logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", r.Header.Get(requestIDHeader)).
				Dur("duration", time.Since(start))
			if err != nil {
				event.Err(err).Msg("api request failed")
				return resp, err
			}
			event.Int("status", resp.StatusCode).Msg("api request")
			return resp, nil
		})
	}
}

// TraceMiddleware writes one coloured line per request to w.
func TraceMiddleware(w io.Writer, colour bool) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(r)
			status := "ERR"
			if err == nil {
				status = fmt.Sprintf("%d", resp.StatusCode)
			}
			fmt.Fprintf(w, "[%s] %s %s\n", ui.Method(colour, r.Method), r.URL.Path, status)
			return resp, err
		})
	}
}
