package router

import (
	"strings"
)

// Route path constants
// All client routes are defined here so commands and redirects agree on them
const (
	RouteHome = "/"

	// Guest Routes
	RouteLogin    = "/login"
	RouteRegister = "/register"

	// Signed in, profile not yet confirmed
	RouteTwoFactorSetup = "/2fa-setup"

	// Verified Routes
	RouteDashboard       = "/dashboard"
	RouteProfile         = "/profile"
	RouteTickets         = "/tickets"
	RouteLogs            = "/logs"
	RouteExpiringTickets = "/expiring-tickets"
)

// Meta lists what a route demands of the session.
type Meta struct {
	RequiresAuth         bool
	RequiresVerification bool
	RequiresGuest        bool
	RequiresAdmin        bool
}

type Route struct {
	Path     string
	Name     string
	Redirect string // set for routes that only forward elsewhere
	Meta     Meta
}

// Table maps normalized paths to routes.
type Table map[string]Route

func NewTable(routes ...Route) Table {
	t := make(Table, len(routes))
	for _, r := range routes {
		t[Normalize(r.Path)] = r
	}
	return t
}

// DefaultTable is the ticket desk's route table.
func DefaultTable() Table {
	verified := Meta{RequiresAuth: true, RequiresVerification: true}
	return NewTable(
		Route{Path: RouteHome, Name: "home", Redirect: RouteDashboard},
		Route{Path: RouteLogin, Name: "login", Meta: Meta{RequiresGuest: true}},
		Route{Path: RouteRegister, Name: "register", Meta: Meta{RequiresGuest: true}},
		Route{Path: RouteTwoFactorSetup, Name: "2fa-setup", Meta: Meta{RequiresAuth: true}},
		Route{Path: RouteDashboard, Name: "dashboard", Meta: verified},
		Route{Path: RouteProfile, Name: "profile", Meta: verified},
		Route{Path: RouteTickets, Name: "tickets", Meta: verified},
		Route{Path: RouteLogs, Name: "logs", Meta: verified},
		Route{Path: RouteExpiringTickets, Name: "expiring-tickets", Meta: verified},
	)
}

func (t Table) Lookup(path string) (Route, bool) {
	r, ok := t[Normalize(path)]
	return r, ok
}

// Normalize drops any query and trailing slash and ensures a leading one,
// so "tickets/" and "/tickets?status=open" both name /tickets.
func Normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
