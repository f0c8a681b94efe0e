package routes

import (
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pyomin/bluecool-admin/pkg/logger"
)

// TokenReader reports whether a session token exists. The token store
// satisfies it.
type TokenReader interface {
	Get() string
}

// Route a console screen
type Route struct {
	// Pattern is the path with :params, e.g. /posts/:postId/edit
	Pattern string
	// GuestOnly routes bounce authenticated operators to the dashboard
	GuestOnly bool
	// Public routes skip the token guard
	Public bool
}

// Match a resolved navigation
type Match struct {
	Route  Route
	Path   string
	Params map[string]string
}

// Registry is the console's navigation table with auth guards:
// /login is guest-only, everything else needs a token, unknown paths
// land on /dashboard, and session expiry lands on /login.
type Registry struct {
	tokens TokenReader
	log    zerolog.Logger

	mu        sync.Mutex
	routes    []compiledRoute
	current   Match
	listeners []func(Match)
}

type compiledRoute struct {
	route Route
	re    *regexp.Regexp
	names []string
}

// Table is the console's fixed route set
var Table = []Route{
	{Pattern: "/login", GuestOnly: true, Public: true},
	{Pattern: "/dashboard"},
	{Pattern: "/analytics"},
	{Pattern: "/posts"},
	{Pattern: "/posts/:postId/edit"},
	{Pattern: "/categories"},
	{Pattern: "/comments"},
	{Pattern: "/users"},
	{Pattern: "/settings"},
}

// NewRegistry compiles the route table
func NewRegistry(tokens TokenReader) *Registry {
	r := &Registry{
		tokens: tokens,
		log:    logger.WithComponent("routes"),
	}
	for _, route := range Table {
		r.routes = append(r.routes, compileRoute(route))
	}
	r.current = Match{Route: Table[0], Path: "/login", Params: map[string]string{}}
	return r
}

func compileRoute(route Route) compiledRoute {
	var names []string
	parts := strings.Split(route.Pattern, "/")
	escaped := make([]string, len(parts))
	for i, part := range parts {
		if strings.HasPrefix(part, ":") {
			names = append(names, part[1:])
			escaped[i] = "([^/]+)"
			continue
		}
		escaped[i] = regexp.QuoteMeta(part)
	}
	return compiledRoute{
		route: route,
		re:    regexp.MustCompile("^" + strings.Join(escaped, "/") + "$"),
		names: names,
	}
}

// NavigateTo resolves a path through the guards and fires listeners.
// It satisfies service.Navigator.
func (r *Registry) NavigateTo(path string) {
	match := r.resolve(path)

	r.mu.Lock()
	r.current = match
	listeners := append([]func(Match){}, r.listeners...)
	r.mu.Unlock()

	r.log.Debug().Str("path", match.Path).Msg("화면 이동")
	for _, fn := range listeners {
		fn(match)
	}
}

func (r *Registry) resolve(path string) Match {
	authed := r.tokens.Get() != ""

	cr, params, known := r.lookup(path)
	if !known {
		// Unknown paths land on the dashboard; the dashboard itself is
		// guarded below
		cr, params, _ = r.lookup("/dashboard")
		path = "/dashboard"
	}

	switch {
	case cr.route.GuestOnly && authed:
		cr, params, _ = r.lookup("/dashboard")
		path = "/dashboard"
	case !cr.route.Public && !authed:
		cr, params, _ = r.lookup("/login")
		path = "/login"
	}

	return Match{Route: cr.route, Path: path, Params: params}
}

func (r *Registry) lookup(path string) (compiledRoute, map[string]string, bool) {
	for _, cr := range r.routes {
		m := cr.re.FindStringSubmatch(path)
		if m == nil {
			continue
		}
		params := map[string]string{}
		for i, name := range cr.names {
			params[name] = m[i+1]
		}
		return cr, params, true
	}
	return compiledRoute{}, nil, false
}

// Current returns the active match
func (r *Registry) Current() Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// OnChange registers a navigation listener
func (r *Registry) OnChange(fn func(Match)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// SessionExpired is wired to the HTTP client's 401 hook: the operator
// lands on the login screen.
func (r *Registry) SessionExpired() {
	r.log.Warn().Msg("세션이 만료되어 로그인 화면으로 이동")
	r.NavigateTo("/login")
}
