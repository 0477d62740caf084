package route

import (
	"reflect"
	"sync"

	"code.soquee.net/route/internal/rlog"
	"code.soquee.net/route/routeconfig"
)

// Router is the process-wide routing registry: a trie of compiled patterns
// (C4) guarded by a mutex, plus the bookkeeping Clear needs to restore
// system routes.
//
// Spec §5 describes the guarding mutex as "re-entrant", because
// registration consults the matcher to detect duplicates while already
// holding the lock. Rather than hand-roll a goroutine-aware reentrant
// lock, Router splits every public, locking method from a lock-free
// internal implementation that the public methods call into; registerLocked
// can therefore walk rt.routes and call removeRouteLocked directly without
// reacquiring anything. This is the same shape net/http.ServeMux and most
// of the Go standard library use for the same problem.
type Router struct {
	mu                   sync.Mutex
	root                 trieNode
	routes               []*Route
	system               []*Route
	handlers             map[interface{}][]*Route
	logger               *rlog.Logger
	scriptName           string
	caseInsensitiveHosts bool
}

// Option configures a Router built by New.
type Option func(*Router)

// WithLogger installs an *rlog.Logger for duplicate-registration warnings
// and other noteworthy events. Passing nil is equivalent to rlog.Discard().
func WithLogger(l *rlog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// WithLogFile is shorthand for WithLogger(rlog.New(rlog.WithFile(path))).
func WithLogFile(path string) Option {
	return func(r *Router) { r.logger = rlog.New(rlog.WithFile(path)) }
}

// WithScriptName sets the prefix Build prepends to relative URLs.
func WithScriptName(name string) Option {
	return func(r *Router) { r.scriptName = name }
}

// WithCaseInsensitiveHosts controls whether pattern and request hosts run
// through C10's punycode/case normalization before comparison at all.
// Routers default to true, matching RFC 3986's "host comparison is
// case-insensitive"; false makes host comparison byte-exact.
func WithCaseInsensitiveHosts(caseInsensitive bool) Option {
	return func(r *Router) { r.caseInsensitiveHosts = caseInsensitive }
}

// WithConfig applies a routeconfig.Config loaded by the caller (typically
// via routeconfig.Load). It is equivalent to issuing the corresponding
// WithLogFile/WithScriptName/WithCaseInsensitiveHosts options for whichever
// fields are set. A zero-value Config (routeconfig.Load found no file)
// changes nothing, so an absent route.yaml never downgrades a Router from
// its New default.
func WithConfig(cfg routeconfig.Config) Option {
	return func(r *Router) {
		if cfg.ScriptName != "" {
			r.scriptName = cfg.ScriptName
		}
		if cfg.LogFile != "" {
			opts := []rlog.Option{rlog.WithFile(cfg.LogFile)}
			if cfg.LogMaxSizeMB > 0 {
				opts = append(opts, rlog.WithMaxSize(cfg.LogMaxSizeMB))
			}
			if cfg.LogMaxBackups > 0 {
				opts = append(opts, rlog.WithMaxBackups(cfg.LogMaxBackups))
			}
			r.logger = rlog.New(opts...)
		}
		if cfg.CaseInsensitiveHosts != nil {
			r.caseInsensitiveHosts = *cfg.CaseInsensitiveHosts
		}
	}
}

// New builds an empty Router. Without WithLogger/WithLogFile, it logs
// nothing (rlog.Discard's nil Logger). Host comparison defaults to
// case-insensitive; WithConfig or WithCaseInsensitiveHosts(false) override
// that.
func New(opts ...Option) *Router {
	r := &Router{handlers: make(map[interface{}][]*Route), caseInsensitiveHosts: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Default is the package-level Router the top-level Register, Dispatch,
// Build, RemoveURL, RemoveHandler, and Clear functions delegate to, mirroring spec §9's note
// that "a module-level default Router may be offered for convenience."
var Default = New()

// Register compiles url against d and inserts it into the default Router.
func Register(handler interface{}, url, host string, port int, hasPort, redirect bool, headers []Header, d HandlerDescriptor, system bool) (*Route, error) {
	return Default.Register(handler, url, host, port, hasPort, redirect, headers, d, system)
}

// Dispatch finds the best-matching routes in the default Router.
func Dispatch(host string, hasHost bool, port int, hasPort bool, rawURL string) ([]DispatchResult, error) {
	return Default.Dispatch(host, hasHost, port, hasPort, rawURL)
}

// Build reverses a route in the default Router into a URL string.
func Build(route *Route, positional []interface{}, named map[string]interface{}, reqHost string, reqHasHost bool, reqPort int, reqHasPort bool) (string, error) {
	return Default.Build(route, positional, named, reqHost, reqHasHost, reqPort, reqHasPort)
}

// RemoveURL removes every route in the default Router matching rawURL.
func RemoveURL(rawURL, host string, port int, hasPort bool) int {
	return Default.RemoveURL(rawURL, host, port, hasPort)
}

// RemoveHandler removes every route in the default Router bound to handler.
func RemoveHandler(handler interface{}) int {
	return Default.RemoveHandler(handler)
}

// Clear wipes every route from the default Router, then reinserts its
// system routes.
func Clear() {
	Default.Clear()
}

// Register compiles a pattern from url (scoped to host/port, if given)
// against d, wraps it with handler into a Route, and inserts it into the
// trie (C1 → C3 → C4 in spec §2's data-flow diagram).
//
// If an existing route shares the new one's URL map (spec §4.2) and its
// literal path text, it is removed — with a logged warning, not an error —
// and the new route takes its place.
func (rt *Router) Register(handler interface{}, url, host string, port int, hasPort, redirect bool, headers []Header, d HandlerDescriptor, system bool) (*Route, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.registerLocked(handler, url, host, port, hasPort, redirect, headers, d, system)
}

func (rt *Router) registerLocked(handler interface{}, url, host string, port int, hasPort, redirect bool, headers []Header, d HandlerDescriptor, system bool) (*Route, error) {
	p, err := ParsePattern(url, host, port, hasPort, &d, rt.caseInsensitiveHosts)
	if err != nil {
		return nil, err
	}
	nr := newRoute(p, handler, d, redirect, headers, system)

	for _, existing := range rt.routes {
		if sameURLMap(existing, nr) && samePathLiterals(existing.pattern, nr.pattern) {
			rt.logger.Warn("route: replacing existing registration for %q with new registration", url)
			rt.removeRouteLocked(existing)
			break
		}
	}

	rt.root.insert(nr)
	rt.routes = append(rt.routes, nr)
	if system {
		rt.system = append(rt.system, nr)
	}
	key := handlerKey(handler)
	rt.handlers[key] = append(rt.handlers[key], nr)
	return nr, nil
}

// Dispatch parses rawURL (path plus query string) and finds the
// best-matching routes for (host, port, that path, that query), per the
// matcher in spec §4.3. It never returns a dispatch-time error for an
// unmatched request — an empty slice means no route matched — but a
// malformed rawURL (bad percent-encoding) is reported, since that is a
// caller bug rather than "no route."
func (rt *Router) Dispatch(host string, hasHost bool, port int, hasPort bool, rawURL string) ([]DispatchResult, error) {
	segments, query, err := splitURL(rawURL)
	if err != nil {
		return nil, err
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return dispatch(&rt.root, host, hasHost, port, hasPort, segments, query, rt.caseInsensitiveHosts), nil
}

// Build reverses route plus the supplied bindings into a canonical URL,
// per spec §4.4.
func (rt *Router) Build(route *Route, positional []interface{}, named map[string]interface{}, reqHost string, reqHasHost bool, reqPort int, reqHasPort bool) (string, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return buildURL(route, positional, named, reqHost, reqHasHost, reqPort, reqHasPort, rt.scriptName, rt.caseInsensitiveHosts)
}

// RemoveURL compiles rawURL the same way Register would and removes every
// currently-registered route sharing its URL map and its literal path text,
// returning how many were removed.
func (rt *Router) RemoveURL(rawURL, host string, port int, hasPort bool) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	// A permissive descriptor: RemoveURL only needs the pattern's shape
	// (which slots it binds, where) to compare url maps, never the
	// identity of the handler it would have been registered against.
	permissive := HandlerDescriptor{HasVariadicPositional: true, HasVariadicNamed: true}
	probe, err := ParsePattern(rawURL, host, port, hasPort, &permissive, rt.caseInsensitiveHosts)
	if err != nil {
		return 0
	}
	probeRoute := newRoute(probe, nil, HandlerDescriptor{}, false, nil, false)

	var removed int
	for _, existing := range append([]*Route(nil), rt.routes...) {
		if sameURLMap(existing, probeRoute) && samePathLiterals(existing.pattern, probe) {
			rt.removeRouteLocked(existing)
			removed++
		}
	}
	return removed
}

// RemoveHandler removes every route bound to handler, returning how many
// were removed.
func (rt *Router) RemoveHandler(handler interface{}) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	key := handlerKey(handler)
	bound := rt.handlers[key]
	for _, r := range append([]*Route(nil), bound...) {
		rt.removeRouteLocked(r)
	}
	return len(bound)
}

// Clear wipes every registered route, then reinserts the routes flagged
// system at registration time (spec §4.2's "Clear operation").
func (rt *Router) Clear() {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.root = trieNode{}
	rt.routes = nil
	rt.handlers = make(map[interface{}][]*Route)
	system := rt.system
	rt.system = nil
	for _, r := range system {
		rt.root.insert(r)
		rt.routes = append(rt.routes, r)
		rt.system = append(rt.system, r)
		key := handlerKey(r.handler)
		rt.handlers[key] = append(rt.handlers[key], r)
	}
	rt.logger.Info("route: reinserted %d system route(s) after Clear", len(system))
}

// removeRouteLocked deletes route from the trie and every bookkeeping
// slice that tracks it. Callers must already hold rt.mu.
func (rt *Router) removeRouteLocked(route *Route) {
	rt.root.remove(route)
	rt.routes = removeRoute(rt.routes, route)
	rt.system = removeRoute(rt.system, route)
	key := handlerKey(route.handler)
	rt.handlers[key] = removeRoute(rt.handlers[key], route)
}

func removeRoute(routes []*Route, target *Route) []*Route {
	for i, r := range routes {
		if r == target {
			return append(routes[:i:i], routes[i+1:]...)
		}
	}
	return routes
}

// samePathLiterals reports whether a and b carry the same literal text at
// every literal path position, i.e. whether they sit at the same trie node.
// sameURLMap ignores literal text, so it is checked first: that also
// guarantees the two paths have equal length.
func samePathLiterals(a, b *Pattern) bool {
	for i := range a.path {
		litA, litB := a.path[i].kind == componentLiteral, b.path[i].kind == componentLiteral
		if litA != litB || (litA && a.path[i].literal != b.path[i].literal) {
			return false
		}
	}
	return true
}

// handlerKey normalizes handler into something usable as a map key: Go
// func values are not comparable, so a func handler is keyed by its code
// pointer instead of the value itself. Any other handler value is used as
// its own key, on the assumption that handlers are either funcs or
// comparable values (e.g. a pointer to a struct implementing some
// interface the host platform expects).
func handlerKey(handler interface{}) interface{} {
	v := reflect.ValueOf(handler)
	if v.Kind() == reflect.Func {
		return v.Pointer()
	}
	return handler
}
