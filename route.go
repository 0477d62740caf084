package route

// Header is an extra response header a route asks its eventual handler
// invocation to carry. The router never interprets it; it is opaque
// metadata threaded through from registration to whatever external
// collaborator renders the response (see spec §1's scope notes).
type Header struct {
	Name  string
	Value string
}

// Route binds a compiled Pattern to a handler and its descriptor. It is
// the only handle external collaborators are given; its sole safe
// operations are equality (Route values are always used as *Route, so
// pointer identity suffices) and the three exported queries below.
type Route struct {
	pattern    *Pattern
	handler    interface{}
	descriptor HandlerDescriptor
	redirect   bool
	headers    []Header
	system     bool

	// derived metadata, computed once at registration time
	usedPositional []int
	usedNamed      []string
	trailingStar   bool
}

// Pattern returns the compiled pattern this route was registered with.
func (r *Route) Pattern() *Pattern { return r.pattern }

// Handler returns the opaque handler reference supplied at registration.
func (r *Route) Handler() interface{} { return r.handler }

// System reports whether this route was flagged as belonging to the
// framework itself, and is therefore preserved across Clear.
func (r *Route) System() bool { return r.system }

func newRoute(p *Pattern, handler interface{}, d HandlerDescriptor, redirect bool, headers []Header, system bool) *Route {
	r := &Route{
		pattern:      p,
		handler:      handler,
		descriptor:   d,
		redirect:     redirect,
		headers:      headers,
		system:       system,
		trailingStar: p.star,
	}
	for i := range p.usedPositional {
		r.usedPositional = append(r.usedPositional, i)
	}
	for n := range p.usedNamed {
		r.usedNamed = append(r.usedNamed, n)
	}
	return r
}

// sameURLMap reports whether a and b have the same "url map" (spec §4.2):
// they bind the same positional indices and named keys at the same
// positions, under the same host/port scope. It is grounded directly on
// pony's Route.register.get_url_map closure, which reduces each route to
// "which slot does position i bind, if any" rather than comparing literal
// text or regexes.
func sameURLMap(a, b *Route) bool {
	pa, pb := a.pattern, b.pattern
	if pa.hasHost != pb.hasHost || pa.host != pb.host {
		return false
	}
	if pa.hasPort != pb.hasPort || pa.port != pb.port {
		return false
	}
	if pa.star != pb.star {
		return false
	}
	if len(pa.path) != len(pb.path) {
		return false
	}
	for i := range pa.path {
		if !sameComponentShape(pa.path[i], pb.path[i]) {
			return false
		}
	}
	if len(pa.query) != len(pb.query) {
		return false
	}
	for i := range pa.query {
		if pa.query[i].name != pb.query[i].name {
			return false
		}
		if !sameComponentShape(pa.query[i].comp, pb.query[i].comp) {
			return false
		}
	}
	return true
}

// sameComponentShape reports whether two components bind the same slot:
// both literal (any literal text), or both capturing the identical param
// reference.
func sameComponentShape(a, b component) bool {
	slotA, okA := bindingOf(a)
	slotB, okB := bindingOf(b)
	if okA != okB {
		return false
	}
	if !okA {
		return true // neither binds anything; both are plain literals/empty
	}
	return slotA == slotB
}

// bindingOf returns the single parameter reference a component binds, if
// any. A mixed component binds at most one distinguishing reference for
// url-map purposes: its first parameter token (mirrors pony, which keys
// duplicate detection off of the captured-value list's first entry).
func bindingOf(c component) (paramRef, bool) {
	switch c.kind {
	case componentSingle:
		return c.param, true
	case componentMixed:
		for _, t := range c.items {
			if t.isParam {
				return t.param, true
			}
		}
	}
	return paramRef{}, false
}
