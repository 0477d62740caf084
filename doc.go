// Package route is a URL routing core: a registry of declared routes, a
// pattern language for describing them, and the match/priority algorithm
// and reverse-build algorithm that make the registry useful in both
// directions.
//
//	d := route.HandlerDescriptor{Names: []string{"id"}}
//	r, err := route.Register(showArticle, "/articles/$1", "", 0, false, false, nil, d, false)
//	results, err := route.Dispatch("", false, 0, false, "/articles/42")
//	url, err := route.Build(r, []interface{}{"42"}, nil, "", false, 0, false)
//
// Pattern language
//
// A pattern is a rooted path, optionally followed by a query string. Each
// path segment and query value is one of:
//
//	literal        any run of characters containing no unescaped '$'
//	$N             a positional parameter, 1-based in source syntax
//	$name          a named parameter
//	$*             trailing variadic wildcard; only legal as the final
//	               path segment, never in the query
//
// '$$' denotes a literal '$'. A segment may interleave literal and
// parameter tokens ("$1-$2" captures the substrings before and after the
// hyphen); the router synthesizes a regular expression for it.
//
// Registration resolves each parameter reference against a
// HandlerDescriptor supplied by the caller: positional references are
// checked against its declared names (falling back to its variadic
// positional sink), and named references are either re-classified as
// positional (when they match a declared name) or consumed by its
// variadic named sink.
//
// Dispatch and reverse build
//
// Router.Dispatch walks the registry's trie for an incoming request and
// scores every candidate route that could plausibly match, preferring an
// exact host and port over a pinned path literal over a captured
// parameter, and breaking ties by how much of the request's query string a
// route actually consumed. Router.Build does the opposite: given a route
// and a set of parameter bindings, it renders the canonical URL that would
// dispatch back to it, omitting query parameters left at their default
// value.
package route // import "code.soquee.net/route"
