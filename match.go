package route

import "sort"

// DispatchResult pairs a matched route with the concrete argument vector
// that should be passed to its handler.
type DispatchResult struct {
	Route      *Route
	Positional []interface{}
	Named      map[string]interface{}
}

// candidate is the internal bookkeeping evaluate produces for one route
// before ranking (spec §4.3's "(route, arglist, named_args, priority,
// unused_query_count)").
type candidate struct {
	route       *Route
	positional  []interface{}
	named       map[string]interface{}
	priority    int
	unusedQuery int
}

// dispatch walks root for segments, evaluates every candidate the walk
// turns up against (host, port, query), and returns the best-scoring,
// least-query-waste subset (spec §4.3 "Ranking"). caseInsensitiveHosts
// mirrors the same flag ParsePattern was compiled with, so the request
// host folds case the same way the registered pattern hosts did.
func dispatch(root *trieNode, host string, hasHost bool, port int, hasPort bool, segments []string, query []rawQueryPair, caseInsensitiveHosts bool) []DispatchResult {
	if hasHost {
		host = normalizeHost(host, caseInsensitiveHosts)
	}
	queryMap := make(map[string]string, len(query))
	for _, qp := range query {
		queryMap[qp.name] = qp.value
	}

	routes := root.walk(segments)

	var candidates []candidate
	for _, r := range routes {
		if c, ok := evaluate(r, host, hasHost, port, hasPort, segments, queryMap); ok {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	best := candidates[0].priority
	for _, c := range candidates[1:] {
		if c.priority > best {
			best = c.priority
		}
	}
	filtered := candidates[:0]
	for _, c := range candidates {
		if c.priority == best {
			filtered = append(filtered, c)
		}
	}

	minUnused := filtered[0].unusedQuery
	for _, c := range filtered[1:] {
		if c.unusedQuery < minUnused {
			minUnused = c.unusedQuery
		}
	}

	results := make([]DispatchResult, 0, len(filtered))
	for _, c := range filtered {
		if c.unusedQuery == minUnused {
			results = append(results, DispatchResult{Route: c.route, Positional: c.positional, Named: c.named})
		}
	}
	return results
}

// evaluate scores one candidate route against the request, binding
// captured values as it goes. A false second return means the candidate
// is rejected outright (host/port mismatch, a literal that didn't match, a
// regex that didn't match, a missing mandatory query key, or a converter
// that errored) — never surfaced to the caller, per spec §7.2.
func evaluate(r *Route, host string, hasHost bool, port int, hasPort bool, segments []string, queryMap map[string]string) (candidate, bool) {
	p := r.pattern
	priority := 0

	if p.hasHost {
		if !hasHost || p.host != host {
			return candidate{}, false
		}
		priority += 10000
	}
	if p.hasPort {
		if !hasPort || p.port != port {
			return candidate{}, false
		}
		priority += 100
	}

	positional := make(map[int]string)
	named := make(map[string]string)

	for i, c := range p.path {
		seg := segments[i]
		switch c.kind {
		case componentLiteral:
			if c.literal != seg {
				return candidate{}, false
			}
			priority++
		case componentEmpty:
			if seg != "" {
				return candidate{}, false
			}
		case componentSingle:
			bindCapture(c.param, seg, positional, named)
		case componentMixed:
			groups := c.regex.FindStringSubmatch(seg)
			if groups == nil {
				return candidate{}, false
			}
			n := bindGroups(c.items, groups[1:], positional, named)
			priority += n
		}
	}

	usedQueryKeys := make(map[string]bool)
	for _, qp := range p.query {
		val, present := queryMap[qp.name]
		switch qp.comp.kind {
		case componentLiteral, componentEmpty:
			if !present || val != qp.comp.literal {
				return candidate{}, false
			}
			usedQueryKeys[qp.name] = true
			priority++
		case componentSingle:
			if !present {
				if !hasUsableDefault(r, qp.comp.param) {
					return candidate{}, false
				}
				continue
			}
			usedQueryKeys[qp.name] = true
			bindCapture(qp.comp.param, val, positional, named)
		case componentMixed:
			if !present {
				if !allItemsHaveUsableDefault(r, qp.comp.items) {
					return candidate{}, false
				}
				continue
			}
			usedQueryKeys[qp.name] = true
			groups := qp.comp.regex.FindStringSubmatch(val)
			if groups == nil {
				return candidate{}, false
			}
			n := bindGroups(qp.comp.items, groups[1:], positional, named)
			priority += n
		}
	}

	unusedQuery := 0
	for name := range queryMap {
		if !usedQueryKeys[name] {
			unusedQuery++
		}
	}

	arglist, ok := assembleArguments(r, positional)
	if !ok {
		return candidate{}, false
	}
	if p.star {
		arglist = append(arglist, stringsToAny(segments[len(p.path):])...)
	}

	namedArgs := make(map[string]interface{}, len(named))
	for k, v := range named {
		namedArgs[k] = v
	}

	return candidate{route: r, positional: arglist, named: namedArgs, priority: priority, unusedQuery: unusedQuery}, true
}

// bindGroups binds a mixed component's regex capture groups to their
// parameters in source order, and returns the priority contribution: the
// count of literal tokens, plus one if the component ends in a literal
// (spec §4.3's mixed-component scoring rule).
func bindGroups(items []token, groups []string, positional map[int]string, named map[string]string) int {
	literalTokens := 0
	g := 0
	for _, t := range items {
		if t.isParam {
			bindCapture(t.param, groups[g], positional, named)
			g++
		} else {
			literalTokens++
		}
	}
	if len(items) > 0 && !items[len(items)-1].isParam {
		literalTokens++
	}
	return literalTokens
}

func bindCapture(ref paramRef, value string, positional map[int]string, named map[string]string) {
	if ref.kind == paramPositional {
		positional[ref.index] = value
	} else {
		named[ref.name] = value
	}
}

// hasUsableDefault reports whether ref is a positional parameter with a
// real (non-NoDefault) default value.
func hasUsableDefault(r *Route, ref paramRef) bool {
	if ref.kind != paramPositional {
		return false
	}
	def, ok := r.descriptor.defaultFor(ref.index)
	return ok && def != NoDefault
}

func allItemsHaveUsableDefault(r *Route, items []token) bool {
	for _, t := range items {
		if t.isParam && !hasUsableDefault(r, t.param) {
			return false
		}
	}
	return true
}

// assembleArguments builds the positional argument vector: defaults in
// their slots, then every captured value run through its converter (a
// converter error rejects the whole candidate), then a final check that no
// slot is left holding the NoDefault sentinel.
func assembleArguments(r *Route, positional map[int]string) ([]interface{}, bool) {
	d := &r.descriptor
	diff := d.diffIndex()
	arglist := make([]interface{}, len(d.Names))
	for i := diff; i < len(d.Names); i++ {
		arglist[i] = d.Defaults[i-diff]
	}

	indices := make([]int, 0, len(positional))
	for i := range positional {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	for _, idx := range indices {
		raw := positional[idx]
		var value interface{} = raw
		if conv, ok := d.converterFor(idx); ok {
			v, err := conv(raw)
			if err != nil {
				return nil, false
			}
			value = v
		}
		for len(arglist) <= idx {
			arglist = append(arglist, nil)
		}
		arglist[idx] = value
	}

	for i := diff; i < len(d.Names); i++ {
		if arglist[i] == NoDefault {
			return nil, false
		}
	}
	return arglist, true
}

func stringsToAny(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
