package route

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// paramKind distinguishes the two parameter-reference shapes described in
// the pattern language: a positional slot (0-based internally, 1-based in
// source syntax) or a named handler argument.
type paramKind int

const (
	paramPositional paramKind = iota
	paramNamed
)

// paramRef identifies which handler argument a captured value feeds.
type paramRef struct {
	kind  paramKind
	index int
	name  string
}

func (p paramRef) String() string {
	if p.kind == paramPositional {
		return fmt.Sprintf("$%d", p.index+1)
	}
	return "$" + p.name
}

// token is the atomic unit produced while scanning one path segment or
// query value: either a literal run (with "$$" already collapsed to "$")
// or a parameter reference.
type token struct {
	isParam bool
	literal string
	param   paramRef
}

// componentKind is the shape a compiled path or query component takes.
type componentKind int

const (
	componentEmpty componentKind = iota
	componentLiteral
	componentSingle
	componentMixed
)

// component is a fully compiled path component or query value: a plain
// literal, a single parameter capturing an entire segment, a mixed
// literal/parameter sequence matched through a synthesized regular
// expression, or empty.
type component struct {
	kind    componentKind
	literal string
	param   paramRef
	regex   *regexp.Regexp
	items   []token // componentMixed only, in source order
}

// queryPair is one name/component entry from a pattern's query part.
type queryPair struct {
	name string
	comp component
}

// Pattern is a compiled URL template: an optional host/port scope, an
// ordered path, a trailing-wildcard flag, and an ordered query list.
type Pattern struct {
	raw string

	host    string
	hasHost bool
	port    int
	hasPort bool

	path []component
	star bool

	query []queryPair

	usedPositional map[int]bool
	usedNamed      map[string]bool
}

// patternBuilder accumulates parameter bindings while a Pattern's path and
// query are tokenized, so that duplicate and unknown-parameter checks can
// run incrementally (mirrors the teacher corpus's "parse then register"
// pattern from pony's Route.adjust).
type patternBuilder struct {
	descriptor *HandlerDescriptor
	pattern    *Pattern
}

func newPatternBuilder(d *HandlerDescriptor) *patternBuilder {
	return &patternBuilder{
		descriptor: d,
		pattern: &Pattern{
			usedPositional: make(map[int]bool),
			usedNamed:      make(map[string]bool),
		},
	}
}

// resolve re-classifies a named reference that happens to match an
// existing positional name, checks range/variadic eligibility, and records
// the binding so later duplicate checks can fire.
func (b *patternBuilder) resolve(ref paramRef) (paramRef, error) {
	d := b.descriptor
	if ref.kind == paramNamed {
		for i, n := range d.Names {
			if n == ref.name {
				ref = paramRef{kind: paramPositional, index: i}
				break
			}
		}
		if ref.kind == paramNamed {
			if !d.HasVariadicNamed {
				return ref, &UnknownParameterError{Name: ref.name}
			}
			if b.pattern.usedNamed[ref.name] {
				return ref, &DuplicateParameterError{Name: ref.name}
			}
			b.pattern.usedNamed[ref.name] = true
			return ref, nil
		}
	}

	idx := ref.index
	if idx < 0 || (idx >= len(d.Names) && !d.HasVariadicPositional) {
		return ref, &UnknownParameterError{Name: ref.String()}
	}
	if b.pattern.usedPositional[idx] {
		return ref, &DuplicateParameterError{Positional: true, Index: idx}
	}
	b.pattern.usedPositional[idx] = true
	return paramRef{kind: paramPositional, index: idx}, nil
}

// check verifies, after all tokens have been collected, that every
// positional parameter lacking a default is bound and that the bound
// indices form a dense prefix of 0..max_bound except where defaults fill
// the gap (spec §4.1 "Final check").
func (b *patternBuilder) check() error {
	d := b.descriptor
	p := b.pattern

	if p.star && !d.HasVariadicPositional {
		return &NoVariadicError{}
	}

	diff := d.diffIndex()
	for i := 0; i < diff; i++ {
		if !p.usedPositional[i] {
			return &UndefinedPathParameterError{Name: d.Names[i], Index: i}
		}
	}
	for i := diff; i < len(d.Names); i++ {
		if d.Defaults[i-diff] == NoDefault && !p.usedPositional[i] {
			return &UndefinedPathParameterError{Name: d.Names[i], Index: i}
		}
	}
	if len(p.usedPositional) > 0 {
		maxIdx := -1
		for idx := range p.usedPositional {
			if idx > maxIdx {
				maxIdx = idx
			}
		}
		for i := len(d.Names); i < maxIdx; i++ {
			if !p.usedPositional[i] {
				return &UndefinedPathParameterError{Index: i}
			}
		}
	}
	return nil
}

// tokenizeComponent scans one path segment or query value per the grammar
// in spec §4.1: a run of "$" DIGITS, "$" IDENT, or a literal chunk, with
// "$$" collapsing to a literal "$". Adjacent parameter tokens, and a "$"
// followed by neither digits nor an identifier, are rejected here, so a
// successful scan always consumes the whole input.
func tokenizeComponent(s string) ([]token, error) {
	var toks []token
	lastWasParam := false
	i := 0
	for i < len(s) {
		if s[i] != '$' {
			var buf strings.Builder
			for i < len(s) {
				if s[i] == '$' {
					if i+1 < len(s) && s[i+1] == '$' {
						buf.WriteByte('$')
						i += 2
						continue
					}
					break
				}
				buf.WriteByte(s[i])
				i++
			}
			toks = appendLiteral(toks, buf.String())
			lastWasParam = false
			continue
		}

		// s[i] == '$'
		if i+1 < len(s) && s[i+1] == '$' {
			toks = appendLiteral(toks, "$")
			i += 2
			lastWasParam = false
			continue
		}
		j := i + 1
		switch {
		case j < len(s) && isDigit(s[j]):
			k := j
			for k < len(s) && isDigit(s[k]) {
				k++
			}
			if lastWasParam {
				return nil, &InvalidComponentError{Component: s}
			}
			n, err := strconv.Atoi(s[j:k])
			if err != nil {
				return nil, &InvalidComponentError{Component: s, cause: err}
			}
			toks = append(toks, token{isParam: true, param: paramRef{kind: paramPositional, index: n - 1}})
			i = k
			lastWasParam = true
		case j < len(s) && isIdentStart(s[j]):
			k := j + 1
			for k < len(s) && isIdentCont(s[k]) {
				k++
			}
			if lastWasParam {
				return nil, &InvalidComponentError{Component: s}
			}
			toks = append(toks, token{isParam: true, param: paramRef{kind: paramNamed, name: s[j:k]}})
			i = k
			lastWasParam = true
		default:
			return nil, &InvalidComponentError{Component: s}
		}
	}
	return toks, nil
}

func appendLiteral(toks []token, s string) []token {
	if s == "" {
		return toks
	}
	if n := len(toks); n > 0 && !toks[n-1].isParam {
		toks[n-1].literal += s
		return toks
	}
	return append(toks, token{literal: s})
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

// synthesizeRegex builds the character-classed regular expression for a
// mixed component, per spec §4.1: each parameter becomes "([^C]*)" where C
// is the first character of the following literal chunk (or ".*" if the
// parameter is trailing); each literal becomes one character class per
// byte. The whole expression is anchored at both ends so a partial match
// can never silently pass (unlike the upstream implementation's
// non-end-anchored regex when the last token is a literal).
func synthesizeRegex(items []token) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteByte('^')
	for idx, t := range items {
		if !t.isParam {
			for i := 0; i < len(t.literal); i++ {
				sb.WriteString("[")
				sb.WriteString(regexp.QuoteMeta(string(t.literal[i])))
				sb.WriteString("]")
			}
			continue
		}
		if idx+1 < len(items) && len(items[idx+1].literal) > 0 {
			c := items[idx+1].literal[0]
			sb.WriteString("([^")
			sb.WriteString(regexp.QuoteMeta(string(c)))
			sb.WriteString("]*)")
		} else {
			sb.WriteString("(.*)")
		}
	}
	sb.WriteByte('$')
	return regexp.Compile(sb.String())
}

// compileComponent turns one already-split path segment or query value
// into a component, resolving and recording any parameter references it
// contains.
func (b *patternBuilder) compileComponent(raw string) (component, error) {
	toks, err := tokenizeComponent(raw)
	if err != nil {
		return component{}, err
	}
	switch len(toks) {
	case 0:
		return component{kind: componentEmpty}, nil
	case 1:
		t := toks[0]
		if !t.isParam {
			return component{kind: componentLiteral, literal: t.literal}, nil
		}
		ref, err := b.resolve(t.param)
		if err != nil {
			return component{}, err
		}
		return component{kind: componentSingle, param: ref}, nil
	default:
		resolved := make([]token, len(toks))
		for i, t := range toks {
			if !t.isParam {
				resolved[i] = t
				continue
			}
			ref, err := b.resolve(t.param)
			if err != nil {
				return component{}, err
			}
			resolved[i] = token{isParam: true, param: ref}
		}
		re, err := synthesizeRegex(resolved)
		if err != nil {
			return component{}, err
		}
		return component{kind: componentMixed, regex: re, items: resolved}, nil
	}
}

// ParsePattern compiles rawURL, with optional host/port overrides, into a
// Pattern bound to the supplied descriptor. It is the entry point for C1
// and is normally called from Router.Register rather than directly.
// caseInsensitiveHost controls whether the stored host is punycode- and
// case-normalized (routeconfig.Config.CaseInsensitiveHosts); with it false
// the host is stored exactly as given, and host comparison at
// dispatch/build time becomes byte-exact.
func ParsePattern(rawURL, host string, port int, hasPort bool, d *HandlerDescriptor, caseInsensitiveHost bool) (*Pattern, error) {
	segments, queryParts, err := splitURL(rawURL)
	if err != nil {
		return nil, err
	}

	if host != "" {
		if idx := strings.IndexByte(host, ':'); idx >= 0 {
			if hasPort {
				return nil, &DuplicatePortError{}
			}
			portStr := host[idx+1:]
			p, err := strconv.Atoi(portStr)
			if err != nil {
				return nil, &BadHostError{Host: host, cause: err}
			}
			host = host[:idx]
			port, hasPort = p, true
		}
	}

	b := newPatternBuilder(d)
	b.pattern.raw = rawURL
	if host != "" {
		b.pattern.host, b.pattern.hasHost = normalizeHost(host, caseInsensitiveHost), true
	}
	if hasPort {
		b.pattern.port, b.pattern.hasPort = port, true
	}

	for i, seg := range segments {
		if seg == "$*" {
			if i != len(segments)-1 {
				return nil, &MisplacedStarError{}
			}
			b.pattern.star = true
			continue
		}
		comp, err := b.compileComponent(seg)
		if err != nil {
			return nil, err
		}
		b.pattern.path = append(b.pattern.path, comp)
	}

	for _, qp := range queryParts {
		if qp.value == "$*" {
			return nil, &MisplacedStarError{InQuery: true}
		}
		comp, err := b.compileComponent(qp.value)
		if err != nil {
			return nil, err
		}
		b.pattern.query = append(b.pattern.query, queryPair{name: qp.name, comp: comp})
	}

	if err := b.check(); err != nil {
		return nil, err
	}
	return b.pattern, nil
}

type rawQueryPair struct {
	name  string
	value string
}

// splitURL separates rawURL into decoded path segments and an ordered list
// of decoded (name, value) query pairs. Percent-escapes and "+" are decoded
// in both the path and the query, matching the upstream split_url's strict
// parsing (a malformed escape is a hard failure, never a silent drop).
func splitURL(rawURL string) ([]string, []rawQueryPair, error) {
	pathPart, queryPart := rawURL, ""
	if idx := strings.IndexByte(rawURL, '?'); idx >= 0 {
		pathPart, queryPart = rawURL[:idx], rawURL[idx+1:]
	}
	if !strings.HasPrefix(pathPart, "/") {
		return nil, nil, &InvalidComponentError{Component: rawURL, cause: fmt.Errorf("url path must start with /")}
	}
	rawSegments := strings.Split(strings.TrimPrefix(pathPart, "/"), "/")
	segments := make([]string, len(rawSegments))
	for i, s := range rawSegments {
		dec, err := decodeComponent(s)
		if err != nil {
			return nil, nil, &InvalidComponentError{Component: s, cause: err}
		}
		segments[i] = dec
	}

	var pairs []rawQueryPair
	if queryPart != "" {
		for _, kv := range strings.Split(queryPart, "&") {
			if kv == "" {
				continue
			}
			name, value := kv, ""
			if idx := strings.IndexByte(kv, '='); idx >= 0 {
				name, value = kv[:idx], kv[idx+1:]
			}
			dn, err := decodeComponent(name)
			if err != nil {
				return nil, nil, &InvalidComponentError{Component: name, cause: err}
			}
			dv, err := decodeComponent(value)
			if err != nil {
				return nil, nil, &InvalidComponentError{Component: value, cause: err}
			}
			pairs = append(pairs, rawQueryPair{name: dn, value: dv})
		}
	}
	return segments, pairs, nil
}

func decodeComponent(s string) (string, error) {
	if strings.IndexByte(s, '%') == -1 && strings.IndexByte(s, '+') == -1 {
		return s, nil
	}
	var buf strings.Builder
	buf.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '+':
			buf.WriteByte(' ')
		case '%':
			if i+2 >= len(s) {
				return "", fmt.Errorf("truncated percent-escape in %q", s)
			}
			hi, ok1 := hexVal(s[i+1])
			lo, ok2 := hexVal(s[i+2])
			if !ok1 || !ok2 {
				return "", fmt.Errorf("invalid percent-escape %q", s[i:i+3])
			}
			buf.WriteByte(byte(hi<<4 | lo))
			i += 2
		default:
			buf.WriteByte(s[i])
		}
	}
	return buf.String(), nil
}

func hexVal(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	default:
		return 0, false
	}
}
