package route

import (
	"fmt"
	"net/url"
	"strings"
)

// pathSafe is the extra set of bytes spec §4.4 requires path components to
// pass through unescaped, beyond the normal unreserved set.
const pathSafe = ":@&=+$,"

// buildURL reverses route plus the supplied parameter bindings into a
// canonical URL string (C6). reqHost/reqPort describe the request that
// buildURL is being called on behalf of, and decide whether the result can
// be a relative path or must be an absolute "http://host[:port]/..." URL.
// It is the unexported core Router.Build and the package-level Build
// delegate to, with scriptName and caseInsensitiveHosts supplied by the
// Router rather than by every caller.
func buildURL(route *Route, positional []interface{}, named map[string]interface{}, reqHost string, reqHasHost bool, reqPort int, reqHasPort bool, scriptName string, caseInsensitiveHosts bool) (string, error) {
	p := route.pattern
	usedIndex := make(map[int]bool)
	usedNamed := make(map[string]bool)

	buildParam := func(ref paramRef) (bool, string, error) {
		if ref.kind == paramPositional {
			idx := ref.index
			if idx < 0 || idx >= len(positional) {
				return false, "", pathErrorf("value for parameter %s was not supplied", ref.String())
			}
			val := positional[idx]
			usedIndex[idx] = true
			if val == nil || val == NoDefault {
				return false, "", pathErrorf("value for parameter %s is not set", ref.String())
			}
			isDefault := false
			if def, ok := route.descriptor.defaultFor(idx); ok && def != NoDefault {
				if def == nil {
					isDefault = val == nil
				} else {
					isDefault = fmt.Sprint(val) == fmt.Sprint(def)
				}
			}
			return isDefault, fmt.Sprint(val), nil
		}
		val, ok := named[ref.name]
		if !ok {
			return false, "", pathErrorf("value for parameter %s was not supplied", ref.name)
		}
		usedNamed[ref.name] = true
		return false, fmt.Sprint(val), nil
	}

	pathParts := make([]string, 0, len(p.path))
	for _, c := range p.path {
		_, text, err := buildComponent(c, buildParam)
		if err != nil {
			return "", err
		}
		pathParts = append(pathParts, pathEscape(text))
	}

	if p.star {
		usedPosCount := len(route.usedPositional)
		for i := usedPosCount; i < len(positional); i++ {
			usedIndex[i] = true
			pathParts = append(pathParts, pathEscape(fmt.Sprint(positional[i])))
		}
	}
	pathStr := strings.Join(pathParts, "/")

	var queryParts []string
	for _, qp := range p.query {
		isDefault, val, err := buildComponent(qp.comp, buildParam)
		if err != nil {
			return "", err
		}
		if isDefault {
			continue
		}
		queryParts = append(queryParts, url.QueryEscape(qp.name)+"="+url.QueryEscape(val))
	}

	if len(usedNamed) != len(named) {
		return "", pathErrorf("not all parameters were used during path construction")
	}
	for i, val := range positional {
		if usedIndex[i] {
			continue
		}
		if def, ok := route.descriptor.defaultFor(i); ok && def != NoDefault && fmt.Sprint(val) == fmt.Sprint(def) {
			continue
		}
		return "", pathErrorf("not all parameters were used during path construction")
	}

	full := pathStr
	if len(queryParts) > 0 {
		full += "?" + strings.Join(queryParts, "&")
	}
	result := scriptName + "/" + full

	sameHost := !p.hasHost || (reqHasHost && p.host == normalizeHost(reqHost, caseInsensitiveHosts))
	samePort := !p.hasPort || (reqHasPort && p.port == reqPort)
	if sameHost && samePort {
		return result, nil
	}

	host := reqHost
	if p.hasHost {
		host = p.host
	}
	port := 80
	if p.hasPort {
		port = p.port
	}
	if port == 80 {
		return fmt.Sprintf("http://%s%s", host, result), nil
	}
	return fmt.Sprintf("http://%s:%d%s", host, port, result), nil
}

// buildComponent recursively renders one path or query component, and
// reports whether it is "default-equivalent" — every parameter inside it
// is at its default value — so the caller can omit default query values
// from the canonical URL.
func buildComponent(c component, buildParam func(paramRef) (bool, string, error)) (isDefault bool, text string, err error) {
	switch c.kind {
	case componentLiteral, componentEmpty:
		return false, c.literal, nil
	case componentSingle:
		return buildParam(c.param)
	case componentMixed:
		var sb strings.Builder
		isDefault = true
		for _, t := range c.items {
			if !t.isParam {
				sb.WriteString(t.literal)
				continue
			}
			d, val, err := buildParam(t.param)
			if err != nil {
				return false, "", err
			}
			if !d {
				isDefault = false
			}
			sb.WriteString(val)
		}
		return isDefault, sb.String(), nil
	}
	return false, "", nil
}

// pathEscape percent-encodes s for use as one path component, leaving the
// unreserved set and pathSafe untouched (spec §4.4).
func pathEscape(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		b := s[i]
		if isUnreserved(b) || strings.IndexByte(pathSafe, b) != -1 {
			sb.WriteByte(b)
			continue
		}
		fmt.Fprintf(&sb, "%%%02X", b)
	}
	return sb.String()
}

func isUnreserved(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') ||
		b == '-' || b == '_' || b == '.' || b == '~'
}
