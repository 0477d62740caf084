package route

import (
	"strings"

	"golang.org/x/net/idna"
)

// normalizeHost canonicalizes a host for comparison purposes: it is
// lower-cased and, where possible, converted to its IDNA ASCII (punycode)
// form so that an internationalized pattern host and an internationalized
// request host compare equal regardless of which Unicode normalization
// form the caller used.
//
// soquee-mux's own Example_normalization suggests using a
// golang.org/x/text-family package to canonicalize path parameters before
// comparing them; we apply the same idea one layer up, to hosts, since
// RFC 3986 host comparison is explicitly case-insensitive.
//
// A host that idna rejects (not a valid domain label, e.g. an IP literal)
// is still usable for exact matching: we fall back to the lower-cased
// original rather than failing registration over it.
//
// foldCase gates this entirely, so callers can honor
// routeconfig.Config.CaseInsensitiveHosts: with it false, host comparison
// is byte-exact against whatever form the pattern and the request both
// supplied, and neither side is punycode- or case-normalized.
func normalizeHost(host string, foldCase bool) string {
	if host == "" || !foldCase {
		return host
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return strings.ToLower(host)
}
