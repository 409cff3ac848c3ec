package sourcemap

import (
	"net/url"
	"strings"
)

// Resolve implements the pure `resolve(input, base)` contract spec.md §4.8
// requires: standard relative-URL semantics sufficient for file paths,
// bare identifiers, protocol-relative URLs (//host/path), and absolute
// URLs with a scheme. gopkg.in/sourcemap.v1's Consumer.absSource (see
// other_examples) only special-cases an absolute sourceRoot with
// path.Join, which mishandles protocol-relative and query/fragment
// bearing inputs; net/url's RFC 3986 ResolveReference handles all four
// cases uniformly and is what this resolver is built on.
func Resolve(input, base string) string {
	if base == "" {
		return input
	}
	if input == "" {
		return base
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return input
	}
	inputURL, err := url.Parse(input)
	if err != nil {
		return input
	}

	return baseURL.ResolveReference(inputURL).String()
}

// StripFilename removes the final path component of a URL or path,
// keeping a trailing slash. "a/b/c.js.map" -> "a/b/"; "c.js.map" -> "";
// "a/b/" is already stripped and is returned unchanged.
func StripFilename(u string) string {
	if u == "" {
		return ""
	}
	idx := strings.LastIndexByte(u, '/')
	if idx < 0 {
		return ""
	}
	return u[:idx+1]
}
