// Package pathutil maps request paths to bounded metric labels.
package pathutil

import "strings"

// OtherRoute labels every path the server does not route.
const OtherRoute = "other"

// knownRoutes are the paths served by cmd/api.
var knownRoutes = map[string]struct{}{
	"/fetch-url":     {},
	"/api/fetch-url": {},
	"/health":        {},
	"/live":          {},
	"/metrics":       {},
}

// NormalizePath returns path when it is a served route and OtherRoute
// otherwise, keeping the label set closed under scans of random paths.
//
// Examples:
//
//	NormalizePath("/fetch-url")      // "/fetch-url"
//	NormalizePath("/fetch-url/")     // "/fetch-url"
//	NormalizePath("/health?x=1")     // "/health"
//	NormalizePath("/wp-login.php")   // "other"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	if _, ok := knownRoutes[path]; ok {
		return path
	}
	return OtherRoute
}

// Cardinality returns the maximum number of distinct labels NormalizePath yields.
func Cardinality() int {
	return len(knownRoutes) + 1
}
