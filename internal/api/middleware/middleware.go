// Package middleware holds the HTTP middleware wrapped around the
// observability API routes.
package middleware

import (
	"net/http"
	"strings"
)

// Middleware is a function that wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middleware in order: the first middleware is the outermost wrapper.
func Chain(handler http.Handler, mw ...Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// pathSet matches request paths exactly, or by prefix when the entry ends in "/".
type pathSet struct {
	exact    map[string]struct{}
	prefixes []string
}

func newPathSet(paths []string) pathSet {
	ps := pathSet{exact: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		if len(p) > 1 && strings.HasSuffix(p, "/") {
			ps.prefixes = append(ps.prefixes, p)
			continue
		}
		ps.exact[p] = struct{}{}
	}
	return ps
}

func (ps pathSet) contains(path string) bool {
	if _, ok := ps.exact[path]; ok {
		return true
	}
	for _, p := range ps.prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
