package auth

import (
	"net/http"
	"strings"
)

// PublicRoute marks a path prefix as reachable without a credential.
// An empty Methods list means any method.
type PublicRoute struct {
	Prefix  string
	Methods []string
}

// DefaultPublicRoutes lists the routes served without authentication.
func DefaultPublicRoutes() []PublicRoute {
	return []PublicRoute{
		{Prefix: "/api/auth/"},
		{Prefix: "/api/products", Methods: []string{http.MethodGet}},
		{Prefix: "/api/categories", Methods: []string{http.MethodGet}},
		{Prefix: "/api/brands", Methods: []string{http.MethodGet}},
		{Prefix: "/api/leads", Methods: []string{http.MethodPost}},
		{Prefix: "/api/internal/resolve-store", Methods: []string{http.MethodGet}},
		{Prefix: "/health"},
		{Prefix: "/metrics"},
	}
}

// Matches reports whether the route admits the request.
func (p PublicRoute) Matches(method, path string) bool {
	if !matchesPrefix(path, p.Prefix) {
		return false
	}
	if len(p.Methods) == 0 {
		return true
	}
	for _, m := range p.Methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

// A prefix without a trailing slash matches itself and its sub-paths only,
// so "/api/products" does not admit "/api/productsecret".
func matchesPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	if strings.HasSuffix(prefix, "/") {
		return strings.HasPrefix(path, prefix) || path == strings.TrimSuffix(prefix, "/")
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isPublic(routes []PublicRoute, r *http.Request) bool {
	for _, route := range routes {
		if route.Matches(r.Method, r.URL.Path) {
			return true
		}
	}
	return false
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
