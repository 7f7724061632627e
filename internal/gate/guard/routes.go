package guard

import "strings"

// Route is one entry in a route classification table. Entries match exactly
// unless the path contains a dynamic segment marker ("{name}"), in which
// case the static prefix before the marker matches any sub-path. Children
// let tables mirror the console's nested page hierarchy without flattening.
type Route struct {
	Path     string
	Children []Route
}

// RouteSet is a classification table the guard consults. It is static
// configuration: the guard never mutates it.
type RouteSet []Route

// Matches walks the set, recursing into children, and reports whether path
// is classified by any entry.
func (s RouteSet) Matches(path string) bool {
	for _, r := range s {
		if r.matches(path) {
			return true
		}
	}
	return false
}

func (r Route) matches(path string) bool {
	if matchPath(r.Path, path) {
		return true
	}
	return RouteSet(r.Children).Matches(path)
}

// PublicAuthRoutes is the default table of pages reachable only while
// signed out.
func PublicAuthRoutes() RouteSet {
	return RouteSet{
		{Path: "/auth/signin"},
		{Path: "/auth/invite/{token}"},
		{Path: "/auth/forgot-password"},
	}
}

// ProtectedRoutes is the default table of pages that require a session.
// The console's page tree nests profile sections under the profile root.
func ProtectedRoutes() RouteSet {
	return RouteSet{
		{Path: "/dashboard"},
		{
			Path: "/profile/{section}",
			Children: []Route{
				{Path: "/profile/security/{device}"},
			},
		},
	}
}

// matchPath compares a route entry against a request path. An entry whose
// tail is a dynamic segment matches every sub-path under its static prefix,
// including the prefix itself.
func matchPath(entry, path string) bool {
	if entry == "" {
		return false
	}

	i := strings.Index(entry, "{")
	if i < 0 {
		return path == entry
	}

	prefix := strings.TrimSuffix(entry[:i], "/")
	if prefix == "" {
		// A bare dynamic entry would match everything. Not a sane
		// classification, so it matches nothing.
		return false
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
