// ABOUTME: Static route classification for access control decisions
// ABOUTME: Partitions paths into protected, auth-only, and public classes

package routes

import "strings"

// Class is the access class of a navigable path.
type Class int

const (
	// Public paths require nothing.
	Public Class = iota
	// Protected paths require a session.
	Protected
	// AuthOnly paths require the absence of a session (e.g. the login page).
	AuthOnly
)

// String returns the class name for logging.
func (c Class) String() string {
	switch c {
	case Protected:
		return "protected"
	case AuthOnly:
		return "auth-only"
	case Public:
		return "public"
	default:
		return "unknown"
	}
}

type rule struct {
	prefix string
	class  Class
}

// Table classifies request paths by longest-prefix match. Prefixes match on
// segment boundaries: "/products" covers "/products" and "/products/42" but
// not "/productsx". The bare "/" prefix matches only the root path itself,
// so unlisted paths stay public.
type Table struct {
	rules     []rule
	loginPath string
	homePath  string
}

// New builds a classification table. Every path in protected and authOnly is
// a prefix rule; unmatched paths are public.
func New(protected, authOnly []string, loginPath, homePath string) *Table {
	t := &Table{loginPath: loginPath, homePath: homePath}
	for _, p := range protected {
		t.rules = append(t.rules, rule{prefix: p, class: Protected})
	}
	for _, p := range authOnly {
		t.rules = append(t.rules, rule{prefix: p, class: AuthOnly})
	}
	return t
}

// Default returns the storefront's standard table: the console pages are
// protected, the login page is auth-only, everything else is public.
func Default() *Table {
	return New(
		[]string{"/", "/dashboard", "/products", "/orders", "/users", "/account"},
		[]string{"/login"},
		"/login",
		"/",
	)
}

// Classify returns the access class of path, preferring the longest matching
// prefix when rules overlap.
func (t *Table) Classify(path string) Class {
	best := -1
	class := Public
	for _, r := range t.rules {
		if !matchPrefix(path, r.prefix) {
			continue
		}
		if len(r.prefix) > best {
			best = len(r.prefix)
			class = r.class
		}
	}
	return class
}

// LoginPath is the redirect target for unauthenticated access to a
// protected path.
func (t *Table) LoginPath() string {
	return t.loginPath
}

// HomePath is the redirect target for authenticated access to an auth-only
// path.
func (t *Table) HomePath() string {
	return t.homePath
}

func matchPrefix(path, prefix string) bool {
	if prefix == "/" {
		return path == "/"
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
