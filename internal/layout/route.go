// Package layout decides which navigation chrome wraps a page and renders
// pages inside the shared layout template.
package layout

import "strings"

// RouteKind is the closed set of route classes the layout distinguishes.
type RouteKind int

const (
	// RouteApp is every page outside the sign-in flow.
	RouteApp RouteKind = iota
	// RouteAuth is the unauthenticated entry flow under /auth.
	RouteAuth
)

const authPrefix = "/auth"

func (k RouteKind) String() string {
	if k == RouteAuth {
		return "auth"
	}
	return "app"
}

// Classify maps a request path to its route kind.
func Classify(path string) RouteKind {
	if strings.HasPrefix(path, authPrefix) {
		return RouteAuth
	}
	return RouteApp
}

// AuthChecker reports whether the current session is authenticated.
type AuthChecker func() bool

// Chrome is the navigation UI wrapped around page content.
type Chrome struct {
	Kind    RouteKind
	Header  bool
	Sidebar bool
}

// Decide computes the chrome for path. It is evaluated on every render and
// never cached. A nil or panicking checker counts as unauthenticated.
func Decide(path string, isAuthenticated AuthChecker) Chrome {
	kind := Classify(path)
	if kind == RouteAuth {
		return Chrome{Kind: kind}
	}
	return Chrome{
		Kind:    kind,
		Header:  true,
		Sidebar: safeCheck(isAuthenticated),
	}
}

func safeCheck(check AuthChecker) (ok bool) {
	if check == nil {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return check()
}
