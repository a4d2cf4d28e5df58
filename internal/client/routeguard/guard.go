// Package routeguard decides whether a screen may be shown for the
// current session state. It is a pure function of the session view: no
// IO, no state of its own, so every surface (REPL commands, future
// TUIs) resolves access the same way.
package routeguard

import "github.com/csvdesk/csvdesk/internal/client/session"

// Requirement is the access level a screen declares.
type Requirement int

const (
	// RequireNone admits everyone, including anonymous sessions.
	RequireNone Requirement = iota
	// RequireAuthenticated admits any signed-in user.
	RequireAuthenticated
	// RequireAdmin admits signed-in administrators only.
	RequireAdmin
)

// Decision is the guard's verdict.
type Decision int

const (
	// Allow shows the screen.
	Allow Decision = iota
	// Wait holds navigation until the session settles out of Loading.
	Wait
	// RedirectLogin sends the caller to the login screen.
	RedirectLogin
	// RedirectHome sends a signed-in caller to their own landing
	// screen. Used when the user is known but lacks the required role,
	// so they are never bounced to login while already authenticated.
	RedirectHome
)

// Route names a navigable screen.
type Route string

const (
	RouteLogin Route = "login"
	RouteUser  Route = "files"
	RouteAdmin Route = "admin"
)

// Decide resolves access for a screen with the given requirement.
// While the session is still Loading the answer is Wait, never a
// redirect: a stale redirect during startup would lose the user's
// destination.
func Decide(v session.View, req Requirement) Decision {
	if req == RequireNone {
		return Allow
	}

	switch v.Status {
	case session.StatusLoading:
		return Wait
	case session.StatusAuthenticated:
		if req == RequireAdmin && !v.IsAdmin() {
			return RedirectHome
		}
		return Allow
	default:
		// Anonymous and Guest sessions have no identity to authorize.
		return RedirectLogin
	}
}

// Home picks the landing screen for a session: administrators land on
// the admin panel, other users on the file listing, and everyone else
// on login.
func Home(v session.View) Route {
	if v.Status != session.StatusAuthenticated {
		return RouteLogin
	}
	if v.IsAdmin() {
		return RouteAdmin
	}
	return RouteUser
}
