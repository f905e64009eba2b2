// Package routeguard decides whether a protected view renders, redirects,
// or shows the neutral waiting indicator, based on the session state.
package routeguard

import "contractpay/internal/session"

// LoginPath is the login entry point unauthenticated requests redirect to.
const LoginPath = "/login"

type Decision int

const (
	// RenderWaiting: session restore has not resolved; show the waiting
	// indicator and nothing else (no protected content, no redirect).
	RenderWaiting Decision = iota
	// RedirectToLogin: no session; send the caller to the login entry point.
	RedirectToLogin
	// RenderProtected: authenticated; render the requested view.
	RenderProtected
)

func (d Decision) String() string {
	switch d {
	case RenderWaiting:
		return "waiting"
	case RedirectToLogin:
		return "redirect"
	default:
		return "render"
	}
}

// Decide maps a session snapshot to the guard decision for a protected view.
func Decide(snap session.Snapshot) Decision {
	switch snap.State {
	case session.StateLoading:
		return RenderWaiting
	case session.StateAuthenticated:
		return RenderProtected
	default:
		return RedirectToLogin
	}
}
