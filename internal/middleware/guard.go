package middleware

import (
	"net/http"

	"github.com/rtb-ict/devicehub/internal/auth"
	"github.com/rtb-ict/devicehub/internal/model"
	"github.com/rtb-ict/devicehub/internal/session"
)

// SessionCookieName is the browser cookie carrying the opaque session key.
const SessionCookieName = "devicehub_session"

// Decision is the route guard's verdict for a request.
type Decision int

const (
	// Allow renders the protected resource.
	Allow Decision = iota
	// RedirectToLogin means no valid session exists.
	RedirectToLogin
	// RedirectToUnauthorized means the session's role is insufficient.
	RedirectToUnauthorized
	// Pending means session state could not be resolved yet; the caller must
	// stay neutral and must not flash protected content.
	Pending
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect_to_login"
	case RedirectToUnauthorized:
		return "redirect_to_unauthorized"
	default:
		return "pending"
	}
}

// SessionState is the guard's view of the current session. Hydrating is set
// when the store could not answer, which is distinct from "no session".
type SessionState struct {
	Hydrating bool
	Session   *session.Session
}

// Authorize is the single capability check every protected route goes
// through. It is pure: callers re-run it whenever the session or the required
// role set changes.
func Authorize(state SessionState, required ...model.Role) Decision {
	if state.Hydrating {
		return Pending
	}
	if !state.Session.Valid() {
		return RedirectToLogin
	}
	if len(required) == 0 {
		return Allow
	}
	for _, role := range required {
		if state.Session.User.Role == role {
			return Allow
		}
	}
	return RedirectToUnauthorized
}

// RequireSession resolves the cookie-keyed session on every request and
// installs the auth context. Requests without a valid session are redirected
// to login; a store failure yields a neutral retryable response.
func RequireSession(store session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				applyDecision(w, r, RedirectToLogin)
				return
			}

			sess, err := store.Get(r.Context(), cookie.Value)
			state := SessionState{Hydrating: err != nil, Session: sess}
			if d := Authorize(state); d != Allow {
				applyDecision(w, r, d)
				return
			}

			ctx := auth.WithAuth(r.Context(), auth.AuthContext{Key: cookie.Value, Session: sess})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles gates an already-authenticated route by role membership.
func RequireRoles(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, ok := auth.FromContext(r.Context())
			state := SessionState{Hydrating: false}
			if ok {
				state.Session = ac.Session
			}
			if d := Authorize(state, roles...); d != Allow {
				applyDecision(w, r, d)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// applyDecision translates a non-Allow decision to HTTP. HTMX requests get an
// HX-Redirect header instead of a 303 so the client swaps the whole page.
func applyDecision(w http.ResponseWriter, r *http.Request, d Decision) {
	switch d {
	case RedirectToLogin:
		redirect(w, r, "/login")
	case RedirectToUnauthorized:
		redirect(w, r, "/unauthorized")
	case Pending:
		w.Header().Set("Retry-After", "1")
		http.Error(w, "Session state unavailable, retry shortly", http.StatusServiceUnavailable)
	}
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
