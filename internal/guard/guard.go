// Package guard gates navigation to protected routes on the process
// session. Policy per request:
//
//	loading        -> render interstitial, defer the decision
//	no user        -> redirect to sign-in, carrying the requested path
//	user present   -> serve the requested content
package guard

import (
	"net/http"
	"net/url"
	"strings"

	"gridview/internal/session"
)

// SignInPath is where unauthenticated navigation is sent.
const SignInPath = "/signin"

// resumeParam carries the originally requested path through the sign-in
// redirect.
const resumeParam = "from"

// DefaultLanding is where a sign-in without a resumable path lands.
const DefaultLanding = "/dashboard"

// Intent is an explicit navigation decision: where the user asked to go,
// and where to resume after an interposed sign-in.
type Intent struct {
	TargetPath string
	ResumePath string
}

// SessionReader is the slice of the session store the guard consumes.
type SessionReader interface {
	Snapshot() session.Session
}

// RequireUser returns middleware enforcing the guard policy.
func RequireUser(sessions SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := sessions.Snapshot()

			if snap.Loading {
				writeInterstitial(w)
				return
			}

			if snap.User == nil {
				intent := Intent{TargetPath: r.URL.Path, ResumePath: r.URL.Path}
				http.Redirect(w, r, signInURL(intent), http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// signInURL builds the redirect target for an unauthenticated intent.
func signInURL(intent Intent) string {
	v := url.Values{}
	if intent.ResumePath != "" && intent.ResumePath != DefaultLanding {
		v.Set(resumeParam, intent.ResumePath)
	}
	if len(v) == 0 {
		return SignInPath
	}
	return SignInPath + "?" + v.Encode()
}

// ResumeTarget extracts the resumable path recorded across a sign-in
// redirect and decides where a successful sign-in should land. Anything
// that is not a local absolute path falls back to the dashboard, so the
// parameter cannot be abused as an open redirect.
func ResumeTarget(r *http.Request) string {
	from := r.FormValue(resumeParam)
	if from == "" {
		return DefaultLanding
	}
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") {
		return DefaultLanding
	}
	return from
}

// writeInterstitial renders a minimal holding page while the initial
// session state resolves. The refresh retries the original navigation so
// the guard can make a real decision.
func writeInterstitial(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(`<!doctype html>
<html><head><meta http-equiv="refresh" content="1"><title>Loading</title></head>
<body><p>Loading&hellip;</p></body></html>
`))
}
