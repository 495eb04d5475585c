package web

import (
	"errors"
	"net/http"
	"net/url"

	"gridview/internal/guard"
	"gridview/internal/identity"
)

// authFormData feeds the sign-in and sign-up templates.
type authFormData struct {
	Error string
	From  string
}

func (h *Handler) handleSignInPage(w http.ResponseWriter, r *http.Request) {
	// Already signed in: skip the form and resume directly.
	if snap := h.sessions.Snapshot(); !snap.Loading && snap.User != nil {
		http.Redirect(w, r, guard.ResumeTarget(r), http.StatusSeeOther)
		return
	}
	h.views.renderPage(w, http.StatusOK, "signin", authFormData{
		Error: r.URL.Query().Get("error"),
		From:  r.URL.Query().Get("from"),
	})
}

func (h *Handler) handleSignUpPage(w http.ResponseWriter, r *http.Request) {
	if snap := h.sessions.Snapshot(); !snap.Loading && snap.User != nil {
		http.Redirect(w, r, guard.ResumeTarget(r), http.StatusSeeOther)
		return
	}
	h.views.renderPage(w, http.StatusOK, "signup", authFormData{
		Error: r.URL.Query().Get("error"),
		From:  r.URL.Query().Get("from"),
	})
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.views.renderPage(w, http.StatusBadRequest, "signin", authFormData{Error: "The submitted form could not be read."})
		return
	}

	identifier := r.PostFormValue("provider")
	if identifier == "" {
		identifier = r.PostFormValue("email")
	}
	persistence := persistenceChoice(r)

	outcome, err := h.auth.SignIn(r.Context(), identifier, r.PostFormValue("password"), persistence)
	if err != nil {
		h.views.renderPage(w, http.StatusUnprocessableEntity, "signin", authFormData{
			Error: friendlyAuthMessage(err),
			From:  r.PostFormValue("from"),
		})
		return
	}

	if outcome.RedirectURL != "" {
		h.rememberResume(w, r.PostFormValue("from"))
		http.Redirect(w, r, outcome.RedirectURL, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, guard.ResumeTarget(r), http.StatusSeeOther)
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.views.renderPage(w, http.StatusBadRequest, "signup", authFormData{Error: "The submitted form could not be read."})
		return
	}

	identifier := r.PostFormValue("provider")
	if identifier == "" {
		identifier = r.PostFormValue("email")
	}
	persistence := persistenceChoice(r)

	outcome, err := h.auth.SignUp(r.Context(), identifier, r.PostFormValue("password"), r.PostFormValue("name"), persistence)
	if err != nil {
		h.views.renderPage(w, http.StatusUnprocessableEntity, "signup", authFormData{
			Error: friendlyAuthMessage(err),
			From:  r.PostFormValue("from"),
		})
		return
	}

	if outcome.RedirectURL != "" {
		h.rememberResume(w, r.PostFormValue("from"))
		http.Redirect(w, r, outcome.RedirectURL, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, guard.ResumeTarget(r), http.StatusSeeOther)
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	// Best-effort: sign-out never surfaces errors to the user.
	h.auth.SignOut(r.Context())
	http.Redirect(w, r, guard.SignInPath, http.StatusSeeOther)
}

// handleOAuthCallback is the return leg of a federated exchange.
func (h *Handler) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	principal, err := h.auth.CompleteFederated(r.Context(), q.Get("state"), q.Get("code"), q.Get("error"))
	if err != nil {
		h.logger.Info("federated exchange failed", "error", err)
		http.Redirect(w, r, guard.SignInPath+"?error="+url.QueryEscape(friendlyAuthMessage(err)), http.StatusSeeOther)
		return
	}
	h.logger.Info("federated sign-in complete", "user_id", principal.ID)

	target := guard.DefaultLanding
	if cookie, err := r.Cookie(resumeCookie); err == nil && cookie.Value != "" {
		if unescaped, err := url.QueryUnescape(cookie.Value); err == nil {
			target = sanitizeResume(unescaped)
		}
		clearResume(w)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.views.renderPage(w, http.StatusNotFound, "notfound", nil)
}

// resumeCookie carries the resumable path across the federated redirect,
// which leaves our origin and cannot keep a form value alive.
const resumeCookie = "resumeAfterSignin"

func (h *Handler) rememberResume(w http.ResponseWriter, from string) {
	if from == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     resumeCookie,
		Value:    url.QueryEscape(from),
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearResume(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: resumeCookie, Path: "/", MaxAge: -1})
}

func sanitizeResume(path string) string {
	if len(path) == 0 || path[0] != '/' || (len(path) > 1 && path[1] == '/') {
		return guard.DefaultLanding
	}
	return path
}

func persistenceChoice(r *http.Request) identity.Persistence {
	if r.PostFormValue("remember") == "1" {
		return identity.PersistenceDurable
	}
	return identity.PersistenceSession
}

// friendlyAuthMessage maps provider failures onto the fixed message table,
// falling back to a generic line for anything that is not an AuthError.
func friendlyAuthMessage(err error) string {
	var authErr *identity.AuthError
	if errors.As(err, &authErr) {
		return authErr.Friendly()
	}
	return "Something went wrong while signing in. Please try again."
}
