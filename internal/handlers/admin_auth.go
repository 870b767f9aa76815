package handlers

import (
	"net/http"

	"github.com/zat/initiative/internal/auth"
)

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RequireAdmin guards the admin API: a valid session cookie and the
// persisted login flag are both needed.
func RequireAdmin(e *Env) func(http.Handler) http.Handler {
	return auth.RequireAdmin(e.Gate, e.Sessions)
}

// POST /admin/login
func AdminLogin(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := formValues(w, r)
		if err != nil {
			e.writeError(w, r, err)
			return
		}
		if !e.Gate.Login(in["email"], in["password"]) {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid credentials", Flash: MakeFlash("bad_login", "")})
			return
		}
		e.Holder.SetAuthenticated(true)

		tok, err := e.Sessions.Issue(in["email"])
		if err != nil {
			e.writeError(w, r, err)
			return
		}
		e.Sessions.SetCookie(w, tok)
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": true, "flash": MakeFlash("logged_in", "")})
	}
}

// POST /admin/logout clears the flag, which also invalidates every cookie
// issued so far.
func AdminLogout(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := e.Gate.Logout(); err != nil {
			e.writeError(w, r, err)
			return
		}
		e.Holder.SetAuthenticated(false)
		e.Sessions.ClearCookie(w)
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
	}
}

// GET /admin/api/me
func AdminMe(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": e.Gate.IsAuthenticated(),
			"email":         e.AdminEmail,
		})
	}
}
