package gateway

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	cerrors "github.com/DeBrosOfficial/proxyconsole/pkg/errors"
	"github.com/DeBrosOfficial/proxyconsole/pkg/httputil"
)

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Success   bool      `json:"success"`
	ExpiresAt time.Time `json:"expires_at"`
}

// loginHandler validates the administrator password and opens a session.
func (g *Gateway) loginHandler(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetReqID(r.Context())

	var req loginRequest
	if err := httputil.DecodeJSONStrict(r, &req); err != nil {
		cerrors.WriteHTTPError(w, cerrors.NewValidationError("body", err.Error(), nil), traceID)
		return
	}

	// A re-login replaces the caller's previous session.
	if old := g.sessionCookie(r); old != "" {
		g.gate.Logout(old)
	}

	sess, err := g.gate.Login(r.Context(), req.Password)
	if err != nil {
		cerrors.WriteHTTPError(w, err, traceID)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     g.cfg.Server.SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   g.cfg.Server.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusOK, loginResponse{Success: true, ExpiresAt: sess.ExpiresAt})
}

// logoutHandler ends the session, forgets its credential and clears the
// cookie. It succeeds without a session too.
func (g *Gateway) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if id := g.sessionCookie(r); id != "" {
		g.gate.Logout(id)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     g.cfg.Server.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.cfg.Server.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteSuccess(w, "logged out")
}

// sessionHandler reports whether the caller is logged in.
func (g *Gateway) sessionHandler(w http.ResponseWriter, r *http.Request) {
	id := g.sessionCookie(r)
	sess, ok := g.gate.Session(id)
	if !ok {
		cerrors.WriteHTTPError(w, cerrors.NewUnauthorizedError("not authenticated"), middleware.GetReqID(r.Context()))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"expires_at":    sess.ExpiresAt,
	})
}
