package gateway

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	cerrors "github.com/DeBrosOfficial/proxyconsole/pkg/errors"
	"github.com/DeBrosOfficial/proxyconsole/pkg/httputil"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logging"
)

// loggingMiddleware logs basic request info and duration
func (g *Gateway) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		g.logger.ComponentInfo(logging.ComponentGateway, "request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.String("duration", time.Since(start).String()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// requireSession rejects requests without a live session cookie and
// attaches the session ID to the context.
func (g *Gateway) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := g.sessionCookie(r)
		if id == "" || !g.gate.Authenticated(id) {
			cerrors.WriteHTTPError(w,
				cerrors.NewUnauthorizedError("authentication required").WithRealm("console"),
				middleware.GetReqID(r.Context()))
			return
		}
		next.ServeHTTP(w, r.WithContext(withSessionID(r.Context(), id)))
	})
}

// loginRateLimit throttles login attempts per client IP.
func (g *Gateway) loginRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := httputil.ClientIP(r, false)
		if !g.loginLimiter.Allow(ip) {
			g.logger.ComponentWarn(logging.ComponentAuth, "Login throttled", zap.String("ip", ip))
			cerrors.WriteHTTPError(w,
				cerrors.NewRateLimitError(g.cfg.Auth.LoginPerMin, g.loginLimiter.RetryAfter()),
				middleware.GetReqID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gateway) sessionCookie(r *http.Request) string {
	c, err := r.Cookie(g.cfg.Server.SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}
