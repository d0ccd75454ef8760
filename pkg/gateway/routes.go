package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes returns the http.Handler with all routes and middleware configured
func (g *Gateway) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(g.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", g.healthHandler)

	r.Route("/api", func(r chi.Router) {
		// The stream outlives any request timeout.
		r.With(g.requireSession).Get("/logs/stream", g.logs.StreamHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(g.cfg.Server.RequestTimeout))

			// public
			r.With(g.loginRateLimit).Post("/login", g.loginHandler)
			r.Post("/logout", g.logoutHandler)
			r.Get("/session", g.sessionHandler)
			r.Get("/system-metrics", g.metricsHandler)
			r.Get("/service/status", g.serviceStatusHandler)
			r.Get("/service/version", g.serviceVersionHandler)
			r.Get("/service/config-path", g.configPathHandler)

			// authenticated
			r.Group(func(r chi.Router) {
				r.Use(g.requireSession)
				r.Post("/service/{action}", g.serviceActionHandler)
				r.Get("/logs", g.logs.FetchHandler)
				r.Post("/systemd/logs", g.logs.JournalHandler)
			})
		})
	})

	return r
}
