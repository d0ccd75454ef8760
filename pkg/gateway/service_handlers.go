package gateway

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	cerrors "github.com/DeBrosOfficial/proxyconsole/pkg/errors"
	"github.com/DeBrosOfficial/proxyconsole/pkg/httputil"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logging"
	"github.com/DeBrosOfficial/proxyconsole/pkg/service"
)

// serviceStatusHandler reports whether the proxy is running. An unknown unit
// is reported as status "unknown" rather than an error.
func (g *Gateway) serviceStatusHandler(w http.ResponseWriter, r *http.Request) {
	st, err := g.services.Controller.Status(r.Context())
	if err != nil && !errors.Is(err, service.ErrServiceNotFound) {
		cerrors.WriteHTTPError(w, err, middleware.GetReqID(r.Context()))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, st)
}

// serviceVersionHandler returns the proxy's build report.
func (g *Gateway) serviceVersionHandler(w http.ResponseWriter, r *http.Request) {
	v, err := g.services.Controller.Version(r.Context())
	if err != nil {
		cerrors.WriteHTTPError(w, err, middleware.GetReqID(r.Context()))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"version_info": v,
		"success":      true,
	})
}

// configPathHandler returns the config file the proxy loads.
func (g *Gateway) configPathHandler(w http.ResponseWriter, r *http.Request) {
	path, found := g.services.Controller.ConfigPath(r.Context())
	resp := map[string]any{"path": path, "found": found}
	if !found {
		resp["message"] = "Using default path"
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// serviceActionHandler starts, stops or restarts the proxy with the
// session's credential.
func (g *Gateway) serviceActionHandler(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetReqID(r.Context())

	action, err := service.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		cerrors.WriteHTTPError(w, err, traceID)
		return
	}

	cred := g.gate.Credential(SessionIDFromContext(r.Context()))
	msg, err := g.services.Controller.Do(r.Context(), cred, action)
	if err != nil {
		g.logger.ComponentWarn(logging.ComponentService, "Service action failed",
			zap.String("action", string(action)),
			zap.Error(err))
		cerrors.WriteHTTPError(w, err, traceID)
		return
	}
	httputil.WriteSuccess(w, msg)
}
