package logs

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	cerrors "github.com/DeBrosOfficial/proxyconsole/pkg/errors"
	"github.com/DeBrosOfficial/proxyconsole/pkg/httputil"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logging"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logquery"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logresolve"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logtail"
)

// Handlers serves the log endpoints.
type Handlers struct {
	resolver PathResolver
	hub      *logtail.Hub
	query    QueryRunner
	buffer   int
	logger   *logging.ColoredLogger
}

// NewHandlers creates the log handlers. buffer sizes each stream
// subscriber's queue.
func NewHandlers(resolver PathResolver, hub *logtail.Hub, query QueryRunner, buffer int, logger *logging.ColoredLogger) *Handlers {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Handlers{resolver: resolver, hub: hub, query: query, buffer: buffer, logger: logger}
}

// FetchHandler returns the last lines of one category's log file.
//
//	GET /api/logs?category=access|error&lines=N
//
// "type" is accepted as an alias of "category".
func (h *Handlers) FetchHandler(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetReqID(r.Context())

	cat, err := logresolve.ParseCategory(httputil.QueryParamAny(r, string(logresolve.CategoryAccess), "category", "type"))
	if err != nil {
		cerrors.WriteHTTPError(w, err, traceID)
		return
	}
	n := httputil.QueryParamInt(r, "lines", DefaultLines)

	path, err := h.resolver.ResolveFile(r.Context(), cat)
	if err != nil {
		h.logger.ComponentWarn(logging.ComponentGateway, "Log path unavailable",
			zap.String("category", string(cat)), zap.Error(err))
		cerrors.WriteHTTPError(w, err, traceID)
		return
	}

	lines, err := logtail.ReadLastLines(path, n)
	if err != nil {
		cerrors.WriteHTTPError(w, err, traceID)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FetchResponse{Logs: lines, Type: string(cat), Path: path})
}

// JournalHandler queries the system log for a service unit.
//
//	POST /api/systemd/logs
func (h *Handlers) JournalHandler(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetReqID(r.Context())

	var q logquery.Query
	if err := httputil.DecodeJSONStrict(r, &q); err != nil {
		cerrors.WriteHTTPError(w, cerrors.NewValidationError("body", err.Error(), nil), traceID)
		return
	}

	out, err := h.query.Query(r.Context(), q)
	if err != nil {
		cerrors.WriteHTTPError(w, err, traceID)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, JournalResponse{Logs: out, ServiceName: strings.TrimSpace(q.ServiceName)})
}
