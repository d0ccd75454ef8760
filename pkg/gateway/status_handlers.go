package gateway

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/proxyconsole/pkg/httputil"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logging"
)

// healthResponse is the JSON structure used by healthHandler
type healthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	StartedAt time.Time `json:"started_at"`
	Uptime    string    `json:"uptime"`
}

func (g *Gateway) healthHandler(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Service:   g.cfg.Service.Name,
		StartedAt: g.startedAt,
		Uptime:    time.Since(g.startedAt).Round(time.Second).String(),
	})
}

// metricsHandler returns the latest host snapshot, sampling on demand when
// the scheduler has not produced one yet.
func (g *Gateway) metricsHandler(w http.ResponseWriter, r *http.Request) {
	if g.sampler == nil {
		httputil.WriteError(w, http.StatusServiceUnavailable, "metrics are disabled")
		return
	}

	snap, ok := g.sampler.Latest()
	if !ok {
		var err error
		snap, err = g.sampler.Sample(r.Context())
		if err != nil {
			if r.Context().Err() != nil {
				return
			}
			g.logger.ComponentDebug(logging.ComponentMetrics, "Partial metrics sample", zap.Error(err))
		}
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}
