package logs

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	cerrors "github.com/DeBrosOfficial/proxyconsole/pkg/errors"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logging"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logresolve"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logtail"
)

// StreamHandler upgrades to a websocket and forwards every line the monitor
// publishes. With ?category= only that category is sent, and a category that
// is not written to a file is refused before the upgrade.
//
//	GET /api/logs/stream?category=access|error
func (h *Handlers) StreamHandler(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetReqID(r.Context())

	var filter logresolve.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		cat, err := logresolve.ParseCategory(raw)
		if err != nil {
			cerrors.WriteHTTPError(w, err, traceID)
			return
		}
		if _, err := h.resolver.ResolveFile(r.Context(), cat); err != nil {
			cerrors.WriteHTTPError(w, err, traceID)
			return
		}
		filter = cat
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.ComponentWarn(logging.ComponentGateway, "log stream: upgrade failed", zap.Error(err))
		return
	}

	client := newWSClient(conn, uuid.NewString(), h.logger)
	defer client.close()

	lines, unsubscribe := h.hub.Subscribe(h.buffer)
	defer unsubscribe()

	h.logger.ComponentInfo(logging.ComponentGateway, "log stream: client connected",
		zap.String("conn_id", client.id),
		zap.String("category", string(filter)),
		zap.Int("subscribers", h.hub.Subscribers()))
	defer h.logger.ComponentInfo(logging.ComponentGateway, "log stream: client disconnected",
		zap.String("conn_id", client.id))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The reader only notices the peer going away; clients send nothing.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.writerLoop(ctx, client, lines, filter)
}

func (h *Handlers) writerLoop(ctx context.Context, client *wsClient, lines <-chan logtail.Line, filter logresolve.Category) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				client.closeNormal("server shutting down")
				return
			}
			if filter != "" && line.Category != string(filter) {
				continue
			}
			if err := client.writeLine(line); err != nil {
				return
			}
		case <-ticker.C:
			if err := client.ping(); err != nil {
				return
			}
		}
	}
}
