package gateway

import (
	"context"

	"github.com/DeBrosOfficial/proxyconsole/pkg/gateway/ctxkeys"
)

func withSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkeys.SessionID, id)
}

// SessionIDFromContext returns the session attached by the auth middleware.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxkeys.SessionID).(string)
	return id
}
