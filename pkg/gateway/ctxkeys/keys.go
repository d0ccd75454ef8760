package ctxkeys

// ContextKey is used for storing request-scoped authentication data in context
type ContextKey string

const (
	// SessionID stores the authenticated session ID for the request
	SessionID ContextKey = "session_id"
)
