package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/proxyconsole/pkg/credential"
	cerrors "github.com/DeBrosOfficial/proxyconsole/pkg/errors"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logging"
)

// Validator checks an administrator secret against the host.
type Validator interface {
	Validate(ctx context.Context, secret string) error
}

// Gate authenticates operators. A successful login creates a session and
// caches the secret under the session ID, so each session carries its own
// credential and logging out drops it.
type Gate struct {
	store     *Store
	cache     *credential.Cache
	validator Validator
	logger    *logging.ColoredLogger
}

// NewGate creates a Gate over store and cache.
func NewGate(store *Store, cache *credential.Cache, validator Validator, logger *logging.ColoredLogger) *Gate {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	store.OnEvict(func(id string) { cache.Delete(id) })
	return &Gate{store: store, cache: cache, validator: validator, logger: logger}
}

// Login validates secret and opens a session. An empty secret is a
// validation error; a rejected one is an errors.AuthenticationFailedError.
func (g *Gate) Login(ctx context.Context, secret string) (Session, error) {
	if secret == "" {
		return Session{}, cerrors.NewValidationError("password", "password is required", nil)
	}

	if err := g.validator.Validate(ctx, secret); err != nil {
		g.logger.ComponentWarn(logging.ComponentAuth, "Login failed", zap.Error(err))
		return Session{}, err
	}

	sess := g.store.Create()
	if err := g.cache.Store(sess.ID, secret); err != nil {
		g.store.Delete(sess.ID)
		return Session{}, cerrors.NewInternalError("failed to cache credential", err)
	}

	g.logger.ComponentInfo(logging.ComponentAuth, "Operator logged in",
		zap.String("session", shortID(sess.ID)),
		zap.Time("expires_at", sess.ExpiresAt))
	return sess, nil
}

// Logout ends the session and forgets its credential.
func (g *Gate) Logout(id string) {
	if g.store.Delete(id) {
		g.logger.ComponentInfo(logging.ComponentAuth, "Operator logged out",
			zap.String("session", shortID(id)))
	}
}

// Session returns the live session for id.
func (g *Gate) Session(id string) (Session, bool) {
	return g.store.Get(id)
}

// Authenticated reports whether id names a live session.
func (g *Gate) Authenticated(id string) bool {
	_, ok := g.store.Get(id)
	return ok
}

// Credential returns a handle to the credential of session id. The handle
// resolves lazily, so it reports absent once the session or its cache entry
// is gone.
func (g *Gate) Credential(id string) credential.Handle {
	return g.cache.Handle(id)
}

// StartJanitor purges expired sessions and credentials every interval until
// ctx is cancelled.
func (g *Gate) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				g.sweep()
			}
		}
	}()
}

func (g *Gate) sweep() {
	sessions := g.store.Purge()
	creds := g.cache.Purge()
	if sessions > 0 || creds > 0 {
		g.logger.ComponentDebug(logging.ComponentAuth, "Purged expired sessions",
			zap.Int("sessions", sessions),
			zap.Int("credentials", creds))
	}
}

// shortID keeps session IDs out of logs in full.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
