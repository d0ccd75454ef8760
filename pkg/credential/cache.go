// Package credential holds administrator secrets in memory for the lifetime
// of an operator session. Secrets are sealed at rest in the map, expire after
// a TTL and are never written to disk or logs.
package credential

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrLockTimeout is returned by Store when the cache lock could not be
// acquired in time.
var ErrLockTimeout = errors.New("credential cache busy")

// Source supplies a secret for a single privileged invocation.
type Source interface {
	Secret() (string, bool)
}

type entry struct {
	nonce     []byte
	sealed    []byte
	expiresAt time.Time
}

// Cache is a keyed, TTL-bounded store of sealed secrets. All access is
// serialized; lock acquisition waits at most lockTimeout and a failure reads
// as "no credential".
type Cache struct {
	lock        chan struct{}
	entries     map[string]entry
	aead        cipher.AEAD
	ttl         time.Duration
	lockTimeout time.Duration
	now         func() time.Time
}

// New creates a cache with a fresh per-process sealing key.
func New(ttl, lockTimeout time.Duration) (*Cache, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate sealing key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init sealing cipher: %w", err)
	}
	return &Cache{
		lock:        make(chan struct{}, 1),
		entries:     make(map[string]entry),
		aead:        aead,
		ttl:         ttl,
		lockTimeout: lockTimeout,
		now:         time.Now,
	}, nil
}

func (c *Cache) acquire() bool {
	select {
	case c.lock <- struct{}{}:
		return true
	default:
	}
	if c.lockTimeout <= 0 {
		return false
	}
	t := time.NewTimer(c.lockTimeout)
	defer t.Stop()
	select {
	case c.lock <- struct{}{}:
		return true
	case <-t.C:
		return false
	}
}

func (c *Cache) release() { <-c.lock }

// Store inserts or overwrites the secret under key and restarts its TTL.
func (c *Cache) Store(key, secret string) error {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nil, nonce, []byte(secret), []byte(key))

	if !c.acquire() {
		return ErrLockTimeout
	}
	defer c.release()

	c.entries[key] = entry{
		nonce:     nonce,
		sealed:    sealed,
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

// Load returns the secret under key. Missing, expired and lock-timeout all
// report ok=false.
func (c *Cache) Load(key string) (string, bool) {
	if !c.acquire() {
		return "", false
	}
	defer c.release()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.ttl > 0 && !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	plain, err := c.aead.Open(nil, e.nonce, e.sealed, []byte(key))
	if err != nil {
		delete(c.entries, key)
		return "", false
	}
	return string(plain), true
}

// Delete removes the secret under key. It reports false only when the lock
// could not be acquired.
func (c *Cache) Delete(key string) bool {
	if !c.acquire() {
		return false
	}
	defer c.release()
	delete(c.entries, key)
	return true
}

// Purge drops expired entries and returns how many were removed.
func (c *Cache) Purge() int {
	if c.ttl <= 0 || !c.acquire() {
		return 0
	}
	defer c.release()

	now := c.now()
	n := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of entries, expired or not.
func (c *Cache) Len() int {
	if !c.acquire() {
		return 0
	}
	defer c.release()
	return len(c.entries)
}

// Handle returns the capability for one key.
func (c *Cache) Handle(key string) Handle {
	return Handle{cache: c, key: key}
}

// Handle grants read access to a single cached credential. The zero value
// holds nothing.
type Handle struct {
	cache *Cache
	key   string
}

// Secret implements Source.
func (h Handle) Secret() (string, bool) {
	if h.cache == nil || h.key == "" {
		return "", false
	}
	return h.cache.Load(h.key)
}

// Key returns the cache key the handle refers to.
func (h Handle) Key() string { return h.key }

// Static is a Source over a secret held by the caller, used by the CLI
// after an interactive prompt.
type Static string

// Secret implements Source.
func (s Static) Secret() (string, bool) {
	return string(s), s != ""
}
