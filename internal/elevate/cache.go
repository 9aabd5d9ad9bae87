package elevate

import (
	"context"
	"time"

	"github.com/kobzarvs/qpad/internal/logger"
)

// CredentialTTL is how long a validated secret stays usable.
const CredentialTTL = 300 * time.Second

// Credential is a validated secret and the moment it stops being usable.
type Credential struct {
	Secret    string
	ExpiresAt time.Time
}

// Validator verifies a secret against the OS.
type Validator interface {
	Validate(ctx context.Context, secret string) bool
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// Cache holds at most one credential. Expiry is checked lazily; nothing
// evicts the secret in the background.
type Cache struct {
	validator Validator
	now       func() time.Time
	cred      *Credential
}

func NewCache(v Validator, opts ...CacheOption) *Cache {
	c := &Cache{validator: v, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Now returns the cache's notion of the current time.
func (c *Cache) Now() time.Time { return c.now() }

// Set stores secret with a fresh TTL.
func (c *Cache) Set(secret string) {
	c.cred = &Credential{Secret: secret, ExpiresAt: c.now().Add(CredentialTTL)}
}

// Valid reports whether a secret is stored and has not expired at now.
func (c *Cache) Valid(now time.Time) bool {
	return c.cred != nil && !now.After(c.cred.ExpiresAt)
}

// Clear drops the credential immediately.
func (c *Cache) Clear() {
	c.cred = nil
}

// Active reports whether a credential is held, expired or not.
// Elevated mode stays on after expiry; the next save asks again.
func (c *Cache) Active() bool { return c.cred != nil }

func (c *Cache) ExpiresAt() time.Time {
	if c.cred == nil {
		return time.Time{}
	}
	return c.cred.ExpiresAt
}

// Credential returns a copy of the current credential if it is still valid.
func (c *Cache) Credential() *Credential {
	if !c.Valid(c.now()) {
		return nil
	}
	cp := *c.cred
	return &cp
}

// Validate checks secret with the helper. It does not store it.
func (c *Cache) Validate(ctx context.Context, secret string) bool {
	if c.validator == nil {
		return false
	}
	ok := c.validator.Validate(ctx, secret)
	logger.Debug("credential validation", "ok", ok)
	return ok
}
