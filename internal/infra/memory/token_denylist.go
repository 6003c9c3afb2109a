package memory

import (
	"context"
	"sync"
	"time"
)

// TokenDenylist is an in-memory implementation of app.TokenDenylist.
// Entries are dropped lazily once their expiry passes.
type TokenDenylist struct {
	mu      sync.Mutex
	clock   func() time.Time
	revoked map[string]time.Time
}

func NewTokenDenylist() *TokenDenylist {
	return &TokenDenylist{
		clock:   time.Now,
		revoked: make(map[string]time.Time),
	}
}

func (d *TokenDenylist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if until.After(d.clock()) {
		d.revoked[tokenID] = until
	}
	return nil
}

func (d *TokenDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	until, ok := d.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !until.After(d.clock()) {
		delete(d.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
