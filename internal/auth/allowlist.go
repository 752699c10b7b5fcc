package auth

import (
	"sync"

	"github.com/google/uuid"
)

// Allowlist holds the identities permitted to mutate the pool. It is seeded
// with the operator identity at bootstrap, mirroring the original system's
// init-time registration.
type Allowlist struct {
	mu      sync.RWMutex
	allowed map[uuid.UUID]struct{}
}

// NewAllowlist seeds the list with the given identities.
func NewAllowlist(seed ...uuid.UUID) *Allowlist {
	a := &Allowlist{allowed: make(map[uuid.UUID]struct{}, len(seed))}
	for _, id := range seed {
		a.allowed[id] = struct{}{}
	}
	return a
}

// Add registers an identity.
func (a *Allowlist) Add(id uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.allowed[id] = struct{}{}
}

// IsAuthorized reports whether the identity is on the list.
func (a *Allowlist) IsAuthorized(id uuid.UUID) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.allowed[id]
	return ok
}

// Len reports how many identities are registered.
func (a *Allowlist) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.allowed)
}
