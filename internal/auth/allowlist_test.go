package auth_test

import (
	"testing"

	"stakepool/internal/auth"

	"github.com/google/uuid"
)

func TestAllowlist_SeededIdentityAuthorized(t *testing.T) {
	operator := uuid.New()
	a := auth.NewAllowlist(operator)

	if !a.IsAuthorized(operator) {
		t.Error("seeded operator must be authorized")
	}
}

func TestAllowlist_UnknownIdentityRejected(t *testing.T) {
	a := auth.NewAllowlist(uuid.New())

	if a.IsAuthorized(uuid.New()) {
		t.Error("unknown identity must not be authorized")
	}
}

func TestAllowlist_AddIdentity(t *testing.T) {
	a := auth.NewAllowlist()
	id := uuid.New()

	if a.IsAuthorized(id) {
		t.Fatal("identity authorized before Add")
	}
	a.Add(id)
	if !a.IsAuthorized(id) {
		t.Error("identity not authorized after Add")
	}
	if a.Len() != 1 {
		t.Errorf("len: got %d, want 1", a.Len())
	}
}
