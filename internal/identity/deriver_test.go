package identity_test

import (
	"crypto/sha256"
	"encoding/binary"
	"strings"
	"testing"

	"stakepool/internal/identity"

	"github.com/google/uuid"
)

func TestDerive_AccountIDFormat(t *testing.T) {
	d := identity.NewDeriver()
	caller := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

	_, accountID := d.Derive(caller)

	if !strings.HasPrefix(accountID, "account_") {
		t.Errorf("account id missing prefix: %q", accountID)
	}
	hexPart := strings.TrimPrefix(accountID, "account_")
	if len(hexPart) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(hexPart))
	}
	if hexPart != strings.ToLower(hexPart) {
		t.Errorf("hex encoding must be lowercase: %q", hexPart)
	}
}

func TestDerive_MatchesHashConstruction(t *testing.T) {
	d := identity.NewDeriver()
	caller := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

	sub, _ := d.Derive(caller)

	// Nonce sequence starts at 1, big-endian, followed by the domain tag.
	var nonceBuf [8]byte
	binary.BigEndian.PutUint64(nonceBuf[:], 1)
	h := sha256.New()
	h.Write(caller[:])
	h.Write(nonceBuf[:])
	h.Write([]byte(identity.DomainTag))

	var want identity.Subaccount
	copy(want[:], h.Sum(nil))

	if sub != want {
		t.Errorf("derived subaccount does not match SHA-256(caller || nonce_be || tag)")
	}
}

func TestDerive_SameCallerDistinctSubaccounts(t *testing.T) {
	d := identity.NewDeriver()
	caller := uuid.New()

	a, _ := d.Derive(caller)
	b, _ := d.Derive(caller)

	if a == b {
		t.Error("two derivations for the same caller must not collide")
	}
}

func TestDerive_DifferentCallersDistinctSubaccounts(t *testing.T) {
	d := identity.NewDeriver()

	a, _ := d.Derive(uuid.New())
	b, _ := d.Derive(uuid.New())

	if a == b {
		t.Error("derivations for different callers must not collide")
	}
}

func TestDerive_NonceStrictlyIncreasing(t *testing.T) {
	d := identity.NewDeriver()

	if d.NextNonce() != 1 {
		t.Fatalf("nonce sequence must start at 1, got %d", d.NextNonce())
	}

	d.Derive(uuid.New())
	if d.NextNonce() != 2 {
		t.Errorf("nonce must advance exactly once per derivation, got %d", d.NextNonce())
	}
	d.Derive(uuid.New())
	if d.NextNonce() != 3 {
		t.Errorf("nonce must advance exactly once per derivation, got %d", d.NextNonce())
	}
}
