package identity

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/google/uuid"
)

// DomainTag separates stake subaccount derivation from any other use of the
// same hash construction. Changing it invalidates every derived address.
const DomainTag = "staking_pool"

// AccountIDPrefix is prepended to the hex-encoded subaccount.
const AccountIDPrefix = "account_"

// Subaccount is the 32-byte unique identifier derived for each stake.
type Subaccount [32]byte

// Deriver produces collision-free subaccounts from a caller identity and a
// strictly increasing nonce. The nonce is global across all callers, so two
// derivations never collide even for the same identity.
//
// Deriver is not safe for concurrent use on its own; the pool ledger calls
// it under its own mutation lock.
type Deriver struct {
	nextNonce uint64
}

// NewDeriver starts the nonce sequence at 1.
func NewDeriver() *Deriver {
	return &Deriver{nextNonce: 1}
}

// Derive reserves the next nonce and computes
// SHA-256(caller || nonce_be64 || DomainTag). The nonce is consumed even if
// the caller's deposit later fails — reserve-then-use, so a nonce is never
// shared between a failed and a successful derivation.
func (d *Deriver) Derive(caller uuid.UUID) (Subaccount, string) {
	nonce := d.nextNonce
	d.nextNonce++

	var nonceBuf [8]byte
	binary.BigEndian.PutUint64(nonceBuf[:], nonce)

	h := sha256.New()
	h.Write(caller[:])
	h.Write(nonceBuf[:])
	h.Write([]byte(DomainTag))

	var sub Subaccount
	copy(sub[:], h.Sum(nil))

	return sub, AccountID(sub)
}

// NextNonce reports the nonce the next Derive call will consume.
func (d *Deriver) NextNonce() uint64 { return d.nextNonce }

// AccountID renders a subaccount as its human-readable identifier:
// a fixed prefix plus 64 lowercase hex characters.
func AccountID(sub Subaccount) string {
	return AccountIDPrefix + hex.EncodeToString(sub[:])
}
