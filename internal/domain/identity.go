package domain

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// IdentityLen is the byte length of an identity (ed25519 public key).
const IdentityLen = 32

// Identity is a 32-byte participant or record address.
type Identity [IdentityLen]byte

// ParseIdentity decodes a base58-encoded identity string.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	raw, err := base58.Decode(s)
	if err != nil {
		return id, fmt.Errorf("decode identity %q: %w", s, err)
	}
	if len(raw) != IdentityLen {
		return id, fmt.Errorf("identity %q: expected %d bytes, got %d", s, IdentityLen, len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

// String returns the base58 representation.
func (id Identity) String() string {
	return base58.Encode(id[:])
}

// IsZero reports whether the identity is all zero bytes.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// MarshalText implements encoding.TextMarshaler (base58).
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
