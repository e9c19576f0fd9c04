package internal

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"errors"
)

// sessionKeySize is the raw entropy of a session key in bytes. 256 bits
// keeps the collision probability negligible even across billions of
// logins; the ledger still enforces uniqueness as a backstop.
const sessionKeySize = 32

// NewSessionKey returns a fresh 256-bit session key, base64url-encoded
// without padding so it survives cookies and query strings unescaped.
func NewSessionKey() (string, error) {
	var raw [sessionKeySize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

// ValidateSessionKey checks that a key decodes to exactly the expected
// entropy size. Used by the ledger before touching Redis with
// caller-supplied keys.
func ValidateSessionKey(key string) error {
	raw, err := base64.RawURLEncoding.DecodeString(key)
	if err != nil {
		return err
	}
	if len(raw) != sessionKeySize {
		return errors.New("invalid session key size")
	}
	return nil
}

// NewRowID returns a random positive int64 used as a session row
// identifier. The ledger is keyed by session key; the row ID exists for
// parity with relational stores that expose numeric identifiers.
func NewRowID() (int64, error) {
	var raw [8]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return 0, err
	}
	id := int64(binary.BigEndian.Uint64(raw[:]) &^ (1 << 63))
	if id == 0 {
		id = 1
	}
	return id, nil
}
