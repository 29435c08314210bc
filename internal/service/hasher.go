package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HashLength is the number of hex characters kept from the HMAC digest.
const HashLength = 16

// Hasher computes integrity hashes for key codes. The hash proves a record
// was produced by a holder of the secret; it is not a password hash.
type Hasher struct {
	secret []byte
}

func NewHasher(secret string) *Hasher {
	return &Hasher{secret: []byte(secret)}
}

// Sum returns the first HashLength hex characters of HMAC-SHA256(secret, code).
func (h *Hasher) Sum(code string) string {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(code))
	return hex.EncodeToString(mac.Sum(nil))[:HashLength]
}

// Verify reports whether hash matches code, in constant time.
func (h *Hasher) Verify(code, hash string) bool {
	return hmac.Equal([]byte(h.Sum(code)), []byte(hash))
}
