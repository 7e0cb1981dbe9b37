package gate

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint is the deterministic digest identifying a cacheable unit of
// validation work. Two requests with the same fingerprint are, for caching
// purposes, the same request.
type Fingerprint string

// String returns the hex-encoded digest.
func (f Fingerprint) String() string {
	return string(f)
}

// FingerprintBytes computes the SHA-256 fingerprint of the given content.
// The full content is hashed; truncating would let distinct requests share
// a cached verdict.
func FingerprintBytes(content []byte) Fingerprint {
	sum := sha256.Sum256(content)
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// FingerprintString is a convenience wrapper for string content.
func FingerprintString(content string) Fingerprint {
	return FingerprintBytes([]byte(content))
}
