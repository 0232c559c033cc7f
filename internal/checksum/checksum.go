package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Prefix names the digest algorithm in every stored hash.
const Prefix = "sha256:"

// Sum returns the algorithm-prefixed, hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return Prefix + hex.EncodeToString(h[:])
}
