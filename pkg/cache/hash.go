package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds a cache key from a prefix and the parts that determine a
// result. The parts are JSON-marshaled before hashing so float options and
// marker lists key deterministically. Format: prefix:hash(parts...).
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes the SHA-256 of data as a 64-character hex string. Runs use
// it to content-address the input G-code: identical files hash identically
// regardless of name or location.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
