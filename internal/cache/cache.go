package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"time"
)

// Cache stores raw API response bodies
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from an API path and its query. The key is a
// hex digest, safe to use as a file name on any platform.
// url.Values.Encode sorts parameters, so equal requests share a key.
func Key(path string, query url.Values) string {
	raw := keyVersion + path
	if len(query) > 0 {
		raw += "?" + query.Encode()
	}
	hash := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(hash[:])
}

// keyVersion changes when cached payload shapes do
const keyVersion = "v1 "
