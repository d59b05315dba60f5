package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key returns a deterministic cache key for a record kind and its lookup
// parameters. Parameters are trimmed and upper-cased, so "de" and " DE "
// share a key.
func Key(kind string, params ...string) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(kind))))
	for _, p := range params {
		h.Write([]byte{0})
		h.Write([]byte(strings.ToUpper(strings.TrimSpace(p))))
	}
	return hex.EncodeToString(h.Sum(nil))
}
