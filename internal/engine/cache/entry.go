package cache

import (
	"encoding/json"
	"time"
)

// Entry is one cached reference record.
type Entry struct {
	// Key is the SHA-256 key produced by Key.
	Key string `json:"key"`

	// Kind names the record type, e.g. "factor" or "fuel_price".
	Kind string `json:"kind"`

	// Data is the record itself.
	Data json.RawMessage `json:"data"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewEntry returns an entry that expires ttl from now.
func NewEntry(key, kind string, data json.RawMessage, ttl time.Duration) *Entry {
	now := time.Now().UTC()
	return &Entry{
		Key:       key,
		Kind:      kind,
		Data:      data,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the entry is past its expiry time.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// Remaining returns the time left before expiry, or 0.
func (e *Entry) Remaining() time.Duration {
	if d := time.Until(e.ExpiresAt); d > 0 {
		return d
	}
	return 0
}
