// Package cache provides the on-disk tier of the reference-data cache.
//
// Entries hold one reference record (an emission factor, fuel price or
// default SEE) as JSON under ~/.carbonfocus/cache/. Keys are SHA-256 hashes
// of the lookup parameters, so a record is reused across CLI runs until its
// TTL expires. Derived results are never cached here.
package cache
