package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Key isolates name by keyspace prefix and namespace: "<prefix>:<len(ns)>:<ns>:<name>".
// The length prefix keeps namespaces containing ':' from colliding with names that do.
func Key(prefix, ns, name string) string {
	return prefix + ":" + strconv.Itoa(len(ns)) + ":" + ns + ":" + name
}

// ShortHash returns the first 16 hex chars of the SHA-256 of s.
// Used to keep storage keys out of logs.
func ShortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}
