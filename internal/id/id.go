// Package id provides unique identifier generation utilities.
// This is the canonical source for ID generation across the codebase.
package id

import (
	"crypto/rand"
	"encoding/hex"
)

// Hex generates a 32-character random hex identifier.
func Hex() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Prefixed generates an identifier of the form "<prefix>-<32 hex chars>".
// This matches the id style used by the APIs interceptd commonly stands in
// for (e.g. "chatcmpl-9f86d081884c7d65...").
func Prefixed(prefix string) string {
	return prefix + "-" + Hex()
}

// Short generates a short random hex ID (16 characters).
// Suitable for user-facing IDs where brevity matters.
func Short() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
