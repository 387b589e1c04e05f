package storage

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
)

// Record ids are 24 lowercase hex characters (12 random bytes), matching the
// `^[0-9a-fA-F]{24}$` shape the HTTP surface validates before querying.
var idPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// NewID returns a fresh 24-character hex record id.
func NewID() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// ValidID reports whether s is a well-formed record id.
func ValidID(s string) bool {
	return idPattern.MatchString(s)
}
