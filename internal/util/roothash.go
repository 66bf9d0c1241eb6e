package util

import (
	"crypto/sha256"
	"fmt"
)

// RootIDLength is the number of hex characters in a source root identifier.
const RootIDLength = 10

// RootID derives the stable short identifier for a source root from its
// absolute path. Want descriptors reference roots by this prefix, and the
// catalogue uses it as the foreign key for every song scanned from the root,
// so it must never change for a given path.
func RootID(absPath string) string {
	sum := sha256.Sum256([]byte(absPath))
	return fmt.Sprintf("%x", sum)[:RootIDLength]
}
