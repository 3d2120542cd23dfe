package utils

import (
	"crypto/sha256"
	"fmt"
)

// HashBytes returns the hex sha256 digest of input. Used for corpus change
// detection, so it must be stable across runs and platforms.
func HashBytes(input []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(input))
}

func HashString(input string) string {
	return HashBytes([]byte(input))
}
