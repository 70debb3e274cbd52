// Package demodata derives stable placeholder content (collection schedules, map points)
// from an entity id. Every function is pure: the same seed and inputs always give the same output.
package demodata

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Seed is the hex SHA-256 digest of a stable entity id.
type Seed string

// NewSeed hashes id into a seed.
func NewSeed(id string) Seed {
	sum := sha256.Sum256([]byte(id))
	return Seed(hex.EncodeToString(sum[:]))
}

// Hex reads n hex digits starting at offset as an unsigned integer.
// Reads past the end of the digest wrap around to its start.
func (s Seed) Hex(offset, n int) uint64 {
	if len(s) == 0 || n <= 0 {
		return 0
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = s[(offset+i)%len(s)]
	}
	v, err := strconv.ParseUint(string(buf), 16, 64)
	if err != nil {
		return 0
	}
	return v
}
