package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
//
// Used for stable 64-bit feed-file identifiers in scan telemetry and for
// hashing IMb barcode strings when callers need fixed-size record keys.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Bytes computes the xxHash64 of the given byte slice without copying.
func Bytes(data []byte) uint64 {
	return xxhash.Sum64(data)
}
