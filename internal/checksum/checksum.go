// Package checksum computes the fast, non-cryptographic checksums stamped
// on written messages so a reader can detect truncated or corrupted
// buffer payloads before handing them to a decoder.
package checksum

import "github.com/cespare/xxhash/v2"

// Sum64 returns the xxhash64 digest of data.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Verify reports whether data's digest matches want.
func Verify(data []byte, want uint64) bool {
	return Sum64(data) == want
}
