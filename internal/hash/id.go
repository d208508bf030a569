// Package hash derives the 64-bit identities used to index channel labels
// during schema reconciliation.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 identity of a channel label.
//
// IDs are lookup keys, not identity proofs: two distinct labels can
// collide, so callers must verify the label string on a hit. The
// collision package tracks that bookkeeping.
func ID(label string) uint64 {
	return xxhash.Sum64String(label)
}
