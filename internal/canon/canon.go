// Package canon maps external record identifiers to compact integer keys.
//
// A key is the SHA-256 digest of the identifier's UTF-8 bytes, read as a
// 256-bit big-endian unsigned integer and reduced modulo a bound. The
// reduction covers the whole digest, so keys match
// int(sha256(id).hexdigest(), 16) % bound bit for bit.
package canon

import (
	"crypto/sha256"
	"math/bits"
)

const (
	// LegacyBound is the modulus used by the historical pipeline.
	LegacyBound uint64 = 100_000_000

	// DefaultBound keeps keys below 2^53 so they survive JSON float decoding
	// while making collisions unlikely for corpora of millions of identifiers.
	DefaultBound uint64 = 1_000_000_000_000_000
)

// Key returns the canonical key of id reduced modulo bound.
// It panics if bound is zero.
func Key(id string, bound uint64) uint64 {
	if bound == 0 {
		panic("canon: zero bound")
	}
	sum := sha256.Sum256([]byte(id))

	var rem uint64
	for _, b := range sum {
		hi, lo := bits.Mul64(rem, 256)
		var carry uint64
		lo, carry = bits.Add64(lo, uint64(b), 0)
		hi += carry
		rem = bits.Rem64(hi, lo, bound)
	}
	return rem
}

// Canonicalizer binds a bound so callers do not have to thread it around.
type Canonicalizer struct {
	Bound uint64
}

// New returns a Canonicalizer for bound.
func New(bound uint64) Canonicalizer {
	return Canonicalizer{Bound: bound}
}

// Key returns the canonical key for id.
func (c Canonicalizer) Key(id string) uint64 {
	return Key(id, c.Bound)
}

// Keys canonicalizes every identifier in ids, preserving order.
func (c Canonicalizer) Keys(ids []string) []uint64 {
	out := make([]uint64, len(ids))
	for i, id := range ids {
		out[i] = c.Key(id)
	}
	return out
}
