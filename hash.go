package memtab

import (
	"hash/crc32"

	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
)

// HashID identifies the fingerprint function used by the hash index.
// All stores built over the same data with the same HashID and seed
// produce identical index layouts.
type HashID uint16

const (
	// HashCRC32C is a fixed-seed CRC32-Castagnoli chain, equivalent to a
	// hardware crc32 instruction chain over 8-byte words plus a 4/2/1-byte
	// tail. Default.
	HashCRC32C HashID = 0

	// HashXXH3 keeps the low 32 bits of a seeded 64-bit XXH3 hash.
	HashXXH3 HashID = 1

	// HashMurmur3 is seeded Murmur3-32.
	HashMurmur3 HashID = 2
)

// String returns the algorithm name.
func (h HashID) String() string {
	switch h {
	case HashCRC32C:
		return "crc32c"
	case HashXXH3:
		return "xxh3"
	case HashMurmur3:
		return "murmur3"
	default:
		return "unknown"
	}
}

// castagnoliTable is the stdlib CRC32C table; Update over it dispatches to
// SSE4.2 / ARMv8 CRC instructions on supported hardware.
var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)

// crc32cRaw computes a raw-chain CRC32C of data starting from state: the
// stdlib Update without its pre/post inversion, matching what a chained
// hardware crc32 instruction sequence produces. Chunking does not affect
// the result: word-at-a-time and byte-at-a-time chains are identical.
func crc32cRaw(state uint32, data []byte) uint32 {
	return ^crc32.Update(^state, castagnoliTable, data)
}

// fingerprint hashes an id to its 32-bit index fingerprint.
// A result of 0 is remapped to 1; 0 is the empty-slot sentinel.
func fingerprint(algo HashID, seed uint32, id []byte) uint32 {
	var fp uint32
	switch algo {
	case HashXXH3:
		fp = uint32(xxh3.HashSeed(id, uint64(seed)))
	case HashMurmur3:
		fp = murmur3.Sum32WithSeed(id, seed)
	default:
		fp = crc32cRaw(seed, id)
	}
	if fp == 0 {
		fp = 1
	}
	return fp
}
