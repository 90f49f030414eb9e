package memtab

import (
	memtaberrors "github.com/memtab/memtab/errors"
)

// slotsPerBucket is the number of (fingerprint, ordinal) slots probed
// together. Eight 32-bit fingerprints span one 32-byte group, the unit a
// vectorized scan compares at once; the scalar loop below has identical
// semantics and the compiler unrolls it.
const slotsPerBucket = 8

// hashIndex is a fixed-capacity open-addressing index mapping id
// fingerprints to record ordinals. Buckets of 8 slots are probed linearly
// with wraparound. The index is not resizable: when every slot is taken,
// insert fails with ErrCapacityExceeded instead of probing forever.
//
// A stored fingerprint of 0 marks an empty slot (real fingerprints are
// remapped away from 0 by fingerprint()). Duplicate ids are not
// deduplicated; each insert takes its own slot and find returns the
// lowest-probe-order match.
type hashIndex struct {
	fps      []uint32 // numBuckets * slotsPerBucket fingerprints, 0 = empty
	ordinals []uint32 // parallel to fps
	mask     uint32   // numBuckets - 1

	slotsUsed uint64
	maxProbe  uint32 // longest bucket probe chain seen by insert
}

// newHashIndex creates an index with numBuckets buckets.
// numBuckets must be a power of two (validated by New).
func newHashIndex(numBuckets uint32) *hashIndex {
	n := int(numBuckets) * slotsPerBucket
	return &hashIndex{
		fps:      make([]uint32, n),
		ordinals: make([]uint32, n),
		mask:     numBuckets - 1,
	}
}

func (h *hashIndex) numBuckets() uint32 { return h.mask + 1 }

// insert stores (fp, ordinal) in the first empty slot along fp's probe
// chain. Buckets fill in slot order, which is what lets find stop at the
// first empty slot. The probe is capped at numBuckets iterations; a full
// index reports ErrCapacityExceeded.
func (h *hashIndex) insert(fp, ordinal uint32) error {
	bucket := fp & h.mask
	for probe := uint32(0); probe <= h.mask; probe++ {
		base := int(bucket) * slotsPerBucket
		for s := 0; s < slotsPerBucket; s++ {
			if h.fps[base+s] == 0 {
				h.fps[base+s] = fp
				h.ordinals[base+s] = ordinal
				h.slotsUsed++
				if probe > h.maxProbe {
					h.maxProbe = probe
				}
				return nil
			}
		}
		bucket = (bucket + 1) & h.mask
	}
	return memtaberrors.ErrCapacityExceeded
}

// find walks fp's probe chain and returns the first ordinal whose stored
// fingerprint equals fp and whose full id matches, per the caller-supplied
// confirm. Fingerprint equality alone is not membership: 32-bit
// fingerprints collide, so every matching slot is only a candidate.
//
// An empty slot terminates the chain, since insert fills buckets in probe
// order, so nothing beyond it can hold fp. The probe is also capped at
// numBuckets iterations so a completely full index terminates.
func (h *hashIndex) find(fp uint32, confirm func(ordinal uint32) bool) (uint32, bool) {
	bucket := fp & h.mask
	for probe := uint32(0); probe <= h.mask; probe++ {
		base := int(bucket) * slotsPerBucket
		for s := 0; s < slotsPerBucket; s++ {
			stored := h.fps[base+s]
			if stored == 0 {
				return 0, false
			}
			if stored == fp && confirm(h.ordinals[base+s]) {
				return h.ordinals[base+s], true
			}
		}
		bucket = (bucket + 1) & h.mask
	}
	return 0, false
}
