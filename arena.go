package memtab

import (
	"fmt"
	"math"

	"github.com/edsrzf/mmap-go"
	memtaberrors "github.com/memtab/memtab/errors"
	"github.com/memtab/memtab/internal/encoding"
)

// maxArenaBytes caps the arena at the 32-bit offset space.
const maxArenaBytes = math.MaxUint32

// arena is an append-only byte store for record strings, backed by an
// anonymous memory mapping. Strings are uvarint length-prefixed and
// addressed by uint32 offset. Offset 0 is reserved for the canonical
// empty string.
//
// Offsets remain valid forever once issued; views do not: a grow
// relocates the backing mapping, so callers must never hold a view
// across a mutating call, only an offset.
type arena struct {
	mem  mmap.MMap
	used int
}

// newArena maps an anonymous region of at least size bytes.
// The mapping is zero-filled by the kernel, so the reserved byte at
// offset 0 already frames the empty string.
func newArena(size int) (*arena, error) {
	mem, err := mapAnon(size)
	if err != nil {
		return nil, err
	}
	return &arena{mem: mem, used: 1}, nil
}

func mapAnon(size int) (mmap.MMap, error) {
	mem, err := mmap.MapRegion(nil, size, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: anonymous mmap of %d bytes: %v",
			memtaberrors.ErrAllocationFailure, size, err)
	}
	prefaultRegion(mem)
	return mem, nil
}

// push copies s into the arena and returns its offset.
// Empty input maps to offset 0 without consuming space.
func (a *arena) push(s []byte) (uint32, error) {
	if len(s) == 0 {
		return 0, nil
	}
	need := encoding.StringSize(len(s))
	if err := a.ensure(need); err != nil {
		return 0, err
	}
	off := a.used
	a.used += encoding.PutString(a.mem[off:], s)
	return uint32(off), nil
}

// ensure grows the mapping until need bytes are free.
// Growth maps a new region of 2*size + need bytes, copies, and unmaps
// the old region, invalidating every outstanding view.
func (a *arena) ensure(need int) error {
	if len(a.mem)-a.used >= need {
		return nil
	}
	if uint64(a.used)+uint64(need) > maxArenaBytes {
		return memtaberrors.ErrArenaExhausted
	}
	newSize := 2*len(a.mem) + need
	if uint64(newSize) > maxArenaBytes {
		newSize = maxArenaBytes
	}
	mem, err := mapAnon(newSize)
	if err != nil {
		return err
	}
	copy(mem, a.mem[:a.used])
	old := a.mem
	a.mem = mem
	return old.Unmap()
}

// view returns the string at off as a slice into the mapping.
// The view is valid until the next push that triggers a grow.
// Offsets are only ever produced by push, so a failed decode means
// internal corruption.
func (a *arena) view(off uint32) []byte {
	s, ok := encoding.StringAt(a.mem[off:a.used])
	if !ok {
		panic(fmt.Sprintf("memtab: corrupt arena frame at offset %d", off))
	}
	return s
}

// size returns the current mapping size in bytes.
func (a *arena) size() int { return len(a.mem) }

// close unmaps the arena. The arena is unusable afterward.
func (a *arena) close() error {
	if a.mem == nil {
		return nil
	}
	mem := a.mem
	a.mem = nil
	a.used = 0
	return mem.Unmap()
}
