package memtab

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	randv2 "math/rand"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *randv2.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return randv2.New(randv2.NewSource(int64((testSeed1 ^ s1) ^ (testSeed2 ^ s2))))
}

// newTestStore creates a store that is closed when the test ends.
func newTestStore(t testing.TB, capacity uint32, opts ...Option) *MemoryStore {
	t.Helper()
	store, err := New(capacity, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// mustAdd adds a record built from strings and fails the test on error.
func mustAdd(t testing.TB, store *MemoryStore, id, taskID, content, tags string) uint32 {
	t.Helper()
	ord, err := store.Add([]byte(id), []byte(taskID), []byte(content), []byte(tags))
	if err != nil {
		t.Fatalf("Add(%q) failed: %v", id, err)
	}
	return ord
}

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"

// randomToken returns n bytes drawn from a JSON-safe alphabet
// (no quotes, no backslashes, no control characters).
func randomToken(rng *randv2.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = tokenAlphabet[rng.Intn(len(tokenAlphabet))]
	}
	return string(b)
}

// randomRecords generates n records with unique ids.
func randomRecords(rng *randv2.Rand, n int) []Record {
	recs := make([]Record, n)
	for i := range recs {
		recs[i] = Record{
			ID:      fmt.Sprintf("id-%d-%s", i, randomToken(rng, 8)),
			TaskID:  randomToken(rng, 12),
			Content: randomToken(rng, 10+rng.Intn(40)),
			Tags:    randomToken(rng, 4) + "," + randomToken(rng, 4),
		}
	}
	return recs
}

// checkRecord asserts that the accessors at ordinal reproduce want.
func checkRecord(t testing.TB, store *MemoryStore, ordinal uint32, want Record) {
	t.Helper()
	got, err := store.Get(ordinal)
	if err != nil {
		t.Fatalf("Get(%d) failed: %v", ordinal, err)
	}
	if got != want {
		t.Errorf("record %d: got %+v, want %+v", ordinal, got, want)
	}
}
