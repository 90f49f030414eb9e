package memtab

import (
	"fmt"
	"testing"

	"golang.org/x/sync/errgroup"
)

func newTestSharedStore(t *testing.T, opts ...Option) *SharedStore {
	t.Helper()
	store, err := New(64, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	shared := NewShared(store)
	t.Cleanup(func() { _ = shared.Close() })
	return shared
}

func TestSharedStoreConcurrentReaders(t *testing.T) {
	rng := newTestRNG(t)
	shared := newTestSharedStore(t)

	recs := randomRecords(rng, 500)
	if err := shared.BulkAdd(recs); err != nil {
		t.Fatalf("BulkAdd failed: %v", err)
	}
	wantSum, err := shared.Checksum()
	if err != nil {
		t.Fatalf("Checksum failed: %v", err)
	}

	// Quiescent phase: many readers, no writer. Every reader must observe
	// identical results.
	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for i, rec := range recs {
				ord, err := shared.Find([]byte(rec.ID))
				if err != nil {
					return fmt.Errorf("Find(%q): %w", rec.ID, err)
				}
				if ord != uint32(i) {
					return fmt.Errorf("Find(%q) = %d, want %d", rec.ID, ord, i)
				}
				got, err := shared.Get(ord)
				if err != nil {
					return fmt.Errorf("Get(%d): %w", ord, err)
				}
				if got != rec {
					return fmt.Errorf("Get(%d) = %+v, want %+v", ord, got, rec)
				}
			}
			sum, err := shared.Checksum()
			if err != nil {
				return err
			}
			if sum != wantSum {
				return fmt.Errorf("checksum drifted under concurrent reads")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestSharedStoreInterleavedWritersReaders(t *testing.T) {
	rng := newTestRNG(t)
	shared := newTestSharedStore(t, WithArenaSize(64), WithTagIndex())

	// Writers append batches while readers query whatever is visible.
	// The lock must keep every observation internally consistent; run
	// with -race to catch relocation races.
	const batches = 20
	const perBatch = 25

	var g errgroup.Group
	g.Go(func() error {
		for b := 0; b < batches; b++ {
			body := fmt.Sprintf(`[{"id":"w-%d","content":"batch %d","tags":"w"}]`, b, b)
			if _, err := shared.ParseJSON([]byte(body)); err != nil {
				return err
			}
			for i := 0; i < perBatch; i++ {
				rec := Record{
					ID:      fmt.Sprintf("b%d-r%d", b, i),
					Content: randomToken(rng, 30),
				}
				if _, err := shared.AddRecord(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
	for w := 0; w < 4; w++ {
		g.Go(func() error {
			for i := 0; i < 2000; i++ {
				n := shared.Count()
				if n == 0 {
					continue
				}
				rec, err := shared.Get(n - 1)
				if err != nil {
					return fmt.Errorf("Get(%d) with Count %d: %w", n-1, n, err)
				}
				ord, err := shared.Find([]byte(rec.ID))
				if err != nil {
					return fmt.Errorf("Find(%q) just read at %d: %w", rec.ID, n-1, err)
				}
				_ = ord // duplicates legal: any ordinal is fine
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if got := shared.Count(); got != batches*(perBatch+1) {
		t.Errorf("Count = %d, want %d", got, batches*(perBatch+1))
	}
	ords, err := shared.FindTagged("w")
	if err != nil || len(ords) != batches {
		t.Errorf("FindTagged(w) = (%d ordinals, %v), want %d", len(ords), err, batches)
	}
}
