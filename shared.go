package memtab

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// SharedStore wraps a MemoryStore in the external serialization a
// multi-goroutine deployment needs: every mutating call takes an
// exclusive lock, reads share a reader-biased lock. Reads dominate this
// workload once ingestion settles, which is what RBMutex is built for.
//
// SharedStore only exposes the copying accessor Get, never the borrowed
// field views: a borrowed view must not outlive its reader critical
// section, and handing one out would invite exactly the relocation race
// the lock exists to prevent.
type SharedStore struct {
	mu    *xsync.RBMutex
	store *MemoryStore
}

// NewShared wraps store. The caller must not use store directly afterward.
func NewShared(store *MemoryStore) *SharedStore {
	return &SharedStore{mu: xsync.NewRBMutex(), store: store}
}

// Add adds one record under the write lock.
func (s *SharedStore) Add(id, taskID, content, tags []byte) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Add(id, taskID, content, tags)
}

// AddRecord adds one record under the write lock.
func (s *SharedStore) AddRecord(rec Record) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.AddRecord(rec)
}

// BulkAdd adds records under the write lock, held across the whole batch.
func (s *SharedStore) BulkAdd(recs []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.BulkAdd(recs)
}

// ParseJSON ingests under the write lock, held across the whole buffer.
func (s *SharedStore) ParseJSON(buf []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ParseJSON(buf)
}

// Find looks up an id under a read lock.
func (s *SharedStore) Find(id []byte) (uint32, error) {
	tok := s.mu.RLock()
	defer s.mu.RUnlock(tok)
	return s.store.Find(id)
}

// Get returns an owned record copy under a read lock.
func (s *SharedStore) Get(ordinal uint32) (Record, error) {
	tok := s.mu.RLock()
	defer s.mu.RUnlock(tok)
	return s.store.Get(ordinal)
}

// FindTagged queries the tag index under a read lock.
func (s *SharedStore) FindTagged(tag string) ([]uint32, error) {
	tok := s.mu.RLock()
	defer s.mu.RUnlock(tok)
	return s.store.FindTagged(tag)
}

// Count returns the record count under a read lock.
func (s *SharedStore) Count() uint32 {
	tok := s.mu.RLock()
	defer s.mu.RUnlock(tok)
	return s.store.Count()
}

// Checksum digests the store under a read lock.
func (s *SharedStore) Checksum() (uint64, error) {
	tok := s.mu.RLock()
	defer s.mu.RUnlock(tok)
	return s.store.Checksum()
}

// Stats reads statistics under a read lock.
func (s *SharedStore) Stats() *Stats {
	tok := s.mu.RLock()
	defer s.mu.RUnlock(tok)
	return s.store.Stats()
}

// Close closes the underlying store under the write lock.
func (s *SharedStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Close()
}
