package memtab

import (
	"bytes"
	"encoding/binary"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	memtaberrors "github.com/memtab/memtab/errors"
	intbits "github.com/memtab/memtab/internal/bits"
)

// defaultRecordCapacity seeds the record table when the caller passes 0.
const defaultRecordCapacity = 256

// MemoryStore is an in-process record store composed of a string arena, a
// four-column offset table, and an open-addressing id index.
//
// Thread Safety:
//   - A MemoryStore is NOT safe for concurrent use. A grow during
//     Add/ParseJSON can relocate buffers a concurrent reader is inspecting.
//   - External serialization must cover all mutating calls
//     (Add, AddRecord, BulkAdd, ParseJSON, Close); concurrent
//     Find/Get/Count are safe only while no mutation is in flight.
//   - SharedStore wraps a store in exactly that discipline.
type MemoryStore struct {
	cfg   *config
	arena *arena
	index *hashIndex
	table *recordTable
	tags  *tagIndex // nil unless WithTagIndex

	closed atomic.Bool // Atomic for lock-free close check
}

// Record is an owned copy of one record's four fields.
type Record struct {
	ID      string `json:"id"`
	TaskID  string `json:"task_id"`
	Content string `json:"content"`
	Tags    string `json:"tags"`
}

// Stats holds store statistics.
type Stats struct {
	Records   uint32
	ArenaSize int
	ArenaUsed int
	Buckets   uint32
	SlotsUsed uint64
	MaxProbe  uint32
	Hash      HashID
}

// New creates a store sized for initialRecordCapacity records.
// A capacity of 0 gets a small default; the record table still grows on
// demand, so the capacity is a hint, not a limit. The hash index does NOT
// grow; size it via WithIndexBuckets for the expected record count.
func New(initialRecordCapacity uint32, opts ...Option) (*MemoryStore, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if !intbits.IsPowerOfTwo(cfg.numBuckets) {
		return nil, memtaberrors.ErrInvalidBucketCount
	}
	if cfg.arenaSize <= 0 {
		return nil, memtaberrors.ErrInvalidArenaSize
	}
	if cfg.hash.String() == "unknown" {
		return nil, memtaberrors.ErrInvalidHash
	}
	if initialRecordCapacity == 0 {
		initialRecordCapacity = defaultRecordCapacity
	}

	a, err := newArena(cfg.arenaSize)
	if err != nil {
		return nil, err
	}

	s := &MemoryStore{
		cfg:   cfg,
		arena: a,
		index: newHashIndex(cfg.numBuckets),
		table: newRecordTable(initialRecordCapacity),
	}
	if cfg.tagIndex {
		s.tags = newTagIndex()
	}
	return s, nil
}

// EstimateCapacity returns a record-capacity hint for a store that will
// ingest a JSON body of jsonLen bytes: roughly one record per 60 bytes of
// serialized input, plus slack for small bodies.
func EstimateCapacity(jsonLen int) uint32 {
	return uint32(jsonLen/60) + 64
}

// RecommendedBuckets returns the smallest power-of-two bucket count that
// keeps the index at no more than half its slot capacity for the expected
// record count.
func RecommendedBuckets(records uint32) uint32 {
	slots := uint64(records) * 2
	buckets := uint32((slots + slotsPerBucket - 1) / slotsPerBucket)
	return intbits.NextPowerOfTwo(buckets)
}

// Add copies the four fields into the arena, indexes the id, and appends
// the record, returning its dense insertion-order ordinal. Empty or nil
// fields map to the canonical empty string. Duplicate ids are allowed and
// get distinct ordinals; Find returns the first-inserted.
//
// On ErrCapacityExceeded the store is still valid and the failed record is
// not visible; bytes already copied into the arena are stranded but
// harmless.
func (s *MemoryStore) Add(id, taskID, content, tags []byte) (uint32, error) {
	if s.closed.Load() {
		return 0, memtaberrors.ErrStoreClosed
	}

	idOff, err := s.arena.push(id)
	if err != nil {
		return 0, err
	}
	taskOff, err := s.arena.push(taskID)
	if err != nil {
		return 0, err
	}
	contentOff, err := s.arena.push(content)
	if err != nil {
		return 0, err
	}
	tagsOff, err := s.arena.push(tags)
	if err != nil {
		return 0, err
	}

	// Index before table append: an index failure must leave count
	// unchanged so no half-added record is visible.
	fp := fingerprint(s.cfg.hash, s.cfg.seed, id)
	if err := s.index.insert(fp, s.table.count); err != nil {
		return 0, err
	}

	ord := s.table.push(idOff, taskOff, contentOff, tagsOff)
	if s.tags != nil {
		s.tags.add(tags, ord)
	}
	return ord, nil
}

// AddRecord is the string-field convenience form of Add.
func (s *MemoryStore) AddRecord(rec Record) (uint32, error) {
	return s.Add([]byte(rec.ID), []byte(rec.TaskID), []byte(rec.Content), []byte(rec.Tags))
}

// BulkAdd adds records in order, stopping at the first error.
// Records added before the error remain committed.
func (s *MemoryStore) BulkAdd(recs []Record) error {
	for _, rec := range recs {
		if _, err := s.AddRecord(rec); err != nil {
			return err
		}
	}
	return nil
}

// Find returns the ordinal of the record whose id equals id, or
// ErrNotFound. Candidates sharing id's fingerprint are confirmed with a
// full byte comparison, so colliding ids are never cross-returned.
// Find never mutates the store.
func (s *MemoryStore) Find(id []byte) (uint32, error) {
	if s.closed.Load() {
		return 0, memtaberrors.ErrStoreClosed
	}
	fp := fingerprint(s.cfg.hash, s.cfg.seed, id)
	ord, ok := s.index.find(fp, func(ordinal uint32) bool {
		return bytes.Equal(s.arena.view(s.table.id[ordinal]), id)
	})
	if !ok {
		return 0, memtaberrors.ErrNotFound
	}
	return ord, nil
}

// GetID returns the id of the record at ordinal as a borrowed view.
// The view is only valid until the next mutating call.
func (s *MemoryStore) GetID(ordinal uint32) ([]byte, error) {
	return s.fieldView(ordinal, func(t *recordTable) []uint32 { return t.id })
}

// GetTaskID returns the task id of the record at ordinal as a borrowed view.
func (s *MemoryStore) GetTaskID(ordinal uint32) ([]byte, error) {
	return s.fieldView(ordinal, func(t *recordTable) []uint32 { return t.taskID })
}

// GetContent returns the content of the record at ordinal as a borrowed view.
func (s *MemoryStore) GetContent(ordinal uint32) ([]byte, error) {
	return s.fieldView(ordinal, func(t *recordTable) []uint32 { return t.content })
}

// GetTags returns the tags of the record at ordinal as a borrowed view.
func (s *MemoryStore) GetTags(ordinal uint32) ([]byte, error) {
	return s.fieldView(ordinal, func(t *recordTable) []uint32 { return t.tags })
}

func (s *MemoryStore) fieldView(ordinal uint32, col func(*recordTable) []uint32) ([]byte, error) {
	if s.closed.Load() {
		return nil, memtaberrors.ErrStoreClosed
	}
	if ordinal >= s.table.count {
		return nil, memtaberrors.ErrOutOfRange
	}
	return s.arena.view(col(s.table)[ordinal]), nil
}

// Get returns an owned copy of the record at ordinal, safe to retain
// across mutations.
func (s *MemoryStore) Get(ordinal uint32) (Record, error) {
	if s.closed.Load() {
		return Record{}, memtaberrors.ErrStoreClosed
	}
	if ordinal >= s.table.count {
		return Record{}, memtaberrors.ErrOutOfRange
	}
	t := s.table
	return Record{
		ID:      string(s.arena.view(t.id[ordinal])),
		TaskID:  string(s.arena.view(t.taskID[ordinal])),
		Content: string(s.arena.view(t.content[ordinal])),
		Tags:    string(s.arena.view(t.tags[ordinal])),
	}, nil
}

// FindTagged returns the ordinals of all records carrying tag, ascending.
// Requires WithTagIndex.
func (s *MemoryStore) FindTagged(tag string) ([]uint32, error) {
	if s.closed.Load() {
		return nil, memtaberrors.ErrStoreClosed
	}
	if s.tags == nil {
		return nil, memtaberrors.ErrNoTagIndex
	}
	return s.tags.find(tag), nil
}

// Count returns the number of records in the store.
// Returns 0 after Close.
func (s *MemoryStore) Count() uint32 {
	if s.closed.Load() {
		return 0
	}
	return s.table.count
}

// Checksum returns an xxHash64 digest over all records in ordinal order,
// each field framed as uvarint length plus bytes. The digest depends only
// on record content and insertion order, not on arena layout, so two
// stores holding the same records in the same order agree regardless of
// growth history.
func (s *MemoryStore) Checksum() (uint64, error) {
	if s.closed.Load() {
		return 0, memtaberrors.ErrStoreClosed
	}
	digest := xxhash.New()
	var lenBuf [binary.MaxVarintLen64]byte
	t := s.table
	for ord := uint32(0); ord < t.count; ord++ {
		for _, off := range [4]uint32{t.id[ord], t.taskID[ord], t.content[ord], t.tags[ord]} {
			field := s.arena.view(off)
			n := binary.PutUvarint(lenBuf[:], uint64(len(field)))
			// hash.Hash.Write never returns an error
			digest.Write(lenBuf[:n])
			digest.Write(field)
		}
	}
	return digest.Sum64(), nil
}

// Stats returns statistics for the store, or nil after Close.
func (s *MemoryStore) Stats() *Stats {
	if s.closed.Load() {
		return nil
	}
	return &Stats{
		Records:   s.table.count,
		ArenaSize: s.arena.size(),
		ArenaUsed: s.arena.used,
		Buckets:   s.index.numBuckets(),
		SlotsUsed: s.index.slotsUsed,
		MaxProbe:  s.index.maxProbe,
		Hash:      s.cfg.hash,
	}
}

// Close unmaps the arena and releases the index and table.
// Idempotent; every other method fails with ErrStoreClosed afterward.
func (s *MemoryStore) Close() error {
	if s.closed.Swap(true) {
		return nil // Already closed
	}
	s.index = nil
	s.table = nil
	s.tags = nil
	return s.arena.close()
}
