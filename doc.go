// Package memtab implements an in-process store for short text records
// (id, task_id, content, tags) backing an agent/session memory subsystem.
//
// Memtab is built for two operations: very fast bulk ingestion from JSON
// bodies and very fast point lookup by id. Record strings live in a
// growable arena addressed by 32-bit offsets, a fixed-capacity
// open-addressing hash index maps id fingerprints to record ordinals, and
// a bespoke structural JSON scanner feeds records straight from the raw
// input buffer into the store without intermediate allocation.
//
// # Basic Usage
//
// Ingesting a JSON body and querying:
//
//	store, err := memtab.New(memtab.EstimateCapacity(len(body)))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	if _, err := store.ParseJSON(body); err != nil {
//	    log.Fatal(err)
//	}
//
//	ordinal, err := store.Find([]byte("note-42"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	content, _ := store.GetContent(ordinal)
//	fmt.Printf("%s\n", content)
//
// Adding records directly:
//
//	ordinal, err := store.Add([]byte("note-43"), []byte("task-7"),
//	    []byte("call the plumber"), []byte("home,todo"))
//
// A MemoryStore is not safe for concurrent use. Wrap it in a SharedStore
// to serialize writers against readers with a read-write lock.
//
// # Package Structure
//
// The implementation is organized as follows:
//
//   - Public API: store.go (New, Add, Find, Get*, Checksum, Stats, Close)
//   - Configuration: store_options.go (Option, With* functions)
//   - Hashing: hash.go (HashID, fingerprint dispatch)
//   - Storage: arena.go (mmap-backed string arena), table.go (offset columns)
//   - Index: index.go (8-slot-bucket open addressing)
//   - Ingestion: scan.go (structural JSON scanner)
//   - Tag filtering: tags.go (roaring-bitmap inverted index)
//   - Concurrency: shared.go (SharedStore read-write wrapper)
//   - Platform: prefault_*.go (OS-specific optimizations)
package memtab
