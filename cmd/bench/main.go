// Bench is a benchmarking tool for measuring memtab ingestion throughput,
// lookup latency, and memory usage, with a general JSON decoder as the
// baseline.
//
// Usage:
//
//	go run ./cmd/bench -records 1000000 -hash crc32c -readers 8
//
// Flags:
//
//	-records   Number of records to ingest (default: 1,000,000)
//	-buckets   Index buckets, 0 for RecommendedBuckets (default: 0)
//	-hash      Fingerprint algorithm: crc32c, xxh3 or murmur3 (default: crc32c)
//	-readers   Goroutines for the parallel lookup phase (default: 8)
//	-tags      Build the tag inverted index during ingestion
package main

import (
	"bytes"
	"flag"
	"fmt"
	mrand "math/rand"
	"runtime"
	"syscall"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/spaolacci/murmur3"
	"golang.org/x/sync/errgroup"

	"github.com/memtab/memtab"
)

// getMaxRSS returns the maximum resident set size in bytes.
// Uses getrusage(RUSAGE_SELF) which tracks peak RSS since process start.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, MaxRss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024 // Convert KB to bytes on Linux
	}
	return maxRSS
}

// synthBody builds a deterministic JSON body of n records. Murmur3 over
// the record counter drives the synthetic field content so runs are
// reproducible without storing a corpus.
func synthBody(n int) ([]byte, [][]byte) {
	var buf bytes.Buffer
	buf.Grow(n * 96)
	ids := make([][]byte, n)

	tags := []string{"inbox", "todo", "done", "pinned", "agent", "user"}
	buf.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		h1, h2 := murmur3.Sum128WithSeed([]byte(fmt.Sprintf("record-%d", i)), 0x1234)
		id := fmt.Sprintf("mem-%016x", h1)
		ids[i] = []byte(id)
		fmt.Fprintf(&buf, `{"id":"%s","task_id":"task-%d","content":"synthetic note %016x for session %d","tags":"%s,%s"}`,
			id, i%997, h2, i%31, tags[i%len(tags)], tags[(i+1)%len(tags)])
	}
	buf.WriteByte(']')
	return buf.Bytes(), ids
}

func main() {
	recordsFlag := flag.Int("records", 1_000_000, "number of records")
	bucketsFlag := flag.Uint("buckets", 0, "index buckets (0 = RecommendedBuckets)")
	hashFlag := flag.String("hash", "crc32c", "fingerprint algorithm: crc32c, xxh3 or murmur3")
	readersFlag := flag.Int("readers", 8, "goroutines for the parallel lookup phase")
	tagsFlag := flag.Bool("tags", false, "build the tag inverted index")
	flag.Parse()

	numRecords := *recordsFlag

	var hash memtab.HashID
	switch *hashFlag {
	case "crc32c":
		hash = memtab.HashCRC32C
	case "xxh3":
		hash = memtab.HashXXH3
	case "murmur3":
		hash = memtab.HashMurmur3
	default:
		fmt.Printf("Unknown hash: %s (use 'crc32c', 'xxh3' or 'murmur3')\n", *hashFlag)
		return
	}

	fmt.Println("Generating records...")
	body, ids := synthBody(numRecords)

	buckets := uint32(*bucketsFlag)
	if buckets == 0 {
		buckets = memtab.RecommendedBuckets(uint32(numRecords))
	}
	opts := []memtab.Option{
		memtab.WithHash(hash),
		memtab.WithIndexBuckets(buckets),
		memtab.WithArenaSize(len(body)),
	}
	if *tagsFlag {
		opts = append(opts, memtab.WithTagIndex())
	}

	baselineRSS := getMaxRSS()

	fmt.Println("Ingesting (ParseJSON)...")
	store, err := memtab.New(memtab.EstimateCapacity(len(body)), opts...)
	if err != nil {
		fmt.Printf("New failed: %v\n", err)
		return
	}
	defer func() { _ = store.Close() }()

	ingestStart := time.Now()
	added, err := store.ParseJSON(body)
	ingestDuration := time.Since(ingestStart)
	if err != nil {
		fmt.Printf("ParseJSON failed after %d records: %v\n", added, err)
		return
	}
	if added != numRecords {
		fmt.Printf("ParseJSON added %d records, expected %d\n", added, numRecords)
		return
	}

	fmt.Println("Decoding with goccy/go-json (baseline)...")
	decodeStart := time.Now()
	var decoded []memtab.Record
	if err := gojson.Unmarshal(body, &decoded); err != nil {
		fmt.Printf("Unmarshal failed: %v\n", err)
		return
	}
	decodeDuration := time.Since(decodeStart)
	if len(decoded) != numRecords {
		fmt.Printf("decoder saw %d records, expected %d\n", len(decoded), numRecords)
		return
	}

	// Randomized query order to defeat cache-friendly sequential access.
	queryOrder := mrand.Perm(numRecords)

	fmt.Println("Benchmarking lookups...")
	numQueries := min(1_000_000, numRecords*10)
	queryStart := time.Now()
	for i := 0; i < numQueries; i++ {
		_, _ = store.Find(ids[queryOrder[i%numRecords]])
	}
	queryDuration := time.Since(queryStart)

	readers := *readersFlag
	fmt.Printf("Benchmarking parallel lookups (%d readers)...\n", readers)
	perReader := numQueries / readers
	var g errgroup.Group
	parallelStart := time.Now()
	for r := 0; r < readers; r++ {
		start := r * perReader
		g.Go(func() error {
			for i := 0; i < perReader; i++ {
				_, _ = store.Find(ids[queryOrder[(start+i)%numRecords]])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Printf("parallel lookups failed: %v\n", err)
		return
	}
	parallelDuration := time.Since(parallelStart)

	stats := store.Stats()
	peakRSS := getMaxRSS() - baselineRSS

	ingestMBps := float64(len(body)) / ingestDuration.Seconds() / 1_000_000
	decodeMBps := float64(len(body)) / decodeDuration.Seconds() / 1_000_000
	findNs := float64(queryDuration.Nanoseconds()) / float64(numQueries)
	parallelMps := float64(perReader*readers) / parallelDuration.Seconds() / 1_000_000

	fmt.Printf("\n")
	fmt.Printf("╔══════════════════════════╦═══════════════════╗\n")
	fmt.Printf("║ Records: %-10d      ║ Hash: %-10s  ║\n", numRecords, stats.Hash)
	fmt.Printf("╠══════════════════════════╬═══════════════════╣\n")
	fmt.Printf("║ JSON body                ║ %8.1f MB       ║\n", float64(len(body))/1_000_000)
	fmt.Printf("║ Ingest (ParseJSON)       ║ %8.1f MB/sec   ║\n", ingestMBps)
	fmt.Printf("║ Decode (goccy baseline)  ║ %8.1f MB/sec   ║\n", decodeMBps)
	fmt.Printf("║ Ingest speedup           ║ %8.2f x        ║\n", ingestMBps/decodeMBps)
	fmt.Printf("║ Find latency             ║ %8.1f ns       ║\n", findNs)
	fmt.Printf("║ Parallel find            ║ %8.2f M/sec    ║\n", parallelMps)
	fmt.Printf("║ Index buckets            ║ %8d          ║\n", stats.Buckets)
	fmt.Printf("║ Index slots used         ║ %8d          ║\n", stats.SlotsUsed)
	fmt.Printf("║ Max probe distance       ║ %8d          ║\n", stats.MaxProbe)
	fmt.Printf("║ Arena used               ║ %8.1f MB       ║\n", float64(stats.ArenaUsed)/1_000_000)
	fmt.Printf("║ Peak RSS delta           ║ %8.1f MB       ║\n", float64(peakRSS)/1_000_000)
	fmt.Printf("╚══════════════════════════╩═══════════════════╝\n")
}
