package memtab

const (
	defaultBuckets   = 1 << 18
	defaultArenaSize = 1 << 20
	defaultSeed      = 0x12345678
)

// Option is a functional option for configuring a store.
type Option func(*config)

type config struct {
	numBuckets uint32
	arenaSize  int
	hash       HashID
	seed       uint32
	tagIndex   bool
}

func defaultConfig() *config {
	return &config{
		numBuckets: defaultBuckets,
		arenaSize:  defaultArenaSize,
		hash:       HashCRC32C,
		seed:       defaultSeed, // Arbitrary default; overridden via WithHashSeed
	}
}

// WithIndexBuckets sets the number of hash index buckets (8 slots each).
// Must be a power of two. The index is not resizable, so size it for the
// expected record count up front; RecommendedBuckets helps.
func WithIndexBuckets(n uint32) Option {
	return func(c *config) {
		c.numBuckets = n
	}
}

// WithArenaSize sets the initial arena mapping size in bytes.
// The arena still grows on demand; this only avoids early regrowth.
func WithArenaSize(n int) Option {
	return func(c *config) {
		c.arenaSize = n
	}
}

// WithHash selects the fingerprint algorithm.
// Default is HashCRC32C.
func WithHash(id HashID) Option {
	return func(c *config) {
		c.hash = id
	}
}

// WithHashSeed sets the fingerprint seed. Stores must share algorithm and
// seed to produce identical index layouts over the same data.
func WithHashSeed(seed uint32) Option {
	return func(c *config) {
		c.seed = seed
	}
}

// WithTagIndex enables the inverted tag index consulted by FindTagged.
// Tags are comma-separated within a record's tags field; each tag is
// indexed on Add.
func WithTagIndex() Option {
	return func(c *config) {
		c.tagIndex = true
	}
}
