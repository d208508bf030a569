package compress

// ZstdDecompressor restores Zstandard-compressed DAT archives.
//
// Two implementations exist behind build tags: cgo builds use
// valyala/gozstd for the native libzstd decoder, and pure-Go builds fall
// back to klauspost/compress/zstd. Both decode the same streams; only
// throughput differs.
type ZstdDecompressor struct{}

var _ Decompressor = (*ZstdDecompressor)(nil)

// NewZstdDecompressor creates a new Zstd decompressor.
func NewZstdDecompressor() ZstdDecompressor {
	return ZstdDecompressor{}
}
