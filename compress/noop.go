package compress

// NoOpDecompressor passes data through without decompression.
//
// It backs the CompressionNone case so callers can treat every input
// uniformly, and serves as the baseline in benchmarks.
type NoOpDecompressor struct{}

var _ Decompressor = (*NoOpDecompressor)(nil)

// NewNoOpDecompressor creates a new pass-through decompressor.
func NewNoOpDecompressor() NoOpDecompressor {
	return NoOpDecompressor{}
}

// Decompress returns src when dst is empty, avoiding a copy; otherwise it
// appends src to dst. The returned slice may share memory with the input.
func (c NoOpDecompressor) Decompress(dst, src []byte) ([]byte, error) {
	if len(dst) == 0 {
		return src, nil
	}

	return append(dst, src...), nil
}
