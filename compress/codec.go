package compress

import (
	"bytes"
	"fmt"

	"github.com/jhh67/extractdat/errs"
	"github.com/jhh67/extractdat/format"
)

// Decompressor restores the raw DAT image from a compressed stream.
type Decompressor interface {
	// Decompress appends the decompressed form of src to dst and returns
	// the extended slice. dst may be nil. The input slice is never
	// modified.
	//
	// Returns an error when src is corrupted or was produced by a
	// different codec.
	Decompress(dst, src []byte) ([]byte, error)
}

// Stream magic bytes, checked in Detect.
var (
	gzipMagic = []byte{0x1F, 0x8B}
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
	// Framed snappy and s2 streams open with the same chunk header and
	// differ only in the identifier payload.
	snappyMagic = []byte{0xFF, 0x06, 0x00, 0x00, 's', 'N', 'a', 'P', 'p', 'Y'}
	s2Magic     = []byte{0xFF, 0x06, 0x00, 0x00, 'S', '2', 's', 'T', 'w', 'O'}
)

// Detect sniffs the compression codec from the magic bytes at the start
// of data. Streams matching no known magic, including every raw DAT
// image, report CompressionNone.
func Detect(data []byte) format.CompressionType {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return format.CompressionGzip
	case bytes.HasPrefix(data, zstdMagic):
		return format.CompressionZstd
	case bytes.HasPrefix(data, lz4Magic):
		return format.CompressionLZ4
	case bytes.HasPrefix(data, snappyMagic), bytes.HasPrefix(data, s2Magic):
		return format.CompressionS2
	default:
		return format.CompressionNone
	}
}

var builtinDecompressors = map[format.CompressionType]Decompressor{
	format.CompressionNone: NewNoOpDecompressor(),
	format.CompressionGzip: NewGzipDecompressor(),
	format.CompressionZstd: NewZstdDecompressor(),
	format.CompressionS2:   NewS2Decompressor(),
	format.CompressionLZ4:  NewLZ4Decompressor(),
}

// GetDecompressor retrieves the built-in Decompressor for the specified
// compression type.
func GetDecompressor(compressionType format.CompressionType) (Decompressor, error) {
	if d, ok := builtinDecompressors[compressionType]; ok {
		return d, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, compressionType)
}

// DetectAndDecompress sniffs the codec of src and decompresses it into
// dst. Uncompressed input is returned as-is without copying.
func DetectAndDecompress(dst, src []byte) ([]byte, format.CompressionType, error) {
	ctype := Detect(src)
	if ctype == format.CompressionNone {
		return src, ctype, nil
	}

	d, err := GetDecompressor(ctype)
	if err != nil {
		return nil, ctype, err
	}

	out, err := d.Decompress(dst, src)
	if err != nil {
		return nil, ctype, fmt.Errorf("decompressing %s stream: %w", ctype, err)
	}

	return out, ctype, nil
}
