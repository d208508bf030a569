package dat

import (
	"fmt"
	"time"

	"github.com/jhh67/extractdat/binio"
	"github.com/jhh67/extractdat/compress"
	"github.com/jhh67/extractdat/endian"
	"github.com/jhh67/extractdat/errs"
	"github.com/jhh67/extractdat/format"
	"github.com/jhh67/extractdat/section"
)

// Info summarizes a DAT file from its header region alone.
type Info struct {
	// Revision is the recognized format revision.
	Revision format.Revision

	// Compression is the input compression detected before probing.
	Compression format.CompressionType

	// AcquiredAt is the acquisition start time.
	AcquiredAt time.Time

	// DeclaredScans is the scan count declared by the scan index, or -1
	// for the streamed revision, which declares none.
	DeclaredScans int

	// InputSize is the input size in bytes as given.
	InputSize int

	// Size is the DAT image size after decompression. Equal to InputSize
	// for uncompressed input.
	Size int
}

// Inspect probes a possibly compressed DAT file and returns its header
// summary without touching scan data.
//
// Unlike NewDecoder, Inspect accepts compressed input directly and reports
// which codec it detected.
func Inspect(data []byte) (*Info, error) {
	image, compression, err := compress.DetectAndDecompress(nil, data)
	if err != nil {
		return nil, err
	}

	reader := binio.NewReader(image, endian.GetLittleEndianEngine())
	header, err := section.ParseFileHeader(reader)
	if err != nil {
		return nil, err
	}

	if !header.Revision.Valid() {
		return nil, fmt.Errorf("%w: revision 0x%x", errs.ErrUnsupportedVersion, uint32(header.Revision))
	}

	declared := -1
	if header.Revision == format.RevisionIndexed {
		declared = int(header.IndexLen)
	}

	return &Info{
		Revision:      header.Revision,
		Compression:   compression,
		AcquiredAt:    header.AcquiredAt(),
		DeclaredScans: declared,
		InputSize:     len(data),
		Size:          len(image),
	}, nil
}
