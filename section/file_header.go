package section

import (
	"fmt"
	"time"

	"github.com/jhh67/extractdat/binio"
	"github.com/jhh67/extractdat/errs"
	"github.com/jhh67/extractdat/format"
)

// FileHeader represents the fixed header region at the start of a DAT
// file: the revision word at offset 0 plus the 85-word header block at
// offset 0x10.
type FileHeader struct {
	// Revision is the format revision word at byte offset 0.
	Revision format.Revision
	// IndexOffset is the byte offset of the scan offset index (word 33).
	IndexOffset uint32
	// IndexLen is the number of scan index entries (word 39). For the
	// indexed revision this is the declared scan count.
	IndexLen uint32
	// Timestamp is the acquisition start in unix seconds (word 40).
	Timestamp uint32

	// Words holds the full header block so reserved words survive a
	// Parse/Bytes round trip.
	Words []uint32
}

// Parse reads the revision word and the header block from r. The reader
// may be at any position; Parse seeks to the start of the buffer.
//
// Parse is purely structural: it fails with ErrTruncated when the buffer
// cannot hold the header region, but an unrecognized revision is recorded,
// not rejected. Revision dispatch belongs to the decoder.
func (h *FileHeader) Parse(r *binio.Reader) error {
	if err := r.Seek(RevisionOffset); err != nil {
		return err
	}

	rev, err := r.Uint32()
	if err != nil {
		return fmt.Errorf("reading revision word: %w", err)
	}
	h.Revision = format.Revision(rev)

	if err := r.Seek(FileHeaderOffset); err != nil {
		return fmt.Errorf("%w: no header block", errs.ErrTruncated)
	}

	words, err := r.Uint32s(FileHeaderWords)
	if err != nil {
		return fmt.Errorf("reading header block: %w", err)
	}

	h.Words = words
	h.IndexOffset = words[HdrWordIndexOffset]
	h.IndexLen = words[HdrWordIndexLen]
	h.Timestamp = words[HdrWordTimestamp]

	return nil
}

// Bytes serializes the header region: revision word, reserved padding,
// then the header block with the named fields applied over Words.
// A nil Words serializes as all-zero reserved words.
func (h *FileHeader) Bytes() []byte {
	engine := binaryEngine()

	buf := make([]byte, 0, FileHeaderEnd)
	buf = engine.AppendUint32(buf, uint32(h.Revision))
	buf = append(buf, make([]byte, FileHeaderOffset-4)...)

	words := make([]uint32, FileHeaderWords)
	copy(words, h.Words)
	words[HdrWordIndexOffset] = h.IndexOffset
	words[HdrWordIndexLen] = h.IndexLen
	words[HdrWordTimestamp] = h.Timestamp
	for _, w := range words {
		buf = engine.AppendUint32(buf, w)
	}

	return buf
}

// AcquiredAt returns the acquisition start timestamp as a time.Time.
func (h *FileHeader) AcquiredAt() time.Time {
	return time.Unix(int64(h.Timestamp), 0).UTC()
}

// ParseFileHeader parses the header region of a DAT image.
func ParseFileHeader(r *binio.Reader) (FileHeader, error) {
	var h FileHeader
	if err := h.Parse(r); err != nil {
		return FileHeader{}, err
	}

	return h, nil
}
