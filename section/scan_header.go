package section

import (
	"fmt"

	"github.com/jhh67/extractdat/binio"
	"github.com/jhh67/extractdat/endian"
	"github.com/jhh67/extractdat/errs"
)

// binaryEngine returns the byte order of the DAT format.
func binaryEngine() endian.EndianEngine {
	return endian.GetLittleEndianEngine()
}

// ScanHeader represents the 47-word header opening every scan record.
type ScanHeader struct {
	// Number is the 1-based scan sequence number (word 9).
	Number uint32
	// Delta is the scan delta counter (word 7).
	Delta uint32
	// ACF is the analog calibration factor (word 12).
	ACF uint32
	// PrevTime is the elapsed time of the previous scan in ms (word 18).
	PrevTime uint32
	// Time is the elapsed time of this scan in ms (word 19).
	Time uint32
	// EDAC is the EDAC value referenced by voltage words (word 31).
	EDAC uint32
	// FCF is the faraday calibration factor (word 34).
	FCF uint32

	// Words holds the full header so reserved words survive a Parse/Bytes
	// round trip.
	Words []uint32
}

// Parse reads one scan header at the reader's current position and
// validates the fixed signature words.
//
// On a signature mismatch the cursor is restored to the start of the
// header so recovery scanning can resume from the next byte.
func (h *ScanHeader) Parse(r *binio.Reader) error {
	start := r.Offset()

	words, err := r.Uint32s(ScanHeaderWords)
	if err != nil {
		return fmt.Errorf("reading scan header at offset %d: %w", start, err)
	}

	if !ValidScanSignature(words) {
		if serr := r.Seek(start); serr != nil {
			return serr
		}

		return fmt.Errorf("%w: at offset %d", errs.ErrBadScanSignature, start)
	}

	h.Words = words
	h.Number = words[ScanWordNumber]
	h.Delta = words[ScanWordDelta]
	h.ACF = words[ScanWordACF]
	h.PrevTime = words[ScanWordPrevTime]
	h.Time = words[ScanWordTime]
	h.EDAC = words[ScanWordEDAC]
	h.FCF = words[ScanWordFCF]

	return nil
}

// Bytes serializes the scan header with the named fields and signature
// applied over Words. A nil Words serializes as all-zero reserved words.
func (h *ScanHeader) Bytes() []byte {
	engine := binaryEngine()

	words := make([]uint32, ScanHeaderWords)
	copy(words, h.Words)
	words[ScanWordSigStart] = ScanSig0
	words[ScanWordSigStart+1] = ScanSig1
	words[ScanWordSigStart+2] = ScanSig2
	words[ScanWordNumber] = h.Number
	words[ScanWordDelta] = h.Delta
	words[ScanWordACF] = h.ACF
	words[ScanWordPrevTime] = h.PrevTime
	words[ScanWordTime] = h.Time
	words[ScanWordEDAC] = h.EDAC
	words[ScanWordFCF] = h.FCF

	buf := make([]byte, 0, ScanHeaderSize)
	for _, w := range words {
		buf = engine.AppendUint32(buf, w)
	}

	return buf
}

// ValidScanSignature reports whether a scan header word block carries the
// fixed 0xD 0xE 0xF signature.
func ValidScanSignature(words []uint32) bool {
	if len(words) < ScanWordSigStart+3 {
		return false
	}

	return words[ScanWordSigStart] == ScanSig0 &&
		words[ScanWordSigStart+1] == ScanSig1 &&
		words[ScanWordSigStart+2] == ScanSig2
}
