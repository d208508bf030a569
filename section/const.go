package section

// File layout. All sizes and offsets are in bytes; "word" means a
// little-endian uint32.
const (
	// RevisionOffset is the byte offset of the format revision word.
	RevisionOffset = 0

	// FileHeaderOffset is the byte offset of the fixed header word block.
	FileHeaderOffset = 0x10

	// FileHeaderWords is the number of words in the fixed header block.
	FileHeaderWords = 85

	// FileHeaderEnd is the byte offset just past the header block. Scan
	// data and index payloads always start at or after this point.
	FileHeaderEnd = FileHeaderOffset + FileHeaderWords*4

	// ScanHeaderWords is the number of words in one scan record header.
	ScanHeaderWords = 47

	// ScanHeaderSize is the scan record header size in bytes.
	ScanHeaderSize = ScanHeaderWords * 4

	// IndexLeadSize is the size of the reserved word that opens the scan
	// offset index block. Entries start at IndexOffset+IndexLeadSize.
	IndexLeadSize = 4
)

// File header word indices.
const (
	HdrWordIndexOffset = 33 // byte offset of the scan offset index
	HdrWordIndexLen    = 39 // number of entries in the scan offset index
	HdrWordTimestamp   = 40 // acquisition start, unix seconds
)

// Scan header word indices.
const (
	ScanWordSigStart = 3  // first of the three signature words
	ScanWordDelta    = 7  // scan delta counter
	ScanWordNumber   = 9  // 1-based scan sequence number
	ScanWordACF      = 12 // analog calibration factor
	ScanWordPrevTime = 18 // elapsed time of the previous scan, ms
	ScanWordTime     = 19 // elapsed time of this scan, ms
	ScanWordEDAC     = 31 // EDAC value used by voltage words
	ScanWordFCF      = 34 // faraday calibration factor
)

// Scan header signature: words 3..5 of every valid scan header.
const (
	ScanSig0 = 0xD
	ScanSig1 = 0xE
	ScanSig2 = 0xF
)

// Tagged word keys. Every word of a scan payload carries its key in the
// top nibble and a 28-bit value below it.
const (
	KeyData  = 0x1 // measurement data word
	KeyMass  = 0x2 // magnet mass setting
	KeyTime  = 0x3 // channel dwell time
	KeyVolt  = 0x4 // accelerating voltage
	KeyEOM   = 0x8 // end of mass, value is the dwell duration
	KeyB     = 0xB // purpose unknown, carried but ignored
	KeyBScan = 0xC // B-scan marker, ignored
	KeyEOS   = 0xF // end of scan
)

// Tagged word field masks and shifts.
const (
	KeyShift   = 28
	ValueMask  = 0x0FFFFFFF
	FlagMask   = 0x0F000000 // KeyData: sign flag
	FlagShift  = 24
	TypeMask   = 0x00F00000 // KeyData: detector type
	TypeShift  = 20
	ExpMask    = 0x000F0000 // KeyData: shift exponent
	ExpShift   = 16
	DataMask   = 0x0000FFFF // KeyData: mantissa
	FixedShift = 18         // KeyMass and KeyVolt use 18-bit fixed point
)
