package dat

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/jhh67/extractdat/binio"
	"github.com/jhh67/extractdat/endian"
	"github.com/jhh67/extractdat/errs"
	"github.com/jhh67/extractdat/format"
	"github.com/jhh67/extractdat/internal/options"
	"github.com/jhh67/extractdat/section"
)

// scanSigPattern is the byte image of the three scan header signature
// words, used to find candidate scan headers without an index.
var scanSigPattern = func() []byte {
	engine := endian.GetLittleEndianEngine()
	b := make([]byte, 0, 12)
	b = engine.AppendUint32(b, section.ScanSig0)
	b = engine.AppendUint32(b, section.ScanSig1)
	b = engine.AppendUint32(b, section.ScanSig2)

	return b
}()

// DecodeRecovered decodes a DAT image whose scan index is unusable.
//
// Instead of trusting the index, it sweeps the data after the file header
// for scan candidates: offsets whose signature words are in place and
// whose scan number is the next expected one. Debris between scans is
// skipped, and scans that cannot be parsed or whose shape disagrees with
// the first recovered scan are dropped with a Warning. The revision word
// is ignored too, since recovered scans self-identify for either revision.
//
// Recovery stops at the first truncated scan and keeps everything decoded
// before it. A file with no recoverable scans fails with ErrNoScans.
func DecodeRecovered(data []byte, source string, opts ...DecoderOption) (*Run, error) {
	config := &DecoderConfig{}
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}

	d := &Decoder{
		data:   data,
		source: source,
		engine: endian.GetLittleEndianEngine(),
		config: config,
	}

	reader := binio.NewReader(data, d.engine)
	header, err := section.ParseFileHeader(reader)
	if err != nil {
		return nil, err
	}
	d.header = &header
	d.revision = header.Revision

	scans := d.recoverScans(reader)
	if len(scans) == 0 {
		return nil, fmt.Errorf("%w: no recoverable scans in %s", errs.ErrNoScans, source)
	}

	masses, channels, err := d.buildChannels(scans[0])
	if err != nil {
		return nil, err
	}

	declared := -1
	if d.revision == format.RevisionIndexed {
		declared = int(header.IndexLen)
	}

	return &Run{
		Source: source,
		Header: Header{
			Revision:      d.revision,
			AcquiredAt:    header.AcquiredAt(),
			DeclaredScans: declared,
			Masses:        masses,
		},
		Channels: channels,
		Scans:    d.buildRecoveredRecords(scans, masses, channels),
		Warnings: d.warnings,
	}, nil
}

// recoverScans sweeps the buffer for decodable scans. Candidates must
// carry the signature words and the next expected scan number; anything
// else is debris and is stepped over.
func (d *Decoder) recoverScans(reader *binio.Reader) []scanData {
	var scans []scanData
	pos := section.FileHeaderEnd
	expected := uint32(1)

	for {
		candidate := findScanCandidate(d.data, pos, expected)
		if candidate < 0 {
			break
		}

		index := int(expected) - 1
		if err := reader.Seek(candidate); err != nil {
			break
		}

		scan, err := d.parseScan(reader, index)
		if err != nil {
			if errors.Is(err, errs.ErrTruncated) {
				d.warnf(index, "recovery stopped at scan index %d: %v", index, err)
				break
			}
			d.warnf(index, "skipping unreadable scan at index %d: %v", index, err)
			expected++
			pos = candidate + section.ScanHeaderSize

			continue
		}

		scans = append(scans, scan)
		expected++
		pos = reader.Offset()
	}

	return scans
}

// findScanCandidate returns the offset of the next plausible scan header
// at or after pos: signature words in place and the expected scan number.
// Returns -1 when no candidate remains.
func findScanCandidate(data []byte, pos int, expected uint32) int {
	const sigOffset = section.ScanWordSigStart * 4
	const numberOffset = section.ScanWordNumber * 4

	engine := endian.GetLittleEndianEngine()

	for {
		if pos+section.ScanHeaderSize > len(data) {
			return -1
		}

		i := bytes.Index(data[pos+sigOffset:], scanSigPattern)
		if i < 0 {
			return -1
		}

		candidate := pos + i
		if candidate+section.ScanHeaderSize > len(data) {
			return -1
		}

		if engine.Uint32(data[candidate+numberOffset:]) == expected {
			return candidate
		}

		pos = candidate + 1
	}
}

// buildRecoveredRecords flattens recovered scans, dropping any whose shape
// disagrees with the first recovered scan instead of failing, since
// recovery favors salvage over strictness.
func (d *Decoder) buildRecoveredRecords(scans []scanData, masses []MassConfig, channels []Channel) []ScanRecord {
	records := make([]ScanRecord, 0, len(scans))
	lastElapsed := time.Duration(-1)

	for i := range scans {
		scan := &scans[i]
		if err := matchShape(masses, scan, i); err != nil {
			d.warnf(i, "dropping recovered scan: %v", err)
			continue
		}

		record := makeRecord(scan, len(records), flattenValues(scan, len(channels)))

		if record.Elapsed < lastElapsed {
			d.warnf(record.Index, "elapsed time %v regressed below %v", record.Elapsed, lastElapsed)
		}
		lastElapsed = record.Elapsed

		records = append(records, record)
	}

	return records
}
