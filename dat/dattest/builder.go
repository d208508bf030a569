// Package dattest builds synthetic DAT images for tests.
//
// Builder assembles a structurally valid image from scan descriptions and
// exposes override knobs for the corruption cases the decoder must handle:
//
//	b := dattest.NewBuilder(format.RevisionIndexed)
//	b.AddScan(dattest.Scan{Number: 1, Time: 1000, Masses: []dattest.Mass{
//		{Duration: 160, Readings: []dattest.Reading{{Mode: format.ModePulse, Mantissa: 42}}},
//	}})
//	image := b.Bytes()
package dattest

import (
	"github.com/jhh67/extractdat/endian"
	"github.com/jhh67/extractdat/format"
	"github.com/jhh67/extractdat/section"
)

// Reading describes one measurement data word.
type Reading struct {
	Mode     format.DetectorMode
	Mantissa uint32
	Exp      uint32
	Negative bool
}

// Mass describes one mass block of a scan. Attribute words with zero
// values are omitted from the emitted block, matching instruments that
// leave settings out.
type Mass struct {
	MagnetMass  uint32 // raw 18-bit fixed point value
	ChannelTime uint32
	Voltage     uint32 // raw voltage word value
	Duration    uint32 // end-of-mass word value
	Readings    []Reading

	// OmitEOM drops the closing end-of-mass word.
	OmitEOM bool
}

// Scan describes one scan record.
type Scan struct {
	Number   uint32
	Delta    uint32
	ACF      uint32
	PrevTime uint32
	Time     uint32
	EDAC     uint32
	FCF      uint32
	Masses   []Mass

	// ExtraWords injects raw tagged words after the mass blocks, before
	// the end-of-scan word.
	ExtraWords []uint32

	// OmitEOS drops the closing end-of-scan word.
	OmitEOS bool
}

// Builder assembles a DAT image from scans and raw debris segments.
type Builder struct {
	revision  format.Revision
	timestamp uint32
	segments  []segment

	indexOffset *uint32
	indexLen    *uint32
}

type segment struct {
	scan   *Scan
	debris []byte
}

// NewBuilder creates a Builder for the given revision. Unrecognized
// revision values are emitted as-is for unsupported-version tests.
func NewBuilder(revision format.Revision) *Builder {
	return &Builder{revision: revision}
}

// SetTimestamp sets the acquisition start, unix seconds.
func (b *Builder) SetTimestamp(ts uint32) {
	b.timestamp = ts
}

// AddScan appends a scan record to the image body.
func (b *Builder) AddScan(s Scan) {
	b.segments = append(b.segments, segment{scan: &s})
}

// AddDebris appends raw bytes to the image body without indexing them,
// simulating corrupt regions between scans for recovery tests.
func (b *Builder) AddDebris(raw []byte) {
	b.segments = append(b.segments, segment{debris: append([]byte(nil), raw...)})
}

// ForceIndexOffset overrides the index offset header word, detaching it
// from the real index block position.
func (b *Builder) ForceIndexOffset(v uint32) {
	b.indexOffset = &v
}

// ForceIndexLen overrides the index length header word, detaching it from
// the real scan count.
func (b *Builder) ForceIndexLen(v uint32) {
	b.indexLen = &v
}

// Bytes assembles the image: header region, scan body with any debris,
// and, for the indexed revision, the trailing scan offset index.
func (b *Builder) Bytes() []byte {
	engine := endian.GetLittleEndianEngine()

	var body []byte
	var offsets []uint32
	pos := uint32(section.FileHeaderEnd)
	for _, seg := range b.segments {
		if seg.scan != nil {
			offsets = append(offsets, pos)
			blob := scanBytes(seg.scan, engine)
			body = append(body, blob...)
			pos += uint32(len(blob))
		} else {
			body = append(body, seg.debris...)
			pos += uint32(len(seg.debris))
		}
	}

	var indexOffset, indexLen uint32
	if b.revision == format.RevisionIndexed {
		indexOffset = pos
		indexLen = uint32(len(offsets))
	}
	if b.indexOffset != nil {
		indexOffset = *b.indexOffset
	}
	if b.indexLen != nil {
		indexLen = *b.indexLen
	}

	header := section.FileHeader{
		Revision:    b.revision,
		IndexOffset: indexOffset,
		IndexLen:    indexLen,
		Timestamp:   b.timestamp,
	}

	out := header.Bytes()
	out = append(out, body...)

	if b.revision == format.RevisionIndexed {
		out = engine.AppendUint32(out, 0) // index lead word
		for _, off := range offsets {
			out = engine.AppendUint32(out, off)
		}
	}

	return out
}

func scanBytes(s *Scan, engine endian.EndianEngine) []byte {
	header := section.ScanHeader{
		Number:   s.Number,
		Delta:    s.Delta,
		ACF:      s.ACF,
		PrevTime: s.PrevTime,
		Time:     s.Time,
		EDAC:     s.EDAC,
		FCF:      s.FCF,
	}

	out := header.Bytes()
	for i := range s.Masses {
		out = massWords(out, &s.Masses[i], engine)
	}
	for _, w := range s.ExtraWords {
		out = engine.AppendUint32(out, w)
	}
	if !s.OmitEOS {
		out = engine.AppendUint32(out, section.MakeWord(section.KeyEOS, 0))
	}

	return out
}

func massWords(out []byte, m *Mass, engine endian.EndianEngine) []byte {
	if m.MagnetMass != 0 {
		out = engine.AppendUint32(out, section.MakeWord(section.KeyMass, m.MagnetMass))
	}
	if m.ChannelTime != 0 {
		out = engine.AppendUint32(out, section.MakeWord(section.KeyTime, m.ChannelTime))
	}
	if m.Voltage != 0 {
		out = engine.AppendUint32(out, section.MakeWord(section.KeyVolt, m.Voltage))
	}
	for _, r := range m.Readings {
		out = engine.AppendUint32(out, section.MakeDataWord(section.DataFields{
			Negative: r.Negative,
			Mode:     r.Mode,
			Exp:      r.Exp,
			Mantissa: r.Mantissa,
		}))
	}
	if !m.OmitEOM {
		out = engine.AppendUint32(out, section.MakeWord(section.KeyEOM, m.Duration))
	}

	return out
}

// SampleNames returns the element names matching SampleImage's mass slots.
func SampleNames() []string {
	return []string{"Li7", "Be9", "B11"}
}

// SampleFIN2 returns a FIN2 sidecar whose names line matches SampleNames.
func SampleFIN2() []byte {
	return []byte("Finnigan MAT\r\n" +
		"sample\r\n" +
		"07/07/2014\r\n" +
		"19:18:08\r\n" +
		"3\r\n" +
		"4\r\n" +
		"0\r\n" +
		"Time,Li7,Be9,B11\r\n")
}

// SampleImage returns a small indexed image with three single-pulse mass
// slots and three scans. Paired with SampleNames it decodes to channels
// Li7, Be9 and B11.
func SampleImage() []byte {
	b := NewBuilder(format.RevisionIndexed)
	b.SetTimestamp(1404760688)

	for i := uint32(1); i <= 3; i++ {
		b.AddScan(Scan{
			Number: i,
			Time:   1000 * i,
			ACF:    1,
			FCF:    1,
			EDAC:   8000,
			Masses: []Mass{
				{MagnetMass: 7 << section.FixedShift, ChannelTime: 524288, Duration: 160,
					Readings: []Reading{{Mode: format.ModePulse, Mantissa: 100 + i}}},
				{MagnetMass: 9 << section.FixedShift, ChannelTime: 524288, Duration: 160,
					Readings: []Reading{{Mode: format.ModePulse, Mantissa: 200 + i}}},
				{MagnetMass: 11 << section.FixedShift, ChannelTime: 524288, Duration: 160,
					Readings: []Reading{{Mode: format.ModePulse, Mantissa: 300 + i}}},
			},
		})
	}

	return b.Bytes()
}
