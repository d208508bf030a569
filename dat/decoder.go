package dat

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jhh67/extractdat/binio"
	"github.com/jhh67/extractdat/endian"
	"github.com/jhh67/extractdat/errs"
	"github.com/jhh67/extractdat/format"
	"github.com/jhh67/extractdat/internal/options"
	"github.com/jhh67/extractdat/section"
)

// modeOrder fixes the channel column order within a mass slot. Readings
// are emitted pulse first, then analog, then faraday, regardless of the
// order they arrive in the scan payload.
var modeOrder = [...]format.DetectorMode{format.ModePulse, format.ModeAnalog, format.ModeFaraday}

// Decoder decodes one uncompressed DAT image into a Run.
//
// Note: The Decoder is NOT thread-safe. Each decoder instance should be used by a single goroutine at a time.
//
// Note: The Decoder is NOT reusable. After calling Decode, a new decoder must be created for further decoding.
type Decoder struct {
	data     []byte
	source   string
	engine   endian.EndianEngine
	config   *DecoderConfig
	header   *section.FileHeader
	revision format.Revision
	warnings []Warning
}

// NewDecoder creates a new Decoder for the given DAT image.
//
// The decoder parses and validates the file header but does not touch scan
// data until Decode() is called. The image must be uncompressed; callers
// holding compressed input should pass it through
// compress.DetectAndDecompress first.
//
// Parameters:
//   - data: DAT image byte slice (must contain a valid file header)
//   - source: origin path recorded on the decoded Run, used for provenance
//     and output naming
//
// Returns:
//   - *Decoder: New decoder instance ready for decoding
//   - error: Header parsing error or unrecognized format revision
func NewDecoder(data []byte, source string, opts ...DecoderOption) (*Decoder, error) {
	config := &DecoderConfig{}
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}

	decoder := &Decoder{
		data:   data,
		source: source,
		engine: endian.GetLittleEndianEngine(),
		config: config,
	}

	if err := decoder.parseHeader(); err != nil {
		return nil, err
	}

	return decoder, nil
}

// Decode decodes the image into a Run.
//
// The channel layout is fixed by the first scan; every later scan must
// decode to the same mass and mode shape. Non-fatal findings such as scan
// number mismatches and elapsed time regressions are collected on
// Run.Warnings rather than failing the decode.
//
// Returns:
//   - *Run: Decoded run with header metadata, channel layout and scan records
//   - error: Index validation errors, scan parsing errors, channel layout
//     errors, or shape mismatches between scans
func (d *Decoder) Decode() (*Run, error) {
	// Step 1: Locate and parse the scan records
	var (
		scans    []scanData
		declared int
		err      error
	)

	switch d.revision {
	case format.RevisionIndexed:
		var offsets []int
		offsets, err = d.parseIndex()
		if err != nil {
			return nil, err
		}
		declared = len(offsets)
		scans, err = d.parseIndexedScans(offsets)
	case format.RevisionStreamed:
		declared = -1
		scans, err = d.parseScanStream()
	default:
		err = fmt.Errorf("%w: revision 0x%x", errs.ErrUnsupportedVersion, uint32(d.revision))
	}
	if err != nil {
		return nil, err
	}

	if len(scans) == 0 {
		return nil, fmt.Errorf("%w: %s", errs.ErrNoScans, d.source)
	}

	// Step 2: Fix the mass configuration and channel layout from the first scan
	masses, channels, err := d.buildChannels(scans[0])
	if err != nil {
		return nil, err
	}

	// Step 3: Flatten scan payloads into channel-aligned records
	records, err := d.buildRecords(scans, masses, channels)
	if err != nil {
		return nil, err
	}

	return &Run{
		Source: d.source,
		Header: Header{
			Revision:      d.revision,
			AcquiredAt:    d.header.AcquiredAt(),
			DeclaredScans: declared,
			Masses:        masses,
		},
		Channels: channels,
		Scans:    records,
		Warnings: d.warnings,
	}, nil
}

// Decode decodes an uncompressed DAT image into a Run in a single call.
// It is shorthand for NewDecoder followed by Decoder.Decode.
func Decode(data []byte, source string, opts ...DecoderOption) (*Run, error) {
	decoder, err := NewDecoder(data, source, opts...)
	if err != nil {
		return nil, err
	}

	return decoder.Decode()
}

// scanData carries one parsed scan record before flattening.
type scanData struct {
	header section.ScanHeader
	masses []scanMass
}

// scanMass accumulates the tagged words of one mass block. The set-once
// attribute words may arrive in any order before the closing end-of-mass
// word; readings keep their arrival order per detector.
type scanMass struct {
	magnetMass  float64
	channelTime uint32
	voltage     float64
	duration    uint32
	seen        uint8

	pulse   []float64
	analog  []float64
	faraday []float64
}

// seen bits for the set-once attribute words of a mass block.
const (
	seenMass = 1 << iota
	seenTime
	seenVolt
)

// readings returns the accumulated readings of one detector mode.
func (m *scanMass) readings(mode format.DetectorMode) []float64 {
	switch mode {
	case format.ModePulse:
		return m.pulse
	case format.ModeAnalog:
		return m.analog
	case format.ModeFaraday:
		return m.faraday
	default:
		return nil
	}
}

// parseHeader parses the file header region and validates the revision.
func (d *Decoder) parseHeader() error {
	reader := binio.NewReader(d.data, d.engine)

	header, err := section.ParseFileHeader(reader)
	if err != nil {
		return err
	}

	if !header.Revision.Valid() {
		return fmt.Errorf("%w: revision 0x%x", errs.ErrUnsupportedVersion, uint32(header.Revision))
	}

	d.header = &header
	d.revision = header.Revision

	return nil
}

// parseIndex reads the scan offset index and bounds-checks every entry.
// Entries may address scans in any order; only their ranges are validated
// here.
func (d *Decoder) parseIndex() ([]int, error) {
	count := int(d.header.IndexLen)
	if count == 0 {
		return nil, fmt.Errorf("%w: index declares zero scans", errs.ErrNoScans)
	}

	reader := binio.NewReader(d.data, d.engine)
	start := int(d.header.IndexOffset) + section.IndexLeadSize
	if err := reader.Seek(start); err != nil {
		return nil, fmt.Errorf("%w: index block at offset %d", errs.ErrBadIndex, int(d.header.IndexOffset))
	}

	words, err := reader.Uint32s(count)
	if err != nil {
		return nil, fmt.Errorf("%w: index block with %d entries at offset %d", errs.ErrBadIndex, count, start)
	}

	offsets := make([]int, count)
	for i, word := range words {
		offset := int(word)
		if offset < section.FileHeaderEnd || offset+section.ScanHeaderSize > len(d.data) {
			return nil, fmt.Errorf("%w: scan %d at offset %d", errs.ErrBadIndex, i, offset)
		}
		offsets[i] = offset
	}

	return offsets, nil
}

// parseIndexedScans parses each scan record addressed by the index. Under
// WithLenientTags, scans with unrecognized payload words are skipped with
// a warning.
func (d *Decoder) parseIndexedScans(offsets []int) ([]scanData, error) {
	reader := binio.NewReader(d.data, d.engine)
	scans := make([]scanData, 0, len(offsets))

	for i, offset := range offsets {
		if err := reader.Seek(offset); err != nil {
			return nil, fmt.Errorf("%w: scan %d at offset %d", errs.ErrBadIndex, i, offset)
		}

		scan, err := d.parseScan(reader, i)
		if err != nil {
			if d.skippable(err) {
				d.warnf(i, "skipping scan at index %d: %v", i, err)
				continue
			}

			return nil, err
		}

		scans = append(scans, scan)
	}

	return scans, nil
}

// parseScanStream parses back-to-back scan records from the end of the
// file header to the end of input.
func (d *Decoder) parseScanStream() ([]scanData, error) {
	reader := binio.NewReader(d.data, d.engine)
	if err := reader.Seek(section.FileHeaderEnd); err != nil {
		return nil, fmt.Errorf("%w: no scan data after file header", errs.ErrTruncated)
	}

	var scans []scanData
	for index := 0; reader.Remaining() > 0; index++ {
		scan, err := d.parseScan(reader, index)
		if err != nil {
			if d.skippable(err) {
				d.warnf(index, "skipping scan at index %d: %v", index, err)
				if !resyncScan(reader) {
					return scans, nil
				}

				continue
			}

			return nil, err
		}

		scans = append(scans, scan)
	}

	return scans, nil
}

// resyncScan consumes words until the next end-of-scan word so streamed
// parsing can continue past an abandoned scan. Returns false when the
// input ends first.
func resyncScan(reader *binio.Reader) bool {
	for {
		word, err := reader.Uint32()
		if err != nil {
			return false
		}
		if section.Key(word) == section.KeyEOS {
			return true
		}
	}
}

// parseScan parses one scan record at the reader's position: the fixed
// header followed by tagged payload words through the end-of-scan word.
func (d *Decoder) parseScan(reader *binio.Reader, index int) (scanData, error) {
	var scan scanData

	if err := scan.header.Parse(reader); err != nil {
		return scan, fmt.Errorf("scan %d: %w", index, err)
	}

	edac := scan.header.EDAC

	var (
		mass scanMass
		open bool
	)

	for {
		word, err := reader.Uint32()
		if err != nil {
			return scan, fmt.Errorf("scan %d payload: %w", index, err)
		}

		key := section.Key(word)
		value := section.Value(word)

		switch key {
		case section.KeyData:
			fields := section.SplitData(word)
			if !fields.Mode.Valid() {
				return scan, fmt.Errorf("%w: 0x%x in scan %d", errs.ErrUnknownDetector, uint8(fields.Mode), index)
			}
			open = true
			switch fields.Mode {
			case format.ModePulse:
				mass.pulse = append(mass.pulse, fields.Reading())
			case format.ModeAnalog:
				mass.analog = append(mass.analog, fields.Reading())
			case format.ModeFaraday:
				mass.faraday = append(mass.faraday, fields.Reading())
			}
		case section.KeyMass:
			if mass.seen&seenMass != 0 {
				return scan, fmt.Errorf("%w: repeated magnet mass word in scan %d", errs.ErrMalformedHeader, index)
			}
			mass.seen |= seenMass
			mass.magnetMass = section.FixedPoint(value)
			open = true
		case section.KeyTime:
			if mass.seen&seenTime != 0 {
				return scan, fmt.Errorf("%w: repeated channel time word in scan %d", errs.ErrMalformedHeader, index)
			}
			mass.seen |= seenTime
			mass.channelTime = value
			open = true
		case section.KeyVolt:
			if mass.seen&seenVolt != 0 {
				return scan, fmt.Errorf("%w: repeated voltage word in scan %d", errs.ErrMalformedHeader, index)
			}
			mass.seen |= seenVolt
			mass.voltage = accelVoltage(edac, value)
			open = true
		case section.KeyEOM:
			mass.duration = value
			scan.masses = append(scan.masses, mass)
			mass = scanMass{}
			open = false
		case section.KeyB, section.KeyBScan:
			// Calibration words with no extractable measurements.
		case section.KeyEOS:
			if open {
				return scan, fmt.Errorf("%w: unterminated mass block in scan %d", errs.ErrMalformedHeader, index)
			}

			return scan, nil
		default:
			return scan, fmt.Errorf("%w: key 0x%x in scan %d", errs.ErrUnknownTag, key, index)
		}
	}
}

// accelVoltage derives the accelerating voltage from the scan's EDAC value
// and a voltage word value.
func accelVoltage(edac, value uint32) float64 {
	if value == 0 {
		return 0
	}

	return float64(edac) * 1000.0 / float64(value) / float64(uint32(1)<<section.FixedShift)
}

// buildChannels fixes the run's mass configuration and channel layout from
// its first scan.
func (d *Decoder) buildChannels(first scanData) ([]MassConfig, []Channel, error) {
	if len(first.masses) == 0 {
		return nil, nil, fmt.Errorf("%w: first scan carries no mass blocks", errs.ErrNoChannels)
	}

	masses := make([]MassConfig, len(first.masses))
	for i := range first.masses {
		m := &first.masses[i]
		config := MassConfig{
			Index:       i,
			Name:        d.massName(i),
			MagnetMass:  m.magnetMass,
			ChannelTime: m.channelTime,
			Duration:    m.duration,
			Voltage:     m.voltage,
		}
		for _, mode := range modeOrder {
			if count := len(m.readings(mode)); count > 0 {
				config.Samples = append(config.Samples, ModeSamples{Mode: mode, Count: count})
			}
		}
		masses[i] = config
	}

	var channels []Channel
	for i := range masses {
		config := &masses[i]
		multiMode := len(config.Samples) > 1
		for _, samples := range config.Samples {
			for k := 0; k < samples.Count; k++ {
				channels = append(channels, Channel{
					Label:  channelLabel(config.Name, samples.Mode, multiMode, samples.Count, k),
					Mass:   i,
					Mode:   samples.Mode,
					Sample: k,
				})
			}
		}
	}

	if len(channels) == 0 {
		return nil, nil, fmt.Errorf("%w: first scan carries no data words", errs.ErrNoChannels)
	}

	seen := make(map[string]int, len(channels))
	for i, ch := range channels {
		if j, dup := seen[ch.Label]; dup {
			return nil, nil, fmt.Errorf("%w: %q for columns %d and %d", errs.ErrDuplicateChannel, ch.Label, j, i)
		}
		seen[ch.Label] = i
	}

	return masses, channels, nil
}

// channelLabel builds the column label for one channel. Labels stay bare
// when a mass has a single channel, gain a detector letter when multiple
// modes are active, and a 1-based ordinal when a mode samples more than
// once.
func channelLabel(name string, mode format.DetectorMode, multiMode bool, count, sample int) string {
	if !multiMode && count == 1 {
		return name
	}

	label := name + mode.Letter()
	if count > 1 {
		label += strconv.Itoa(sample + 1)
	}

	return label
}

// massName resolves a mass slot's element name from the configured names,
// falling back to a generated MassNN placeholder.
func (d *Decoder) massName(index int) string {
	if index < len(d.config.elementNames) {
		if name := d.config.elementNames[index]; name != "" {
			return name
		}
	}

	return fmt.Sprintf("Mass%02d", index+1)
}

// buildRecords flattens parsed scans into channel-aligned records and
// validates each scan against the established layout.
func (d *Decoder) buildRecords(scans []scanData, masses []MassConfig, channels []Channel) ([]ScanRecord, error) {
	records := make([]ScanRecord, 0, len(scans))
	lastElapsed := time.Duration(-1)

	for i := range scans {
		scan := &scans[i]
		if err := matchShape(masses, scan, i); err != nil {
			return nil, err
		}

		record := makeRecord(scan, i, flattenValues(scan, len(channels)))

		if record.Number != uint32(i)+1 {
			d.warnf(i, "scan number %d at index %d, want %d", record.Number, i, i+1)
		}
		if record.Elapsed < lastElapsed {
			d.warnf(i, "elapsed time %v regressed below %v", record.Elapsed, lastElapsed)
		}
		lastElapsed = record.Elapsed

		records = append(records, record)
	}

	return records, nil
}

// flattenValues collects a scan's readings in channel column order.
func flattenValues(scan *scanData, capacity int) []float64 {
	values := make([]float64, 0, capacity)
	for mi := range scan.masses {
		for _, mode := range modeOrder {
			values = append(values, scan.masses[mi].readings(mode)...)
		}
	}

	return values
}

// makeRecord builds a ScanRecord from a parsed scan and its flattened
// channel values.
func makeRecord(scan *scanData, index int, values []float64) ScanRecord {
	return ScanRecord{
		Index:   index,
		Number:  scan.header.Number,
		Elapsed: time.Duration(scan.header.Time) * time.Millisecond,
		ACF:     float64(scan.header.ACF),
		FCF:     float64(scan.header.FCF),
		EDAC:    scan.header.EDAC,
		Values:  values,
	}
}

// matchShape verifies a scan's mass and mode layout against the schema
// established by the first scan.
func matchShape(masses []MassConfig, scan *scanData, index int) error {
	if len(scan.masses) != len(masses) {
		return fmt.Errorf("%w: scan %d has %d mass blocks, want %d",
			errs.ErrScanShapeMismatch, index, len(scan.masses), len(masses))
	}

	for mi := range masses {
		for _, mode := range modeOrder {
			want := masses[mi].SampleCount(mode)
			if got := len(scan.masses[mi].readings(mode)); got != want {
				return fmt.Errorf("%w: scan %d mass %d has %d %s readings, want %d",
					errs.ErrScanShapeMismatch, index, mi, got, mode, want)
			}
		}
	}

	return nil
}

// skippable reports whether a scan parse error may be skipped under the
// lenient tag option.
func (d *Decoder) skippable(err error) bool {
	if !d.config.lenient {
		return false
	}

	return errors.Is(err, errs.ErrUnknownTag) || errors.Is(err, errs.ErrUnknownDetector)
}

// warnf records a non-fatal finding for the scan at the given index.
func (d *Decoder) warnf(scan int, msg string, args ...any) {
	d.warnings = append(d.warnings, Warning{Scan: scan, Message: fmt.Sprintf(msg, args...)})
}
