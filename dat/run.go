package dat

import (
	"time"

	"github.com/jhh67/extractdat/format"
)

// Run is one decoded acquisition: the contents of a single DAT file.
//
// A Run is immutable after decode. Channels and Scans are owned by the
// Run; readers must not modify them. The same Run can back per-file
// output and multi-run reconciliation concurrently.
type Run struct {
	// Source is the path the run was decoded from, used for provenance
	// and output naming.
	Source string

	// Header carries the acquisition metadata and mass configuration.
	Header Header

	// Channels lists the measurement channels in column order. Labels
	// are unique within the run.
	Channels []Channel

	// Scans holds the scan records in acquisition order.
	Scans []ScanRecord

	// Warnings collects non-fatal data quality findings observed during
	// decode, such as elapsed time regressions or skipped scans.
	Warnings []Warning
}

// Header is the acquisition metadata of a run.
type Header struct {
	// Revision is the recognized format revision of the source file.
	Revision format.Revision

	// AcquiredAt is the acquisition start time from the file header.
	AcquiredAt time.Time

	// DeclaredScans is the scan count declared by the scan index, or -1
	// for the streamed revision, which has no declared count.
	DeclaredScans int

	// Masses describes the monitored mass slots in acquisition order.
	Masses []MassConfig
}

// MassConfig describes one monitored mass slot. The per-slot settings are
// taken from the first scan of the run.
type MassConfig struct {
	// Index is the zero-based slot position.
	Index int

	// Name is the element name from the FIN2 sidecar, or a generated
	// MassNN placeholder when no sidecar is available.
	Name string

	// MagnetMass is the magnet mass setting in AMU.
	MagnetMass float64

	// ChannelTime is the configured channel dwell time.
	ChannelTime uint32

	// Duration is the dwell duration reported by the end-of-mass word.
	Duration uint32

	// Voltage is the accelerating voltage derived from the voltage word,
	// zero when the scan carried none.
	Voltage float64

	// Samples lists the detector modes active for this slot and how many
	// readings each contributes per scan.
	Samples []ModeSamples
}

// ModeSamples pairs a detector mode with its per-scan reading count.
type ModeSamples struct {
	Mode  format.DetectorMode
	Count int
}

// SampleCount returns the per-scan reading count for one detector mode,
// zero when the mode is not active for this slot.
func (c MassConfig) SampleCount(mode format.DetectorMode) int {
	for _, s := range c.Samples {
		if s.Mode == mode {
			return s.Count
		}
	}

	return 0
}

// Channel identifies one measurement column of a run.
type Channel struct {
	// Label is the unique column label, e.g. "Li7", "Li7p" or "Li7p2".
	Label string

	// Mass is the index of the owning slot in Header.Masses.
	Mass int

	// Mode is the detector that produces this channel's readings.
	Mode format.DetectorMode

	// Sample is the zero-based ordinal among this mass and mode's
	// readings.
	Sample int
}

// ScanRecord is one timestamped measurement across all channels.
// Created once during decode and never mutated afterwards.
type ScanRecord struct {
	// Index is the zero-based position within the run.
	Index int

	// Number is the instrument's 1-based scan sequence number.
	Number uint32

	// Elapsed is the elapsed acquisition time of this scan.
	Elapsed time.Duration

	// ACF is the analog calibration factor.
	ACF float64

	// FCF is the faraday calibration factor, meaningful only for runs
	// with faraday channels.
	FCF float64

	// EDAC is the raw EDAC word of the scan header.
	EDAC uint32

	// Values holds one reading per Run.Channels entry, positionally
	// aligned. len(Values) always equals len(Run.Channels).
	Values []float64
}

// Warning is a non-fatal data quality finding attached to a run.
type Warning struct {
	// Scan is the zero-based scan position the finding refers to, or -1
	// for run-level findings.
	Scan int

	// Message describes the finding.
	Message string
}

// At returns the absolute acquisition time of a scan: the run's start
// time plus the scan's elapsed time.
func (r *Run) At(scan int) time.Time {
	return r.Header.AcquiredAt.Add(r.Scans[scan].Elapsed)
}

// Labels returns the channel labels in column order.
func (r *Run) Labels() []string {
	labels := make([]string, len(r.Channels))
	for i, ch := range r.Channels {
		labels[i] = ch.Label
	}

	return labels
}

// HasFaraday reports whether any channel reads from the faraday detector.
// Faraday runs carry a meaningful FCF calibration column.
func (r *Run) HasFaraday() bool {
	for _, ch := range r.Channels {
		if ch.Mode == format.ModeFaraday {
			return true
		}
	}

	return false
}
