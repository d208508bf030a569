// Package dat decodes ICP mass spectrometer DAT files into Run values.
//
// A Run carries the acquisition header, the channel layout fixed by the
// first scan, and one channel-aligned record per scan:
//
//	run, err := dat.Decode(image, "sample.dat", dat.WithElementNames(names))
//	if err != nil {
//		return err
//	}
//	for _, scan := range run.Scans {
//		fmt.Println(scan.Elapsed, scan.Values)
//	}
//
// # Decode paths
//
// Decode follows the file's own structure: the indexed revision addresses
// scan records through the trailing offset index, and the streamed
// revision walks them back to back until the input ends. DecodeRecovered
// trusts neither and sweeps the data for scan signatures instead, which
// salvages files whose index region is corrupt.
//
// # Channel labels
//
// Labels derive from element names, supplied positionally through
// WithElementNames (usually from a FIN2 sidecar via ParseFIN2) with
// generated MassNN placeholders as fallback, plus as much detector context
// as uniqueness needs: a detector letter when a mass is read in several
// modes, and a 1-based ordinal when a mode samples more than once per
// scan. Colliding labels are never repaired silently; decoding fails with
// errs.ErrDuplicateChannel.
package dat
