package section

import "github.com/jhh67/extractdat/format"

// Key extracts the tag key from the top nibble of a tagged word.
func Key(w uint32) uint32 {
	return w >> KeyShift
}

// Value extracts the 28-bit value of a tagged word.
func Value(w uint32) uint32 {
	return w & ValueMask
}

// MakeWord packs a key and 28-bit value into a tagged word.
func MakeWord(key, value uint32) uint32 {
	return key<<KeyShift | value&ValueMask
}

// FixedPoint converts an 18-bit fixed point value, used by magnet mass
// words, into its real value.
func FixedPoint(value uint32) float64 {
	return float64(value) / float64(uint32(1)<<FixedShift)
}

// DataFields is the unpacked form of a measurement data word.
type DataFields struct {
	// Negative reports a non-zero sign flag.
	Negative bool
	// Mode is the detector that produced the reading.
	Mode format.DetectorMode
	// Exp is the left shift applied to the mantissa.
	Exp uint32
	// Mantissa is the raw 16-bit counter value.
	Mantissa uint32
}

// SplitData unpacks a measurement data word. The caller is responsible
// for checking Key(w) == KeyData first.
func SplitData(w uint32) DataFields {
	return DataFields{
		Negative: w&FlagMask != 0,
		Mode:     format.DetectorMode((w & TypeMask) >> TypeShift),
		Exp:      (w & ExpMask) >> ExpShift,
		Mantissa: w & DataMask,
	}
}

// Reading computes the measurement value: the mantissa shifted left by
// the exponent, negated when flagged.
func (f DataFields) Reading() float64 {
	v := float64(uint64(f.Mantissa) << f.Exp)
	if f.Negative {
		v = -v
	}

	return v
}

// MakeDataWord packs measurement fields into a tagged data word.
func MakeDataWord(f DataFields) uint32 {
	w := uint32(KeyData) << KeyShift
	if f.Negative {
		w |= 1 << FlagShift
	}
	w |= (uint32(f.Mode) << TypeShift) & TypeMask
	w |= (f.Exp << ExpShift) & ExpMask
	w |= f.Mantissa & DataMask

	return w
}
