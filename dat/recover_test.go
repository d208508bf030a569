package dat

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jhh67/extractdat/dat/dattest"
	"github.com/jhh67/extractdat/errs"
	"github.com/jhh67/extractdat/format"
	"github.com/jhh67/extractdat/section"
)

func pulseScan(number uint32, mantissa uint32) dattest.Scan {
	return dattest.Scan{
		Number: number,
		Time:   1000 * number,
		Masses: []dattest.Mass{
			{Duration: 160, Readings: []dattest.Reading{{Mode: format.ModePulse, Mantissa: mantissa}}},
		},
	}
}

func TestDecodeRecovered_CleanImage(t *testing.T) {
	run, err := DecodeRecovered(dattest.SampleImage(), "sample.dat", WithElementNames(dattest.SampleNames()))
	require.NoError(t, err)

	require.Equal(t, []string{"Li7", "Be9", "B11"}, run.Labels())
	require.Len(t, run.Scans, 3)
	require.Equal(t, []float64{101, 201, 301}, run.Scans[0].Values)
	require.Equal(t, []float64{103, 203, 303}, run.Scans[2].Values)
	require.Empty(t, run.Warnings)
}

func TestDecodeRecovered_CorruptIndex(t *testing.T) {
	b := dattest.NewBuilder(format.RevisionIndexed)
	b.AddScan(pulseScan(1, 11))
	b.AddScan(pulseScan(2, 22))
	b.ForceIndexOffset(1 << 24)
	image := b.Bytes()

	_, err := Decode(image, "corrupt.dat")
	require.ErrorIs(t, err, errs.ErrBadIndex)

	run, err := DecodeRecovered(image, "corrupt.dat")
	require.NoError(t, err)
	require.Len(t, run.Scans, 2)
	require.Equal(t, []float64{11}, run.Scans[0].Values)
	require.Equal(t, []float64{22}, run.Scans[1].Values)
	require.Equal(t, 2, run.Header.DeclaredScans)
}

func TestDecodeRecovered_Debris(t *testing.T) {
	debris := bytes.Repeat([]byte{0x55}, 37) // odd length to break word alignment

	b := dattest.NewBuilder(format.RevisionIndexed)
	b.AddDebris(debris)
	b.AddScan(pulseScan(1, 11))
	b.AddDebris(debris)
	b.AddScan(pulseScan(2, 22))
	b.ForceIndexOffset(0)
	b.ForceIndexLen(99)

	run, err := DecodeRecovered(b.Bytes(), "debris.dat")
	require.NoError(t, err)
	require.Len(t, run.Scans, 2)
	require.Equal(t, []float64{11}, run.Scans[0].Values)
	require.Equal(t, []float64{22}, run.Scans[1].Values)
}

func TestDecodeRecovered_NumberSequence(t *testing.T) {
	t.Run("out of sequence scans are ignored", func(t *testing.T) {
		b := dattest.NewBuilder(format.RevisionIndexed)
		b.AddScan(pulseScan(1, 11))
		b.AddScan(pulseScan(5, 55))
		b.AddScan(pulseScan(3, 33))

		run, err := DecodeRecovered(b.Bytes(), "seq.dat")
		require.NoError(t, err)
		require.Len(t, run.Scans, 1)
		require.Equal(t, []float64{11}, run.Scans[0].Values)
	})

	t.Run("missing first scan recovers nothing", func(t *testing.T) {
		b := dattest.NewBuilder(format.RevisionIndexed)
		b.AddScan(pulseScan(2, 22))
		b.AddScan(pulseScan(3, 33))

		_, err := DecodeRecovered(b.Bytes(), "seq.dat")
		require.ErrorIs(t, err, errs.ErrNoScans)
	})
}

func TestDecodeRecovered_TruncatedTail(t *testing.T) {
	b := dattest.NewBuilder(format.RevisionStreamed)
	b.AddScan(pulseScan(1, 11))
	b.AddScan(pulseScan(2, 22))
	b.AddScan(pulseScan(3, 33))
	image := b.Bytes()

	run, err := DecodeRecovered(image[:len(image)-8], "cut.dat")
	require.NoError(t, err)

	require.Len(t, run.Scans, 2)
	require.Equal(t, []float64{22}, run.Scans[1].Values)
	require.Len(t, run.Warnings, 1)
	require.Contains(t, run.Warnings[0].Message, "recovery stopped")
	require.Equal(t, -1, run.Header.DeclaredScans)
}

func TestDecodeRecovered_UnreadableScan(t *testing.T) {
	b := dattest.NewBuilder(format.RevisionIndexed)
	b.AddScan(pulseScan(1, 11))
	bad := pulseScan(2, 22)
	bad.ExtraWords = []uint32{section.MakeWord(0x9, 0)}
	b.AddScan(bad)
	b.AddScan(pulseScan(3, 33))

	run, err := DecodeRecovered(b.Bytes(), "bad.dat")
	require.NoError(t, err)

	require.Len(t, run.Scans, 2)
	require.Equal(t, []float64{11}, run.Scans[0].Values)
	require.Equal(t, []float64{33}, run.Scans[1].Values)
	require.Equal(t, 1, run.Scans[1].Index)

	var skipped bool
	for _, w := range run.Warnings {
		if w.Scan == 1 {
			skipped = true
			require.Contains(t, w.Message, "skipping unreadable scan")
		}
	}
	require.True(t, skipped)
}

func TestDecodeRecovered_ShapeMismatch(t *testing.T) {
	b := dattest.NewBuilder(format.RevisionIndexed)
	b.AddScan(pulseScan(1, 11))
	wide := pulseScan(2, 22)
	wide.Masses[0].Readings = append(wide.Masses[0].Readings, dattest.Reading{Mode: format.ModePulse, Mantissa: 23})
	b.AddScan(wide)
	b.AddScan(pulseScan(3, 33))

	run, err := DecodeRecovered(b.Bytes(), "shape.dat")
	require.NoError(t, err)

	// The misshapen scan is dropped; the survivors renumber densely.
	require.Len(t, run.Scans, 2)
	require.Equal(t, []float64{11}, run.Scans[0].Values)
	require.Equal(t, []float64{33}, run.Scans[1].Values)
	require.Equal(t, 1, run.Scans[1].Index)

	var dropped bool
	for _, w := range run.Warnings {
		if strings.Contains(w.Message, "dropping recovered scan") {
			dropped = true
		}
	}
	require.True(t, dropped)
}

func TestDecodeRecovered_NoHeader(t *testing.T) {
	_, err := DecodeRecovered(make([]byte, 16), "tiny.dat")
	require.ErrorIs(t, err, errs.ErrTruncated)
}
