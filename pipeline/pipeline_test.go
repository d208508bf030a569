package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"github.com/jhh67/extractdat/dat/dattest"
	"github.com/jhh67/extractdat/errs"
	"github.com/jhh67/extractdat/format"
	"github.com/jhh67/extractdat/output"
	"github.com/jhh67/extractdat/section"
)

const sampleCSV = "Li7,Be9,B11\n" +
	"101,201,301\n" +
	"102,202,302\n" +
	"103,203,303\n"

const placeholderCSV = "Mass01,Mass02,Mass03\n" +
	"101,201,301\n" +
	"102,202,302\n" +
	"103,203,303\n"

func writeInput(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func readOutput(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

// singleScanImage builds a one-scan, one-mass image acquired offset
// seconds after the canonical sample timestamp.
func singleScanImage(offset, mantissa uint32) []byte {
	b := dattest.NewBuilder(format.RevisionIndexed)
	b.SetTimestamp(1404760688 + offset)
	b.AddScan(dattest.Scan{
		Number: 1, Time: 1000, ACF: 1, EDAC: 8000,
		Masses: []dattest.Mass{{Duration: 160,
			Readings: []dattest.Reading{{Mode: format.ModePulse, Mantissa: mantissa}}}},
	})

	return b.Bytes()
}

func TestProcess_SingleFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sample.dat")
	writeInput(t, input, dattest.SampleImage())
	writeInput(t, filepath.Join(dir, "sample.FIN2"), dattest.SampleFIN2())

	batch, err := Process([]string{input}, Options{})
	require.NoError(t, err)
	require.Len(t, batch.Files, 1)

	file := batch.Files[0]
	require.NoError(t, file.Err)
	require.Equal(t, input, file.Path)
	require.Equal(t, filepath.Join(dir, "sample.FIN2"), file.Sidecar)
	require.Equal(t, filepath.Join(dir, "sample.csv"), file.OutputPath)
	require.NotNil(t, file.Run)
	require.Empty(t, file.Notes)

	require.Equal(t, 1, batch.Decoded())
	require.Zero(t, batch.Failed())
	require.Nil(t, batch.Table)
	require.Empty(t, batch.CombinedPath)

	require.Equal(t, sampleCSV, readOutput(t, file.OutputPath))
}

func TestProcess_SidecarVariants(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		dir := t.TempDir()
		input := filepath.Join(dir, "sample.dat")
		writeInput(t, input, dattest.SampleImage())

		batch, err := Process([]string{input}, Options{})
		require.NoError(t, err)

		file := batch.Files[0]
		require.NoError(t, file.Err)
		require.Empty(t, file.Sidecar)
		require.Equal(t, placeholderCSV, readOutput(t, file.OutputPath))
	})

	t.Run("lowercase extension", func(t *testing.T) {
		dir := t.TempDir()
		input := filepath.Join(dir, "sample.dat")
		writeInput(t, input, dattest.SampleImage())
		writeInput(t, filepath.Join(dir, "sample.fin2"), dattest.SampleFIN2())

		batch, err := Process([]string{input}, Options{})
		require.NoError(t, err)

		file := batch.Files[0]
		require.Equal(t, filepath.Join(dir, "sample.fin2"), file.Sidecar)
		require.Equal(t, sampleCSV, readOutput(t, file.OutputPath))
	})

	t.Run("unreadable sidecar downgrades to placeholders", func(t *testing.T) {
		dir := t.TempDir()
		input := filepath.Join(dir, "sample.dat")
		writeInput(t, input, dattest.SampleImage())
		writeInput(t, filepath.Join(dir, "sample.FIN2"), []byte("too short"))

		batch, err := Process([]string{input}, Options{})
		require.NoError(t, err)

		file := batch.Files[0]
		require.NoError(t, file.Err)
		require.Empty(t, file.Sidecar)
		require.Len(t, file.Notes, 1)
		require.Contains(t, file.Notes[0], "sidecar sample.FIN2")
		require.Equal(t, placeholderCSV, readOutput(t, file.OutputPath))
	})
}

func TestProcess_Combined(t *testing.T) {
	dir := t.TempDir()
	inputA := filepath.Join(dir, "a.dat")
	inputB := filepath.Join(dir, "b.dat")
	writeInput(t, inputA, dattest.SampleImage())
	writeInput(t, inputB, singleScanImage(100, 500))

	batch, err := Process([]string{inputA, inputB}, Options{})
	require.NoError(t, err)
	require.NoError(t, batch.CombinedErr)
	require.NotNil(t, batch.Table)
	require.Equal(t, 4, batch.Table.RowCount())
	require.Equal(t, filepath.Join(dir, "acombined.csv"), batch.CombinedPath)

	want := "Source,Scan,Time,Mass01,Mass02,Mass03\n" +
		inputA + ",1,2014-07-07T19:18:09Z,101,201,301\n" +
		inputA + ",2,2014-07-07T19:18:10Z,102,202,302\n" +
		inputA + ",3,2014-07-07T19:18:11Z,103,203,303\n" +
		inputB + ",1,2014-07-07T19:19:49Z,500,,\n"
	require.Equal(t, want, readOutput(t, batch.CombinedPath))
}

func TestProcess_SortByTime(t *testing.T) {
	dir := t.TempDir()
	late := filepath.Join(dir, "late.dat")
	early := filepath.Join(dir, "early.dat")
	writeInput(t, late, singleScanImage(100, 9))
	writeInput(t, early, singleScanImage(0, 7))

	t.Run("input order by default", func(t *testing.T) {
		out := filepath.Join(dir, "plain")
		batch, err := Process([]string{late, early}, Options{OutputDir: out})
		require.NoError(t, err)

		require.Equal(t, filepath.Join(out, "latecombined.csv"), batch.CombinedPath)

		lines := strings.Split(readOutput(t, batch.CombinedPath), "\n")
		require.True(t, strings.HasPrefix(lines[1], late+","))
		require.True(t, strings.HasPrefix(lines[2], early+","))
	})

	t.Run("acquisition order with SortByTime", func(t *testing.T) {
		out := filepath.Join(dir, "sorted")
		batch, err := Process([]string{late, early}, Options{OutputDir: out, SortByTime: true})
		require.NoError(t, err)

		require.Equal(t, filepath.Join(out, "earlycombined.csv"), batch.CombinedPath)

		lines := strings.Split(readOutput(t, batch.CombinedPath), "\n")
		require.True(t, strings.HasPrefix(lines[1], early+","))
		require.True(t, strings.HasPrefix(lines[2], late+","))
	})
}

func TestProcess_DecodeFailureDoesNotAbortBatch(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.dat")
	good := filepath.Join(dir, "good.dat")
	writeInput(t, bad, []byte("not a dat image"))
	writeInput(t, good, dattest.SampleImage())

	batch, err := Process([]string{bad, good}, Options{})
	require.NoError(t, err)

	require.ErrorIs(t, batch.Files[0].Err, errs.ErrTruncated)
	require.Empty(t, batch.Files[0].OutputPath)
	require.NoFileExists(t, filepath.Join(dir, "bad.csv"))

	require.NoError(t, batch.Files[1].Err)
	require.Equal(t, placeholderCSV, readOutput(t, batch.Files[1].OutputPath))

	require.Equal(t, 1, batch.Decoded())
	require.Equal(t, 1, batch.Failed())

	// The surviving run still gets a combined output, named after it.
	require.NoError(t, batch.CombinedErr)
	require.Equal(t, filepath.Join(dir, "goodcombined.csv"), batch.CombinedPath)
}

func TestProcess_Recover(t *testing.T) {
	b := dattest.NewBuilder(format.RevisionIndexed)
	for i := uint32(1); i <= 2; i++ {
		b.AddScan(dattest.Scan{Number: i, Time: 1000 * i, ACF: 1,
			Masses: []dattest.Mass{{Duration: 160,
				Readings: []dattest.Reading{{Mode: format.ModePulse, Mantissa: 40 + i}}}}})
	}
	b.ForceIndexOffset(1 << 24)

	dir := t.TempDir()
	input := filepath.Join(dir, "damaged.dat")
	writeInput(t, input, b.Bytes())

	t.Run("strict decode fails", func(t *testing.T) {
		batch, err := Process([]string{input}, Options{})
		require.NoError(t, err)
		require.ErrorIs(t, batch.Files[0].Err, errs.ErrBadIndex)
	})

	t.Run("recovery salvages the scans", func(t *testing.T) {
		out := filepath.Join(dir, "recovered")
		batch, err := Process([]string{input}, Options{Recover: true, OutputDir: out})
		require.NoError(t, err)

		file := batch.Files[0]
		require.NoError(t, file.Err)
		require.Equal(t, "Mass01\n41\n42\n", readOutput(t, file.OutputPath))
	})
}

func TestProcess_Lenient(t *testing.T) {
	b := dattest.NewBuilder(format.RevisionIndexed)
	b.AddScan(dattest.Scan{Number: 1, Time: 1000, ACF: 1,
		Masses: []dattest.Mass{{Duration: 160,
			Readings: []dattest.Reading{{Mode: format.ModePulse, Mantissa: 11}}}}})
	b.AddScan(dattest.Scan{Number: 2, Time: 2000, ACF: 1,
		ExtraWords: []uint32{section.MakeWord(0x9, 123)},
		Masses: []dattest.Mass{{Duration: 160,
			Readings: []dattest.Reading{{Mode: format.ModePulse, Mantissa: 12}}}}})

	dir := t.TempDir()
	input := filepath.Join(dir, "tagged.dat")
	writeInput(t, input, b.Bytes())

	t.Run("strict decode fails", func(t *testing.T) {
		batch, err := Process([]string{input}, Options{})
		require.NoError(t, err)
		require.ErrorIs(t, batch.Files[0].Err, errs.ErrUnknownTag)
	})

	t.Run("lenient skips the tagged scan", func(t *testing.T) {
		out := filepath.Join(dir, "lenient")
		batch, err := Process([]string{input}, Options{Lenient: true, OutputDir: out})
		require.NoError(t, err)

		file := batch.Files[0]
		require.NoError(t, file.Err)
		require.NotEmpty(t, file.Run.Warnings)
		require.Equal(t, "Mass01\n11\n", readOutput(t, file.OutputPath))
	})
}

func TestProcess_NeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sample.dat")
	writeInput(t, input, dattest.SampleImage())

	existing := filepath.Join(dir, "sample.csv")
	writeInput(t, existing, []byte("keep\n"))

	batch, err := Process([]string{input}, Options{})
	require.NoError(t, err)

	require.Equal(t, filepath.Join(dir, "sample-1.csv"), batch.Files[0].OutputPath)
	require.Equal(t, "keep\n", readOutput(t, existing))
	require.Equal(t, placeholderCSV, readOutput(t, batch.Files[0].OutputPath))
}

func TestProcess_OutputDir(t *testing.T) {
	dir := t.TempDir()
	inputA := filepath.Join(dir, "a.dat")
	inputB := filepath.Join(dir, "b.dat")
	writeInput(t, inputA, dattest.SampleImage())
	writeInput(t, inputB, singleScanImage(100, 500))

	out := filepath.Join(dir, "converted", "batch")
	batch, err := Process([]string{inputA, inputB}, Options{OutputDir: out})
	require.NoError(t, err)

	require.Equal(t, filepath.Join(out, "a.csv"), batch.Files[0].OutputPath)
	require.Equal(t, filepath.Join(out, "b.csv"), batch.Files[1].OutputPath)
	require.Equal(t, filepath.Join(out, "acombined.csv"), batch.CombinedPath)
}

func TestProcess_CompressedInput(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(dattest.SampleImage())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	dir := t.TempDir()
	input := filepath.Join(dir, "archived.dat")
	writeInput(t, input, buf.Bytes())

	batch, err := Process([]string{input}, Options{})
	require.NoError(t, err)

	require.NoError(t, batch.Files[0].Err)
	require.Equal(t, placeholderCSV, readOutput(t, batch.Files[0].OutputPath))
}

func TestProcess_WriterOptions(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sample.dat")
	writeInput(t, input, dattest.SampleImage())
	writeInput(t, filepath.Join(dir, "sample.FIN2"), dattest.SampleFIN2())

	batch, err := Process([]string{input}, Options{
		WriterOptions: []output.WriterOption{output.WithScanColumns(true)},
	})
	require.NoError(t, err)

	content := readOutput(t, batch.Files[0].OutputPath)
	require.True(t, strings.HasPrefix(content, "Scan,Time,Li7,Be9,B11\n"))
	require.Contains(t, content, "1,2014-07-07T19:18:09Z,101,201,301\n")
}

func TestProcess_NoInputs(t *testing.T) {
	_, err := Process(nil, Options{})
	require.ErrorContains(t, err, "no input paths")
}
