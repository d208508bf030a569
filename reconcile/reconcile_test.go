package reconcile

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhh67/extractdat/dat"
	"github.com/jhh67/extractdat/errs"
)

// makeRun builds a run with the given channel labels and one scan per
// values row, spaced one second apart.
func makeRun(source string, labels []string, at time.Time, rows ...[]float64) *dat.Run {
	run := &dat.Run{
		Source: source,
		Header: dat.Header{AcquiredAt: at},
	}
	for _, label := range labels {
		run.Channels = append(run.Channels, dat.Channel{Label: label})
	}
	for i, values := range rows {
		run.Scans = append(run.Scans, dat.ScanRecord{
			Index:   i,
			Number:  uint32(i) + 1,
			Elapsed: time.Duration(i+1) * time.Second,
			Values:  values,
		})
	}

	return run
}

// collectRows materializes the iterator, copying each row's cells.
func collectRows(t *Table) []Row {
	var rows []Row
	for _, row := range t.Rows() {
		row.Values = append([]float64(nil), row.Values...)
		rows = append(rows, row)
	}

	return rows
}

func TestReconcile_SingleRun(t *testing.T) {
	at := time.Date(2014, 7, 7, 19, 18, 8, 0, time.UTC)
	run := makeRun("a.dat", []string{"Li7", "Be9"}, at,
		[]float64{1, 2},
		[]float64{3, 4},
	)

	table, err := Reconcile([]*dat.Run{run})
	require.NoError(t, err)

	require.Equal(t, []string{"Li7", "Be9"}, table.Columns)
	require.Equal(t, 2, table.RowCount())
	require.Equal(t, 1, table.RunCount())

	rows := collectRows(table)
	require.Len(t, rows, 2)
	require.Equal(t, "a.dat", rows[0].Source)
	require.Equal(t, 0, rows[0].Scan)
	require.Equal(t, at.Add(time.Second), rows[0].At)
	require.Equal(t, []float64{1, 2}, rows[0].Values)
	require.Equal(t, []float64{3, 4}, rows[1].Values)
}

func TestReconcile_UnionColumns(t *testing.T) {
	at := time.Date(2014, 7, 7, 19, 18, 8, 0, time.UTC)
	first := makeRun("a.dat", []string{"Li7", "Be9"}, at, []float64{1, 2})
	second := makeRun("b.dat", []string{"Be9", "B11"}, at.Add(time.Hour), []float64{5, 6})

	table, err := Reconcile([]*dat.Run{first, second})
	require.NoError(t, err)

	// Union in first-appearance order.
	require.Equal(t, []string{"Li7", "Be9", "B11"}, table.Columns)
	require.Equal(t, 2, table.RowCount())

	rows := collectRows(table)

	require.Equal(t, "a.dat", rows[0].Source)
	require.Equal(t, []float64{1, 2}, rows[0].Values[:2])
	require.True(t, math.IsNaN(rows[0].Values[2]))

	require.Equal(t, "b.dat", rows[1].Source)
	require.True(t, math.IsNaN(rows[1].Values[0]))
	require.Equal(t, []float64{5, 6}, rows[1].Values[1:])
}

func TestReconcile_ColumnOrderAcrossRuns(t *testing.T) {
	at := time.Now().UTC()
	runs := []*dat.Run{
		makeRun("a.dat", []string{"Li7", "Be9"}, at, []float64{1, 2}),
		makeRun("b.dat", []string{"B11", "Li7"}, at, []float64{3, 4}),
		makeRun("c.dat", []string{"U238"}, at, []float64{5}),
	}

	table, err := Reconcile(runs)
	require.NoError(t, err)
	require.Equal(t, []string{"Li7", "Be9", "B11", "U238"}, table.Columns)

	rows := collectRows(table)
	require.Len(t, rows, 3)

	// b.dat carries B11 then Li7; cells land on their own columns.
	require.Equal(t, 4.0, rows[1].Values[0])
	require.True(t, math.IsNaN(rows[1].Values[1]))
	require.Equal(t, 3.0, rows[1].Values[2])
}

func TestReconcile_RowOrder(t *testing.T) {
	at := time.Now().UTC()
	first := makeRun("a.dat", []string{"X"}, at, []float64{1}, []float64{2})
	second := makeRun("b.dat", []string{"X"}, at, []float64{3})

	table, err := Reconcile([]*dat.Run{first, second})
	require.NoError(t, err)

	var sources []string
	var indexes []int
	for i, row := range table.Rows() {
		sources = append(sources, row.Source)
		indexes = append(indexes, i)
	}

	require.Equal(t, []string{"a.dat", "a.dat", "b.dat"}, sources)
	require.Equal(t, []int{0, 1, 2}, indexes)
}

func TestReconcile_EmptyInput(t *testing.T) {
	_, err := Reconcile(nil)
	require.ErrorIs(t, err, errs.ErrNoRuns)

	_, err = Reconcile([]*dat.Run{})
	require.ErrorIs(t, err, errs.ErrNoRuns)
}

func TestReconcile_EarlyBreak(t *testing.T) {
	at := time.Now().UTC()
	run := makeRun("a.dat", []string{"X"}, at, []float64{1}, []float64{2}, []float64{3})

	table, err := Reconcile([]*dat.Run{run})
	require.NoError(t, err)

	count := 0
	for _, row := range table.Rows() {
		_ = row
		count++
		if count == 2 {
			break
		}
	}
	require.Equal(t, 2, count)
}

func TestReconcile_DoesNotMutateRuns(t *testing.T) {
	at := time.Now().UTC()
	run := makeRun("a.dat", []string{"Li7", "Be9"}, at, []float64{1, 2})
	other := makeRun("b.dat", []string{"Be9"}, at, []float64{9})

	table, err := Reconcile([]*dat.Run{run, other})
	require.NoError(t, err)

	for range table.Rows() {
	}

	require.Equal(t, []float64{1, 2}, run.Scans[0].Values)
	require.Equal(t, []float64{9}, other.Scans[0].Values)
	require.Equal(t, "Li7", run.Channels[0].Label)
}

func TestReconcile_RepeatedIterationIsStable(t *testing.T) {
	at := time.Now().UTC()
	runs := []*dat.Run{
		makeRun("a.dat", []string{"Li7", "Be9"}, at, []float64{1, 2}),
		makeRun("b.dat", []string{"B11"}, at, []float64{3}),
	}

	table, err := Reconcile(runs)
	require.NoError(t, err)

	first := collectRows(table)
	second := collectRows(table)

	require.Len(t, second, len(first))
	for i := range first {
		require.Equal(t, first[i].Source, second[i].Source)
		require.Equal(t, first[i].Scan, second[i].Scan)
		for c := range first[i].Values {
			if math.IsNaN(first[i].Values[c]) {
				require.True(t, math.IsNaN(second[i].Values[c]))
			} else {
				require.Equal(t, first[i].Values[c], second[i].Values[c])
			}
		}
	}
}
