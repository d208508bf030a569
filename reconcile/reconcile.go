// Package reconcile merges decoded runs into one table over the union of
// their channels.
//
// Reconciliation is deterministic: columns appear in first-appearance
// order across the input runs, rows keep run order and scan order, and
// repeated calls over the same runs produce the same table. Input runs
// are never mutated.
//
// Column identity is the exact channel label. Lookups are accelerated
// with 64-bit label hashes but always verified against the label string,
// so two labels that hash alike still get their own columns.
package reconcile

import (
	"iter"
	"math"
	"time"

	"github.com/jhh67/extractdat/dat"
	"github.com/jhh67/extractdat/errs"
	"github.com/jhh67/extractdat/internal/collision"
	"github.com/jhh67/extractdat/internal/hash"
	"github.com/jhh67/extractdat/internal/pool"
)

// Table is the reconciled view over a set of runs.
type Table struct {
	// Columns lists the union channel labels in first-appearance order.
	Columns []string

	runs     []*dat.Run
	mappings [][]int // per run: channel index → table column
	rows     int
}

// Row is one scan of one run projected onto the table columns.
type Row struct {
	// Source is the origin path of the row's run.
	Source string

	// Scan is the zero-based scan index within the row's run.
	Scan int

	// At is the absolute acquisition time of the scan.
	At time.Time

	// Values holds one cell per Table.Columns entry. Cells for channels
	// the row's run does not carry hold NaN.
	Values []float64
}

// Reconcile builds a Table over the given runs. It fails only when runs
// is empty.
func Reconcile(runs []*dat.Run) (*Table, error) {
	if len(runs) == 0 {
		return nil, errs.ErrNoRuns
	}

	tracker := collision.NewTracker()
	mappings := make([][]int, len(runs))
	rows := 0

	for ri, run := range runs {
		mapping := make([]int, len(run.Channels))
		for ci, ch := range run.Channels {
			pos, _ := tracker.Track(ch.Label, hash.ID(ch.Label))
			mapping[ci] = pos
		}
		mappings[ri] = mapping
		rows += len(run.Scans)
	}

	columns := make([]string, tracker.Count())
	copy(columns, tracker.Labels())

	return &Table{
		Columns:  columns,
		runs:     runs,
		mappings: mappings,
		rows:     rows,
	}, nil
}

// RowCount returns the total number of rows: the scans of all runs.
func (t *Table) RowCount() int {
	return t.rows
}

// RunCount returns the number of runs behind the table.
func (t *Table) RunCount() int {
	return len(t.runs)
}

// Rows returns an iterator over the table's rows: every scan of every run
// in input order, projected onto the union columns.
//
// The yielded Row's Values slice is reused between iterations; callers
// that retain a row past one step must copy Values first.
//
// Example:
//
//	for i, row := range table.Rows() {
//		fmt.Println(i, row.Source, row.Values)
//	}
func (t *Table) Rows() iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		buf, release := pool.GetFloat64Slice(len(t.Columns))
		defer release()

		i := 0
		for ri, run := range t.runs {
			for s := range run.Scans {
				if !yield(i, t.rowAt(buf, run, t.mappings[ri], s)) {
					return
				}
				i++
			}
		}
	}
}

// rowAt projects one scan onto the table columns using buf as cell
// storage.
func (t *Table) rowAt(buf []float64, run *dat.Run, mapping []int, scan int) Row {
	for i := range buf {
		buf[i] = math.NaN()
	}
	for ci, pos := range mapping {
		buf[pos] = run.Scans[scan].Values[ci]
	}

	return Row{
		Source: run.Source,
		Scan:   scan,
		At:     run.At(scan),
		Values: buf,
	}
}
