package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetFloat64Slice(t *testing.T) {
	t.Run("exact length", func(t *testing.T) {
		values, cleanup := GetFloat64Slice(64)
		defer cleanup()

		require.Len(t, values, 64)
	})

	t.Run("zero length", func(t *testing.T) {
		values, cleanup := GetFloat64Slice(0)
		defer cleanup()

		require.Len(t, values, 0)
	})

	t.Run("usable as a row buffer", func(t *testing.T) {
		values, cleanup := GetFloat64Slice(3)
		defer cleanup()

		values[0], values[1], values[2] = 1.5, -2.0, 3.25
		require.Equal(t, []float64{1.5, -2.0, 3.25}, values)
	})
}

func TestGetStringSlice(t *testing.T) {
	record, cleanup := GetStringSlice(4)
	defer cleanup()

	require.Len(t, record, 4)

	record[0], record[1], record[2], record[3] = "Li7", "Be9", "B11", ""
	require.Equal(t, []string{"Li7", "Be9", "B11", ""}, record)
}

func TestSlicePoolGrowth(t *testing.T) {
	// A larger request after cleanup must produce a full-length slice,
	// never a short one
	small, cleanup := GetStringSlice(2)
	require.Len(t, small, 2)
	cleanup()

	large, cleanup2 := GetStringSlice(1024)
	defer cleanup2()
	require.Len(t, large, 1024)
}

func BenchmarkGetFloat64Slice(b *testing.B) {
	for b.Loop() {
		values, cleanup := GetFloat64Slice(256)
		values[0] = 1
		cleanup()
	}
}
