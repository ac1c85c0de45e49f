package read_test

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/robert-malhotra/go-hdf5/hdf5"

	"flume/frames"
	"flume/read"
	"flume/stream"
)

func writeStripedFile(t *testing.T, path string, rows [][]float64) {
	t.Helper()
	f, err := hdf5.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer f.Close()
	if _, err := f.Root().CreateDataset("data", rows); err != nil {
		t.Fatal(err)
	}
}

// TestStriped_ConcatenatesReplicas serves replica r joined across all
// matched files, in sorted filename order.
func TestStriped_ConcatenatesReplicas(t *testing.T) {
	dir := t.TempDir()
	// two replicas per file, two values per replica
	writeStripedFile(t, filepath.Join(dir, "tr_0.h5"), [][]float64{{1, 2}, {3, 4}})
	writeStripedFile(t, filepath.Join(dir, "tr_1.h5"), [][]float64{{5, 6}, {7, 8}})

	r, err := read.NewStriped[float64](filepath.Join(dir, "tr_*.h5"))
	if err != nil {
		t.Fatalf("NewStriped failed: %v", err)
	}
	got, err := stream.Collect(r.Items())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 replicas, got %d", len(got))
	}
	first := got[0][0].(*frames.Dense[float64]).Data()
	if !slices.Equal(first, []float64{1, 2, 5, 6}) {
		t.Errorf("Expected replica 0 [1 2 5 6], got %v", first)
	}
	second := got[1][0].(*frames.Dense[float64]).Data()
	if !slices.Equal(second, []float64{3, 4, 7, 8}) {
		t.Errorf("Expected replica 1 [3 4 7 8], got %v", second)
	}
}

// TestStriped_Stride strides after concatenation.
func TestStriped_Stride(t *testing.T) {
	dir := t.TempDir()
	writeStripedFile(t, filepath.Join(dir, "a.h5"), [][]float64{{1, 2, 3, 4}})
	writeStripedFile(t, filepath.Join(dir, "b.h5"), [][]float64{{5, 6, 7, 8}})

	r, err := read.NewStriped(filepath.Join(dir, "*.h5"), read.WithStripedStride[float64](2))
	if err != nil {
		t.Fatalf("NewStriped failed: %v", err)
	}
	got, err := stream.Collect(r.Items())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 replica, got %d", len(got))
	}
	data := got[0][0].(*frames.Dense[float64]).Data()
	if !slices.Equal(data, []float64{1, 3, 5, 7}) {
		t.Errorf("Expected strided concatenation [1 3 5 7], got %v", data)
	}
}

// TestStriped_NoMatches is an empty pass, not an error.
func TestStriped_NoMatches(t *testing.T) {
	r, err := read.NewStriped[float64](filepath.Join(t.TempDir(), "none_*.h5"))
	if err != nil {
		t.Fatalf("NewStriped failed: %v", err)
	}
	n, err := stream.Drain(r.Items())
	if err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected no tuples, got %d", n)
	}
}
