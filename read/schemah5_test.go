package read_test

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/robert-malhotra/go-hdf5/hdf5"

	"flume/frames"
	"flume/read"
	"flume/stream"
)

// writeTrajectoryFile lays out two complete anchors and one partial one:
//
//	/a/b1/c  coords, forces
//	/a/b2/c  coords, forces, extra
//	/d       coords
func writeTrajectoryFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "traj.h5")
	f, err := hdf5.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer f.Close()

	a, err := f.Root().CreateGroup("a")
	if err != nil {
		t.Fatal(err)
	}
	for i, extra := range []bool{false, true} {
		b, err := a.CreateGroup([]string{"b1", "b2"}[i])
		if err != nil {
			t.Fatal(err)
		}
		c, err := b.CreateGroup("c")
		if err != nil {
			t.Fatal(err)
		}
		base := float64(i * 10)
		coords := [][]float64{{base, base + 1}, {base + 2, base + 3}}
		if _, err := c.CreateDataset("coords", coords); err != nil {
			t.Fatal(err)
		}
		if _, err := c.CreateDataset("forces", coords); err != nil {
			t.Fatal(err)
		}
		if extra {
			if _, err := c.CreateDataset("extra", []float64{9}); err != nil {
				t.Fatal(err)
			}
		}
	}
	d, err := f.Root().CreateGroup("d")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.CreateDataset("coords", []float64{5, 6}); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestSchemaReader_ServesAnchors iterates the schema-compatible anchors in
// sorted order.
func TestSchemaReader_ServesAnchors(t *testing.T) {
	path := writeTrajectoryFile(t)
	r, err := read.OpenSchema(path, []string{"coords", "forces"})
	if err != nil {
		t.Fatalf("OpenSchema failed: %v", err)
	}
	defer r.Close()

	if !slices.Equal(r.Anchors(), []string{"/a/b1/c", "/a/b2/c", "/d"}) {
		t.Errorf("Unexpected anchors %v", r.Anchors())
	}

	got, err := stream.Collect(r.Items())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 tuples (d lacks forces), got %d", len(got))
	}
	coords := got[0][0].(*frames.Dense[float64])
	if !slices.Equal(coords.Shape(), []int{2, 2}) {
		t.Errorf("Expected shape [2 2], got %v", coords.Shape())
	}
	if !slices.Equal(coords.Data(), []float64{0, 1, 2, 3}) {
		t.Errorf("Expected first anchor's coords, got %v", coords.Data())
	}
}

// TestSchemaReader_Strict serves only anchors whose keys equal the schema
// exactly.
func TestSchemaReader_Strict(t *testing.T) {
	path := writeTrajectoryFile(t)
	r, err := read.OpenSchema(path, []string{"coords", "forces"}, read.Strict())
	if err != nil {
		t.Fatalf("OpenSchema failed: %v", err)
	}
	defer r.Close()

	got, err := stream.Collect(r.Items())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	// b2 carries the extra dataset and is skipped
	if len(got) != 1 {
		t.Errorf("Expected 1 strict tuple, got %d", len(got))
	}
}

// TestSchemaReader_IncludeID appends the anchor path.
func TestSchemaReader_IncludeID(t *testing.T) {
	path := writeTrajectoryFile(t)
	r, err := read.OpenSchema(path, []string{"coords", "forces"}, read.IncludeID())
	if err != nil {
		t.Fatalf("OpenSchema failed: %v", err)
	}
	defer r.Close()

	got, err := stream.Collect(r.Items())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(got) != 2 || got[0][2] != "/a/b1/c" {
		t.Errorf("Expected anchor path appended, got %v", got)
	}
}

// TestSchemaReader_Kinds reports the distinct key-sets.
func TestSchemaReader_Kinds(t *testing.T) {
	path := writeTrajectoryFile(t)
	r, err := read.OpenSchema(path, nil)
	if err != nil {
		t.Fatalf("OpenSchema failed: %v", err)
	}
	defer r.Close()

	kinds, err := r.Kinds()
	if err != nil {
		t.Fatalf("Kinds failed: %v", err)
	}
	if len(kinds) != 3 {
		t.Fatalf("Expected 3 kinds, got %v", kinds)
	}
	found := false
	for _, keys := range kinds {
		if slices.Equal(keys, []string{"coords", "extra", "forces"}) {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected the three-key kind, got %v", kinds)
	}
}

// TestSchemaReader_Strider strides the served arrays.
func TestSchemaReader_Strider(t *testing.T) {
	path := writeTrajectoryFile(t)
	r, err := read.OpenSchema(path, []string{"coords"}, read.WithTransform(read.Strider(2)))
	if err != nil {
		t.Fatalf("OpenSchema failed: %v", err)
	}
	defer r.Close()

	got, err := stream.Collect(r.Items())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	coords := got[0][0].(frames.Series)
	if coords.Len() != 1 {
		t.Errorf("Expected 1 strided frame, got %d", coords.Len())
	}
}

// TestOpenSchema_DuplicateKeys is rejected at construction.
func TestOpenSchema_DuplicateKeys(t *testing.T) {
	path := writeTrajectoryFile(t)
	if _, err := read.OpenSchema(path, []string{"coords", "coords"}); !errors.Is(err, stream.ErrConfig) {
		t.Errorf("Expected ErrConfig, got %v", err)
	}
}
