package moltran_test

import (
	"math"
	"slices"
	"testing"

	"flume/frames"
	"flume/moltran"
	"flume/pull"
	"flume/stream"
)

// TestPairDistances_Triangle checks the flattened upper triangle for a known
// geometry: a 3-4-5 right triangle in the xy plane.
func TestPairDistances_Triangle(t *testing.T) {
	coords := mustDense(t, []float64{
		0, 0, 0,
		3, 0, 0,
		0, 4, 0,
	}, 1, 3, 3)

	staged := moltran.PairDistances[float64](stream.FromPulls(pull.New(coords)))
	got, err := stream.Collect(staged)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(got) != 1 || len(got[0]) != 1 {
		t.Fatalf("Expected one arity-1 tuple, got %v", got)
	}
	dists := got[0][0].(*frames.Dense[float64])
	if !slices.Equal(dists.Shape(), []int{1, 3}) {
		t.Fatalf("Expected shape [1 3], got %v", dists.Shape())
	}
	want := []float64{3, 4, 5} // pairs (0,1), (0,2), (1,2)
	for i, w := range want {
		if math.Abs(dists.Data()[i]-w) > 1e-12 {
			t.Errorf("Pair %d: expected %v, got %v", i, w, dists.Data()[i])
		}
	}
}

// TestPairDistances_KeepCoords appends instead of replacing.
func TestPairDistances_KeepCoords(t *testing.T) {
	coords := mustDense(t, make([]float64, 6), 1, 2, 3)
	staged := moltran.PairDistances[float64](
		stream.FromPulls(pull.New(coords)),
		moltran.KeepCoords(),
	)
	got, err := stream.Collect(staged)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(got[0]) != 2 {
		t.Fatalf("Expected arity 2, got %v", got[0])
	}
	if got[0][0].(*frames.Dense[float64]) != coords {
		t.Error("Expected coordinates kept at position 0")
	}
}

// TestPairDistances_MultiFrame computes every frame independently.
func TestPairDistances_MultiFrame(t *testing.T) {
	coords := mustDense(t, []float64{
		0, 0, 0, 1, 0, 0,
		0, 0, 0, 2, 0, 0,
	}, 2, 2, 3)
	staged := moltran.PairDistances[float64](stream.FromPulls(pull.New(coords)))
	got, err := stream.Collect(staged)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	dists := got[0][0].(*frames.Dense[float64])
	if !slices.Equal(dists.Data(), []float64{1, 2}) {
		t.Errorf("Expected per-frame distances [1 2], got %v", dists.Data())
	}
}
