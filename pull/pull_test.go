package pull_test

import (
	"errors"
	"slices"
	"testing"

	"flume/pull"
)

// TestInsert_Placement verifies that the normalized position indexes the
// inserted value in the result.
func TestInsert_Placement(t *testing.T) {
	base := pull.New(1, 2, 3)

	cases := []struct {
		name string
		at   int
		want pull.Pull
	}{
		{"append", -1, pull.New(1, 2, 3, "x")},
		{"prepend", 0, pull.New("x", 1, 2, 3)},
		{"middle", 1, pull.New(1, "x", 2, 3)},
		{"negative middle", -2, pull.New(1, 2, "x", 3)},
		{"negative start", -4, pull.New("x", 1, 2, 3)},
		{"end by length", 3, pull.New(1, 2, 3, "x")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := pull.Insert(base, "x", tc.at)
			if err != nil {
				t.Fatalf("Insert failed: %v", err)
			}
			if !slices.Equal(got, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
			idx := tc.at
			if idx < 0 {
				idx += len(base) + 1
			}
			if got[idx] != "x" {
				t.Errorf("Expected inserted value at normalized position %d, got %v", idx, got[idx])
			}
		})
	}
}

// TestInsert_OutOfRange verifies the error for unusable positions.
func TestInsert_OutOfRange(t *testing.T) {
	base := pull.New(1, 2)
	for _, at := range []int{3, -4} {
		if _, err := pull.Insert(base, "x", at); !errors.Is(err, pull.ErrIndex) {
			t.Errorf("Insert at %d: expected ErrIndex, got %v", at, err)
		}
	}
}

// TestRemove_InvertsInsert verifies that Remove at the same position undoes
// Insert.
func TestRemove_InvertsInsert(t *testing.T) {
	base := pull.New("a", "b", "c")
	for _, at := range []int{-1, 0, 1, -3} {
		grown, err := pull.Insert(base, "x", at)
		if err != nil {
			t.Fatalf("Insert at %d failed: %v", at, err)
		}
		back, err := pull.Remove(grown, at)
		if err != nil {
			t.Fatalf("Remove at %d failed: %v", at, err)
		}
		if !slices.Equal(back, base) {
			t.Errorf("Remove(%d) after Insert(%d): expected %v, got %v", at, at, base, back)
		}
	}
}

// TestRemove_OutOfRange verifies the error for unusable positions.
func TestRemove_OutOfRange(t *testing.T) {
	base := pull.New(1, 2)
	for _, at := range []int{2, -3} {
		if _, err := pull.Remove(base, at); !errors.Is(err, pull.ErrIndex) {
			t.Errorf("Remove at %d: expected ErrIndex, got %v", at, err)
		}
	}
}

// TestAt_NegativeIndexing verifies value lookup from both ends.
func TestAt_NegativeIndexing(t *testing.T) {
	p := pull.New("a", "b", "c")
	if v, err := pull.At(p, -1); err != nil || v != "c" {
		t.Errorf("Expected c, got %v (err %v)", v, err)
	}
	if v, err := pull.At(p, 0); err != nil || v != "a" {
		t.Errorf("Expected a, got %v (err %v)", v, err)
	}
	if _, err := pull.At(p, 3); !errors.Is(err, pull.ErrIndex) {
		t.Errorf("Expected ErrIndex, got %v", err)
	}
}

// TestAppend_DoesNotMutate verifies the receiver stays untouched.
func TestAppend_DoesNotMutate(t *testing.T) {
	base := pull.New(1, 2)
	grown := pull.Append(base, 3)
	if !slices.Equal(grown, pull.New(1, 2, 3)) {
		t.Errorf("Expected [1 2 3], got %v", grown)
	}
	if !slices.Equal(base, pull.New(1, 2)) {
		t.Errorf("Receiver mutated: %v", base)
	}
}

// TestMaskFromIndices covers default, negative, and out-of-range indices.
func TestMaskFromIndices(t *testing.T) {
	t.Run("nil selects all", func(t *testing.T) {
		got := pull.MaskFromIndices(nil, 3)
		if !slices.Equal(got, []bool{true, true, true}) {
			t.Errorf("Expected all true, got %v", got)
		}
	})
	t.Run("empty selects none", func(t *testing.T) {
		got := pull.MaskFromIndices([]int{}, 3)
		if !slices.Equal(got, []bool{false, false, false}) {
			t.Errorf("Expected all false, got %v", got)
		}
	})
	t.Run("negative counts from end", func(t *testing.T) {
		got := pull.MaskFromIndices([]int{-1, 0}, 4)
		if !slices.Equal(got, []bool{true, false, false, true}) {
			t.Errorf("Expected first and last, got %v", got)
		}
	})
	t.Run("out of range ignored", func(t *testing.T) {
		got := pull.MaskFromIndices([]int{5, -9, 1}, 3)
		if !slices.Equal(got, []bool{false, true, false}) {
			t.Errorf("Expected only position 1, got %v", got)
		}
	})
}
