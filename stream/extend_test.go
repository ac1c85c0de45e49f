package stream_test

import (
	"errors"
	"slices"
	"testing"

	"flume/pull"
	"flume/stream"
)

// TestExtend_MappingRoundTrip replaces a key position with its looked-up
// value.
func TestExtend_MappingRoundTrip(t *testing.T) {
	src := stream.FromPulls(pull.New(1, "a"), pull.New(2, "b"))
	table := stream.MappingEvaluator(map[string]int{"a": 10, "b": 20})

	staged, err := stream.Extend(src, table,
		stream.WithInputAt(1),
		stream.WithRemoveInput(),
	)
	if err != nil {
		t.Fatalf("Extend failed: %v", err)
	}
	got, err := stream.Collect(staged)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	want := []pull.Pull{pull.New(1, 10), pull.New(2, 20)}
	if len(got) != 2 || !slices.Equal(got[0], want[0]) || !slices.Equal(got[1], want[1]) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

// TestExtend_MissingKey surfaces the lookup failure unwrapped.
func TestExtend_MissingKey(t *testing.T) {
	src := stream.FromPulls(pull.New(1, "z"))
	table := stream.MappingEvaluator(map[string]int{"a": 10})

	staged, err := stream.Extend(src, table, stream.WithInputAt(1))
	if err != nil {
		t.Fatalf("Extend failed: %v", err)
	}
	if _, err := stream.Collect(staged); !errors.Is(err, stream.ErrMissingKey) {
		t.Errorf("Expected ErrMissingKey, got %v", err)
	}
}

// TestExtend_DefaultAppendsWholeTuple feeds the full tuple and appends the
// result.
func TestExtend_DefaultAppendsWholeTuple(t *testing.T) {
	src := stream.FromPulls(pull.New(3, 4))
	sum := stream.EvaluatorFunc(func(input any) (any, error) {
		p := input.(pull.Pull)
		return p[0].(int) + p[1].(int), nil
	})

	staged, err := stream.Extend(src, sum)
	if err != nil {
		t.Fatalf("Extend failed: %v", err)
	}
	got, err := stream.Collect(staged)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if !slices.Equal(got[0], pull.New(3, 4, 7)) {
		t.Errorf("Expected [3 4 7], got %v", got[0])
	}
}

// TestExtend_Placement puts the computed value at a chosen position.
func TestExtend_Placement(t *testing.T) {
	src := stream.FromPulls(pull.New("a", "b"))
	mark := stream.EvaluatorFunc(func(any) (any, error) { return "x", nil })

	staged, err := stream.Extend(src, mark, stream.WithPlacement(0))
	if err != nil {
		t.Fatalf("Extend failed: %v", err)
	}
	got, err := stream.Collect(staged)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if !slices.Equal(got[0], pull.New("x", "a", "b")) {
		t.Errorf("Expected x prepended, got %v", got[0])
	}
}

// TestExtend_InputRange feeds a sub-tuple to the evaluator.
func TestExtend_InputRange(t *testing.T) {
	src := stream.FromPulls(pull.New(1, 2, 3, 4))
	length := stream.EvaluatorFunc(func(input any) (any, error) {
		return len(input.(pull.Pull)), nil
	})

	staged, err := stream.Extend(src, length, stream.WithInputRange(1, 3))
	if err != nil {
		t.Fatalf("Extend failed: %v", err)
	}
	got, err := stream.Collect(staged)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if got[0][len(got[0])-1] != 2 {
		t.Errorf("Expected appended sub-tuple length 2, got %v", got[0])
	}
}

// TestExtend_ConfigErrors rejects contradictory options at construction.
func TestExtend_ConfigErrors(t *testing.T) {
	src := stream.FromPulls(pull.New(1))
	ident := stream.EvaluatorFunc(func(v any) (any, error) { return v, nil })

	cases := []struct {
		name string
		opts []stream.ExtendOption
	}{
		{"remove without position", []stream.ExtendOption{stream.WithRemoveInput()}},
		{"both input modes", []stream.ExtendOption{stream.WithInputAt(0), stream.WithInputRange(0, 1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := stream.Extend(src, ident, tc.opts...); !errors.Is(err, stream.ErrConfig) {
				t.Errorf("Expected ErrConfig, got %v", err)
			}
		})
	}
	if _, err := stream.Extend(src, nil); !errors.Is(err, stream.ErrConfig) {
		t.Errorf("Expected ErrConfig for nil evaluator, got %v", err)
	}
}
