package stream

import (
	"iter"

	"flume/frames"
	"flume/pull"
)

// Stage is one step of a pipeline: a lazy, restartable sequence of tuples.
// Iteration errors are yielded through the second value and end the pass;
// consumers should stop at the first non-nil error.
type Stage = iter.Seq2[pull.Pull, error]

// FromPulls serves a fixed set of tuples. Intended for composing small
// pipelines and for tests.
func FromPulls(pulls ...pull.Pull) Stage {
	return func(yield func(pull.Pull, error) bool) {
		for _, p := range pulls {
			if !yield(p, nil) {
				return
			}
		}
	}
}

// FromSeries serves each array as a single-position tuple.
func FromSeries(series ...frames.Series) Stage {
	return func(yield func(pull.Pull, error) bool) {
		for _, s := range series {
			if !yield(pull.New(s), nil) {
				return
			}
		}
	}
}

// Collect drains a stage into a slice, stopping at the first error.
func Collect(src Stage) ([]pull.Pull, error) {
	var out []pull.Pull
	for p, err := range src {
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Drain consumes a stage for its side effects and reports how many tuples
// were served before the pass ended.
func Drain(src Stage) (int, error) {
	n := 0
	for _, err := range src {
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// forever repeats a single value endlessly. Break and PerFrame pair
// non-chunked tuple positions with every chunk this way.
func forever[T any](v T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for yield(v) {
		}
	}
}
