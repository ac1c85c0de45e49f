package read

import (
	"fmt"
	"path/filepath"
	"slices"

	"flume/frames"
	"flume/pull"
	"flume/stream"
)

// StripedReader serves replica slices concatenated across files.
//
// Every matched file is expected to hold the same number of replicas along
// its leading axis. Iteration r loads replica r from each file in sorted
// filename order, concatenates them along the leading axis and serves the
// result, optionally strided. Files are re-read on every iteration so the
// full data set is never resident at once.
//
// There is no identifier option: a served tuple does not correspond to any
// single file.
type StripedReader[T frames.Scalar] struct {
	pattern string
	stride  int
	load    func(path string) (*frames.Dense[T], error)
}

// StripedOption configures a StripedReader.
type StripedOption[T frames.Scalar] func(*StripedReader[T]) error

// WithStripedStride strides each concatenated replica along its leading
// axis. Striding happens after concatenation.
func WithStripedStride[T frames.Scalar](n int) StripedOption[T] {
	return func(r *StripedReader[T]) error {
		if n < 1 {
			return fmt.Errorf("%w: stride %d", stream.ErrConfig, n)
		}
		r.stride = n
		return nil
	}
}

// WithStripedLoader replaces the default loader (the first dataset of an
// HDF5 file).
func WithStripedLoader[T frames.Scalar](load func(path string) (*frames.Dense[T], error)) StripedOption[T] {
	return func(r *StripedReader[T]) error {
		r.load = load
		return nil
	}
}

// NewStriped builds a reader over the files matching a glob pattern.
func NewStriped[T frames.Scalar](pattern string, opts ...StripedOption[T]) (*StripedReader[T], error) {
	r := &StripedReader[T]{
		pattern: pattern,
		stride:  1,
		load:    DenseLoader[T](""),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Items serves one single-position tuple per replica index. The replica
// count is taken from the first file; a file with fewer replicas is an
// iteration error. No matching files means an empty pass.
func (r *StripedReader[T]) Items() stream.Stage {
	return func(yield func(pull.Pull, error) bool) {
		filenames, err := filepath.Glob(r.pattern)
		if err != nil {
			yield(nil, fmt.Errorf("%w: bad pattern %q", stream.ErrConfig, r.pattern))
			return
		}
		if len(filenames) == 0 {
			return
		}
		slices.Sort(filenames)

		first, err := r.load(filenames[0])
		if err != nil {
			yield(nil, fmt.Errorf("loading %s: %w", filenames[0], err))
			return
		}
		replicas := first.Len()

		for rep := 0; rep < replicas; rep++ {
			parts := make([]*frames.Dense[T], len(filenames))
			for i, name := range filenames {
				data, err := r.load(name)
				if err != nil {
					yield(nil, fmt.Errorf("loading %s: %w", name, err))
					return
				}
				if data.Len() <= rep {
					yield(nil, fmt.Errorf("%w: %s holds %d replicas, want at least %d",
						stream.ErrLengthMismatch, name, data.Len(), rep+1))
					return
				}
				parts[i] = data.Frame(rep)
			}
			joined, err := frames.Concat(parts...)
			if err != nil {
				yield(nil, err)
				return
			}
			var served frames.Series = joined
			if r.stride > 1 {
				served = joined.Slice(0, joined.Len(), r.stride)
			}
			if !yield(pull.New(served), nil) {
				return
			}
		}
	}
}
