// Package write drains pipeline stages into HDF5 groups.
package write

import (
	"fmt"

	"github.com/robert-malhotra/go-hdf5/hdf5"
	"github.com/rs/zerolog"

	"flume/frames"
	"flume/stream"
)

// countsName is the per-name dataset recording the total frames written.
// Chunk datasets are zero-padded sequence numbers, so the name cannot
// collide.
const countsName = "frames"

type config struct {
	oneShot bool
	log     zerolog.Logger
	dsOpts  []hdf5.DatasetOption
}

// Option configures Batched.
type Option func(*config)

// OneShot collects the whole source in memory and writes one contiguous
// dataset per name, instead of the default chunk-by-chunk layout.
func OneShot() Option {
	return func(c *config) { c.oneShot = true }
}

// WithLogger enables per-chunk debug logging. The default discards
// everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *config) { c.log = log }
}

// WithDatasetOptions passes creation options (compression, attributes) to
// every dataset written.
func WithDatasetOptions(opts ...hdf5.DatasetOption) Option {
	return func(c *config) { c.dsOpts = append(c.dsOpts, opts...) }
}

// Batched drains a stage of equal-arity tuples of *frames.Dense[T] into an
// HDF5 group, one name per tuple position.
//
// The default layout writes incrementally: each name becomes a sub-group
// holding one sequence-numbered dataset per incoming chunk, each carrying an
// "offset" attribute with the frame index it starts at, plus a final frame
// count. Only one chunk is resident at a time. OneShot trades memory for a
// single contiguous dataset per name.
//
// Returns the cumulative frames written per name.
func Batched[T frames.Scalar](group *hdf5.Group, names []string, src stream.Stage, opts ...Option) ([]int, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no names given", stream.ErrConfig)
	}
	cfg := config{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.oneShot {
		return oneShot[T](group, names, src, &cfg)
	}
	return incremental[T](group, names, src, &cfg)
}

func incremental[T frames.Scalar](group *hdf5.Group, names []string, src stream.Stage, cfg *config) ([]int, error) {
	marks := make([]int, len(names))
	subs := make([]*hdf5.Group, len(names))
	seq := 0
	for p, err := range src {
		if err != nil {
			return marks, err
		}
		parts, err := tupleDense[T](p, len(names))
		if err != nil {
			return marks, err
		}
		if seq == 0 {
			for i, name := range names {
				if subs[i], err = group.CreateGroup(name); err != nil {
					return marks, fmt.Errorf("creating group %s: %w", name, err)
				}
			}
		}
		for i, part := range parts {
			data, err := nested(part)
			if err != nil {
				return marks, fmt.Errorf("writing %s: %w", names[i], err)
			}
			dsOpts := append([]hdf5.DatasetOption{
				hdf5.WithAttribute("offset", int64(marks[i])),
			}, cfg.dsOpts...)
			if _, err := subs[i].CreateDataset(fmt.Sprintf("%06d", seq), data, dsOpts...); err != nil {
				return marks, fmt.Errorf("writing %s chunk %d: %w", names[i], seq, err)
			}
			marks[i] += part.Len()
		}
		cfg.log.Debug().Int("chunk", seq).Ints("marks", marks).Msg("chunk written")
		seq++
	}
	for i, sub := range subs {
		if sub == nil {
			continue
		}
		if _, err := sub.CreateDataset(countsName, []int64{int64(marks[i])}); err != nil {
			return marks, fmt.Errorf("writing %s count: %w", names[i], err)
		}
	}
	return marks, nil
}

func oneShot[T frames.Scalar](group *hdf5.Group, names []string, src stream.Stage, cfg *config) ([]int, error) {
	marks := make([]int, len(names))
	collected := make([][]*frames.Dense[T], len(names))
	for p, err := range src {
		if err != nil {
			return marks, err
		}
		parts, err := tupleDense[T](p, len(names))
		if err != nil {
			return marks, err
		}
		for i, part := range parts {
			collected[i] = append(collected[i], part)
			marks[i] += part.Len()
		}
	}
	for i, name := range names {
		if len(collected[i]) == 0 {
			continue
		}
		joined, err := frames.Concat(collected[i]...)
		if err != nil {
			return marks, fmt.Errorf("joining %s: %w", name, err)
		}
		data, err := nested(joined)
		if err != nil {
			return marks, fmt.Errorf("writing %s: %w", name, err)
		}
		if _, err := group.CreateDataset(name, data, cfg.dsOpts...); err != nil {
			return marks, fmt.Errorf("writing %s: %w", name, err)
		}
		cfg.log.Debug().Str("name", name).Int("frames", joined.Len()).Msg("dataset written")
	}
	return marks, nil
}

// tupleDense checks the tuple's arity against the name count and asserts
// every position down to the writable array type.
func tupleDense[T frames.Scalar](p []any, arity int) ([]*frames.Dense[T], error) {
	if len(p) != arity {
		return nil, fmt.Errorf("%w: tuple arity %d, want %d", stream.ErrLengthMismatch, len(p), arity)
	}
	out := make([]*frames.Dense[T], arity)
	for i, v := range p {
		d, ok := v.(*frames.Dense[T])
		if !ok {
			return nil, fmt.Errorf("%w: position %d is %T", stream.ErrNotSliceable, i, v)
		}
		out[i] = d
	}
	return out, nil
}

// nested converts a Dense into the nested-slice form dataset creation
// expects, preserving shape up to rank three.
func nested[T frames.Scalar](d *frames.Dense[T]) (any, error) {
	shape := d.Shape()
	flat := d.Data()
	switch len(shape) {
	case 1:
		return flat, nil
	case 2:
		rows := make([][]T, shape[0])
		for i := range rows {
			rows[i] = flat[i*shape[1] : (i+1)*shape[1]]
		}
		return rows, nil
	case 3:
		width := shape[1] * shape[2]
		rows := make([][][]T, shape[0])
		for i := range rows {
			frame := flat[i*width : (i+1)*width]
			inner := make([][]T, shape[1])
			for j := range inner {
				inner[j] = frame[j*shape[2] : (j+1)*shape[2]]
			}
			rows[i] = inner
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("rank %d arrays are not writable", len(shape))
	}
}
