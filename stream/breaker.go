package stream

import (
	"fmt"
	"iter"

	"flume/frames"
	"flume/pull"
)

type breakConfig struct {
	size   int
	stride int
	mask   []bool
}

// BreakOption configures a Break stage.
type BreakOption func(*breakConfig) error

// WithChunkSize caps the frames per served chunk. Absent, chunks are
// unbounded and each source tuple yields exactly one (strided) tuple.
func WithChunkSize(n int) BreakOption {
	return func(c *breakConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: chunk size %d", ErrConfig, n)
		}
		c.size = n
		return nil
	}
}

// WithStride strides the data, as though the stride had been applied before
// chunking.
func WithStride(n int) BreakOption {
	return func(c *breakConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: stride %d", ErrConfig, n)
		}
		c.stride = n
		return nil
	}
}

// WithBreakMask selects which tuple positions are chunked. False-marked
// positions are repeated unchanged alongside every chunk instead.
func WithBreakMask(mask []bool) BreakOption {
	return func(c *breakConfig) error {
		c.mask = mask
		return nil
	}
}

// Break re-chunks the arrays inside each tuple to at most the configured
// size, striding first (see Chunks for the exact equivalence). Chunk
// boundaries never merge across source tuples: frames adjacent in a served
// chunk were adjacent in one source tuple.
//
// Masked-out positions repeat their single value for every chunk and are
// exempt from the lockstep requirement; all chunked positions must produce
// the same number of chunks or the pass ends with ErrSync.
func Break(src Stage, opts ...BreakOption) (Stage, error) {
	cfg := breakConfig{size: Unbounded, stride: 1}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return func(yield func(pull.Pull, error) bool) {
		for p, err := range src {
			if err != nil {
				yield(nil, err)
				return
			}
			if cfg.mask != nil && len(cfg.mask) != len(p) {
				yield(nil, fmt.Errorf("%w: mask of %d positions for arity %d",
					ErrLengthMismatch, len(cfg.mask), len(p)))
				return
			}
			sources := make([]iter.Seq[any], len(p))
			for i, v := range p {
				if cfg.mask != nil && !cfg.mask[i] {
					sources[i] = forever(v)
					continue
				}
				s, ok := frames.AsSeries(v)
				if !ok {
					yield(nil, fmt.Errorf("%w: position %d", ErrNotSliceable, i))
					return
				}
				chunks := Chunks(s, cfg.size, cfg.stride)
				sources[i] = func(yield func(any) bool) {
					for c := range chunks {
						if !yield(c) {
							return
						}
					}
				}
			}
			zipped, err := SafeZip(cfg.mask, sources...)
			if err != nil {
				yield(nil, err)
				return
			}
			for vals, err := range zipped {
				if err != nil {
					yield(nil, err)
					return
				}
				if !yield(pull.Pull(vals), nil) {
					return
				}
			}
		}
	}, nil
}
