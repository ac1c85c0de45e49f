package stream

import (
	"fmt"
	"iter"

	"flume/frames"
	"flume/pull"
)

type perFrameConfig struct {
	mask  []bool
	limit int
}

// PerFrameOption configures a PerFrame stage.
type PerFrameOption func(*perFrameConfig) error

// WithFrameMask selects which tuple positions are iterated frame by frame.
// False-marked positions repeat their value in every served tuple.
func WithFrameMask(mask []bool) PerFrameOption {
	return func(c *perFrameConfig) error {
		c.mask = mask
		return nil
	}
}

// WithLimit stops iteration after n frames, counted across source tuples.
func WithLimit(n int) PerFrameOption {
	return func(c *perFrameConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: frame limit %d", ErrConfig, n)
		}
		c.limit = n
		return nil
	}
}

// PerFrame flattens a stage of chunked tuples into one tuple per frame: each
// masked position contributes its frames in order, paired by position. The
// masked positions of one tuple must hold equally many frames or the pass
// ends with ErrSync.
func PerFrame(src Stage, opts ...PerFrameOption) (Stage, error) {
	var cfg perFrameConfig
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return func(yield func(pull.Pull, error) bool) {
		served := 0
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
				sources[i] = s.Rows()
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
				if cfg.limit > 0 && served >= cfg.limit {
					return
				}
				if !yield(pull.Pull(vals), nil) {
					return
				}
				served++
			}
		}
	}, nil
}
