package stream

import (
	"fmt"

	"flume/frames"
	"flume/pull"
)

// CensorFunc evaluates a vectorized test: given the selected input it returns
// one boolean per frame of the governed arrays, true meaning keep.
type CensorFunc func(input any) ([]bool, error)

// maskRuns converts a boolean mask into the maximal contiguous true runs,
// one [start, stop) pair per run.
func maskRuns(mask []bool) [][2]int {
	var runs [][2]int
	start := -1
	for i, keep := range mask {
		switch {
		case keep && start < 0:
			start = i
		case !keep && start >= 0:
			runs = append(runs, [2]int{start, i})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, [2]int{start, len(mask)})
	}
	return runs
}

type censorConfig struct {
	input        inputSelector
	discardInput bool
	applyTo      []int
	applySet     bool
}

// CensorOption configures a Censor stage.
type CensorOption func(*censorConfig)

// WithCensorInputAt feeds only the value at position i to the test.
func WithCensorInputAt(i int) CensorOption {
	return func(c *censorConfig) {
		at := i
		c.input.at = &at
	}
}

// WithCensorInputRange feeds the sub-tuple [start:stop] to the test.
func WithCensorInputRange(start, stop int) CensorOption {
	return func(c *censorConfig) {
		c.input.ranged = true
		c.input.lo, c.input.hi = start, stop
	}
}

// WithDiscardInput drops the position the test consumed from the served
// tuples. Only legal together with WithCensorInputAt.
func WithDiscardInput() CensorOption {
	return func(c *censorConfig) {
		c.discardInput = true
	}
}

// WithCensorApplyTo restricts slicing to the given positions; the rest are
// repeated unchanged in every emitted sub-tuple. The default slices every
// position.
func WithCensorApplyTo(indices ...int) CensorOption {
	return func(c *censorConfig) {
		c.applyTo = indices
		c.applySet = true
	}
}

// Censor removes the frames of each tuple that fail a vectorized test,
// splitting the survivors into one emitted tuple per contiguous run of
// passing frames. Two frames adjacent in an emitted tuple were therefore
// adjacent in the source tuple; runs are never fused across source tuples.
// Tuples whose mask holds no true entry are suppressed entirely.
func Censor(src Stage, test CensorFunc, opts ...CensorOption) (Stage, error) {
	if test == nil {
		return nil, fmt.Errorf("%w: nil censor test", ErrConfig)
	}
	var cfg censorConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.input.at != nil && cfg.input.ranged {
		return nil, fmt.Errorf("%w: both single and ranged input selected", ErrConfig)
	}
	if cfg.discardInput && cfg.input.at == nil {
		return nil, fmt.Errorf("%w: discard-input requires a single input position", ErrConfig)
	}
	return func(yield func(pull.Pull, error) bool) {
		for p, err := range src {
			if err != nil {
				yield(nil, err)
				return
			}
			input, err := cfg.input.pick(p)
			if err != nil {
				yield(nil, err)
				return
			}
			mask, err := test(input)
			if err != nil {
				yield(nil, err)
				return
			}
			if cfg.discardInput {
				if p, err = pull.Remove(p, *cfg.input.at); err != nil {
					yield(nil, err)
					return
				}
			}
			var include []int
			if cfg.applySet {
				include = cfg.applyTo
			}
			included := pull.MaskFromIndices(include, len(p))
			// every governed array must match the mask length before any
			// run is emitted
			for i, v := range p {
				if !included[i] {
					continue
				}
				s, ok := frames.AsSeries(v)
				if !ok {
					yield(nil, fmt.Errorf("%w: position %d", ErrNotSliceable, i))
					return
				}
				if s.Len() != len(mask) {
					yield(nil, fmt.Errorf("%w: mask of %d frames for %d at position %d",
						ErrLengthMismatch, len(mask), s.Len(), i))
					return
				}
			}
			for _, run := range maskRuns(mask) {
				derived := make(pull.Pull, len(p))
				for i, v := range p {
					if included[i] {
						s, _ := frames.AsSeries(v)
						derived[i] = s.Slice(run[0], run[1], 1)
					} else {
						derived[i] = v
					}
				}
				if !yield(derived, nil) {
					return
				}
			}
		}
	}, nil
}
