package stream

import (
	"fmt"
	"math/rand/v2"

	"flume/frames"
	"flume/pull"
)

// Weights exposes the per-frame likelihood ratios a Resample stage draws
// against. frames.Dense satisfies it.
type Weights interface {
	Len() int
	Float(i int) float64
	Eps() float64
}

type resampleConfig struct {
	weightsAt   int
	applyTo     []int
	applySet    bool
	keepWeights bool
	checkBound  bool
	dropEmpty   bool
	rng         *rand.Rand
}

// ResampleOption configures a Resample stage.
type ResampleOption func(*resampleConfig)

// WithWeightsAt locates the weights inside each tuple (default -1, the last
// position).
func WithWeightsAt(i int) ResampleOption {
	return func(c *resampleConfig) {
		c.weightsAt = i
	}
}

// WithApplyTo restricts sampling to the given positions; the rest pass
// through unsliced. The default samples every position.
func WithApplyTo(indices ...int) ResampleOption {
	return func(c *resampleConfig) {
		c.applyTo = indices
		c.applySet = true
	}
}

// WithKeepWeights leaves the weights position in the served tuples instead
// of dropping it.
func WithKeepWeights() ResampleOption {
	return func(c *resampleConfig) {
		c.keepWeights = true
	}
}

// WithoutBoundCheck disables the weight upper-bound validation.
func WithoutBoundCheck() ResampleOption {
	return func(c *resampleConfig) {
		c.checkBound = false
	}
}

// WithKeepEmpty serves tuples even when every sampled position came out
// empty.
func WithKeepEmpty() ResampleOption {
	return func(c *resampleConfig) {
		c.dropEmpty = false
	}
}

// WithRand supplies the random source. Each stage otherwise owns a freshly
// seeded generator; there is no shared package-level state.
func WithRand(rng *rand.Rand) ResampleOption {
	return func(c *resampleConfig) {
		c.rng = rng
	}
}

// Resample performs rejection sampling on the frames of each tuple. One
// position holds pre-scaled likelihood-ratio weights in [0, 1]; each frame is
// retained iff a fresh uniform variate falls strictly below its weight, and
// the retention mask is applied as a single boolean selection (no run
// splitting) to the sampled positions. Weights above 1+eps yield
// ErrWeightBound unless the check is disabled. By default the weights are
// dropped from served tuples and tuples whose sampled positions are all
// empty are suppressed.
//
// The resulting distribution is only meaningful over a complete pass of the
// source; no single served tuple carries any distributional guarantee.
func Resample(src Stage, opts ...ResampleOption) (Stage, error) {
	cfg := resampleConfig{
		weightsAt:  -1,
		checkBound: true,
		dropEmpty:  true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return func(yield func(pull.Pull, error) bool) {
		for p, err := range src {
			if err != nil {
				yield(nil, err)
				return
			}
			wv, err := pull.At(p, cfg.weightsAt)
			if err != nil {
				yield(nil, err)
				return
			}
			w, ok := wv.(Weights)
			if !ok {
				yield(nil, fmt.Errorf("%w: weights position %d", ErrNotSliceable, cfg.weightsAt))
				return
			}
			if cfg.checkBound {
				limit := 1 + w.Eps()
				for i := 0; i < w.Len(); i++ {
					if w.Float(i) > limit {
						yield(nil, fmt.Errorf("%w: %v at frame %d", ErrWeightBound, w.Float(i), i))
						return
					}
				}
			}
			keep := make([]bool, w.Len())
			for i := range keep {
				keep[i] = cfg.rng.Float64() < w.Float(i)
			}
			if !cfg.keepWeights {
				if p, err = pull.Remove(p, cfg.weightsAt); err != nil {
					yield(nil, err)
					return
				}
			}
			var include []int
			if cfg.applySet {
				include = cfg.applyTo
			}
			included := pull.MaskFromIndices(include, len(p))
			derived := make(pull.Pull, len(p))
			empty := true
			sampled := false
			for i, v := range p {
				if !included[i] {
					derived[i] = v
					continue
				}
				s, ok := frames.AsSeries(v)
				if !ok {
					yield(nil, fmt.Errorf("%w: position %d", ErrNotSliceable, i))
					return
				}
				if s.Len() != len(keep) {
					yield(nil, fmt.Errorf("%w: %d weights for %d frames at position %d",
						ErrLengthMismatch, len(keep), s.Len(), i))
					return
				}
				picked := s.Mask(keep)
				derived[i] = picked
				sampled = true
				if picked.Len() > 0 {
					empty = false
				}
			}
			if cfg.dropEmpty && sampled && empty {
				continue
			}
			if !yield(derived, nil) {
				return
			}
		}
	}, nil
}
