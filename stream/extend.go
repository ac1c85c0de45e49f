package stream

import (
	"errors"
	"fmt"

	"flume/pull"
)

// ErrMissingKey reports a mapping-backed Evaluator asked for a key it does
// not hold. Extend propagates it verbatim.
var ErrMissingKey = errors.New("extender key not found")

// Evaluator produces the value an Extend stage adds to each tuple. The single
// capability covers callables and lookup tables alike; which one backs it is
// decided at construction, not per call.
type Evaluator interface {
	Evaluate(input any) (any, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(any) (any, error)

func (f EvaluatorFunc) Evaluate(input any) (any, error) {
	return f(input)
}

// MappingEvaluator adapts a lookup table to the Evaluator interface. Inputs
// that are not of the key type, or keys absent from the table, report
// ErrMissingKey.
func MappingEvaluator[K comparable, V any](table map[K]V) Evaluator {
	return EvaluatorFunc(func(input any) (any, error) {
		key, ok := input.(K)
		if !ok {
			return nil, fmt.Errorf("%w: %v (%T) is not a usable key", ErrMissingKey, input, input)
		}
		v, ok := table[key]
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrMissingKey, key)
		}
		return v, nil
	})
}

// inputSelector picks what part of a tuple feeds an evaluation: the whole
// tuple, a single position, or a contiguous sub-tuple. Extend and Censor
// share it.
type inputSelector struct {
	at     *int
	lo, hi int
	ranged bool
}

func (s *inputSelector) pick(p pull.Pull) (any, error) {
	switch {
	case s.at != nil:
		return pull.At(p, *s.at)
	case s.ranged:
		lo, hi := s.lo, s.hi
		if lo < 0 {
			lo += len(p)
		}
		if hi < 0 {
			hi += len(p)
		}
		if lo < 0 || hi > len(p) || lo > hi {
			return nil, fmt.Errorf("%w: range [%d:%d] with arity %d", pull.ErrIndex, s.lo, s.hi, len(p))
		}
		return p[lo:hi], nil
	default:
		return p, nil
	}
}

type extendConfig struct {
	input       inputSelector
	removeInput bool
	placement   int
}

// ExtendOption configures an Extend stage.
type ExtendOption func(*extendConfig)

// WithInputAt feeds only the value at position i (negative counts from the
// end) to the evaluator.
func WithInputAt(i int) ExtendOption {
	return func(c *extendConfig) {
		at := i
		c.input.at = &at
	}
}

// WithInputRange feeds the sub-tuple [start:stop] to the evaluator.
func WithInputRange(start, stop int) ExtendOption {
	return func(c *extendConfig) {
		c.input.ranged = true
		c.input.lo, c.input.hi = start, stop
	}
}

// WithRemoveInput drops the consumed input position from the served tuple.
// Only legal together with WithInputAt.
func WithRemoveInput() ExtendOption {
	return func(c *extendConfig) {
		c.removeInput = true
	}
}

// WithPlacement puts the computed value at the given position of the served
// tuple (negative counts from the end; the default -1 appends).
func WithPlacement(i int) ExtendOption {
	return func(c *extendConfig) {
		c.placement = i
	}
}

// Extend computes one new value per tuple and inserts it at the configured
// position. By default the whole tuple feeds the evaluator and the result is
// appended; see the options. Evaluator errors, including lookup failures,
// are yielded unwrapped.
func Extend(src Stage, ext Evaluator, opts ...ExtendOption) (Stage, error) {
	if ext == nil {
		return nil, fmt.Errorf("%w: nil evaluator", ErrConfig)
	}
	cfg := extendConfig{placement: -1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.input.at != nil && cfg.input.ranged {
		return nil, fmt.Errorf("%w: both single and ranged input selected", ErrConfig)
	}
	if cfg.removeInput && cfg.input.at == nil {
		return nil, fmt.Errorf("%w: remove-input requires a single input position", ErrConfig)
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
			value, err := ext.Evaluate(input)
			if err != nil {
				yield(nil, err)
				return
			}
			if cfg.removeInput {
				if p, err = pull.Remove(p, *cfg.input.at); err != nil {
					yield(nil, err)
					return
				}
			}
			out, err := pull.Insert(p, value, cfg.placement)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(out, nil) {
				return
			}
		}
	}, nil
}
