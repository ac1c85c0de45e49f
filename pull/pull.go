// Package pull defines the tuple unit exchanged between pipeline stages and
// the positional operations on it.
//
// A Pull is an ordered, fixed-arity tuple of values. Position is the only
// addressing mechanism: which slot holds which quantity (coordinates, forces,
// weights, identifiers) is an agreement between adjacent stages, not a schema
// enforced by the type system. Stages may insert, remove or substitute
// positions, changing the arity seen downstream.
package pull

import (
	"errors"
	"fmt"
)

// ErrIndex reports a tuple position outside the valid range.
var ErrIndex = errors.New("tuple index out of range")

// Pull is one fixed-arity tuple produced by a single iteration step of a
// stage. Values are commonly array-like (frames.Series) but need not be.
type Pull []any

// New builds a Pull from its positional values.
func New(values ...any) Pull {
	p := make(Pull, len(values))
	copy(p, values)
	return p
}

// Append returns a new Pull with v added at the end. The receiver is not
// modified.
func Append(p Pull, v any) Pull {
	out := make(Pull, 0, len(p)+1)
	out = append(out, p...)
	return append(out, v)
}

// Insert returns a new Pull with v placed so that the result indexed at the
// (normalized) position equals v. Negative positions count from the end:
// -1 appends, 0 prepends. Valid positions are -len(p)-1 through len(p).
func Insert(p Pull, v any, at int) (Pull, error) {
	idx := at
	if idx < 0 {
		idx += len(p) + 1
	}
	if idx < 0 || idx > len(p) {
		return nil, fmt.Errorf("%w: insert at %d with arity %d", ErrIndex, at, len(p))
	}
	out := make(Pull, 0, len(p)+1)
	out = append(out, p[:idx]...)
	out = append(out, v)
	return append(out, p[idx:]...), nil
}

// Remove returns a new Pull without the value at the given position. Negative
// positions count from the end with the same normalization as Insert, so the
// position that Insert placed a value at is the position Remove takes it from.
func Remove(p Pull, at int) (Pull, error) {
	idx := at
	if idx < 0 {
		idx += len(p)
	}
	if idx < 0 || idx >= len(p) {
		return nil, fmt.Errorf("%w: remove at %d with arity %d", ErrIndex, at, len(p))
	}
	out := make(Pull, 0, len(p)-1)
	out = append(out, p[:idx]...)
	return append(out, p[idx+1:]...), nil
}

// At resolves a possibly negative position against p.
func At(p Pull, at int) (any, error) {
	idx := at
	if idx < 0 {
		idx += len(p)
	}
	if idx < 0 || idx >= len(p) {
		return nil, fmt.Errorf("%w: index %d with arity %d", ErrIndex, at, len(p))
	}
	return p[idx], nil
}

// MaskFromIndices converts a set of positions into a boolean mask of length n.
// A nil index set selects every position. Negative indices count from the
// end; indices outside the range are ignored.
func MaskFromIndices(indices []int, n int) []bool {
	mask := make([]bool, n)
	if indices == nil {
		for i := range mask {
			mask[i] = true
		}
		return mask
	}
	for _, raw := range indices {
		idx := raw
		if idx < 0 {
			idx += n
		}
		if idx >= 0 && idx < n {
			mask[idx] = true
		}
	}
	return mask
}
