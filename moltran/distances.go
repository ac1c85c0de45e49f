package moltran

import (
	"fmt"
	"math"

	"flume/frames"
	"flume/pull"
	"flume/stream"
)

type pairConfig struct {
	coordsAt int
	keep     bool
}

// PairOption configures PairDistances.
type PairOption func(*pairConfig)

// WithPairCoordsAt sets the tuple position of the coordinate array
// (default 0).
func WithPairCoordsAt(at int) PairOption {
	return func(c *pairConfig) { c.coordsAt = at }
}

// KeepCoords appends the distance array instead of replacing the
// coordinates.
func KeepCoords() PairOption {
	return func(c *pairConfig) { c.keep = true }
}

// PairDistances featurizes a coordinate array of shape (frames, atoms, dims)
// into the flattened upper triangle of each frame's pairwise distance
// matrix, a Dense of shape (frames, atoms*(atoms-1)/2). Pair order is row
// major over the upper triangle.
func PairDistances[T Float](src stream.Stage, opts ...PairOption) stream.Stage {
	cfg := pairConfig{coordsAt: 0}
	for _, opt := range opts {
		opt(&cfg)
	}
	return func(yield func(pull.Pull, error) bool) {
		for p, err := range src {
			if err != nil {
				yield(nil, err)
				return
			}
			coords, err := denseAt[T](p, cfg.coordsAt)
			if err != nil {
				yield(nil, err)
				return
			}
			dists, err := frameDistances(coords)
			if err != nil {
				yield(nil, err)
				return
			}
			if cfg.keep {
				p = pull.Append(p, dists)
			} else {
				out := make(pull.Pull, len(p))
				copy(out, p)
				idx := cfg.coordsAt
				if idx < 0 {
					idx += len(p)
				}
				out[idx] = dists
				p = out
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

func frameDistances[T Float](coords *frames.Dense[T]) (*frames.Dense[T], error) {
	shape := coords.Shape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("%w: coordinate shape %v, want (frames, atoms, dims)", stream.ErrLengthMismatch, shape)
	}
	n, atoms, dims := shape[0], shape[1], shape[2]
	pairs := atoms * (atoms - 1) / 2
	out := make([]T, 0, n*pairs)
	for f := 0; f < n; f++ {
		row := coords.Row(f)
		for i := 0; i < atoms; i++ {
			for j := i + 1; j < atoms; j++ {
				var sum float64
				for d := 0; d < dims; d++ {
					delta := float64(row[i*dims+d]) - float64(row[j*dims+d])
					sum += delta * delta
				}
				out = append(out, T(math.Sqrt(sum)))
			}
		}
	}
	return frames.NewDense(out, n, pairs)
}
