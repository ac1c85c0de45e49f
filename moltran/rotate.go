package moltran

import (
	"fmt"

	"flume/frames"
	"flume/pull"
	"flume/stream"
)

// Float constrains the element types the geometric transforms operate on.
type Float interface {
	~float32 | ~float64
}

type rotateConfig struct {
	coordsAt   int
	forcesAt   int
	atomStride int
}

// RotateOption configures RotateToPrincipalAxes.
type RotateOption func(*rotateConfig) error

// WithCoordsAt sets the tuple position of the coordinate array (default 0).
func WithCoordsAt(at int) RotateOption {
	return func(c *rotateConfig) error {
		c.coordsAt = at
		return nil
	}
}

// WithForcesAt sets the tuple position of the force array (default 1).
func WithForcesAt(at int) RotateOption {
	return func(c *rotateConfig) error {
		c.forcesAt = at
		return nil
	}
}

// WithAtomStride subsamples the atoms used to fit the rotation. A stride
// leaving fewer than three atoms falls back to using all of them.
func WithAtomStride(n int) RotateOption {
	return func(c *rotateConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: atom stride %d", stream.ErrConfig, n)
		}
		c.atomStride = n
		return nil
	}
}

// RotateToPrincipalAxes rotates each frame's coordinates and forces into the
// coordinate principal-axes frame: the basis diagonalizing the frame's
// coordinate gram matrix, ordered by descending variance.
//
// Both arrays must be *frames.Dense[T] of matching shape (frames, atoms, 3).
// Rotation happens in place: the served tuples alias the source arrays with
// their contents replaced. Frames with fewer than three atoms pass through
// unrotated.
func RotateToPrincipalAxes[T Float](src stream.Stage, opts ...RotateOption) (stream.Stage, error) {
	cfg := rotateConfig{coordsAt: 0, forcesAt: 1, atomStride: 1}
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
			coords, err := denseAt[T](p, cfg.coordsAt)
			if err != nil {
				yield(nil, err)
				return
			}
			forces, err := denseAt[T](p, cfg.forcesAt)
			if err != nil {
				yield(nil, err)
				return
			}
			if err := rotateBatch(coords, forces, cfg.atomStride); err != nil {
				yield(nil, err)
				return
			}
			if !yield(p, nil) {
				return
			}
		}
	}, nil
}

func denseAt[T Float](p pull.Pull, at int) (*frames.Dense[T], error) {
	v, err := pull.At(p, at)
	if err != nil {
		return nil, err
	}
	d, ok := v.(*frames.Dense[T])
	if !ok {
		return nil, fmt.Errorf("%w: position %d is %T", stream.ErrNotSliceable, at, v)
	}
	return d, nil
}

func rotateBatch[T Float](coords, forces *frames.Dense[T], atomStride int) error {
	cs, fs := coords.Shape(), forces.Shape()
	if len(cs) != 3 || cs[2] != 3 {
		return fmt.Errorf("%w: coordinate shape %v, want (frames, atoms, 3)", stream.ErrLengthMismatch, cs)
	}
	if len(fs) != 3 || fs[0] != cs[0] || fs[1] != cs[1] || fs[2] != 3 {
		return fmt.Errorf("%w: force shape %v does not match coordinates %v", stream.ErrLengthMismatch, fs, cs)
	}
	for i := 0; i < coords.Len(); i++ {
		rotateFrame(coords.Row(i), forces.Row(i), cs[1], atomStride)
	}
	return nil
}

// rotateFrame fits the rotation on a strided atom subset and applies it to
// every atom of the frame.
func rotateFrame[T Float](coords, forces []T, atoms, stride int) {
	if atoms/stride < 3 {
		stride = 1
	}
	if atoms < 3 {
		return
	}
	var gram [3][3]float64
	for a := 0; a < atoms; a += stride {
		row := coords[a*3 : a*3+3]
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				gram[i][j] += float64(row[i]) * float64(row[j])
			}
		}
	}
	_, axes := jacobiEigen3(gram)
	applyRotation(coords, atoms, &axes)
	applyRotation(forces, atoms, &axes)
}

func applyRotation[T Float](rows []T, atoms int, axes *[3][3]float64) {
	for a := 0; a < atoms; a++ {
		row := rows[a*3 : a*3+3]
		x, y, z := float64(row[0]), float64(row[1]), float64(row[2])
		for j := 0; j < 3; j++ {
			row[j] = T(x*axes[0][j] + y*axes[1][j] + z*axes[2][j])
		}
	}
}
