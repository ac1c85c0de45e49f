package frames

import (
	"fmt"
	"iter"
	"math"
)

// Scalar constrains the element types Dense can hold.
type Scalar interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Dense is a row-major in-memory array of shape [n, dims...]. It is the
// concrete Series served by the bundled readers and produced by transforms.
type Dense[T Scalar] struct {
	data  []T
	shape []int
	width int // elements per frame, product of shape[1:]
}

// NewDense wraps data in a Dense of the given shape. The shape's product
// must match len(data).
func NewDense[T Scalar](data []T, shape ...int) (*Dense[T], error) {
	if len(shape) == 0 {
		return nil, fmt.Errorf("frames: empty shape")
	}
	total := 1
	for _, dim := range shape {
		if dim < 0 {
			return nil, fmt.Errorf("frames: negative dimension %d", dim)
		}
		total *= dim
	}
	if total != len(data) {
		return nil, fmt.Errorf("frames: shape %v wants %d elements, have %d", shape, total, len(data))
	}
	width := 1
	for _, dim := range shape[1:] {
		width *= dim
	}
	owned := make([]int, len(shape))
	copy(owned, shape)
	return &Dense[T]{data: data, shape: owned, width: width}, nil
}

// Vector wraps a flat slice as a one-dimensional Dense.
func Vector[T Scalar](data []T) *Dense[T] {
	return &Dense[T]{data: data, shape: []int{len(data)}, width: 1}
}

// Len reports the length along the leading axis.
func (d *Dense[T]) Len() int {
	return d.shape[0]
}

// Shape returns the full shape. The returned slice must not be modified.
func (d *Dense[T]) Shape() []int {
	return d.shape
}

// Data returns the flat row-major backing. Slices with step 1 alias the
// receiver's storage.
func (d *Dense[T]) Data() []T {
	return d.data
}

// Row returns the flat contents of frame i, aliasing the backing array.
func (d *Dense[T]) Row(i int) []T {
	return d.data[i*d.width : (i+1)*d.width]
}

// Float reports the leading scalar of frame i as a float64. Rejection
// sampling reads per-frame weights through this.
func (d *Dense[T]) Float(i int) float64 {
	return float64(d.data[i*d.width])
}

// Eps reports the machine epsilon of the element type's float kind. Integer
// element types report zero.
func (d *Dense[T]) Eps() float64 {
	var zero T
	switch any(zero).(type) {
	case float32:
		return float64(math.Nextafter32(1, 2) - 1)
	case float64:
		return math.Nextafter(1, 2) - 1
	default:
		return 0
	}
}

func (d *Dense[T]) withRows(n int, data []T) *Dense[T] {
	shape := make([]int, len(d.shape))
	copy(shape, d.shape)
	shape[0] = n
	return &Dense[T]{data: data, shape: shape, width: d.width}
}

// Slice returns the [start:stop:step] selection along the leading axis.
// Bounds are clamped; step below 1 is treated as 1. A step of 1 returns a
// view aliasing the receiver's storage, larger steps copy.
func (d *Dense[T]) Slice(start, stop, step int) Series {
	n := d.Len()
	if step < 1 {
		step = 1
	}
	if start < 0 {
		start = 0
	}
	if stop > n {
		stop = n
	}
	if start >= stop {
		return d.withRows(0, nil)
	}
	if step == 1 {
		return d.withRows(stop-start, d.data[start*d.width:stop*d.width])
	}
	rows := (stop - start + step - 1) / step
	out := make([]T, 0, rows*d.width)
	for i := start; i < stop; i += step {
		out = append(out, d.Row(i)...)
	}
	return d.withRows(rows, out)
}

// Mask returns a copy holding the frames whose entry in keep is true.
func (d *Dense[T]) Mask(keep []bool) Series {
	limit := min(len(keep), d.Len())
	var out []T
	rows := 0
	for i := 0; i < limit; i++ {
		if keep[i] {
			out = append(out, d.Row(i)...)
			rows++
		}
	}
	return d.withRows(rows, out)
}

// Frame returns frame i as a Dense of one lower rank, aliasing the backing
// array. A one-dimensional receiver yields a single-element vector.
func (d *Dense[T]) Frame(i int) *Dense[T] {
	row := d.Row(i)
	if len(d.shape) == 1 {
		return &Dense[T]{data: row, shape: []int{1}, width: 1}
	}
	shape := make([]int, len(d.shape)-1)
	copy(shape, d.shape[1:])
	width := 1
	for _, dim := range shape[1:] {
		width *= dim
	}
	return &Dense[T]{data: row, shape: shape, width: width}
}

// Rows iterates the frames: scalars for one-dimensional series, aliased row
// slices otherwise.
func (d *Dense[T]) Rows() iter.Seq[any] {
	return func(yield func(any) bool) {
		for i := 0; i < d.Len(); i++ {
			var row any
			if len(d.shape) == 1 {
				row = d.data[i]
			} else {
				row = d.Row(i)
			}
			if !yield(row) {
				return
			}
		}
	}
}

// Concat joins series along the leading axis. All parts must share the
// trailing shape.
func Concat[T Scalar](parts ...*Dense[T]) (*Dense[T], error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("frames: nothing to concatenate")
	}
	first := parts[0]
	total := 0
	for _, p := range parts {
		if p.width != first.width || len(p.shape) != len(first.shape) {
			return nil, fmt.Errorf("frames: trailing shapes differ: %v vs %v", first.shape, p.shape)
		}
		for axis, dim := range p.shape[1:] {
			if dim != first.shape[axis+1] {
				return nil, fmt.Errorf("frames: trailing shapes differ: %v vs %v", first.shape, p.shape)
			}
		}
		total += p.Len()
	}
	data := make([]T, 0, total*first.width)
	for _, p := range parts {
		data = append(data, p.data...)
	}
	return first.withRows(total, data), nil
}
