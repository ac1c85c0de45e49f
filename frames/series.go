// Package frames provides the array-like values carried inside Pulls.
//
// The core pipeline never looks inside an array beyond its leading axis: it
// slices, masks and iterates frames. Series is that capability; Dense is the
// in-memory implementation used by the bundled readers and transforms. Source
// adapters are free to supply their own Series whose slicing reads lazily
// from storage.
package frames

import "iter"

// Series is a value addressed along its leading ("frame") axis.
//
// Slice and Mask return values of the same kind as the receiver; whether the
// result aliases the receiver's storage is up to the implementation, so
// callers must not assume independence unless documented.
type Series interface {
	// Len reports the length along the leading axis.
	Len() int
	// Slice returns the [start:stop:step] selection along the leading axis.
	// Bounds are clamped to the valid range; step below 1 is treated as 1.
	Slice(start, stop, step int) Series
	// Mask returns the frames whose entry in keep is true. Positions beyond
	// the shorter of len(keep) and Len are dropped.
	Mask(keep []bool) Series
	// Rows iterates the individual frames. One-dimensional series yield
	// scalars, higher-rank series yield row slices.
	Rows() iter.Seq[any]
}

// AsSeries reports whether a tuple value is array-like.
func AsSeries(v any) (Series, bool) {
	s, ok := v.(Series)
	return s, ok
}
