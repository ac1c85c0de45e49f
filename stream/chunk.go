package stream

import (
	"iter"

	"flume/frames"
)

// Unbounded requests a single chunk covering the whole strided selection.
const Unbounded = 0

// Chunks decomposes data into consecutive strided slices of at most size
// frames. Striding is applied before chunking: concatenating the yielded
// chunks in order reproduces data[::stride] exactly, for any positive size.
// The final chunk may be shorter.
//
// A size of Unbounded yields exactly one slice, the full strided selection
// (an empty slice for empty data). Otherwise empty data yields no chunks.
func Chunks(data frames.Series, size, stride int) iter.Seq[frames.Series] {
	if stride < 1 {
		stride = 1
	}
	return func(yield func(frames.Series) bool) {
		length := data.Len()
		if size <= Unbounded {
			yield(data.Slice(0, length, stride))
			return
		}
		// the strided index domain is range(0, length, stride); chunk c
		// covers domain positions [c*size, (c+1)*size)
		domain := (length + stride - 1) / stride
		for c := 0; ; c++ {
			first := c * size
			if first >= domain {
				return
			}
			start := first * stride
			stop := length
			last := true
			if (c+1)*size < domain {
				stop = (c + 1) * size * stride
				last = false
			}
			if !yield(data.Slice(start, stop, stride)) {
				return
			}
			if last {
				return
			}
		}
	}
}
