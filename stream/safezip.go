package stream

import (
	"fmt"
	"iter"
)

// SafeZip zips several sequences, requiring strict streams to exhaust in
// lockstep. Every round pulls one value from every stream before deciding:
// if all produce, the round is emitted; if the strict (true-masked) streams
// disagree about being exhausted, ErrSync is yielded; otherwise iteration
// ends cleanly, as with plain zip.
//
// A nil mask marks every stream strict. A mask whose length differs from the
// number of sources is a configuration error.
func SafeZip[T any](mask []bool, sources ...iter.Seq[T]) (iter.Seq2[[]T, error], error) {
	if mask != nil && len(mask) != len(sources) {
		return nil, fmt.Errorf("%w: mask of length %d for %d streams", ErrConfig, len(mask), len(sources))
	}
	return func(yield func([]T, error) bool) {
		nexts := make([]func() (T, bool), len(sources))
		for i, src := range sources {
			next, stop := iter.Pull(src)
			defer stop()
			nexts[i] = next
		}
		for {
			vals := make([]T, len(sources))
			ok := make([]bool, len(sources))
			all := true
			for i, next := range nexts {
				vals[i], ok[i] = next()
				all = all && ok[i]
			}
			if all {
				if !yield(vals, nil) {
					return
				}
				continue
			}
			// lopsided only counts among strict streams
			strictLive, strictDone := false, false
			for i := range sources {
				if mask != nil && !mask[i] {
					continue
				}
				if ok[i] {
					strictLive = true
				} else {
					strictDone = true
				}
			}
			if strictLive && strictDone {
				yield(nil, ErrSync)
			}
			return
		}
	}, nil
}
