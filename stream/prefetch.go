package stream

import (
	"errors"
	"fmt"
	"iter"
)

// Prefetch buffers a fixed number of items from a source at construction
// time, proving the source holds at least that many before anything is
// served. Iteration serves the buffered items in FIFO order, then continues
// draining the live source. It is generic because batching is shape-agnostic:
// the items may be Pulls or anything else.
//
// Unlike most stages a Prefetch is single-use: construction advances the
// source, and a second iteration after a partial drain serves only the
// remainder.
type Prefetch[T any] struct {
	next func() (T, error, bool)
	stop func()
	buf  *fifo[T]
	used bool
}

// NewPrefetch draws fetch items from src eagerly. If the source ends first,
// construction fails with ErrExhausted (the source may have been partially
// consumed); a fetch below one is a configuration error.
func NewPrefetch[T any](src iter.Seq2[T, error], fetch int) (*Prefetch[T], error) {
	if fetch < 1 {
		return nil, fmt.Errorf("%w: fetch %d", ErrConfig, fetch)
	}
	next, stop := iter.Pull2(src)
	p := &Prefetch[T]{next: next, stop: stop, buf: newFifo[T](fetch)}
	for i := 0; i < fetch; i++ {
		v, err, ok := next()
		if !ok {
			stop()
			return nil, fmt.Errorf("%w: wanted %d items, got %d", ErrExhausted, fetch, i)
		}
		if err != nil {
			stop()
			return nil, err
		}
		p.buf.push(v)
	}
	return p, nil
}

// Used reports whether a full drain (buffer plus live tail) has completed.
func (p *Prefetch[T]) Used() bool {
	return p.used
}

// Items serves the buffered items first, then the rest of the source. Used
// flips only once the live tail is exhausted.
func (p *Prefetch[T]) Items() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, ok := p.buf.pop()
			if !ok {
				break
			}
			if !yield(v, nil) {
				return
			}
		}
		for {
			v, err, ok := p.next()
			if !ok {
				break
			}
			if !yield(v, err) || err != nil {
				return
			}
		}
		p.used = true
		p.stop()
	}
}

// LazyBatched slices a flat iterator into consecutive windows of at most
// size items, serving each as a Prefetch with a look-ahead of one, so a
// served batch is never empty. Batches share the underlying iterator and
// must be drained strictly in order: asking for the next batch before the
// previous reports Used yields ErrSequencing. Exhaustion of the source ends
// batching cleanly.
func LazyBatched[T any](src iter.Seq2[T, error], size int) (iter.Seq2[*Prefetch[T], error], error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: batch size %d", ErrConfig, size)
	}
	return func(yield func(*Prefetch[T], error) bool) {
		next, stop := iter.Pull2(src)
		defer stop()
		var prev *Prefetch[T]
		for {
			if prev != nil && !prev.Used() {
				yield(nil, ErrSequencing)
				return
			}
			window := func(yield func(T, error) bool) {
				for i := 0; i < size; i++ {
					v, err, ok := next()
					if !ok {
						return
					}
					if !yield(v, err) {
						return
					}
				}
			}
			batch, err := NewPrefetch(window, 1)
			if err != nil {
				if !errors.Is(err, ErrExhausted) {
					yield(nil, err)
				}
				return
			}
			if !yield(batch, nil) {
				return
			}
			prev = batch
		}
	}, nil
}
