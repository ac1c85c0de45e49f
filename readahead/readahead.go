// Package readahead evaluates a pipeline stage in a background worker
// goroutine, buffering items ahead of consumer demand.
//
// This is an experimental, best-effort component aimed at I/O-heavy sources
// feeding compute-heavy consumers. It must not be relied on for
// correctness-critical pipelines: completion is signalled through a sentinel
// value, and a source that ever produces the sentinel itself is a fatal
// usage error that is surfaced only inside the worker (see Reader).
package readahead

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"flume/pull"
	"flume/stream"
)

type item struct {
	p   pull.Pull
	err error
}

// Reader wraps a stage and drives it from a single persistent daemon worker.
// Items reach the consumer through a hand-off channel bounded to the
// configured look-ahead depth, in the exact order the worker drew them.
//
// A Reader allows one active iteration at a time; the worker is never joined
// and terminates with the process.
type Reader struct {
	src      stream.Stage
	depth    int
	sentinel pull.Pull
	log      zerolog.Logger

	// control carries one work channel per iteration; a nil entry is the
	// reset handshake for an abandoned iteration.
	control chan chan item
	active  atomic.Bool
}

// Option configures a Reader.
type Option func(*Reader)

// WithDepth sets the look-ahead depth: how many items the worker may buffer
// ahead of consumption. Values below one are raised to one.
func WithDepth(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.depth = n
		}
	}
}

// WithSentinel replaces the completion marker (default: a nil tuple). The
// wrapped source must never produce a tuple identical to it.
func WithSentinel(p pull.Pull) Option {
	return func(r *Reader) {
		r.sentinel = p
	}
}

// WithLogger supplies the logger used for worker-side diagnostics. The
// default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Reader) {
		r.log = log
	}
}

// New starts the worker for src. The worker idles until an iteration begins.
func New(src stream.Stage, opts ...Option) *Reader {
	r := &Reader{
		src:     src,
		depth:   1,
		log:     zerolog.Nop(),
		control: make(chan chan item, 2),
	}
	for _, opt := range opts {
		opt(r)
	}
	go r.work()
	return r
}

// isSentinel compares by identity, not content: nil matches nil, otherwise
// the tuples must share backing storage and length.
func (r *Reader) isSentinel(p pull.Pull) bool {
	if len(p) != len(r.sentinel) {
		return false
	}
	if len(p) == 0 {
		return (p == nil) == (r.sentinel == nil)
	}
	return &p[0] == &r.sentinel[0]
}

func (r *Reader) work() {
	var pending chan item
	for {
		var out chan item
		if pending != nil {
			out, pending = pending, nil
		} else {
			out = <-r.control
		}
		if out == nil {
			// stale reset for an iteration already finished
			continue
		}
		abandoned := false
		for p, err := range r.src {
			if err == nil && r.isSentinel(p) {
				// Fatal usage error. It cannot reach the consumer from
				// here; the worker stops and the consumer will stall.
				// Known limitation of this experimental component.
				r.log.Error().Msg("readahead: source produced the sentinel value, results are suspect")
				return
			}
			out <- item{p: p, err: err}
			if err != nil {
				abandoned = true
				break
			}
			// a reset pushed during this iteration abandons it
			select {
			case next := <-r.control:
				if next != nil {
					pending = next
				}
				abandoned = true
			default:
			}
			if abandoned {
				break
			}
		}
		if !abandoned {
			out <- item{p: r.sentinel}
		}
	}
}

// Items serves one buffered pass over the wrapped stage. Beginning a pass
// while another is still active yields stream.ErrSequencing. Breaking out
// early triggers a best-effort reset handshake so the worker becomes ready
// for a fresh pass without being torn down.
func (r *Reader) Items() stream.Stage {
	return func(yield func(pull.Pull, error) bool) {
		if !r.active.CompareAndSwap(false, true) {
			yield(nil, stream.ErrSequencing)
			return
		}
		defer r.active.Store(false)

		work := make(chan item, r.depth)
		r.control <- work

		completed := false
		for {
			it := <-work
			if it.err == nil && r.isSentinel(it.p) {
				completed = true
				break
			}
			if !yield(it.p, it.err) {
				break
			}
			if it.err != nil {
				completed = true
				break
			}
		}
		if !completed {
			// reset handshake: null control entry, then free one buffer
			// slot in case the worker is blocked mid-push
			r.control <- nil
			select {
			case <-work:
			default:
			}
		}
	}
}
