package stream

import "errors"

// Errors reported by pipeline stages. Constructors return configuration
// errors directly; the others are yielded through a stage's error slot during
// iteration.
var (
	// ErrConfig marks invalid construction arguments. It is never deferred
	// to iteration time.
	ErrConfig = errors.New("invalid stage configuration")

	// ErrSync reports strict streams of a masked zip that did not exhaust
	// simultaneously.
	ErrSync = errors.New("strict streams did not end simultaneously")

	// ErrWeightBound reports a rejection-sampling weight above one.
	ErrWeightBound = errors.New("rejection weight above one")

	// ErrSequencing reports a batch requested before the previous batch was
	// fully consumed.
	ErrSequencing = errors.New("previous batch not yet consumed")

	// ErrExhausted reports a source that ended before a prefetch obtained
	// its look-ahead count.
	ErrExhausted = errors.New("source exhausted during prefetch")

	// ErrLengthMismatch reports a mask or array whose length does not match
	// what it governs.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrNotSliceable reports a tuple position that was asked to behave as
	// an array but does not implement frames.Series.
	ErrNotSliceable = errors.New("value does not support frame slicing")
)
