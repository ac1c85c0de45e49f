package stream

import "flume/pull"

// Filter drops tuples that fail the test, preserving the order of the rest.
// The test's view of the tuple shape is a caller contract; auxiliary
// arguments belong in the closure.
func Filter(src Stage, test func(pull.Pull) bool) Stage {
	return func(yield func(pull.Pull, error) bool) {
		for p, err := range src {
			if err != nil {
				yield(nil, err)
				return
			}
			if !test(p) {
				continue
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}
