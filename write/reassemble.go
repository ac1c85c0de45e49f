package write

import (
	"fmt"
	"slices"

	"github.com/robert-malhotra/go-hdf5/hdf5"

	"flume/frames"
)

// Reassemble reads a name written by the incremental Batched layout back
// into one contiguous array: the sequence-numbered chunk datasets of the
// name's sub-group, concatenated in order.
func Reassemble[T frames.Scalar](group *hdf5.Group, name string) (*frames.Dense[T], error) {
	sub, err := group.OpenGroup(name)
	if err != nil {
		return nil, err
	}
	members, err := sub.Members()
	if err != nil {
		return nil, err
	}
	slices.Sort(members)
	var parts []*frames.Dense[T]
	total := 0
	for _, member := range members {
		if member == countsName {
			continue
		}
		ds, err := sub.OpenDataset(member)
		if err != nil {
			return nil, err
		}
		part, err := readDense[T](ds)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
		total += part.Len()
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%s: %w", name, hdf5.ErrNotFound)
	}
	joined, err := frames.Concat(parts...)
	if err != nil {
		return nil, err
	}
	if ds, err := sub.OpenDataset(countsName); err == nil {
		var counts []int64
		if err := ds.Read(&counts); err == nil && len(counts) == 1 && int(counts[0]) != total {
			return nil, fmt.Errorf("%s: recorded %d frames, found %d", name, counts[0], total)
		}
	}
	return joined, nil
}

// readDense pulls a whole dataset into memory as a Dense of element type T.
func readDense[T frames.Scalar](ds *hdf5.Dataset) (*frames.Dense[T], error) {
	var buf []T
	if err := ds.Read(&buf); err != nil {
		return nil, fmt.Errorf("reading %s: %w", ds.Path(), err)
	}
	dims := ds.Shape()
	shape := make([]int, len(dims))
	for i, d := range dims {
		shape[i] = int(d)
	}
	if len(shape) == 0 {
		shape = []int{len(buf)}
	}
	return frames.NewDense(buf, shape...)
}
