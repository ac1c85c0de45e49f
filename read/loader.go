package read

import (
	"fmt"

	"github.com/robert-malhotra/go-hdf5/hdf5"

	"flume/frames"
)

// Loader turns a filename into an array value. DirReader applies one per
// matched file.
type Loader func(path string) (frames.Series, error)

func intShape(dims []uint64) []int {
	shape := make([]int, len(dims))
	for i, d := range dims {
		shape[i] = int(d)
	}
	return shape
}

// readDense pulls a whole dataset into memory as a Dense of element type T.
func readDense[T frames.Scalar](ds *hdf5.Dataset) (*frames.Dense[T], error) {
	var buf []T
	if err := ds.Read(&buf); err != nil {
		return nil, fmt.Errorf("reading %s: %w", ds.Path(), err)
	}
	shape := intShape(ds.Shape())
	if len(shape) == 0 {
		shape = []int{len(buf)}
	}
	return frames.NewDense(buf, shape...)
}

// firstDataset returns the lexically first dataset in the file.
func firstDataset(f *hdf5.File) (*hdf5.Dataset, error) {
	var found *hdf5.Dataset
	err := hdf5.Walk(f.Root(), func(path string, obj interface{}, err error) error {
		if err != nil || found != nil {
			return nil
		}
		if ds, ok := obj.(*hdf5.Dataset); ok {
			found = ds
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%s: %w", f.Path(), hdf5.ErrNotFound)
	}
	return found, nil
}

// DenseLoader loads one dataset of an HDF5 file into a Dense of element type
// T. An empty dataset path picks the first dataset in the file.
func DenseLoader[T frames.Scalar](dataset string) func(path string) (*frames.Dense[T], error) {
	return func(path string) (*frames.Dense[T], error) {
		f, err := hdf5.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		var ds *hdf5.Dataset
		if dataset == "" {
			ds, err = firstDataset(f)
		} else {
			ds, err = f.OpenDataset(dataset)
		}
		if err != nil {
			return nil, err
		}
		return readDense[T](ds)
	}
}

// SeriesLoader adapts DenseLoader to the Loader signature used by DirReader.
func SeriesLoader[T frames.Scalar](dataset string) Loader {
	load := DenseLoader[T](dataset)
	return func(path string) (frames.Series, error) {
		return load(path)
	}
}
