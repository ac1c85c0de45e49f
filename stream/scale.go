package stream

import (
	"fmt"

	"flume/frames"
)

// ScaleMapping divides every weight array in a table by the largest entry
// found across the whole table. Positive weights land in [0, 1], so the
// scaled table can back a MappingEvaluator whose lookups feed Resample. A
// table whose maximum is not positive is a configuration error.
func ScaleMapping[K comparable, W Weights](table map[K]W) (map[K]*frames.Dense[float64], error) {
	var maximum float64
	found := false
	for _, w := range table {
		for i := 0; i < w.Len(); i++ {
			if v := w.Float(i); !found || v > maximum {
				maximum = v
				found = true
			}
		}
	}
	if !found || maximum <= 0 {
		return nil, fmt.Errorf("%w: mapping maximum %v is not positive", ErrConfig, maximum)
	}
	out := make(map[K]*frames.Dense[float64], len(table))
	for k, w := range table {
		data := make([]float64, w.Len())
		for i := range data {
			data[i] = w.Float(i) / maximum
		}
		d, err := frames.NewDense(data, len(data))
		if err != nil {
			return nil, err
		}
		out[k] = d
	}
	return out, nil
}
