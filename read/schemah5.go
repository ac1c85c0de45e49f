package read

import (
	"fmt"
	"math/rand/v2"
	"path"
	"slices"
	"strings"

	"github.com/robert-malhotra/go-hdf5/hdf5"

	"flume/frames"
	"flume/pull"
	"flume/stream"
)

// Transform maps a tuple of opened datasets into the tuple served during
// iteration. It may change arity and content; the bundled transforms only
// materialize the datasets in memory.
type Transform func(p pull.Pull) (pull.Pull, error)

// FlushFloat64 reads every dataset in the tuple fully into a
// *frames.Dense[float64]. This is the default SchemaReader transform.
func FlushFloat64(p pull.Pull) (pull.Pull, error) {
	out := make(pull.Pull, len(p))
	for i, v := range p {
		ds, ok := v.(*hdf5.Dataset)
		if !ok {
			return nil, fmt.Errorf("read: position %d is %T, not a dataset", i, v)
		}
		flat, err := ds.ReadFloat64()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", ds.Path(), err)
		}
		shape := intShape(ds.Shape())
		if len(shape) == 0 {
			shape = []int{len(flat)}
		}
		dense, err := frames.NewDense(flat, shape...)
		if err != nil {
			return nil, err
		}
		out[i] = dense
	}
	return out, nil
}

// Strider composes FlushFloat64 with a leading-axis stride.
func Strider(stride int) Transform {
	return func(p pull.Pull) (pull.Pull, error) {
		out, err := FlushFloat64(p)
		if err != nil {
			return nil, err
		}
		for i := range out {
			s := out[i].(frames.Series)
			out[i] = s.Slice(0, s.Len(), stride)
		}
		return out, nil
	}
}

// Sampler composes FlushFloat64 with a random subsample of the leading axis.
// The same sites are kept in every array of the tuple, drawn without
// replacement and served in their original order; a tuple holding fewer
// frames than requested passes through whole. Each Sampler owns a freshly
// seeded generator.
func Sampler(n int) Transform {
	return SeededSampler(n, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// SeededSampler is Sampler with a caller-supplied random source.
func SeededSampler(n int, rng *rand.Rand) Transform {
	return func(p pull.Pull) (pull.Pull, error) {
		if n < 0 {
			return nil, fmt.Errorf("%w: negative sample count %d", stream.ErrConfig, n)
		}
		out, err := FlushFloat64(p)
		if err != nil {
			return nil, err
		}
		if len(out) == 0 {
			return out, nil
		}
		// The first position decides the sites for the whole tuple.
		size := out[0].(frames.Series).Len()
		if size <= n {
			return out, nil
		}
		choices := rng.Perm(size)[:n]
		keep := pull.MaskFromIndices(choices, size)
		for i := range out {
			out[i] = out[i].(frames.Series).Mask(keep)
		}
		return out, nil
	}
}

// SchemaReader serves tuples of datasets from one hierarchical array file.
//
// The file's groups are not assumed to follow a fixed layout. Instead every
// group that directly holds datasets is an anchor, and iteration visits the
// anchors in sorted order, serving one tuple per anchor with values ordered
// by the schema key list. Anchors missing a schema key are skipped.
type SchemaReader struct {
	file      *hdf5.File
	schema    []string
	transform Transform
	strict    bool
	includeID bool

	anchors []string
}

// SchemaOption configures a SchemaReader.
type SchemaOption func(*SchemaReader)

// Strict skips anchors whose dataset keys are not exactly the schema. The
// default serves any anchor holding at least the schema keys.
func Strict() SchemaOption {
	return func(r *SchemaReader) { r.strict = true }
}

// IncludeID appends the anchor's group path as a final string position.
func IncludeID() SchemaOption {
	return func(r *SchemaReader) { r.includeID = true }
}

// WithTransform replaces the default FlushFloat64 transform.
func WithTransform(t Transform) SchemaOption {
	return func(r *SchemaReader) { r.transform = t }
}

// OpenSchema opens an HDF5 file read-only and indexes its anchors. The
// reader owns the file handle; Close releases it. Duplicate schema keys are
// a configuration error.
func OpenSchema(target string, schema []string, opts ...SchemaOption) (*SchemaReader, error) {
	seen := make(map[string]bool, len(schema))
	for _, key := range schema {
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate schema key %q", stream.ErrConfig, key)
		}
		seen[key] = true
	}
	f, err := hdf5.Open(target)
	if err != nil {
		return nil, err
	}
	r := &SchemaReader{
		file:      f,
		schema:    slices.Clone(schema),
		transform: FlushFloat64,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.anchors, err = dataAnchors(f); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// Close releases the underlying file.
func (r *SchemaReader) Close() error {
	return r.file.Close()
}

// Anchors reports the sorted group paths that directly hold datasets.
func (r *SchemaReader) Anchors() []string {
	return slices.Clone(r.anchors)
}

// Kinds reports the distinct dataset key-sets found under the anchors, each
// sorted. Useful for discovering what schema a file supports.
func (r *SchemaReader) Kinds() ([][]string, error) {
	seen := make(map[string]bool)
	var kinds [][]string
	for _, anchor := range r.anchors {
		keys, err := r.anchorKeys(anchor)
		if err != nil {
			return nil, err
		}
		slices.Sort(keys)
		joined := strings.Join(keys, "\x00")
		if !seen[joined] {
			seen[joined] = true
			kinds = append(kinds, keys)
		}
	}
	return kinds, nil
}

// Items serves one transformed tuple per schema-compatible anchor. The pass
// is restartable; each pass re-reads the datasets.
func (r *SchemaReader) Items() stream.Stage {
	return func(yield func(pull.Pull, error) bool) {
		for _, anchor := range r.anchors {
			p, ok, err := r.collect(anchor)
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok {
				continue
			}
			p, err = r.transform(p)
			if err != nil {
				yield(nil, err)
				return
			}
			if r.includeID {
				p = pull.Append(p, anchor)
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

// collect opens the anchor's schema datasets in schema order. ok is false
// when the anchor does not satisfy the schema.
func (r *SchemaReader) collect(anchor string) (pull.Pull, bool, error) {
	keys, err := r.anchorKeys(anchor)
	if err != nil {
		return nil, false, err
	}
	if r.strict && len(keys) != len(r.schema) {
		return nil, false, nil
	}
	for _, want := range r.schema {
		if !slices.Contains(keys, want) {
			return nil, false, nil
		}
	}
	g, err := r.file.OpenGroup(anchor)
	if err != nil {
		return nil, false, err
	}
	p := make(pull.Pull, len(r.schema))
	for i, key := range r.schema {
		ds, err := g.OpenDataset(key)
		if err != nil {
			return nil, false, fmt.Errorf("opening %s/%s: %w", anchor, key, err)
		}
		p[i] = ds
	}
	return p, true, nil
}

// anchorKeys lists the dataset members of an anchor group.
func (r *SchemaReader) anchorKeys(anchor string) ([]string, error) {
	g, err := r.file.OpenGroup(anchor)
	if err != nil {
		return nil, err
	}
	members, err := g.Members()
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, name := range members {
		if _, err := g.OpenDataset(name); err == nil {
			keys = append(keys, name)
		}
	}
	return keys, nil
}

// dataAnchors walks the file and records every group directly holding at
// least one dataset, sorted by path.
func dataAnchors(f *hdf5.File) ([]string, error) {
	record := make(map[string]bool)
	err := hdf5.Walk(f.Root(), func(p string, obj interface{}, err error) error {
		if err != nil {
			return nil
		}
		if _, ok := obj.(*hdf5.Dataset); ok {
			record[path.Dir(p)] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	anchors := make([]string, 0, len(record))
	for a := range record {
		anchors = append(anchors, a)
	}
	slices.Sort(anchors)
	return anchors, nil
}
