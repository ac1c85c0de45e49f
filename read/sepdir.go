package read

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"flume/pull"
	"flume/stream"
)

// wildcard marks the tag position in a DirReader pattern. The same string is
// substituted back when building filenames, so the pattern doubles as a
// format template.
const wildcard = "{}"

// DirReader pairs files from several directories by a tag embedded in their
// names.
//
// Each pattern holds the wildcard exactly once; the text matched by the
// wildcard is the file's tag. Files sharing a tag across all patterns belong
// together, and iteration serves one tuple of loaded contents per tag, in
// sorted tag order.
type DirReader struct {
	patterns  []string
	tags      []string
	loader    Loader
	includeID bool
}

type dirConfig struct {
	parent    string
	loader    Loader
	natural   bool
	includeID bool
}

// DirOption configures a DirReader.
type DirOption func(*dirConfig)

// WithParent prepends a directory to every pattern.
func WithParent(dir string) DirOption {
	return func(c *dirConfig) { c.parent = dir }
}

// WithLoader replaces the default loader (the first dataset of an HDF5 file).
func WithLoader(l Loader) DirOption {
	return func(c *dirConfig) { c.loader = l }
}

// WithNaturalSort orders tags so embedded numbers compare numerically:
// "h_9" before "h_10". The default is plain lexical order.
func WithNaturalSort() DirOption {
	return func(c *dirConfig) { c.natural = true }
}

// WithFilenameID appends the tuple of source filenames as a final position.
func WithFilenameID() DirOption {
	return func(c *dirConfig) { c.includeID = true }
}

// NewDir matches the patterns against the filesystem and verifies that every
// pattern implies the same tag set. Zero patterns, a pattern without exactly
// one wildcard, or disagreeing tag sets are configuration errors.
func NewDir(patterns []string, opts ...DirOption) (*DirReader, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: at least one pattern required", stream.ErrConfig)
	}
	cfg := dirConfig{loader: SeriesLoader[float64]("")}
	for _, opt := range opts {
		opt(&cfg)
	}
	full := make([]string, len(patterns))
	for i, p := range patterns {
		if cfg.parent != "" {
			p = filepath.Join(cfg.parent, p)
		}
		full[i] = p
	}

	var tags []string
	for i, p := range full {
		found, err := filenameTags(p, cfg.natural)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			tags = found
		} else if !slices.Equal(tags, found) {
			return nil, fmt.Errorf("%w: patterns %q and %q imply different tag sets", stream.ErrConfig, full[0], p)
		}
	}
	return &DirReader{
		patterns:  full,
		tags:      tags,
		loader:    cfg.loader,
		includeID: cfg.includeID,
	}, nil
}

// Tags reports the matched tags in serving order.
func (r *DirReader) Tags() []string {
	return slices.Clone(r.tags)
}

// Items loads and serves one tuple per tag. The pass is restartable; files
// are re-read on every pass.
func (r *DirReader) Items() stream.Stage {
	return func(yield func(pull.Pull, error) bool) {
		for _, tag := range r.tags {
			filenames := make([]string, len(r.patterns))
			p := make(pull.Pull, len(r.patterns))
			for i, pattern := range r.patterns {
				name := strings.Replace(pattern, wildcard, tag, 1)
				filenames[i] = name
				data, err := r.loader(name)
				if err != nil {
					yield(nil, fmt.Errorf("loading %s: %w", name, err))
					return
				}
				p[i] = data
			}
			if r.includeID {
				p = pull.Append(p, filenames)
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

// filenameTags extracts the tags of the files matching one pattern.
func filenameTags(pattern string, natural bool) ([]string, error) {
	pieces := strings.Split(pattern, wildcard)
	switch {
	case len(pieces) == 1:
		return nil, fmt.Errorf("%w: no %s wildcard in %q", stream.ErrConfig, wildcard, pattern)
	case len(pieces) > 2:
		return nil, fmt.Errorf("%w: more than one %s wildcard in %q", stream.ErrConfig, wildcard, pattern)
	}
	matches, err := filepath.Glob(globEscape(pieces[0]) + "*" + globEscape(pieces[1]))
	if err != nil {
		return nil, fmt.Errorf("%w: bad pattern %q", stream.ErrConfig, pattern)
	}
	re := regexp.MustCompile("^" + regexp.QuoteMeta(pieces[0]) + "(.*)" + regexp.QuoteMeta(pieces[1]) + "$")
	tags := make([]string, 0, len(matches))
	for _, name := range matches {
		m := re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		tags = append(tags, m[1])
	}
	if natural {
		slices.SortFunc(tags, naturalCompare)
	} else {
		slices.Sort(tags)
	}
	return tags, nil
}

func globEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// naturalCompare orders strings chunk-wise, comparing runs of digits by
// numeric value and everything else byte-wise.
func naturalCompare(a, b string) int {
	for a != "" && b != "" {
		ca, ra := chunk(a)
		cb, rb := chunk(b)
		var c int
		if isDigits(ca) && isDigits(cb) {
			c = compareNumeric(ca, cb)
		} else {
			c = strings.Compare(ca, cb)
		}
		if c != 0 {
			return c
		}
		a, b = ra, rb
	}
	return len(a) - len(b)
}

// chunk splits off the leading run of digits or non-digits.
func chunk(s string) (head, tail string) {
	digit := s[0] >= '0' && s[0] <= '9'
	for i := 1; i < len(s); i++ {
		if (s[i] >= '0' && s[i] <= '9') != digit {
			return s[:i], s[i:]
		}
	}
	return s, ""
}

func isDigits(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

// compareNumeric compares digit runs of any length without overflow.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}
