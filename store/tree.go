package store

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/ella918/thejoker/errs"
	"github.com/ella918/thejoker/internal/options"
)

// maxTreeDepth bounds group nesting when decoding untrusted files.
const maxTreeDepth = 64

type node struct {
	datasets map[string]Dataset
	attrs    map[string]Attr
	children map[string]*node
}

func newNode() *node {
	return &node{
		datasets: make(map[string]Dataset),
		attrs:    make(map[string]Attr),
		children: make(map[string]*node),
	}
}

// Tree is an in-memory Group. Child groups returned by Group share the
// tree's lock and configuration.
type Tree struct {
	cfg *Config
	mu  *sync.RWMutex
	n   *node
}

var _ Group = (*Tree)(nil)

// NewTree creates an empty tree.
func NewTree(opts ...Option) (*Tree, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Tree{cfg: cfg, mu: &sync.RWMutex{}, n: newNode()}, nil
}

// WriteDataset stores a copy of ds under name.
func (t *Tree) WriteDataset(name string, ds Dataset) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("dataset %q: %w", name, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.n.children[name]; ok {
		return fmt.Errorf("%w: %q is a group", errs.ErrInvalidDataset, name)
	}
	t.n.datasets[name] = ds.Clone()

	return nil
}

// ReadDataset returns a copy of the named dataset.
func (t *Tree) ReadDataset(name string) (Dataset, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ds, ok := t.n.datasets[name]
	if !ok {
		return Dataset{}, fmt.Errorf("%w: %q", errs.ErrDatasetNotFound, name)
	}

	return ds.Clone(), nil
}

// HasDataset reports whether the named dataset exists.
func (t *Tree) HasDataset(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.n.datasets[name]

	return ok
}

// Datasets returns the dataset names in lexical order.
func (t *Tree) Datasets() ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return slices.Sorted(maps.Keys(t.n.datasets)), nil
}

// SetAttr stores a group attribute.
func (t *Tree) SetAttr(name string, value Attr) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := value.validate(); err != nil {
		return fmt.Errorf("attribute %q: %w", name, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.n.attrs[name] = value

	return nil
}

// Attr returns the named attribute.
func (t *Tree) Attr(name string) (Attr, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	a, ok := t.n.attrs[name]
	if !ok {
		return Attr{}, fmt.Errorf("%w: %q", errs.ErrAttrNotFound, name)
	}

	return a, nil
}

// HasAttr reports whether the named attribute exists.
func (t *Tree) HasAttr(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.n.attrs[name]

	return ok
}

// Group returns the named child group, creating it if needed.
func (t *Tree) Group(name string) (Group, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.n.datasets[name]; ok {
		return nil, fmt.Errorf("%w: %q is a dataset", errs.ErrInvalidDataset, name)
	}
	child, ok := t.n.children[name]
	if !ok {
		child = newNode()
		t.n.children[name] = child
	}

	return &Tree{cfg: t.cfg, mu: t.mu, n: child}, nil
}

// Groups returns the child group names in lexical order.
func (t *Tree) Groups() ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return slices.Sorted(maps.Keys(t.n.children)), nil
}

// Encode writes the tree rooted at t as a single frame.
func (t *Tree) Encode(w io.Writer) error {
	t.mu.RLock()
	pw := newPayloadWriter(t.cfg)
	count := writeNode(pw, t.n)
	t.mu.RUnlock()
	defer pw.release()

	if pw.err != nil {
		return pw.err
	}

	frame, err := sealFrame(t.cfg, false, uint32(count), pw.buf.Bytes()) //nolint:gosec
	if err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write tree: %w", err)
	}

	t.cfg.Logger().Debug("encoded store tree", "groups", count, "bytes", len(frame),
		"encoding", t.cfg.encoding, "compression", t.cfg.compression)

	return nil
}

// WriteFile encodes the tree to the named file.
func (t *Tree) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := t.Encode(&buf); err != nil {
		return err
	}

	return os.WriteFile(path, buf.Bytes(), 0o644) //nolint:gosec
}

// Decode reads a tree written by Encode. The tree keeps the file's encoding,
// compression and byte order unless overridden by opts.
func Decode(r io.Reader, opts ...Option) (*Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read tree: %w", err)
	}

	h, payload, err := openFrame(data)
	if err != nil {
		return nil, err
	}
	if h.IsRecord() {
		return nil, fmt.Errorf("%w: frame holds a single dataset record", errs.ErrInvalidHeaderFlags)
	}

	cfg := &Config{encoding: h.Encoding, compression: h.Compression, engine: h.Engine()}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	pr := newPayloadReader(h, payload)
	root, count, err := readNode(pr, 0)
	if err != nil {
		return nil, err
	}
	if pr.off != len(payload) {
		return nil, fmt.Errorf("%w: %d trailing bytes", errs.ErrInvalidDataset, len(payload)-pr.off)
	}
	if uint32(count) != h.Count { //nolint:gosec
		return nil, fmt.Errorf("%w: decoded %d groups, header says %d", errs.ErrInvalidDataset, count, h.Count)
	}

	return &Tree{cfg: cfg, mu: &sync.RWMutex{}, n: root}, nil
}

// ReadFile decodes the tree stored in the named file.
func ReadFile(path string, opts ...Option) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f, opts...)
}

func writeNode(w *payloadWriter, n *node) int {
	w.attrs(n.attrs)

	w.u32(len(n.datasets))
	for _, name := range slices.Sorted(maps.Keys(n.datasets)) {
		w.str(name)
		w.dataset(n.datasets[name])
	}

	count := 1
	w.u32(len(n.children))
	for _, name := range slices.Sorted(maps.Keys(n.children)) {
		w.str(name)
		count += writeNode(w, n.children[name])
	}

	return count
}

func readNode(r *payloadReader, depth int) (*node, int, error) {
	if depth > maxTreeDepth {
		return nil, 0, fmt.Errorf("%w: groups nested deeper than %d", errs.ErrInvalidDataset, maxTreeDepth)
	}

	n := newNode()
	var err error
	if n.attrs, err = r.attrs(); err != nil {
		return nil, 0, err
	}

	nDatasets, err := r.u32()
	if err != nil {
		return nil, 0, err
	}
	for range nDatasets {
		name, err := r.text()
		if err != nil {
			return nil, 0, err
		}
		if n.datasets[name], err = r.dataset(); err != nil {
			return nil, 0, fmt.Errorf("dataset %q: %w", name, err)
		}
	}

	nChildren, err := r.u32()
	if err != nil {
		return nil, 0, err
	}
	count := 1
	for range nChildren {
		name, err := r.text()
		if err != nil {
			return nil, 0, err
		}
		child, c, err := readNode(r, depth+1)
		if err != nil {
			return nil, 0, err
		}
		n.children[name] = child
		count += c
	}

	return n, count, nil
}
