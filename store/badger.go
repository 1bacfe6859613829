package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/ella918/thejoker/errs"
)

// Key prefixes. A group at path "a/b/" stores dataset x under "d:a/b/x".
const (
	datasetPrefix = "d:"
	attrPrefix    = "a:"
	groupPrefix   = "g:"
)

// BadgerConfig locates the database backing a Badger group.
type BadgerConfig struct {
	// Path is the database directory. Required unless InMemory is set.
	Path string
	// InMemory keeps everything in memory; nothing is written to disk.
	InMemory bool
	// SyncWrites fsyncs every commit.
	SyncWrites bool
	// Logger receives badger's internal log lines. Nil silences them.
	Logger *slog.Logger
	// NumVersionsToKeep defaults to 1.
	NumVersionsToKeep int
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Badger is a Group persisted in a badger key-value database. Each dataset
// is stored as one checksummed record frame.
type Badger struct {
	db     *badger.DB
	cfg    *Config
	path   string
	closer bool
}

var _ Group = (*Badger)(nil)

// OpenBadger opens (or creates) a database and returns its root group.
func OpenBadger(bc BadgerConfig, opts ...Option) (*Badger, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	if !bc.InMemory && bc.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var bopts badger.Options
	if bc.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(bc.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", bc.Path, err)
		}
		bopts = badger.DefaultOptions(bc.Path)
	}

	versions := bc.NumVersionsToKeep
	if versions <= 0 {
		versions = 1
	}
	bopts = bopts.WithSyncWrites(bc.SyncWrites).WithNumVersionsToKeep(versions)
	if bc.Logger != nil {
		bopts = bopts.WithLogger(&badgerLogger{logger: bc.Logger})
	} else {
		bopts = bopts.WithLogger(nil)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return &Badger{db: db, cfg: cfg, closer: true}, nil
}

// NewBadger wraps an already open database. Close leaves db open.
func NewBadger(db *badger.DB, opts ...Option) (*Badger, error) {
	if db == nil {
		return nil, errors.New("db must not be nil")
	}
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Badger{db: db, cfg: cfg}, nil
}

// Close closes the database if it was opened by OpenBadger. Child groups
// must not be used afterwards.
func (b *Badger) Close() error {
	if !b.closer {
		return nil
	}

	return b.db.Close()
}

func (b *Badger) key(prefix, name string) []byte {
	return []byte(prefix + b.path + name)
}

// WriteDataset stores ds under name, replacing any previous value.
func (b *Badger) WriteDataset(name string, ds Dataset) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("dataset %q: %w", name, err)
	}

	record, err := encodeRecord(b.cfg, ds)
	if err != nil {
		return fmt.Errorf("dataset %q: %w", name, err)
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		if exists(txn, b.key(groupPrefix, name)) {
			return fmt.Errorf("%w: %q is a group", errs.ErrInvalidDataset, name)
		}

		return txn.Set(b.key(datasetPrefix, name), record)
	})
	if err != nil {
		return err
	}

	b.cfg.Logger().Debug("stored dataset", "group", b.path, "name", name,
		"values", len(ds.Values), "bytes", len(record))

	return nil
}

// ReadDataset loads and verifies the named dataset.
func (b *Badger) ReadDataset(name string) (Dataset, error) {
	var record []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.key(datasetPrefix, name))
		if err != nil {
			return err
		}
		record, err = item.ValueCopy(nil)

		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Dataset{}, fmt.Errorf("%w: %q", errs.ErrDatasetNotFound, name)
	}
	if err != nil {
		return Dataset{}, fmt.Errorf("read dataset %q: %w", name, err)
	}

	ds, err := decodeRecord(record)
	if err != nil {
		return Dataset{}, fmt.Errorf("dataset %q: %w", name, err)
	}

	return ds, nil
}

func (b *Badger) HasDataset(name string) bool {
	return b.has(datasetPrefix, name)
}

func (b *Badger) Datasets() ([]string, error) {
	return b.list(datasetPrefix)
}

// SetAttr stores a group attribute.
func (b *Badger) SetAttr(name string, value Attr) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := value.validate(); err != nil {
		return fmt.Errorf("attribute %q: %w", name, err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.key(attrPrefix, name), marshalAttr(value))
	})
}

// Attr returns the named group attribute.
func (b *Badger) Attr(name string) (Attr, error) {
	var a Attr
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.key(attrPrefix, name))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			a, err = unmarshalAttr(val)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Attr{}, fmt.Errorf("%w: %q", errs.ErrAttrNotFound, name)
	}
	if err != nil {
		return Attr{}, fmt.Errorf("read attribute %q: %w", name, err)
	}

	return a, nil
}

func (b *Badger) HasAttr(name string) bool {
	return b.has(attrPrefix, name)
}

// Group returns the named child group, creating it if needed.
func (b *Badger) Group(name string) (Group, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		if exists(txn, b.key(datasetPrefix, name)) {
			return fmt.Errorf("%w: %q is a dataset", errs.ErrInvalidDataset, name)
		}
		if exists(txn, b.key(groupPrefix, name)) {
			return nil
		}

		return txn.Set(b.key(groupPrefix, name), nil)
	})
	if err != nil {
		return nil, err
	}

	return &Badger{db: b.db, cfg: b.cfg, path: b.path + name + pathSeparator}, nil
}

func (b *Badger) Groups() ([]string, error) {
	return b.list(groupPrefix)
}

func (b *Badger) has(prefix, name string) bool {
	var ok bool
	_ = b.db.View(func(txn *badger.Txn) error {
		ok = exists(txn, b.key(prefix, name))
		return nil
	})

	return ok
}

// list returns the direct children of this group under prefix, skipping
// keys that belong to nested groups.
func (b *Badger) list(prefix string) ([]string, error) {
	p := b.key(prefix, "")
	var names []string

	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: p})
		defer it.Close()

		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			rest := string(it.Item().Key()[len(p):])
			if strings.Contains(rest, pathSeparator) {
				continue
			}
			names = append(names, rest)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(names)

	return names, nil
}

func exists(txn *badger.Txn, key []byte) bool {
	_, err := txn.Get(key)
	return err == nil
}

func marshalAttr(a Attr) []byte {
	switch a.kind {
	case AttrFloat:
		out := []byte{byte(AttrFloat)}
		return binary.LittleEndian.AppendUint64(out, math.Float64bits(a.num))
	default:
		return append([]byte{byte(AttrString)}, a.text...)
	}
}

func unmarshalAttr(val []byte) (Attr, error) {
	if len(val) == 0 {
		return Attr{}, fmt.Errorf("%w: empty attribute value", errs.ErrInvalidDataset)
	}

	switch AttrKind(val[0]) {
	case AttrFloat:
		if len(val) != 9 {
			return Attr{}, fmt.Errorf("%w: float attribute is %d bytes", errs.ErrInvalidDataset, len(val))
		}
		return FloatAttr(math.Float64frombits(binary.LittleEndian.Uint64(val[1:]))), nil
	case AttrString:
		return StringAttr(string(val[1:])), nil
	default:
		return Attr{}, fmt.Errorf("%w: unknown attribute kind %d", errs.ErrInvalidDataset, val[0])
	}
}
