package store

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/ella918/thejoker/errs"
	"github.com/ella918/thejoker/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openInMemory(t *testing.T, opts ...Option) *Badger {
	t.Helper()

	b, err := OpenBadger(BadgerConfig{InMemory: true}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	return b
}

func TestBadger_RoundTrip(t *testing.T) {
	for _, enc := range []format.EncodingType{format.TypeRaw, format.TypeGorilla} {
		t.Run(enc.String(), func(t *testing.T) {
			b := openInMemory(t, WithEncoding(enc), WithCompression(format.CompressionS2))
			populate(t, b)
			verify(t, b)
		})
	}
}

func TestBadger_Persistent(t *testing.T) {
	dir := t.TempDir()

	b, err := OpenBadger(BadgerConfig{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	populate(t, b)
	require.NoError(t, b.Close())

	reopened, err := OpenBadger(BadgerConfig{Path: dir})
	require.NoError(t, err)
	defer reopened.Close()

	verify(t, reopened)
}

func TestBadger_NestedKeysNotListed(t *testing.T) {
	b := openInMemory(t)

	require.NoError(t, b.WriteDataset("top", NewDataset([]float64{1})))
	child, err := b.Group("child")
	require.NoError(t, err)
	require.NoError(t, child.WriteDataset("nested", NewDataset([]float64{2})))
	_, err = child.Group("grandchild")
	require.NoError(t, err)

	names, err := b.Datasets()
	require.NoError(t, err)
	assert.Equal(t, []string{"top"}, names)

	groups, err := b.Groups()
	require.NoError(t, err)
	assert.Equal(t, []string{"child"}, groups)

	childGroups, err := child.Groups()
	require.NoError(t, err)
	assert.Equal(t, []string{"grandchild"}, childGroups)

	assert.False(t, b.HasDataset("nested"))
	assert.True(t, child.HasDataset("nested"))
}

func TestBadger_Errors(t *testing.T) {
	b := openInMemory(t)

	_, err := b.ReadDataset("missing")
	require.ErrorIs(t, err, errs.ErrDatasetNotFound)

	_, err = b.Attr("missing")
	require.ErrorIs(t, err, errs.ErrAttrNotFound)

	require.ErrorIs(t, b.WriteDataset("a/b", NewDataset(nil)), errs.ErrInvalidDataset)

	_, err = b.Group("g")
	require.NoError(t, err)
	require.ErrorIs(t, b.WriteDataset("g", NewDataset([]float64{1})), errs.ErrInvalidDataset)

	_, err = OpenBadger(BadgerConfig{})
	require.Error(t, err)

	_, err = NewBadger(nil)
	require.Error(t, err)
}

func TestBadger_CorruptRecord(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	defer db.Close()

	b, err := NewBadger(db)
	require.NoError(t, err)
	require.NoError(t, b.WriteDataset("x", NewDataset([]float64{1, 2, 3})))

	err = db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("d:x"))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		val[len(val)-1] ^= 0xFF

		return txn.Set([]byte("d:x"), val)
	})
	require.NoError(t, err)

	_, err = b.ReadDataset("x")
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)

	// Close on a wrapped database leaves it open.
	require.NoError(t, b.Close())
	require.NoError(t, db.View(func(*badger.Txn) error { return nil }))
}

func TestBadger_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	b, err := OpenBadger(BadgerConfig{InMemory: true, Logger: logger}, WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, b.WriteDataset("x", NewDataset([]float64{1})))
	require.NoError(t, b.Close())

	assert.Contains(t, buf.String(), "stored dataset")
}

func TestMarshalAttr(t *testing.T) {
	for _, a := range []Attr{FloatAttr(-1.5), StringAttr(""), StringAttr("tcb")} {
		got, err := unmarshalAttr(marshalAttr(a))
		require.NoError(t, err)
		require.Equal(t, a, got)
	}

	_, err := unmarshalAttr(nil)
	require.ErrorIs(t, err, errs.ErrInvalidDataset)
	_, err = unmarshalAttr([]byte{byte(AttrFloat), 1})
	require.ErrorIs(t, err, errs.ErrInvalidDataset)
	_, err = unmarshalAttr([]byte{9})
	require.ErrorIs(t, err, errs.ErrInvalidDataset)
}
