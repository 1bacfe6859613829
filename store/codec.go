package store

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/ella918/thejoker/compress"
	"github.com/ella918/thejoker/encoding"
	"github.com/ella918/thejoker/endian"
	"github.com/ella918/thejoker/errs"
	"github.com/ella918/thejoker/format"
	"github.com/ella918/thejoker/internal/hash"
	"github.com/ella918/thejoker/internal/pool"
)

// sealFrame compresses payload and prepends a header.
func sealFrame(cfg *Config, record bool, count uint32, payload []byte) ([]byte, error) {
	codec, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return nil, err
	}
	compressed, err := codec.Compress(payload)
	if err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}

	h := newHeader(cfg, record)
	h.Count = count
	h.PayloadSize = uint64(len(compressed))
	h.RawSize = uint64(len(payload))
	h.Checksum = hash.Checksum(compressed)

	out := make([]byte, 0, HeaderSize+len(compressed))
	out = append(out, h.Bytes()...)

	return append(out, compressed...), nil
}

// openFrame verifies a frame and returns its header and decompressed payload.
func openFrame(data []byte) (Header, []byte, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return Header{}, nil, err
	}

	body := data[HeaderSize:]
	if uint64(len(body)) != h.PayloadSize {
		return Header{}, nil, fmt.Errorf("%w: payload is %d bytes, header says %d",
			errs.ErrInvalidHeaderSize, len(body), h.PayloadSize)
	}
	if !hash.Verify(body, h.Checksum) {
		return Header{}, nil, errs.ErrChecksumMismatch
	}

	codec, err := compress.GetCodec(h.Compression)
	if err != nil {
		return Header{}, nil, err
	}
	payload, err := codec.Decompress(body)
	if err != nil {
		return Header{}, nil, fmt.Errorf("decompress payload: %w", err)
	}
	if uint64(len(payload)) != h.RawSize {
		return Header{}, nil, fmt.Errorf("%w: payload decompressed to %d bytes, header says %d",
			errs.ErrInvalidDataset, len(payload), h.RawSize)
	}

	return h, payload, nil
}

// payloadWriter appends fixed-width numbers and length-prefixed strings to a
// pooled buffer. The first error is sticky.
type payloadWriter struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
	enc    format.EncodingType
	err    error
}

func newPayloadWriter(cfg *Config) *payloadWriter {
	return &payloadWriter{buf: pool.GetDatasetBuffer(), engine: cfg.engine, enc: cfg.encoding}
}

// release returns the buffer to the pool; bytes obtained from it are invalid afterwards.
func (w *payloadWriter) release() {
	pool.PutDatasetBuffer(w.buf)
	w.buf = nil
}

func (w *payloadWriter) u8(v uint8) {
	w.buf.B = append(w.buf.B, v)
}

func (w *payloadWriter) u32(v int) {
	if w.err == nil && (v < 0 || v > math.MaxUint32) {
		w.err = fmt.Errorf("%w: count %d out of range", errs.ErrInvalidDataset, v)
		return
	}
	w.buf.B = w.engine.AppendUint32(w.buf.B, uint32(v)) //nolint:gosec
}

func (w *payloadWriter) f64(v float64) {
	w.buf.B = w.engine.AppendUint64(w.buf.B, math.Float64bits(v))
}

func (w *payloadWriter) str(s string) {
	var err error
	w.buf.B, err = encoding.AppendVarString(w.buf.B, s)
	if err != nil && w.err == nil {
		w.err = err
	}
}

func (w *payloadWriter) attrs(attrs map[string]Attr) {
	w.u32(len(attrs))
	for _, name := range slices.Sorted(maps.Keys(attrs)) {
		a := attrs[name]
		w.str(name)
		w.u8(uint8(a.kind))
		switch a.kind {
		case AttrFloat:
			w.f64(a.num)
		case AttrString:
			w.str(a.text)
		}
	}
}

// dataset writes shape, string attributes and the encoded values.
func (w *payloadWriter) dataset(ds Dataset) {
	w.u8(uint8(len(ds.Shape))) //nolint:gosec
	for _, d := range ds.Shape {
		w.u32(d)
	}

	w.u32(len(ds.Attrs))
	for _, k := range slices.Sorted(maps.Keys(ds.Attrs)) {
		w.str(k)
		w.str(ds.Attrs[k])
	}

	var enc encoding.ColumnarEncoder[float64]
	if w.enc == format.TypeGorilla {
		enc = encoding.NewNumericGorillaEncoder()
	} else {
		enc = encoding.NewNumericRawEncoder(w.engine)
	}
	defer enc.Finish()

	enc.WriteSlice(ds.Values)
	w.u32(enc.Size())
	w.buf.MustWrite(enc.Bytes())
}

// maxDatasetValues bounds the element count accepted from a payload.
const maxDatasetValues = 1 << 40

// payloadReader consumes a payload written by payloadWriter.
type payloadReader struct {
	data   []byte
	off    int
	engine endian.EndianEngine
	dec    encoding.ColumnarDecoder[float64]
	str    encoding.VarStringDecoder
}

func newPayloadReader(h Header, data []byte) *payloadReader {
	r := &payloadReader{data: data, engine: h.Engine(), str: encoding.NewVarStringDecoder()}
	if h.Encoding == format.TypeGorilla {
		r.dec = encoding.NewNumericGorillaDecoder()
	} else {
		r.dec = encoding.NewNumericRawDecoder(r.engine)
	}

	return r
}

func (r *payloadReader) truncated() error {
	return fmt.Errorf("%w: payload truncated at offset %d", errs.ErrInvalidDataset, r.off)
}

func (r *payloadReader) take(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.data) {
		return nil, r.truncated()
	}
	b := r.data[r.off : r.off+n]
	r.off += n

	return b, nil
}

func (r *payloadReader) u8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

func (r *payloadReader) u32() (int, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}

	return int(r.engine.Uint32(b)), nil
}

func (r *payloadReader) f64() (float64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}

	return math.Float64frombits(r.engine.Uint64(b)), nil
}

func (r *payloadReader) text() (string, error) {
	s, next, err := r.str.Read(r.data, r.off)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errs.ErrInvalidDataset, err)
	}
	r.off = next

	return s, nil
}

func (r *payloadReader) attrs() (map[string]Attr, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}

	out := make(map[string]Attr, min(n, 64))
	for range n {
		name, err := r.text()
		if err != nil {
			return nil, err
		}
		kind, err := r.u8()
		if err != nil {
			return nil, err
		}

		switch AttrKind(kind) {
		case AttrFloat:
			v, err := r.f64()
			if err != nil {
				return nil, err
			}
			out[name] = FloatAttr(v)
		case AttrString:
			v, err := r.text()
			if err != nil {
				return nil, err
			}
			out[name] = StringAttr(v)
		default:
			return nil, fmt.Errorf("%w: unknown attribute kind %d", errs.ErrInvalidDataset, kind)
		}
	}

	return out, nil
}

func (r *payloadReader) dataset() (Dataset, error) {
	rank, err := r.u8()
	if err != nil {
		return Dataset{}, err
	}

	ds := Dataset{Shape: make([]int, rank)}
	size := 1
	for i := range ds.Shape {
		if ds.Shape[i], err = r.u32(); err != nil {
			return Dataset{}, err
		}
		size *= ds.Shape[i]
		if size > maxDatasetValues {
			return Dataset{}, fmt.Errorf("%w: shape %v too large", errs.ErrInvalidDataset, ds.Shape[:i+1])
		}
	}

	nAttrs, err := r.u32()
	if err != nil {
		return Dataset{}, err
	}
	if nAttrs > 0 {
		ds.Attrs = make(map[string]string, min(nAttrs, 64))
	}
	for range nAttrs {
		k, err := r.text()
		if err != nil {
			return Dataset{}, err
		}
		v, err := r.text()
		if err != nil {
			return Dataset{}, err
		}
		ds.Attrs[k] = v
	}

	n, err := r.u32()
	if err != nil {
		return Dataset{}, err
	}
	payload, err := r.take(n)
	if err != nil {
		return Dataset{}, err
	}

	// Every encoding spends at least one bit per value.
	if size > 8*len(payload) {
		return Dataset{}, fmt.Errorf("%w: %d values cannot fit in %d bytes", errs.ErrInvalidDataset, size, len(payload))
	}
	if size > 0 {
		values, ok := encoding.DecodeAll(r.dec, payload, size)
		if !ok {
			return Dataset{}, fmt.Errorf("%w: decoded %d of %d values", errs.ErrInvalidDataset, len(values), size)
		}
		ds.Values = values
	} else {
		ds.Values = []float64{}
	}

	return ds, nil
}

// encodeRecord serializes a single dataset as a frame.
func encodeRecord(cfg *Config, ds Dataset) ([]byte, error) {
	w := newPayloadWriter(cfg)
	defer w.release()

	w.dataset(ds)
	if w.err != nil {
		return nil, w.err
	}

	return sealFrame(cfg, true, 1, w.buf.Bytes())
}

// decodeRecord parses a frame produced by encodeRecord.
func decodeRecord(data []byte) (Dataset, error) {
	h, payload, err := openFrame(data)
	if err != nil {
		return Dataset{}, err
	}
	if !h.IsRecord() {
		return Dataset{}, fmt.Errorf("%w: frame is not a dataset record", errs.ErrInvalidHeaderFlags)
	}

	r := newPayloadReader(h, payload)
	ds, err := r.dataset()
	if err != nil {
		return Dataset{}, err
	}
	if r.off != len(payload) {
		return Dataset{}, fmt.Errorf("%w: %d trailing bytes", errs.ErrInvalidDataset, len(payload)-r.off)
	}

	return ds, nil
}
