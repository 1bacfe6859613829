// Package pool recycles the byte buffers used by the column encoders and the
// store frame writer.
package pool

import (
	"slices"
	"sync"
)

const (
	// DatasetBufferDefaultSize is the initial capacity of a pooled buffer,
	// enough for about two thousand raw float64 samples.
	DatasetBufferDefaultSize = 16 << 10
	// DatasetBufferMaxThreshold is the largest capacity returned to the pool.
	// Buffers that grew past it are left to the garbage collector.
	DatasetBufferMaxThreshold = 8 << 20
)

// ByteBuffer is an append-only byte slice. Callers append to B directly or
// through the helper methods.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer creates an empty buffer with the given capacity.
func NewByteBuffer(capacity int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, capacity)}
}

// Bytes returns the buffer contents.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Len returns the number of bytes written.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Reset empties the buffer and keeps its capacity.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Grow ensures n more bytes can be appended without reallocating. Growth is
// at least a quarter of the current capacity so repeated small writes stay
// amortized.
func (bb *ByteBuffer) Grow(n int) {
	if cap(bb.B)-len(bb.B) >= n {
		return
	}
	bb.B = slices.Grow(bb.B, max(n, cap(bb.B)/4))
}

// MustWrite appends data.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// ByteBufferPool hands out buffers of a default capacity and drops those that
// grew beyond a threshold.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool. A maxThreshold of 0 keeps every buffer.
func NewByteBufferPool(defaultSize, maxThreshold int) *ByteBufferPool {
	p := &ByteBufferPool{maxThreshold: maxThreshold}
	p.pool.New = func() any { return NewByteBuffer(defaultSize) }

	return p
}

// Get returns an empty buffer.
func (p *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	return bb
}

// Put resets bb and returns it to the pool. Nil and oversized buffers are dropped.
func (p *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil || (p.maxThreshold > 0 && cap(bb.B) > p.maxThreshold) {
		return
	}
	bb.Reset()
	p.pool.Put(bb)
}

var datasetPool = NewByteBufferPool(DatasetBufferDefaultSize, DatasetBufferMaxThreshold)

// GetDatasetBuffer takes a buffer from the shared dataset pool.
func GetDatasetBuffer() *ByteBuffer {
	return datasetPool.Get()
}

// PutDatasetBuffer returns a buffer taken with GetDatasetBuffer.
func PutDatasetBuffer(bb *ByteBuffer) {
	datasetPool.Put(bb)
}
