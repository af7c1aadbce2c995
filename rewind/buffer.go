// Package rewind keeps a byte-bounded history of serialized core states.
// Every frame except the newest is stored as a compressed delta against
// its successor.
package rewind

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

var (
	// ErrFrameSizeChanged is returned by Push when a snapshot differs in
	// size from the previous one. The history is dropped and restarted
	// from the new snapshot.
	ErrFrameSizeChanged = errors.New("rewind frame size changed")
	// ErrCorrupt is returned when a stored delta fails to decode.
	ErrCorrupt = errors.New("rewind frame corrupt")
)

type frame struct {
	// data is raw for the newest frame and a compressed delta otherwise.
	data []byte
	size int
}

// Buffer is the rewind history. It is not safe for concurrent use.
type Buffer struct {
	capacity int
	frames   []frame
	curSize  int

	enc *zstd.Encoder
	dec *zstd.Decoder
	tmp []byte
}

// NewBuffer creates a buffer holding roughly capacity bytes of deltas.
// The two newest frames are always kept even beyond capacity.
func NewBuffer(capacity int) (*Buffer, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedFastest),
		zstd.WithEncoderConcurrency(1),
		zstd.WithZeroFrames(true))
	if err != nil {
		return nil, fmt.Errorf("rewind encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("rewind decoder: %w", err)
	}
	return &Buffer{capacity: capacity, enc: enc, dec: dec}, nil
}

// Len returns the number of stored frames.
func (b *Buffer) Len() int { return len(b.frames) }

// Size returns the total compressed size of all frames but the newest.
func (b *Buffer) Size() int { return b.curSize }

// Capacity returns the configured byte capacity.
func (b *Buffer) Capacity() int { return b.capacity }

// Push appends a snapshot. The buffer keeps its own copy.
func (b *Buffer) Push(snapshot []byte) error {
	cur := append([]byte(nil), snapshot...)
	if n := len(b.frames); n > 0 {
		last := &b.frames[n-1]
		if prev := len(last.data); prev != len(cur) {
			b.Clear()
			b.frames = append(b.frames, frame{data: cur, size: len(cur)})
			return fmt.Errorf("%w: %d to %d bytes", ErrFrameSizeChanged, prev, len(cur))
		}
		b.tmp = subtract(b.tmp[:0], last.data, cur)
		last.data = b.enc.EncodeAll(b.tmp, nil)
		b.curSize += len(last.data)
	}
	b.frames = append(b.frames, frame{data: cur, size: len(cur)})

	for len(b.frames) > 2 && b.curSize > b.capacity {
		b.curSize -= len(b.frames[0].data)
		b.frames[0] = frame{}
		b.frames = b.frames[1:]
	}
	return nil
}

// Pop removes and returns the newest snapshot. ok is false when the
// buffer is empty.
func (b *Buffer) Pop() (snapshot []byte, ok bool, err error) {
	n := len(b.frames)
	if n == 0 {
		return nil, false, nil
	}
	last := b.frames[n-1].data
	if n >= 2 {
		prev := &b.frames[n-2]
		delta, err := b.dec.DecodeAll(prev.data, b.tmp[:0])
		if err != nil || len(delta) != len(last) {
			b.Clear()
			return nil, false, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		b.tmp = delta
		b.curSize -= len(prev.data)
		prev.data = add(make([]byte, len(last)), delta, last)
	}
	b.frames[n-1] = frame{}
	b.frames = b.frames[:n-1]
	return last, true, nil
}

// Peek returns the newest snapshot without removing it.
func (b *Buffer) Peek() ([]byte, bool) {
	if len(b.frames) == 0 {
		return nil, false
	}
	return b.frames[len(b.frames)-1].data, true
}

// Clear drops every frame.
func (b *Buffer) Clear() {
	clear(b.frames)
	b.frames = b.frames[:0]
	b.curSize = 0
}

// Close releases the codecs.
func (b *Buffer) Close() error {
	b.Clear()
	b.dec.Close()
	return b.enc.Close()
}

// subtract appends a-b byte-wise to dst.
func subtract(dst, a, b []byte) []byte {
	for i := range a {
		dst = append(dst, a[i]-b[i])
	}
	return dst
}

// add writes delta+base byte-wise into dst.
func add(dst, delta, base []byte) []byte {
	for i := range delta {
		dst[i] = delta[i] + base[i]
	}
	return dst
}
