package audio

import "sync/atomic"

// Ring is a lock-free single producer, single consumer queue of samples.
// Write must only be called from one goroutine and Read from one other.
type Ring struct {
	buf  []float32
	mask uint64
	head atomic.Uint64 // next write
	tail atomic.Uint64 // next read
}

// NewRing creates a ring holding at least capacity samples, rounded up to a
// power of two.
func NewRing(capacity int) *Ring {
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &Ring{buf: make([]float32, size), mask: uint64(size - 1)}
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// Len returns the number of buffered samples.
func (r *Ring) Len() int {
	return int(r.head.Load() - r.tail.Load())
}

// Fill returns the buffered fraction in [0, 1].
func (r *Ring) Fill() float64 {
	return float64(r.Len()) / float64(len(r.buf))
}

// Write appends as many samples as fit and returns how many were written.
// Samples that do not fit are dropped.
func (r *Ring) Write(p []float32) int {
	head := r.head.Load()
	free := uint64(len(r.buf)) - (head - r.tail.Load())
	n := uint64(len(p))
	if n > free {
		n = free
	}
	for i := uint64(0); i < n; i++ {
		r.buf[(head+i)&r.mask] = p[i]
	}
	r.head.Store(head + n)
	return int(n)
}

// Read copies up to len(p) samples into p and returns how many were read.
func (r *Ring) Read(p []float32) int {
	tail := r.tail.Load()
	avail := r.head.Load() - tail
	n := uint64(len(p))
	if n > avail {
		n = avail
	}
	for i := uint64(0); i < n; i++ {
		p[i] = r.buf[(tail+i)&r.mask]
	}
	r.tail.Store(tail + n)
	return int(n)
}

// Discard drops everything buffered. It must be called from the consumer.
func (r *Ring) Discard() {
	r.tail.Store(r.head.Load())
}
