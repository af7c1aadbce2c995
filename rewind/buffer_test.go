package rewind

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
)

func newTestBuffer(t *testing.T, capacity int) *Buffer {
	t.Helper()
	b, err := NewBuffer(capacity)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

// syntheticFrames returns n mostly-similar frames, like successive core states.
func syntheticFrames(n, size int, seed int64) [][]byte {
	r := rand.New(rand.NewSource(seed))
	frames := make([][]byte, n)
	cur := make([]byte, size)
	r.Read(cur)
	for i := range frames {
		for j := 0; j < size/16; j++ {
			cur[r.Intn(size)] = byte(r.Intn(256))
		}
		frames[i] = append([]byte(nil), cur...)
	}
	return frames
}

// TestBuffer_Idempotence tests that popping returns every pushed frame in reverse
func TestBuffer_Idempotence(t *testing.T) {
	b := newTestBuffer(t, 1<<30)
	frames := syntheticFrames(20, 4096, 1)
	for _, f := range frames {
		if err := b.Push(f); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}
	for i := len(frames) - 1; i >= 0; i-- {
		got, ok, err := b.Pop()
		if err != nil || !ok {
			t.Fatalf("Pop %d: ok=%v err=%v", i, ok, err)
		}
		if !bytes.Equal(got, frames[i]) {
			t.Fatalf("frame %d differs after pop", i)
		}
	}
	if _, ok, _ := b.Pop(); ok {
		t.Error("Pop on empty buffer returned a frame")
	}
	if b.Size() != 0 {
		t.Errorf("Size = %d after draining", b.Size())
	}
}

// TestBuffer_PushCopies tests that callers may reuse their snapshot slice
func TestBuffer_PushCopies(t *testing.T) {
	b := newTestBuffer(t, 1<<20)
	s := []byte{1, 2, 3}
	b.Push(s)
	s[0] = 9
	got, _, _ := b.Pop()
	if got[0] != 1 {
		t.Error("buffer aliases the caller's slice")
	}
}

// TestBuffer_Capacity tests eviction keeps the two newest frames
func TestBuffer_Capacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
	}{
		{"zero", 0},
		{"tiny", 64},
		{"small", 4096},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuffer(t, tt.capacity)
			frames := syntheticFrames(50, 2048, 2)
			for _, f := range frames {
				b.Push(f)
				if b.Len() > 2 && b.Size() > b.Capacity() {
					t.Fatalf("Size %d exceeds capacity %d with %d frames", b.Size(), b.Capacity(), b.Len())
				}
			}
			if b.Len() < 2 {
				t.Fatalf("Len = %d, the two newest frames must survive", b.Len())
			}
			if b.Len() >= len(frames) {
				t.Fatalf("nothing evicted")
			}
			for i := 1; i <= 2; i++ {
				got, ok, err := b.Pop()
				if !ok || err != nil || !bytes.Equal(got, frames[len(frames)-i]) {
					t.Fatalf("newest frame %d not recoverable", i)
				}
			}
		})
	}
}

// TestBuffer_SizeAccounting tests that Size tracks the stored deltas
func TestBuffer_SizeAccounting(t *testing.T) {
	b := newTestBuffer(t, 1<<30)
	for _, f := range syntheticFrames(10, 1024, 3) {
		b.Push(f)
		sum := 0
		for _, fr := range b.frames[:len(b.frames)-1] {
			sum += len(fr.data)
		}
		if sum != b.Size() {
			t.Fatalf("Size = %d, stored deltas = %d", b.Size(), sum)
		}
	}
}

// TestBuffer_FrameSizeChanged tests that a resized snapshot restarts history
func TestBuffer_FrameSizeChanged(t *testing.T) {
	b := newTestBuffer(t, 1<<20)
	b.Push(make([]byte, 16))
	b.Push(make([]byte, 16))
	err := b.Push(make([]byte, 32))
	if !errors.Is(err, ErrFrameSizeChanged) {
		t.Fatalf("err = %v, want ErrFrameSizeChanged", err)
	}
	if b.Len() != 1 || b.Size() != 0 {
		t.Errorf("Len = %d, Size = %d after restart", b.Len(), b.Size())
	}
	if got, ok := b.Peek(); !ok || len(got) != 32 {
		t.Error("new snapshot not kept")
	}
}
