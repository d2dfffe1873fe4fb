// Package ring provides a fixed-capacity buffer that evicts its oldest
// element on overflow.
package ring

// Buffer is not safe for concurrent use.
type Buffer[T any] struct {
	buf   []T
	start int
	count int
}

// New returns an empty Buffer. A capacity below 1 is raised to 1.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{buf: make([]T, capacity)}
}

// Push appends v, overwriting the oldest element when full.
func (b *Buffer[T]) Push(v T) {
	size := len(b.buf)
	if b.count < size {
		b.buf[(b.start+b.count)%size] = v
		b.count++
		return
	}
	b.buf[b.start] = v
	b.start = (b.start + 1) % size
}

// Last copies up to n elements, newest first. It returns nil when n < 1 or
// the buffer is empty.
func (b *Buffer[T]) Last(n int) []T {
	if n <= 0 || b.count == 0 {
		return nil
	}
	n = min(n, b.count)
	out := make([]T, n)
	newest := b.start + b.count - 1
	for i := range out {
		out[i] = b.buf[(newest-i)%len(b.buf)]
	}
	return out
}

func (b *Buffer[T]) Len() int { return b.count }

func (b *Buffer[T]) Cap() int { return len(b.buf) }
