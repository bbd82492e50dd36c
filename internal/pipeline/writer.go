// internal/pipeline/writer.go
package pipeline

import (
	"fmt"
	"io"
)

// OrderedWriter writes chunks strictly in index order, holding back any
// chunk that arrives before its predecessors.
type OrderedWriter struct {
	w       io.Writer
	pending map[int][]byte
	next    int
	written int64
}

func NewOrderedWriter(w io.Writer) *OrderedWriter {
	return &OrderedWriter{w: w, pending: make(map[int][]byte)}
}

// Write buffers data for index and flushes every chunk that is now contiguous
// with the committed prefix.
func (o *OrderedWriter) Write(index int, data []byte) error {
	if index < o.next {
		return fmt.Errorf("chunk %d already written", index)
	}
	if _, dup := o.pending[index]; dup {
		return fmt.Errorf("chunk %d received twice", index)
	}
	o.pending[index] = data
	for {
		d, ok := o.pending[o.next]
		if !ok {
			return nil
		}
		n, err := o.w.Write(d)
		o.written += int64(n)
		if err != nil {
			return fmt.Errorf("write chunk %d: %w", o.next, err)
		}
		delete(o.pending, o.next)
		o.next++
	}
}

// WroteEverything reports whether no chunk is waiting on a missing index.
func (o *OrderedWriter) WroteEverything() bool { return len(o.pending) == 0 }

// Next is the index of the next chunk to be flushed.
func (o *OrderedWriter) Next() int { return o.next }

// Pending is the number of chunks held back.
func (o *OrderedWriter) Pending() int { return len(o.pending) }

// Written is the number of bytes flushed so far.
func (o *OrderedWriter) Written() int64 { return o.written }
