// Package fitting provides the bounded byte pipe that connects two
// pipeline components executed in different goroutines.
//
// A pipe has exactly one writer end and one reader end. Writes block while
// the buffer is full, reads block while it is empty. The fixed capacity is
// the only flow control mechanism of the pipeline.
package fitting

import (
	"errors"
	"io"
	"sync"
)

// DefaultCapacity is used when pipe is created with non-positive capacity.
const DefaultCapacity = 1024

var (
	// ErrClosedPipe is returned when the end used for the operation was
	// already closed by its owner.
	ErrClosedPipe = errors.New("fitting: operation on closed pipe end")
	// ErrBrokenPipe is returned by writes after the reader end was closed.
	ErrBrokenPipe = errors.New("fitting: write on pipe with closed reader")
	// ErrWriterAttached is returned when the writer end is requested twice.
	ErrWriterAttached = errors.New("fitting: writer already attached")
	// ErrReaderAttached is returned when the reader end is requested twice.
	ErrReaderAttached = errors.New("fitting: reader already attached")
)

type (
	// Pipe is a single-writer single-reader byte buffer of fixed capacity.
	Pipe struct {
		mu       sync.Mutex
		readable *sync.Cond // signalled when data is written or writer closes
		writable *sync.Cond // signalled when data is read or reader closes

		buf  []byte
		head int // index of the next byte to read
		size int // number of buffered bytes

		writerClosed bool
		readerClosed bool

		writer *Writer
		reader *Reader
	}

	// Writer is the writing end of the pipe.
	Writer struct {
		p *Pipe
	}

	// Reader is the reading end of the pipe.
	Reader struct {
		p *Pipe
	}
)

// New returns a pipe with provided capacity.
func New(capacity int) *Pipe {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	p := &Pipe{
		buf: make([]byte, capacity),
	}
	p.readable = sync.NewCond(&p.mu)
	p.writable = sync.NewCond(&p.mu)
	return p
}

// Writer returns the writing end of the pipe. It can be obtained only once.
func (p *Pipe) Writer() (*Writer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer != nil {
		return nil, ErrWriterAttached
	}
	p.writer = &Writer{p: p}
	return p.writer, nil
}

// Reader returns the reading end of the pipe. It can be obtained only once.
func (p *Pipe) Reader() (*Reader, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reader != nil {
		return nil, ErrReaderAttached
	}
	p.reader = &Reader{p: p}
	return p.reader, nil
}

// Cap returns the capacity of the pipe.
func (p *Pipe) Cap() int {
	return len(p.buf)
}

// Len returns the number of buffered bytes.
func (p *Pipe) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

// Ends creates a pipe and returns both of its ends.
func Ends(capacity int) (*Writer, *Reader) {
	p := New(capacity)
	// ends of a fresh pipe are always available.
	w, _ := p.Writer()
	r, _ := p.Reader()
	return w, r
}

// put blocks until there is a free slot or one of the ends is closed.
// Must be called with the lock held.
func (p *Pipe) put(c byte) error {
	for p.size == len(p.buf) && !p.writerClosed && !p.readerClosed {
		p.writable.Wait()
	}
	switch {
	case p.writerClosed:
		return ErrClosedPipe
	case p.readerClosed:
		return ErrBrokenPipe
	}
	p.buf[(p.head+p.size)%len(p.buf)] = c
	p.size++
	p.readable.Signal()
	return nil
}

// wait blocks until there is data, the writer is closed or the reader is
// closed. Must be called with the lock held.
func (p *Pipe) wait() error {
	for p.size == 0 && !p.writerClosed && !p.readerClosed {
		p.readable.Wait()
	}
	switch {
	case p.readerClosed:
		return ErrClosedPipe
	case p.size == 0:
		return io.EOF
	}
	return nil
}

// take removes up to len(b) bytes from the buffer. Must be called with the
// lock held and non-empty buffer.
func (p *Pipe) take(b []byte) int {
	n := 0
	for n < len(b) && p.size > 0 {
		b[n] = p.buf[p.head]
		p.head = (p.head + 1) % len(p.buf)
		p.size--
		n++
	}
	p.writable.Signal()
	return n
}

// WriteByte writes a single byte. It blocks while the buffer is full.
func (w *Writer) WriteByte(c byte) error {
	w.p.mu.Lock()
	defer w.p.mu.Unlock()
	return w.p.put(c)
}

// Write writes all bytes of b, blocking as needed. It returns the number
// of bytes accepted by the pipe before an error occurred.
func (w *Writer) Write(b []byte) (int, error) {
	w.p.mu.Lock()
	defer w.p.mu.Unlock()
	for i := range b {
		if err := w.p.put(b[i]); err != nil {
			return i, err
		}
	}
	return len(b), nil
}

// WriteString writes s, see Write.
func (w *Writer) WriteString(s string) (int, error) {
	w.p.mu.Lock()
	defer w.p.mu.Unlock()
	for i := 0; i < len(s); i++ {
		if err := w.p.put(s[i]); err != nil {
			return i, err
		}
	}
	return len(s), nil
}

// Close closes the writer end. Buffered data remains available to the
// reader. Only the first call has effect.
func (w *Writer) Close() error {
	w.p.mu.Lock()
	defer w.p.mu.Unlock()
	if w.p.writerClosed {
		return nil
	}
	w.p.writerClosed = true
	w.p.readable.Broadcast()
	w.p.writable.Broadcast()
	return nil
}

// ReadByte reads a single byte. It blocks while the buffer is empty and
// the writer end is open. io.EOF is returned when writer is closed and all
// data is drained.
func (r *Reader) ReadByte() (byte, error) {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()
	if err := r.p.wait(); err != nil {
		return 0, err
	}
	var b [1]byte
	r.p.take(b[:])
	return b[0], nil
}

// Read reads available bytes into b. It blocks until at least one byte is
// available.
func (r *Reader) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	r.p.mu.Lock()
	defer r.p.mu.Unlock()
	if err := r.p.wait(); err != nil {
		return 0, err
	}
	return r.p.take(b), nil
}

// Close closes the reader end. Blocked and further writes fail. Only the
// first call has effect.
func (r *Reader) Close() error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()
	if r.p.readerClosed {
		return nil
	}
	r.p.readerClosed = true
	r.p.readable.Broadcast()
	r.p.writable.Broadcast()
	return nil
}
