// Package mem provides in-memory sources and sinks.
package mem

import (
	"bytes"
	"io"
	"sync"

	"github.com/pipelined/textpipe"
	"github.com/pipelined/textpipe/fitting"
)

// Sink collects its input stream in memory.
type Sink struct {
	*textpipe.Consumer
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewSource returns a producer which feeds s into the pipeline.
func NewSource(s string, options ...textpipe.Option) *textpipe.Producer {
	return textpipe.NewProducer(
		func(out *fitting.Writer) error {
			_, err := out.WriteString(s)
			return err
		},
		append([]textpipe.Option{textpipe.WithName("mem.Source")}, options...)...,
	)
}

// NewSourceBytes returns a producer which feeds b into the pipeline.
func NewSourceBytes(b []byte, options ...textpipe.Option) *textpipe.Producer {
	return textpipe.NewProducer(
		func(out *fitting.Writer) error {
			_, err := out.Write(b)
			return err
		},
		append([]textpipe.Option{textpipe.WithName("mem.Source")}, options...)...,
	)
}

// NewSink returns a sink fed by the source.
func NewSink(source textpipe.Source, options ...textpipe.Option) (*Sink, error) {
	s := &Sink{}
	c, err := textpipe.NewConsumer(source, s.consume,
		append([]textpipe.Option{textpipe.WithName("mem.Sink")}, options...)...,
	)
	if err != nil {
		return nil, err
	}
	s.Consumer = c
	return s, nil
}

func (s *Sink) consume(in *fitting.Reader) error {
	chunk := make([]byte, 512)
	for {
		n, err := in.Read(chunk)
		if n > 0 {
			s.mu.Lock()
			s.buf.Write(chunk[:n])
			s.mu.Unlock()
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Bytes returns a copy of collected data.
func (s *Sink) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.buf.Bytes()...)
}

// String returns collected data as a string.
func (s *Sink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// Len returns the number of collected bytes.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}
