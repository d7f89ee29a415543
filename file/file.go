// Package file provides sources reading from files and readers and sinks
// writing to files and writers.
package file

import (
	"bufio"
	"io"
	"os"

	"github.com/pipelined/textpipe"
	"github.com/pipelined/textpipe/fitting"
)

// Sink writes its input stream to the writer.
type Sink struct {
	*textpipe.Consumer
	path string
}

// Open opens the file and returns a source which feeds its content. The
// file is closed when the source is done.
func Open(path string, options ...textpipe.Option) (*textpipe.Producer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return textpipe.NewProducer(
		func(out *fitting.Writer) error {
			defer f.Close()
			_, err := io.Copy(out, f)
			return err
		},
		append([]textpipe.Option{textpipe.WithName("file.Source")}, options...)...,
	), nil
}

// NewSource returns a source which feeds everything read from r.
func NewSource(r io.Reader, options ...textpipe.Option) *textpipe.Producer {
	return textpipe.NewProducer(
		func(out *fitting.Writer) error {
			_, err := io.Copy(out, r)
			return err
		},
		append([]textpipe.Option{textpipe.WithName("file.Source")}, options...)...,
	)
}

// Create creates or truncates the file and returns a sink which writes
// the input stream to it. The file is closed when the sink is done.
func Create(path string, source textpipe.Source, options ...textpipe.Option) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	s, err := newSink(f, f, source, options)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	s.path = path
	return s, nil
}

// NewSink returns a sink which writes the input stream to w. The writer
// is not closed.
func NewSink(w io.Writer, source textpipe.Source, options ...textpipe.Option) (*Sink, error) {
	return newSink(w, nil, source, options)
}

func newSink(w io.Writer, c io.Closer, source textpipe.Source, options []textpipe.Option) (*Sink, error) {
	consumer, err := textpipe.NewConsumer(source, func(in *fitting.Reader) error {
		if c != nil {
			defer c.Close()
		}
		bw := bufio.NewWriter(w)
		if _, err := io.Copy(bw, in); err != nil {
			return err
		}
		return bw.Flush()
	}, append([]textpipe.Option{textpipe.WithName("file.Sink")}, options...)...)
	if err != nil {
		return nil, err
	}
	return &Sink{Consumer: consumer}, nil
}

// Path returns the path of created file. It's empty for sinks created
// with NewSink.
func (s *Sink) Path() string {
	return s.path
}
