package textpipe

import (
	"bufio"
	"io"
	"strings"

	"github.com/pipelined/textpipe/fitting"
	"github.com/pipelined/textpipe/metric"
)

// Terminator identifies how a line of text was terminated.
type Terminator int

const (
	// None is used for the last line of the stream without terminator.
	None Terminator = iota
	// LF is a single line feed.
	LF
	// CRLF is a carriage return followed by line feed.
	CRLF
)

type (
	// Line is a line of text and its original terminator.
	Line struct {
		Text       string
		Terminator Terminator
	}

	// TransformFunc returns replacement for a line of text. The text never
	// includes the terminator. Returned error is treated as a stream fault.
	TransformFunc func(line string) (string, error)

	// LineReader reads successive lines from a byte stream up to CRLF, LF or
	// the end of stream.
	LineReader struct {
		r    *bufio.Reader
		line Line
		err  error
		text strings.Builder
	}
)

// String returns the bytes of terminator.
func (t Terminator) String() string {
	switch t {
	case LF:
		return "\n"
	case CRLF:
		return "\r\n"
	}
	return ""
}

// NewLineReader returns a line reader for provided input.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{
		r: bufio.NewReader(r),
	}
}

// Next advances to the next line. It returns false at the end of stream
// or if error occurred.
func (lr *LineReader) Next() bool {
	if lr.err != nil {
		return false
	}
	lr.text.Reset()
	for {
		c, err := lr.r.ReadByte()
		if err != nil {
			lr.err = err
			// last line without terminator.
			if err == io.EOF && lr.text.Len() > 0 {
				lr.line = Line{Text: lr.text.String(), Terminator: None}
				return true
			}
			return false
		}
		switch c {
		case '\n':
			lr.line = Line{Text: lr.text.String(), Terminator: LF}
			return true
		case '\r':
			next, err := lr.r.ReadByte()
			if err == nil && next == '\n' {
				lr.line = Line{Text: lr.text.String(), Terminator: CRLF}
				return true
			}
			if err == nil {
				// next byte could start a terminator itself.
				lr.r.UnreadByte()
			}
		}
		lr.text.WriteByte(c)
	}
}

// Line returns the most recent line read by Next.
func (lr *LineReader) Line() Line {
	return lr.line
}

// Err returns the first error other than io.EOF.
func (lr *LineReader) Err() error {
	if lr.err == io.EOF {
		return nil
	}
	return lr.err
}

// LineProcessor returns a process function which transforms input line by
// line. Every replacement is followed by terminator of the original line.
func LineProcessor(fn TransformFunc) ProcessFunc {
	return func(in *fitting.Reader, out *fitting.Writer) error {
		lines := NewLineReader(in)
		for lines.Next() {
			line := lines.Line()
			text, err := fn(line.Text)
			if err != nil {
				return err
			}
			if _, err := out.WriteString(text); err != nil {
				return err
			}
			if _, err := out.WriteString(line.Terminator.String()); err != nil {
				return err
			}
		}
		return lines.Err()
	}
}

// NewLineStage creates a stage which transforms its input line by line.
// Processed lines are metered under the stage name.
func NewLineStage(source Source, fn TransformFunc, options ...Option) (*Stage, error) {
	var reset metric.ResetFunc
	s, err := NewStage(source, func(in *fitting.Reader, out *fitting.Writer) error {
		measure := reset()
		return LineProcessor(func(line string) (string, error) {
			measure(int64(len(line)))
			return fn(line)
		})(in, out)
	}, append([]Option{WithName("line")}, options...)...)
	if err != nil {
		return nil, err
	}
	reset = metric.Meter(s.Name())
	return s, nil
}
