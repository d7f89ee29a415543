// Package mock provides components with injected faults and controlled
// scheduling for pipeline tests.
package mock

import (
	"errors"
	"sync/atomic"

	"github.com/pipelined/textpipe"
	"github.com/pipelined/textpipe/fitting"
)

// ErrFault is returned by all injected faults.
var ErrFault = errors.New("mock: injected stream fault")

// Fail returns a process function which fails before reading any input.
func Fail() textpipe.ProcessFunc {
	return func(*fitting.Reader, *fitting.Writer) error {
		return ErrFault
	}
}

// FailAt wraps fn with fault which happens at the n-th call. Calls before
// it are passed to fn.
func FailAt(n int, fn textpipe.TransformFunc) textpipe.TransformFunc {
	var calls int64
	return func(line string) (string, error) {
		if atomic.AddInt64(&calls, 1) == int64(n) {
			return "", ErrFault
		}
		return fn(line)
	}
}

// Identity is a transform which returns the line unchanged.
func Identity(line string) (string, error) {
	return line, nil
}

// GatedSource returns a producer which doesn't write data until gate is
// closed.
func GatedSource(data string, gate <-chan struct{}, options ...textpipe.Option) *textpipe.Producer {
	return textpipe.NewProducer(func(out *fitting.Writer) error {
		<-gate
		_, err := out.WriteString(data)
		return err
	}, options...)
}

// Source returns a producer which writes data and then fails with
// ErrFault if fail is true.
func Source(data string, fail bool, options ...textpipe.Option) *textpipe.Producer {
	return textpipe.NewProducer(func(out *fitting.Writer) error {
		if _, err := out.WriteString(data); err != nil {
			return err
		}
		if fail {
			return ErrFault
		}
		return nil
	}, options...)
}
