package textpipe

import (
	"fmt"

	"github.com/pipelined/textpipe/fitting"
)

type (
	// Source feeds a byte stream to a downstream sink. Feed allocates a new
	// pipe, passes its reader end to the sink and keeps the writer end.
	// Feed is expected to be called during construction of the sink, so
	// the topology is fixed once all components are created.
	Source interface {
		Feed(Sink) error
	}

	// Sink consumes a byte stream produced by an upstream source. Sinks
	// accept a single input.
	Sink interface {
		SetInput(*fitting.Reader) error
	}

	// Runner is a component executed in its own goroutine.
	Runner interface {
		// Validate checks that component is fully connected.
		Validate() error
		// Start launches the component goroutine.
		Start() error
		// Wait blocks until component is done.
		Wait()
	}
)

// input is the reader end owned by a sink.
type input struct {
	in *fitting.Reader
}

// SetInput implements Sink.
func (i *input) SetInput(in *fitting.Reader) error {
	if i.in != nil {
		return ErrInputConnected
	}
	i.in = in
	return nil
}

// feed allocates a new pipe and connects sink to it.
func feed(sink Sink, capacity int) (*fitting.Writer, error) {
	w, r := fitting.Ends(capacity)
	if err := sink.SetInput(r); err != nil {
		return nil, err
	}
	return w, nil
}

// connect makes source feed the sink under construction.
func connect(source Source, sink Sink, c *component) error {
	if source == nil {
		return fmt.Errorf("%v: nil source: %w", c, ErrUnconnected)
	}
	if err := source.Feed(sink); err != nil {
		return fmt.Errorf("%v: %w", c, err)
	}
	return nil
}
