package textpipe

import (
	"fmt"
	"sync"

	"github.com/pipelined/textpipe/fitting"
)

type (
	// ProcessFunc reads the stage input until io.EOF and writes transformed
	// stream to the output. Any returned error is treated as a stream fault.
	ProcessFunc func(in *fitting.Reader, out *fitting.Writer) error

	// Stage is a pipeline component which transforms an input byte stream
	// into an output stream. It implements Sink, so it can be fed by an
	// upstream source, and Source, so it can feed a downstream sink.
	Stage struct {
		component
		input
		worker

		mu      sync.Mutex
		outputs []*fitting.Writer
		fanOut  int
		process func(*fitting.Reader, []*fitting.Writer) error
	}
)

// NewStage creates a stage fed by the source. The stage output must be
// connected by constructing a downstream sink.
func NewStage(source Source, fn ProcessFunc, options ...Option) (*Stage, error) {
	return newStage("stage", source, 1, func(in *fitting.Reader, outs []*fitting.Writer) error {
		return fn(in, outs[0])
	}, options)
}

func newStage(kind string, source Source, fanOut int, process func(*fitting.Reader, []*fitting.Writer) error, options []Option) (*Stage, error) {
	s := &Stage{
		component: newComponent(kind, options),
		fanOut:    fanOut,
		outputs:   make([]*fitting.Writer, 0, fanOut),
		worker:    newWorker(),
		process:   process,
	}
	if err := connect(source, s, &s.component); err != nil {
		return nil, err
	}
	return s, nil
}

// Feed implements Source. Ordinary stages accept a single sink, tee
// accepts two.
func (s *Stage) Feed(sink Sink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.outputs) == s.fanOut {
		return ErrOutputConnected
	}
	w, err := feed(sink, s.capacity)
	if err != nil {
		return err
	}
	s.outputs = append(s.outputs, w)
	return nil
}

// Validate returns error if the stage input or any of its outputs is not
// connected.
func (s *Stage) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validate()
}

func (s *Stage) validate() error {
	if s.in == nil || len(s.outputs) == 0 {
		return fmt.Errorf("%v: %w", s, ErrUnconnected)
	}
	if len(s.outputs) < s.fanOut {
		return fmt.Errorf("%v: %w", s, ErrUnconnectedTee)
	}
	return nil
}

// Start launches the stage goroutine. Misconfigured stage is never
// started.
func (s *Stage) Start() error {
	return s.launch(&s.component, s.Validate, s.run)
}

// run executes the process and releases pipe ends on every exit path.
// Outputs are closed first to let downstream readers observe the end of
// stream. On failure the input is closed as well, because upstream writer
// could be blocked on a full pipe nobody reads anymore.
func (s *Stage) run() {
	s.log.Debug("started")
	err := s.process(s.in, s.outputs)
	if err != nil {
		s.log.WithError(err).Debug("stream fault")
	}
	for _, out := range s.outputs {
		if cerr := out.Close(); cerr != nil && err == nil {
			s.log.WithError(cerr).Warn("close output")
		}
	}
	if err != nil {
		// the input may be the origin of the fault.
		_ = s.in.Close()
	}
	s.log.Debug("finished")
}
