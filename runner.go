package textpipe

import (
	"fmt"
	"sync"

	"github.com/pipelined/textpipe/fitting"
)

type (
	// ProduceFunc writes the whole stream produced by a source into out.
	ProduceFunc func(out *fitting.Writer) error

	// ConsumeFunc reads input until io.EOF.
	ConsumeFunc func(in *fitting.Reader) error

	// Producer sits at the front of a pipeline and feeds its sink with
	// data located in memory or on persistent storage.
	Producer struct {
		component
		worker

		mu      sync.Mutex
		out     *fitting.Writer
		produce ProduceFunc
	}

	// Consumer sits at the end of a pipeline and collects the transformed
	// stream.
	Consumer struct {
		component
		input
		worker

		consume ConsumeFunc
	}
)

// worker is the goroutine lifecycle shared by all runners.
type worker struct {
	mu      sync.Mutex
	started bool
	done    chan struct{}
}

func newWorker() worker {
	return worker{
		done: make(chan struct{}),
	}
}

// launch validates the component and runs fn in a new goroutine.
func (w *worker) launch(c *component, validate func() error, fn func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return fmt.Errorf("%v: %w", c, ErrStarted)
	}
	if err := validate(); err != nil {
		return err
	}
	w.started = true
	go func() {
		defer close(w.done)
		fn()
	}()
	return nil
}

// Wait blocks until the component is done. It returns immediately if the
// component was never started.
func (w *worker) Wait() {
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()
	if started {
		<-w.done
	}
}

// Done returns a channel which is closed when component goroutine exits.
func (w *worker) Done() <-chan struct{} {
	return w.done
}

// NewProducer creates a new producer. It must feed a sink before start,
// otherwise there is nothing to do.
func NewProducer(fn ProduceFunc, options ...Option) *Producer {
	return &Producer{
		component: newComponent("producer", options),
		worker:    newWorker(),
		produce:   fn,
	}
}

// Feed implements Source.
func (p *Producer) Feed(sink Sink) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.out != nil {
		return ErrOutputConnected
	}
	w, err := feed(sink, p.capacity)
	if err != nil {
		return err
	}
	p.out = w
	return nil
}

// Validate implements Runner. Producer without sink is valid.
func (p *Producer) Validate() error {
	return nil
}

// Start launches the producer goroutine.
func (p *Producer) Start() error {
	return p.launch(&p.component, p.Validate, p.run)
}

func (p *Producer) run() {
	p.mu.Lock()
	out := p.out
	p.mu.Unlock()
	if out == nil {
		// nothing to do
		return
	}
	if err := p.produce(out); err != nil {
		p.log.WithError(err).Debug("produce fault")
	}
	out.Close()
	p.log.Debug("finished")
}

// NewConsumer creates a new consumer fed by the source.
func NewConsumer(source Source, fn ConsumeFunc, options ...Option) (*Consumer, error) {
	c := &Consumer{
		component: newComponent("consumer", options),
		worker:    newWorker(),
		consume:   fn,
	}
	if err := connect(source, c, &c.component); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate implements Runner. Consumer without input is valid.
func (c *Consumer) Validate() error {
	return nil
}

// Start launches the consumer goroutine.
func (c *Consumer) Start() error {
	return c.launch(&c.component, c.Validate, c.run)
}

func (c *Consumer) run() {
	if c.in == nil {
		// nothing to do
		return
	}
	if err := c.consume(c.in); err != nil {
		c.log.WithError(err).Debug("consume fault")
	}
	c.in.Close()
	c.log.Debug("finished")
}
