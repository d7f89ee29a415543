package textpipe

import (
	"fmt"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/pipelined/textpipe/fitting"
	"github.com/pipelined/textpipe/log"
)

// Option configures a pipeline component.
type Option func(*component)

// component holds the properties shared by stages, producers and
// consumers.
type component struct {
	uid      string
	name     string
	capacity int
	log      logrus.FieldLogger
}

// WithName sets the name used in logs and errors.
func WithName(name string) Option {
	return func(c *component) {
		c.name = name
	}
}

// WithLogger sets logger to component. If this option is not provided,
// silent logger is used.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *component) {
		c.log = l
	}
}

// WithCapacity sets the capacity of pipes allocated when component feeds
// its sinks.
func WithCapacity(capacity int) Option {
	return func(c *component) {
		c.capacity = capacity
	}
}

func newComponent(kind string, options []Option) component {
	c := component{
		uid:      xid.New().String(),
		name:     kind,
		capacity: fitting.DefaultCapacity,
	}
	for _, option := range options {
		option(&c)
	}
	if c.log == nil {
		c.log = log.Silent()
	}
	c.log = c.log.WithFields(logrus.Fields{
		"component": c.name,
		"uid":       c.uid,
	})
	return c
}

// UID returns unique id of the component.
func (c *component) UID() string {
	return c.uid
}

// Name returns the name of the component.
func (c *component) Name() string {
	return c.name
}

// String renders component name and uid.
func (c *component) String() string {
	return fmt.Sprintf("%v %v", c.name, c.uid)
}
