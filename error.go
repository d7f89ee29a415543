package textpipe

import (
	"errors"
	"strings"
)

var (
	// ErrUnconnected is returned when a stage is started without input or
	// output.
	ErrUnconnected = errors.New("unconnected pipeline")
	// ErrUnconnectedTee is returned when a tee is started with a single
	// output.
	ErrUnconnectedTee = errors.New("unconnected tee")
	// ErrInputConnected is returned when a sink is fed twice.
	ErrInputConnected = errors.New("input already connected")
	// ErrOutputConnected is returned when a source feeds more sinks than it
	// supports.
	ErrOutputConnected = errors.New("output already connected")
	// ErrStarted is returned when a component is started twice.
	ErrStarted = errors.New("already started")
)

// execErrors wraps errors that might occur when multiple components are
// misconfigured.
type execErrors []error

func (e execErrors) Error() string {
	s := []string{}
	for _, se := range e {
		s = append(s, se.Error())
	}
	return strings.Join(s, ",")
}

// Unwrap allows errors.Is to check every wrapped error.
func (e execErrors) Unwrap() []error {
	return e
}

// ret returns untyped nil if error is list is empty.
func (e execErrors) ret() error {
	if len(e) > 0 {
		return e
	}
	return nil
}
