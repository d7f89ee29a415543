package textpipe

import (
	"io"

	"github.com/pipelined/textpipe/fitting"
)

// teeOutputs is a number of sinks fed by a tee.
const teeOutputs = 2

// NewTee creates a stage which copies its input into two outputs. It
// accepts exactly two Feed calls and cannot be started before both
// outputs are connected.
func NewTee(source Source, options ...Option) (*Stage, error) {
	return newStage("tee", source, teeOutputs, copyAll, options)
}

// copyAll writes every chunk of input to all outputs in order.
func copyAll(in *fitting.Reader, outs []*fitting.Writer) error {
	buf := make([]byte, 512)
	for {
		n, err := in.Read(buf)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		for _, out := range outs {
			if _, err := out.Write(buf[:n]); err != nil {
				return err
			}
		}
	}
}
