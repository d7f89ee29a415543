package transform

import (
	"github.com/sirupsen/logrus"

	"github.com/pipelined/textpipe"
	"github.com/pipelined/textpipe/log"
)

// NewTracer creates a line stage which logs every line prefixed with
// prefix. Lines are passed through unchanged. If logger is nil, the
// environment configured logger is used.
func NewTracer(source textpipe.Source, prefix string, logger logrus.FieldLogger, options ...textpipe.Option) (*textpipe.Stage, error) {
	if logger == nil {
		logger = log.GetLogger()
	}
	return textpipe.NewLineStage(source, func(line string) (string, error) {
		logger.Info(prefix + line)
		return line, nil
	}, named("tracer", options)...)
}
