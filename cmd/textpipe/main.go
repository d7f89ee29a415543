package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pipelined/textpipe"
	"github.com/pipelined/textpipe/config"
	"github.com/pipelined/textpipe/file"
	"github.com/pipelined/textpipe/log"
)

const (
	successExitCode = 0
	errorExitCode   = 1
)

// stdio is the name of input and output bound to standard streams.
const stdio = "-"

type (
	// chainFunc creates stages fed by the source. It returns the stages
	// and the source for the final sink.
	chainFunc func(source textpipe.Source, s settings) ([]textpipe.Runner, textpipe.Source, error)

	// settings are shared by all components of the pipeline.
	settings struct {
		logger  *logrus.Logger
		options []textpipe.Option
	}

	endpoints struct {
		in  string
		out string
	}
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		return errorExitCode
	}
	return successExitCode
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "textpipe",
		Short:        "Textpipe streams text through a chain of line stages",
		SilenceUsage: true,
	}
	root.AddCommand(
		newRunCmd(),
		newReplaceCmd(),
		newCopyCmd(),
	)
	return root
}

// register adds input and output flags to the command.
func (e *endpoints) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&e.in, "in", "i", stdio, "input file, - for stdin")
	cmd.Flags().StringVarP(&e.out, "out", "o", stdio, "output file, - for stdout")
}

// execute connects the chain between input and output and runs it.
func (e *endpoints) execute(cmd *cobra.Command, chain chainFunc) error {
	env, err := config.Load()
	if err != nil {
		return err
	}
	logger := log.New(env.Config)
	logger.SetOutput(cmd.ErrOrStderr())
	s := settings{
		logger: logger,
		options: []textpipe.Option{
			textpipe.WithLogger(logger),
			textpipe.WithCapacity(env.Capacity),
		},
	}

	source, err := e.source(cmd, s.options)
	if err != nil {
		return err
	}
	runners, out, err := chain(source, s)
	if err != nil {
		return err
	}
	sink, err := e.sink(cmd, out, s.options)
	if err != nil {
		return err
	}
	runners = append(append([]textpipe.Runner{source}, runners...), sink)
	logger.WithField("runners", len(runners)).Debug("starting pipeline")
	if err := textpipe.Run(runners...); err != nil {
		return fmt.Errorf("failed to run pipeline: %w", err)
	}
	return nil
}

func (e *endpoints) source(cmd *cobra.Command, options []textpipe.Option) (*textpipe.Producer, error) {
	if e.in == stdio {
		return file.NewSource(cmd.InOrStdin(), options...), nil
	}
	return file.Open(e.in, options...)
}

func (e *endpoints) sink(cmd *cobra.Command, source textpipe.Source, options []textpipe.Option) (*file.Sink, error) {
	if e.out == stdio {
		return file.NewSink(cmd.OutOrStdout(), source, options...)
	}
	return file.Create(e.out, source, options...)
}
