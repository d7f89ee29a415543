package main

import (
	"github.com/spf13/cobra"

	"github.com/pipelined/textpipe"
	"github.com/pipelined/textpipe/config"
	"github.com/pipelined/textpipe/transform"
)

func newRunCmd() *cobra.Command {
	var (
		e          endpoints
		definition string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline described by a YAML definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := config.LoadDefinition(definition)
			if err != nil {
				return err
			}
			return e.execute(cmd, func(source textpipe.Source, s settings) ([]textpipe.Runner, textpipe.Source, error) {
				p, err := config.Build(def, source, s.options...)
				if err != nil {
					return nil, nil, err
				}
				return p.Runners, p.Output, nil
			})
		},
	}
	e.register(cmd)
	cmd.Flags().StringVarP(&definition, "file", "f", "", "pipeline definition (required)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newReplaceCmd() *cobra.Command {
	var e endpoints
	cmd := &cobra.Command{
		Use:   "replace PATTERN TEMPLATE",
		Short: `Replace every match of PATTERN in each line, \N in TEMPLATE refers to group N`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.execute(cmd, func(source textpipe.Source, s settings) ([]textpipe.Runner, textpipe.Source, error) {
				r, err := transform.NewReplacer(source, args[0], args[1], s.options...)
				if err != nil {
					return nil, nil, err
				}
				return []textpipe.Runner{r}, r, nil
			})
		},
	}
	e.register(cmd)
	return cmd
}

func newCopyCmd() *cobra.Command {
	var (
		e     endpoints
		trace string
	)
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy input to output, optionally logging every line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.execute(cmd, func(source textpipe.Source, s settings) ([]textpipe.Runner, textpipe.Source, error) {
				if !cmd.Flags().Changed("trace") {
					return nil, source, nil
				}
				t, err := transform.NewTracer(source, trace, s.logger, s.options...)
				if err != nil {
					return nil, nil, err
				}
				return []textpipe.Runner{t}, t, nil
			})
		},
	}
	e.register(cmd)
	cmd.Flags().StringVar(&trace, "trace", "", "log every line with the prefix")
	return cmd
}
