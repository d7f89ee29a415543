package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/pipelined/textpipe"
	"github.com/pipelined/textpipe/binding"
	"github.com/pipelined/textpipe/file"
	"github.com/pipelined/textpipe/transform"
)

// Stage types.
const (
	Replace = "replace"
	Bind    = "bind"
	Insert  = "insert"
	Resolve = "resolve"
	Trace   = "trace"
	Tee     = "tee"
)

var (
	// ErrUnknownStage is returned for stage definitions of unknown type.
	ErrUnknownStage = errors.New("unknown stage type")
	// ErrMissingField is returned when stage definition lacks a field
	// required by its type.
	ErrMissingField = errors.New("missing field")
	// ErrInvalidPrefix is returned when binding prefix is not made of
	// letters only.
	ErrInvalidPrefix = errors.New("prefix must consist of letters")
	// ErrEmptyDefinition is returned when the document has no content.
	ErrEmptyDefinition = errors.New("empty definition")
)

var prefixPattern = regexp.MustCompile(`^[A-Za-z]+$`)

type (
	// Definition describes a linear chain of stages. Tee stages split a
	// branch into a file, the chain continues with the other output.
	Definition struct {
		// Capacity of every pipe in the chain, zero keeps the default.
		Capacity int               `yaml:"capacity,omitempty"`
		Bindings []binding.Binding `yaml:"bindings,omitempty"`
		Stages   []StageDefinition `yaml:"stages"`
	}

	// StageDefinition describes a single stage.
	StageDefinition struct {
		Type        string `yaml:"type"`
		Name        string `yaml:"name,omitempty"`
		Pattern     string `yaml:"pattern,omitempty"`
		Prefix      string `yaml:"prefix,omitempty"`
		Replacement string `yaml:"replacement,omitempty"`
		Output      string `yaml:"output,omitempty"`
	}

	// Pipeline is a chain built from definition. Runners must be run
	// together with the source and a sink fed by Output.
	Pipeline struct {
		Runners []textpipe.Runner
		Output  textpipe.Source
		Table   *binding.Table
	}
)

// LoadDefinition reads and parses definition file.
func LoadDefinition(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("failed to read definition: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML definition. Unknown fields are
// rejected.
func Parse(data []byte) (Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		if err == io.EOF {
			return Definition{}, ErrEmptyDefinition
		}
		return Definition{}, fmt.Errorf("failed to parse definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// Validate checks all stage definitions and returns joined errors.
func (d Definition) Validate() error {
	var errs []error
	for i, s := range d.Stages {
		if err := s.validate(); err != nil {
			errs = append(errs, fmt.Errorf("stage %d %q: %w", i, s.Type, err))
		}
	}
	return errors.Join(errs...)
}

func (s StageDefinition) validate() error {
	switch s.Type {
	case Replace:
		if s.Pattern == "" {
			return fmt.Errorf("pattern: %w", ErrMissingField)
		}
	case Bind, Insert:
		if s.Pattern == "" {
			return fmt.Errorf("pattern: %w", ErrMissingField)
		}
		if !prefixPattern.MatchString(s.Prefix) {
			return fmt.Errorf("%q: %w", s.Prefix, ErrInvalidPrefix)
		}
	case Tee:
		if s.Output == "" {
			return fmt.Errorf("output: %w", ErrMissingField)
		}
	case Resolve, Trace:
	default:
		return ErrUnknownStage
	}
	return nil
}

// Build validates definition and creates its stages fed by source. All
// binding stages share a single table seeded with definition bindings.
// Options are applied to every stage.
func Build(def Definition, source textpipe.Source, options ...textpipe.Option) (*Pipeline, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	table := binding.New()
	for _, b := range def.Bindings {
		if _, _, err := table.PutIfAbsent(b.Identifier, b.Value); err != nil {
			return nil, fmt.Errorf("binding %v: %w", b.Identifier, err)
		}
	}
	if def.Capacity > 0 {
		options = append(options[:len(options):len(options)], textpipe.WithCapacity(def.Capacity))
	}

	p := Pipeline{
		Output: source,
		Table:  table,
	}
	for i, s := range def.Stages {
		opts := options
		if s.Name != "" {
			opts = append(opts[:len(opts):len(opts)], textpipe.WithName(s.Name))
		}
		runners, out, err := s.build(p.Output, table, opts)
		if err != nil {
			return nil, fmt.Errorf("stage %d %q: %w", i, s.Type, err)
		}
		p.Runners = append(p.Runners, runners...)
		p.Output = out
	}
	return &p, nil
}

// build returns stage runners and the source that continues the chain.
func (s StageDefinition) build(source textpipe.Source, table *binding.Table, options []textpipe.Option) ([]textpipe.Runner, textpipe.Source, error) {
	var (
		stage *textpipe.Stage
		err   error
	)
	switch s.Type {
	case Replace:
		stage, err = transform.NewReplacer(source, s.Pattern, s.Replacement, options...)
	case Bind:
		stage, err = transform.NewBinder(source, s.Pattern, s.Prefix, table, options...)
	case Insert:
		stage, err = transform.NewInserter(source, s.Pattern, s.Prefix, table, options...)
	case Resolve:
		stage, err = transform.NewResolver(source, table, options...)
	case Trace:
		stage, err = transform.NewTracer(source, s.Prefix, nil, options...)
	case Tee:
		return s.buildTee(source, options)
	default:
		err = ErrUnknownStage
	}
	if err != nil {
		return nil, nil, err
	}
	return []textpipe.Runner{stage}, stage, nil
}

func (s StageDefinition) buildTee(source textpipe.Source, options []textpipe.Option) ([]textpipe.Runner, textpipe.Source, error) {
	tee, err := textpipe.NewTee(source, options...)
	if err != nil {
		return nil, nil, err
	}
	branch, err := file.Create(s.Output, tee)
	if err != nil {
		return nil, nil, err
	}
	return []textpipe.Runner{tee, branch}, tee, nil
}
