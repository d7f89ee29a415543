package transform

import (
	"regexp"
	"strings"

	"github.com/pipelined/textpipe"
	"github.com/pipelined/textpipe/binding"
)

// reference matches ${identifier} tokens. Identifier is a sequence of
// letters followed by a number without leading zero.
var reference = regexp.MustCompile(`\$\{([A-Za-z]+[1-9][0-9]*)\}`)

// NewBinder creates a line stage which binds every value matched by
// pattern to an identifier made of prefix and a counter. If the value was
// bound before, the existing binding is reused. Lines are passed through
// unchanged.
//
// Given pattern "the ([A-Za-z]+)", prefix "N" and line "the boy threw the
// stick at the boy" the bindings are N1 -> boy and N2 -> stick.
func NewBinder(source textpipe.Source, pattern, prefix string, table *binding.Table, options ...textpipe.Option) (*textpipe.Stage, error) {
	if table == nil {
		return nil, ErrNoTable
	}
	m, err := newMatcher(pattern)
	if err != nil {
		return nil, err
	}
	b := table.NewBinder(prefix)
	return textpipe.NewLineStage(source, func(line string) (string, error) {
		for _, v := range m.values(line) {
			b.Bind(line[v[0]:v[1]])
		}
		return line, nil
	}, named("binder", options)...)
}

// NewInserter creates a line stage which binds values like NewBinder and
// also replaces every value with ${identifier} reference.
//
// Given pattern "the ([A-Za-z]+)", prefix "N" and line "the boy threw the
// stick at the boy" the output is "the ${N1} threw the ${N2} at the ${N1}".
func NewInserter(source textpipe.Source, pattern, prefix string, table *binding.Table, options ...textpipe.Option) (*textpipe.Stage, error) {
	if table == nil {
		return nil, ErrNoTable
	}
	m, err := newMatcher(pattern)
	if err != nil {
		return nil, err
	}
	b := table.NewBinder(prefix)
	return textpipe.NewLineStage(source, func(line string) (string, error) {
		var sb strings.Builder
		current := 0
		for _, v := range m.values(line) {
			sb.WriteString(line[current:v[0]])
			sb.WriteString("${")
			sb.WriteString(b.Bind(line[v[0]:v[1]]))
			sb.WriteString("}")
			current = v[1]
		}
		sb.WriteString(line[current:])
		return sb.String(), nil
	}, named("inserter", options)...)
}

// NewResolver creates a line stage which replaces ${identifier}
// references with bound values. References to identifiers which are not
// bound are passed through unchanged.
//
// The table is shared with binding stages running concurrently, so a
// reference can be resolved or not depending on how far those stages
// got with their own input.
func NewResolver(source textpipe.Source, table *binding.Table, options ...textpipe.Option) (*textpipe.Stage, error) {
	if table == nil {
		return nil, ErrNoTable
	}
	return textpipe.NewLineStage(source, func(line string) (string, error) {
		return resolve(table, line), nil
	}, named("resolver", options)...)
}

func resolve(table *binding.Table, line string) string {
	var sb strings.Builder
	current := 0
	for _, loc := range reference.FindAllStringSubmatchIndex(line, -1) {
		sb.WriteString(line[current:loc[0]])
		if v, ok := table.Get(line[loc[2]:loc[3]]); ok {
			sb.WriteString(v)
		} else {
			sb.WriteString(line[loc[0]:loc[1]])
		}
		current = loc[1]
	}
	sb.WriteString(line[current:])
	return sb.String()
}
