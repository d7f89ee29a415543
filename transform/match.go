// Package transform provides line stages which bind, insert and resolve
// references to matched text, replace patterns and trace lines.
package transform

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/pipelined/textpipe"
)

var (
	// ErrGroupCount is returned when binding pattern has more than one
	// group.
	ErrGroupCount = errors.New("pattern must have at most one group")
	// ErrNoTable is returned when binding stage is created without table.
	ErrNoTable = errors.New("binding table is not provided")
)

// matcher finds values in a line of text. If pattern has a group, the
// text of the group is the value, otherwise the whole match is.
type matcher struct {
	re    *regexp.Regexp
	group int
}

func newMatcher(pattern string) (*matcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern: %w", err)
	}
	if n := re.NumSubexp(); n > 1 {
		return nil, fmt.Errorf("%q has %d groups: %w", pattern, n, ErrGroupCount)
	}
	return &matcher{
		re:    re,
		group: re.NumSubexp(),
	}, nil
}

// values returns positions of non-overlapping values from left to right.
// Matches where the group didn't participate are skipped.
func (m *matcher) values(line string) [][2]int {
	matches := m.re.FindAllStringSubmatchIndex(line, -1)
	values := make([][2]int, 0, len(matches))
	for _, loc := range matches {
		start, end := loc[2*m.group], loc[2*m.group+1]
		if start < 0 {
			continue
		}
		values = append(values, [2]int{start, end})
	}
	return values
}

// named puts the default stage name in front of user options.
func named(name string, options []textpipe.Option) []textpipe.Option {
	return append([]textpipe.Option{textpipe.WithName(name)}, options...)
}
