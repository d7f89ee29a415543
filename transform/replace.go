package transform

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pipelined/textpipe"
)

// groupReference matches \N elements of replacement template.
var groupReference = regexp.MustCompile(`\\[1-9][0-9]*`)

type (
	// template is a replacement parsed into literal text and group
	// references.
	template struct {
		parts  []templatePart
		groups []int // distinct referenced groups in order of appearance
		max    int   // maximal referenced group
	}

	// templatePart is either a literal or a reference to group.
	templatePart struct {
		literal string
		group   int
	}
)

func parseTemplate(replacement string) template {
	var t template
	seen := make(map[int]struct{})
	current := 0
	for _, loc := range groupReference.FindAllStringIndex(replacement, -1) {
		if loc[0] > current {
			t.parts = append(t.parts, templatePart{literal: replacement[current:loc[0]]})
		}
		// pattern guarantees a valid positive number.
		group, _ := strconv.Atoi(replacement[loc[0]+1 : loc[1]])
		t.parts = append(t.parts, templatePart{group: group})
		if _, ok := seen[group]; !ok {
			seen[group] = struct{}{}
			t.groups = append(t.groups, group)
			if group > t.max {
				t.max = group
			}
		}
		current = loc[1]
	}
	if current < len(replacement) {
		t.parts = append(t.parts, templatePart{literal: replacement[current:]})
	}
	return t
}

// expand writes the template with groups of the match located at loc.
// Groups which didn't participate in the match are substituted with empty
// text.
func (t template) expand(sb *strings.Builder, line string, loc []int) {
	for _, p := range t.parts {
		if p.group == 0 {
			sb.WriteString(p.literal)
			continue
		}
		if start, end := loc[2*p.group], loc[2*p.group+1]; start >= 0 {
			sb.WriteString(line[start:end])
		}
	}
}

// NewReplacer creates a line stage which replaces every match of pattern
// with replacement. Replacement can refer to the pattern groups as \N,
// where N starts from 1.
//
// Given pattern "(.*)[Aa]ndrew(.*)" and replacement "\1Michael\2" the line
// "author: Andrew Dinn, JBoss" is transformed to "author: Michael Dinn,
// JBoss".
//
// If the replacement refers to a group the pattern doesn't have, the
// matched text is dropped from the output.
func NewReplacer(source textpipe.Source, pattern, replacement string, options ...textpipe.Option) (*textpipe.Stage, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern: %w", err)
	}
	t := parseTemplate(replacement)
	substitute := re.NumSubexp() >= t.max
	return textpipe.NewLineStage(source, func(line string) (string, error) {
		var sb strings.Builder
		current := 0
		for _, loc := range re.FindAllStringSubmatchIndex(line, -1) {
			sb.WriteString(line[current:loc[0]])
			if substitute {
				t.expand(&sb, line, loc)
			}
			current = loc[1]
		}
		sb.WriteString(line[current:])
		return sb.String(), nil
	}, named("replacer", options)...)
}
