package textpipe_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/textpipe"
	"github.com/pipelined/textpipe/mem"
	"github.com/pipelined/textpipe/metric"
	"github.com/pipelined/textpipe/mock"
)

func TestLineReader(t *testing.T) {
	tests := []struct {
		input    string
		expected []textpipe.Line
	}{
		{
			input:    "",
			expected: nil,
		},
		{
			input: "a\r\nb\nc",
			expected: []textpipe.Line{
				{Text: "a", Terminator: textpipe.CRLF},
				{Text: "b", Terminator: textpipe.LF},
				{Text: "c", Terminator: textpipe.None},
			},
		},
		{
			input: "\n\r\n",
			expected: []textpipe.Line{
				{Text: "", Terminator: textpipe.LF},
				{Text: "", Terminator: textpipe.CRLF},
			},
		},
		{
			input: "a\rb\r\r\nc\r",
			expected: []textpipe.Line{
				{Text: "a\rb\r", Terminator: textpipe.CRLF},
				{Text: "c\r", Terminator: textpipe.None},
			},
		},
	}

	for _, test := range tests {
		lines := textpipe.NewLineReader(strings.NewReader(test.input))
		var result []textpipe.Line
		for lines.Next() {
			result = append(result, lines.Line())
		}
		assert.NoError(t, lines.Err())
		assert.Equal(t, test.expected, result, "input %q", test.input)
		// reader stays at the end.
		assert.False(t, lines.Next())
	}
}

func TestTerminator(t *testing.T) {
	assert.Equal(t, "\n", textpipe.LF.String())
	assert.Equal(t, "\r\n", textpipe.CRLF.String())
	assert.Equal(t, "", textpipe.None.String())
}

func TestLineStage(t *testing.T) {
	testIdentity := func(t *testing.T) {
		for _, input := range []string{
			"a\r\nb\nc",
			"mixed\nterminators\r\nend\n",
			"\r\r\n\n\r",
			strings.Repeat("long line ", 2000) + "\r\n",
		} {
			src := mem.NewSource(input, textpipe.WithCapacity(8))
			s, err := textpipe.NewLineStage(src, mock.Identity)
			require.NoError(t, err)
			sink, err := mem.NewSink(s)
			require.NoError(t, err)
			require.NoError(t, textpipe.Run(src, s, sink))
			assert.Equal(t, input, sink.String())
		}
	}
	testReplacementLength := func(t *testing.T) {
		src := mem.NewSource("ab\r\ncd\nef")
		s, err := textpipe.NewLineStage(src, func(line string) (string, error) {
			return strings.Repeat(line, 3), nil
		})
		require.NoError(t, err)
		sink, err := mem.NewSink(s)
		require.NoError(t, err)
		require.NoError(t, textpipe.Run(src, s, sink))
		assert.Equal(t, "ababab\r\ncdcdcd\nefefef", sink.String())
	}
	testMetered := func(t *testing.T) {
		src := mem.NewSource("ab\r\ncd\nef")
		s, err := textpipe.NewLineStage(src, mock.Identity, textpipe.WithName("line.metered"))
		require.NoError(t, err)
		sink, err := mem.NewSink(s)
		require.NoError(t, err)
		require.NoError(t, textpipe.Run(src, s, sink))
		values := metric.Get("line.metered")
		assert.Equal(t, "3", values[metric.LineCounter])
		assert.Equal(t, "6", values[metric.ByteCounter])
		assert.Equal(t, "1", values[metric.ComponentCounter])
	}
	t.Run("identity keeps bytes", testIdentity)
	t.Run("lines are metered", testMetered)
	t.Run("replacement keeps terminators", testReplacementLength)
}
