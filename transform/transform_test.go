package transform_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pipelined/textpipe"
	"github.com/pipelined/textpipe/binding"
	"github.com/pipelined/textpipe/mem"
	"github.com/pipelined/textpipe/mock"
	"github.com/pipelined/textpipe/transform"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// process runs input through a single stage and returns the output.
func process(t *testing.T, input string, stageFn func(textpipe.Source) (*textpipe.Stage, error)) string {
	t.Helper()
	src := mem.NewSource(input)
	s, err := stageFn(src)
	require.NoError(t, err)
	sink, err := mem.NewSink(s)
	require.NoError(t, err)
	require.NoError(t, textpipe.Run(src, s, sink))
	return sink.String()
}

func TestBinder(t *testing.T) {
	testGroup := func(t *testing.T) {
		table := binding.New()
		out := process(t, "the boy threw the stick at the boy\n", func(src textpipe.Source) (*textpipe.Stage, error) {
			return transform.NewBinder(src, "the ([A-Za-z]+)", "N", table)
		})
		assert.Equal(t, "the boy threw the stick at the boy\n", out)
		assert.Equal(t, []binding.Binding{
			{Identifier: "N1", Value: "boy"},
			{Identifier: "N2", Value: "stick"},
		}, table.Bindings())
	}
	testWholeMatch := func(t *testing.T) {
		table := binding.New()
		process(t, "the boy threw the stick at the boy", func(src textpipe.Source) (*textpipe.Stage, error) {
			return transform.NewBinder(src, "the [A-Za-z]+", "DET", table)
		})
		assert.Equal(t, map[string]string{
			"DET1": "the boy",
			"DET2": "the stick",
		}, table.Map())
	}
	testAcrossLines := func(t *testing.T) {
		table := binding.New()
		process(t, "the boy\r\nthe dog\nthe boy", func(src textpipe.Source) (*textpipe.Stage, error) {
			return transform.NewBinder(src, "the ([a-z]+)", "X", table)
		})
		assert.Equal(t, []string{"X1", "X2"}, table.Identifiers())
	}
	t.Run("group value", testGroup)
	t.Run("whole match value", testWholeMatch)
	t.Run("across lines", testAcrossLines)
}

func TestBindingErrors(t *testing.T) {
	src := mem.NewSource("")
	_, err := transform.NewBinder(src, "(the) ([a-z]+)", "X", binding.New())
	assert.True(t, errors.Is(err, transform.ErrGroupCount))
	_, err = transform.NewInserter(src, "the (", "X", binding.New())
	assert.Error(t, err)
	_, err = transform.NewResolver(src, nil)
	assert.Equal(t, transform.ErrNoTable, err)
	// source is still free after failed constructors.
	_, err = transform.NewResolver(src, binding.New())
	assert.NoError(t, err)
}

func TestInserter(t *testing.T) {
	testGroup := func(t *testing.T) {
		table := binding.New()
		out := process(t, "the boy threw the stick at the boy", func(src textpipe.Source) (*textpipe.Stage, error) {
			return transform.NewInserter(src, "the ([A-Za-z0-9]+)", "X", table)
		})
		assert.Equal(t, "the ${X1} threw the ${X2} at the ${X1}", out)
		assert.Equal(t, map[string]string{"X1": "boy", "X2": "stick"}, table.Map())
	}
	testWholeMatch := func(t *testing.T) {
		table := binding.New()
		out := process(t, "the boy threw the stick at the boy\n", func(src textpipe.Source) (*textpipe.Stage, error) {
			return transform.NewInserter(src, "the [A-Za-z]+", "DET", table)
		})
		assert.Equal(t, "${DET1} threw ${DET2} at ${DET1}\n", out)
	}
	testOptionalGroup := func(t *testing.T) {
		table := binding.New()
		out := process(t, "ax b", func(src textpipe.Source) (*textpipe.Stage, error) {
			return transform.NewInserter(src, "[ab](x)?", "G", table)
		})
		// match without group is left as is.
		assert.Equal(t, "a${G1} b", out)
		assert.Equal(t, map[string]string{"G1": "x"}, table.Map())
	}
	t.Run("group value", testGroup)
	t.Run("whole match value", testWholeMatch)
	t.Run("optional group", testOptionalGroup)
}

func TestResolver(t *testing.T) {
	testUnresolved := func(t *testing.T) {
		out := process(t, "a ${X9} ran", func(src textpipe.Source) (*textpipe.Stage, error) {
			return transform.NewResolver(src, binding.New())
		})
		assert.Equal(t, "a ${X9} ran", out)
	}
	testResolved := func(t *testing.T) {
		table := binding.New()
		table.PutIfAbsent("DET1", "a boy")
		table.PutIfAbsent("DET2", "a stick")
		out := process(t, "${DET1} threw ${DET2} at ${DET1} and ${DET3}\r\n${X0} ${}", func(src textpipe.Source) (*textpipe.Stage, error) {
			return transform.NewResolver(src, table)
		})
		assert.Equal(t, "a boy threw a stick at a boy and ${DET3}\r\n${X0} ${}", out)
	}
	t.Run("unresolved", testUnresolved)
	t.Run("resolved", testResolved)
}

// Binder, tee and resolver in one chain. Resolver receives a line only
// after binder processed all previous lines.
func TestBindTeeResolve(t *testing.T) {
	table := binding.New()
	table.PutIfAbsent("Z1", "dog")
	input := "the boy threw the stick at the boy\n" +
		"a ${X1} threw a ${X2} at a window\n" +
		"the ${X1}'s ${Z1} chased the ${X2}\n"

	src := mem.NewSource(input)
	binder, err := transform.NewBinder(src, "the ([A-Za-z0-9]+)", "X", table)
	require.NoError(t, err)
	tee, err := textpipe.NewTee(binder)
	require.NoError(t, err)
	resolver, err := transform.NewResolver(tee, table)
	require.NoError(t, err)
	intermediate, err := mem.NewSink(tee)
	require.NoError(t, err)
	output, err := mem.NewSink(resolver)
	require.NoError(t, err)

	require.NoError(t, textpipe.Run(src, binder, tee, resolver, intermediate, output))
	assert.Equal(t, input, intermediate.String())
	assert.Equal(t, "the boy threw the stick at the boy\n"+
		"a boy threw a stick at a window\n"+
		"the boy's dog chased the stick\n", output.String())
	assert.Equal(t, []string{"Z1", "X1", "X2"}, table.Identifiers())
}

// Stages in independent branches share the table without any ordering.
// Here the binding branch is held until the resolving branch is done, so
// the reference can't be resolved.
func TestResolveBeforeBind(t *testing.T) {
	table := binding.New()
	gate := make(chan struct{})

	bindSrc := mock.GatedSource("the boy\n", gate)
	binder, err := transform.NewBinder(bindSrc, "the ([a-z]+)", "X", table)
	require.NoError(t, err)
	bound, err := mem.NewSink(binder)
	require.NoError(t, err)

	resolveSrc := mem.NewSource("a ${X1} ran\n")
	resolver, err := transform.NewResolver(resolveSrc, table)
	require.NoError(t, err)
	resolved, err := mem.NewSink(resolver)
	require.NoError(t, err)

	errc := make(chan error)
	go func() {
		errc <- textpipe.Run(bindSrc, binder, bound, resolveSrc, resolver, resolved)
	}()
	<-resolved.Done()
	close(gate)
	require.NoError(t, <-errc)

	assert.Equal(t, "a ${X1} ran\n", resolved.String())
	v, ok := table.Get("X1")
	assert.True(t, ok)
	assert.Equal(t, "boy", v)

	// the same reference resolves once the binding exists.
	out := process(t, "a ${X1} ran\n", func(src textpipe.Source) (*textpipe.Stage, error) {
		return transform.NewResolver(src, table)
	})
	assert.Equal(t, "a boy ran\n", out)
}

func TestReplacer(t *testing.T) {
	tests := []struct {
		pattern     string
		replacement string
		input       string
		expected    string
	}{
		{
			pattern:     "world",
			replacement: "mum",
			input:       "hello world!\ngoodbye cruel world!\ngoodbye!\n",
			expected:    "hello mum!\ngoodbye cruel mum!\ngoodbye!\n",
		},
		{
			pattern:     "(.*)[Aa]ndrew(.*)",
			replacement: `\1Michael\2`,
			input:       "author: Andrew Dinn, JBoss",
			expected:    "author: Michael Dinn, JBoss",
		},
		{
			pattern:     "(.*)[Dd]inn(.*)",
			replacement: `\2\1`,
			input:       "author: Andrew Dinn, JBoss\r\n",
			expected:    ", JBossauthor: Andrew \r\n",
		},
		{
			pattern:     "(a)|(b)",
			replacement: `[\1\2]`,
			input:       "abc",
			expected:    "[a][b]c",
		},
		{
			pattern:     "([a-z]+)@",
			replacement: `\1.\1`,
			input:       "joe@ ann@",
			expected:    "joe.joe ann.ann",
		},
		{
			// template refers to a group pattern doesn't have: match is dropped.
			pattern:     "Dinn",
			replacement: `\1x`,
			input:       "author: Andrew Dinn, JBoss",
			expected:    "author: Andrew , JBoss",
		},
	}
	for _, test := range tests {
		out := process(t, test.input, func(src textpipe.Source) (*textpipe.Stage, error) {
			return transform.NewReplacer(src, test.pattern, test.replacement)
		})
		assert.Equal(t, test.expected, out, "pattern %q replacement %q", test.pattern, test.replacement)
	}
}

func TestReplacerInvalidPattern(t *testing.T) {
	_, err := transform.NewReplacer(mem.NewSource(""), "(", "")
	assert.Error(t, err)
}

func TestTracer(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	out := process(t, "hello\r\nworld", func(src textpipe.Source) (*textpipe.Stage, error) {
		return transform.NewTracer(src, "*** ", l)
	})
	assert.Equal(t, "hello\r\nworld", out)
	assert.Contains(t, buf.String(), `msg="*** hello"`)
	assert.Contains(t, buf.String(), `msg="*** world"`)
}
