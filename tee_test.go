package textpipe_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/textpipe"
	"github.com/pipelined/textpipe/fitting"
	"github.com/pipelined/textpipe/mem"
	"github.com/pipelined/textpipe/mock"
)

func TestTee(t *testing.T) {
	testFanOut := func(t *testing.T) {
		data := strings.Repeat("the boy threw the stick\r\n", 200)
		src := mem.NewSource(data, textpipe.WithCapacity(32))
		tee, err := textpipe.NewTee(src, textpipe.WithCapacity(32))
		require.NoError(t, err)
		sink1, err := mem.NewSink(tee)
		require.NoError(t, err)
		sink2, err := mem.NewSink(tee)
		require.NoError(t, err)

		require.NoError(t, textpipe.Run(src, tee, sink1, sink2))
		assert.Equal(t, data, sink1.String())
		assert.Equal(t, data, sink2.String())
	}
	testThirdOutput := func(t *testing.T) {
		tee, err := textpipe.NewTee(mem.NewSource(""))
		require.NoError(t, err)
		_, err = mem.NewSink(tee)
		require.NoError(t, err)
		_, err = mem.NewSink(tee)
		require.NoError(t, err)
		_, err = mem.NewSink(tee)
		assert.True(t, errors.Is(err, textpipe.ErrOutputConnected))
	}
	testSingleOutput := func(t *testing.T) {
		tee, err := textpipe.NewTee(mem.NewSource(""))
		require.NoError(t, err)
		_, err = mem.NewSink(tee)
		require.NoError(t, err)
		assert.True(t, errors.Is(tee.Start(), textpipe.ErrUnconnectedTee))
	}
	testNoOutput := func(t *testing.T) {
		tee, err := textpipe.NewTee(mem.NewSource(""))
		require.NoError(t, err)
		assert.True(t, errors.Is(tee.Validate(), textpipe.ErrUnconnected))
	}
	testBrokenOutput := func(t *testing.T) {
		data := strings.Repeat("abcdefgh", 1000)
		src := mem.NewSource(data, textpipe.WithCapacity(16))
		tee, err := textpipe.NewTee(src, textpipe.WithCapacity(16))
		require.NoError(t, err)
		sink1, err := mem.NewSink(tee)
		require.NoError(t, err)
		sink2, err := textpipe.NewConsumer(tee, func(in *fitting.Reader) error {
			in.ReadByte()
			return mock.ErrFault
		})
		require.NoError(t, err)

		require.NoError(t, textpipe.Run(src, tee, sink1, sink2))
		assert.True(t, strings.HasPrefix(data, sink1.String()))
		assert.Less(t, sink1.Len(), len(data))
	}
	t.Run("fan out", testFanOut)
	t.Run("third output", testThirdOutput)
	t.Run("single output", testSingleOutput)
	t.Run("no output", testNoOutput)
	t.Run("broken output", testBrokenOutput)
}
