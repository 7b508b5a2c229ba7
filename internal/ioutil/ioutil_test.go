package ioutil

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountingWriter(t *testing.T) {
	t.Parallel()

	var sink bytes.Buffer
	cw := &CountingWriter{W: &sink}

	n, err := cw.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = cw.Write([]byte(" world"))
	require.NoError(t, err)

	assert.Equal(t, uint64(11), cw.N)
	assert.Equal(t, "hello world", sink.String())
}

func TestCountingReader(t *testing.T) {
	t.Parallel()

	cr := &CountingReader{R: strings.NewReader("some payload")}
	data, err := io.ReadAll(cr)
	require.NoError(t, err)
	assert.Equal(t, "some payload", string(data))
	assert.Equal(t, uint64(12), cr.N)
}

func TestCopyWithContext(t *testing.T) {
	t.Parallel()

	var dst bytes.Buffer
	n, err := CopyWithContext(context.Background(), &dst, strings.NewReader("streaming"), make([]byte, 4))
	require.NoError(t, err)
	assert.Equal(t, uint64(9), n)
	assert.Equal(t, "streaming", dst.String())
}

func TestCopyWithContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var dst bytes.Buffer
	_, err := CopyWithContext(ctx, &dst, strings.NewReader("never read"), make([]byte, 4))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, dst.Len())
}

func TestCopyWithContextReadError(t *testing.T) {
	t.Parallel()

	errRead := errors.New("read failed")
	src := io.MultiReader(strings.NewReader("partial"), &failingReader{err: errRead})

	var dst bytes.Buffer
	n, err := CopyWithContext(context.Background(), &dst, src, make([]byte, 4))
	assert.ErrorIs(t, err, errRead)
	assert.Equal(t, uint64(7), n)
}

type failingReader struct {
	err error
}

func (r *failingReader) Read([]byte) (int, error) {
	return 0, r.err
}
