package mobi

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := defaultTestHeader()
	h.compression = 99
	data := buildTestBook(h, nil, "", []byte("text"))

	decodeTestBook(t, data, WithLogger(logger))
	out := buf.String()
	assert.Contains(t, out, "state=directory-read")
	assert.Contains(t, out, "state=done")
	assert.Contains(t, out, "unknown compression 99")
	assert.Contains(t, out, "level=WARN")
}

func TestWithLogger_Failure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	data := buildTestBook(defaultTestHeader(), nil, "", backReference(1, 3))
	_, err := NewReader(bytes.NewReader(data), int64(len(data)), WithLogger(logger))
	require.Error(t, err)
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "decode failed")
}

func TestWithLogger_Nil(t *testing.T) {
	o := defaultOptions()
	WithLogger(nil)(&o)
	assert.NotNil(t, o.logger)
}

func TestWithMaxRecordSize(t *testing.T) {
	data := buildTestBook(defaultTestHeader(), nil, "", []byte("a body record of some length"))

	_, err := NewReader(bytes.NewReader(data), int64(len(data)), WithMaxRecordSize(8))
	assert.ErrorIs(t, err, ErrMalformedContainer)

	book, err := NewReader(bytes.NewReader(data), int64(len(data)), WithMaxRecordSize(1024))
	require.NoError(t, err)
	assert.Equal(t, "a body record of some length", book.Text())
}

func TestWithMaxRecordSize_NonPositiveKeepsDefault(t *testing.T) {
	for _, n := range []int64{0, -1} {
		o := defaultOptions()
		WithMaxRecordSize(n)(&o)
		assert.Equal(t, defaultMaxRecordSize, o.maxRecordSize)
	}
}
