package tap

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink remembers every Write call and counts flushes.
type recordingSink struct {
	writes  []string
	flushes int
	syncs   int
	syncErr error
}

func (s *recordingSink) Write(p []byte) (int, error) {
	s.writes = append(s.writes, string(p))
	return len(p), nil
}

func (s *recordingSink) Flush() error {
	s.flushes++
	return nil
}

func (s *recordingSink) Sync() error {
	s.syncs++
	return s.syncErr
}

type failingSink struct{}

func (failingSink) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestLineWriter_OneWriteAndFlushPerLine(t *testing.T) {
	sink := &recordingSink{syncErr: errors.New("inappropriate ioctl for device")}
	lw := NewLineWriter(sink, 0)

	require.NoError(t, lw.WriteLine("TAP version 14"))
	require.NoError(t, lw.WriteLine("1..1"))

	assert.Equal(t, []string{"TAP version 14\n", "1..1\n"}, sink.writes)
	assert.Equal(t, 2, sink.flushes)
	assert.Equal(t, 2, sink.syncs)
}

func TestLineWriter_Indent(t *testing.T) {
	var buf bytes.Buffer
	lw := NewLineWriter(&buf, 4)

	require.NoError(t, lw.WriteLine("1..1"))
	require.NoError(t, lw.Indent(2).WriteLine("---"))
	require.NoError(t, NewLineWriter(&buf, -3).WriteLine("top"))

	assert.Equal(t, "    1..1\n      ---\ntop\n", buf.String())
}

func TestLineWriter_WriteError(t *testing.T) {
	err := NewLineWriter(failingSink{}, 0).WriteLine("ok 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
