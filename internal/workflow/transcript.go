package workflow

import (
	"bytes"
	"io"
)

// transcript copies everything written to the sink into a buffer. Flush
// and Sync are forwarded so line-by-line delivery still reaches the sink.
type transcript struct {
	w   io.Writer
	buf bytes.Buffer
}

func newTranscript(w io.Writer) *transcript {
	if w == nil {
		w = io.Discard
	}
	return &transcript{w: w}
}

func (t *transcript) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	t.buf.Write(p[:n])
	return n, err
}

func (t *transcript) Flush() error {
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

func (t *transcript) Sync() error {
	if s, ok := t.w.(interface{ Sync() error }); ok {
		return s.Sync()
	}
	return nil
}

// String returns what has been written so far.
func (t *transcript) String() string {
	return t.buf.String()
}
