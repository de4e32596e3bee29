package tap

import (
	"fmt"
	"io"
	"strings"
)

// LineWriter writes newline-terminated records to a sink and flushes after
// every one of them. The process under test may hang, crash or reboot at
// any time, so nothing is ever held back in a buffer.
type LineWriter struct {
	w      io.Writer
	prefix string
}

type flusher interface {
	Flush() error
}

type syncer interface {
	Sync() error
}

// NewLineWriter returns a LineWriter that prefixes every line with indent
// spaces.
func NewLineWriter(w io.Writer, indent int) *LineWriter {
	if indent < 0 {
		indent = 0
	}
	return &LineWriter{w: w, prefix: strings.Repeat(" ", indent)}
}

// Indent returns a writer on the same sink whose lines are indented n more
// spaces.
func (lw *LineWriter) Indent(n int) *LineWriter {
	if n < 0 {
		n = 0
	}
	return &LineWriter{w: lw.w, prefix: lw.prefix + strings.Repeat(" ", n)}
}

// WriteLine writes the prefix, line and a trailing newline in a single
// Write call, then flushes the sink.
func (lw *LineWriter) WriteLine(line string) error {
	buf := make([]byte, 0, len(lw.prefix)+len(line)+1)
	buf = append(buf, lw.prefix...)
	buf = append(buf, line...)
	buf = append(buf, '\n')
	if _, err := lw.w.Write(buf); err != nil {
		return fmt.Errorf("writing report line: %w", err)
	}
	if f, ok := lw.w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flushing report line: %w", err)
		}
	}
	if s, ok := lw.w.(syncer); ok {
		// Terminals and pipes reject fsync; the bytes already left the
		// process with Write.
		_ = s.Sync()
	}
	return nil
}
