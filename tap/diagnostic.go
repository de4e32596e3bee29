package tap

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// diagnosticIndent is how far a diagnostic block sits under its result line.
const diagnosticIndent = 2

// stackTracer is implemented by errors created or wrapped by
// github.com/pkg/errors.
type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// diagnosticLines renders the YAML diagnostic block for an errored test
// point, framed by the "---" and "..." document markers. If the block
// cannot be encoded, a block holding only the quoted exception is returned.
func diagnosticLines(c captured) []string {
	lines, err := encodeDiagnostic(c)
	if err != nil {
		return fallbackDiagnostic(c)
	}
	return lines
}

func encodeDiagnostic(c captured) ([]string, error) {
	str := func(v string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
	}
	traceback := str(traceOf(c))
	traceback.Style = yaml.LiteralStyle

	doc := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			str("exception"), str(messageOf(c.err)),
			str("traceback"), traceback,
		},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding diagnostic: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding diagnostic: %w", err)
	}

	lines := []string{"---"}
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		lines = append(lines, strings.TrimRight(line, " "))
	}
	return append(lines, "..."), nil
}

func fallbackDiagnostic(c captured) []string {
	return []string{"---", "exception: " + strconv.Quote(messageOf(c.err)), "..."}
}

func messageOf(err error) string {
	if err == nil {
		return ""
	}
	if msg := err.Error(); msg != "" {
		return validUTF8(msg)
	}
	return fmt.Sprintf("%T", err)
}

// traceOf picks the most useful trace available: the stack captured when a
// panic was recovered, then the innermost pkg/errors stack, then the
// verbose rendering of the error itself.
func traceOf(c captured) string {
	var raw string
	switch st := innermostStack(c.err); {
	case len(c.stack) > 0:
		raw = messageOf(c.err) + "\n" + string(c.stack)
	case st != nil:
		raw = fmt.Sprintf("%s%+v", messageOf(c.err), st.StackTrace())
	default:
		raw = fmt.Sprintf("%+v", c.err)
	}
	return cleanTrace(validUTF8(raw))
}

// validUTF8 replaces invalid byte sequences, such as raw stderr from a
// serial tool, with U+FFFD. YAML cannot carry them.
func validUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

func innermostStack(err error) stackTracer {
	var found stackTracer
	for e := err; e != nil; e = errors.Unwrap(e) {
		if st, ok := e.(stackTracer); ok {
			found = st
		}
	}
	return found
}

// cleanTrace expands tabs, trims trailing blanks and drops empty lines so
// that the trace always renders as a plain literal block.
func cleanTrace(raw string) string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(strings.ReplaceAll(line, "\t", "  "), " \r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(out) == 0 {
			line = strings.TrimLeft(line, " ")
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
