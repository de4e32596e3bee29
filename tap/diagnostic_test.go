package tap

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDiagnosticLines_IsValidYAML(t *testing.T) {
	c := invoke(func() error {
		return pkgerrors.Wrap(pkgerrors.New("i2c nack"), "reading sensor")
	})
	require.Equal(t, Errored, c.outcome)

	got := diagnosticLines(c)
	require.Equal(t, "---", got[0])
	require.Equal(t, "...", got[len(got)-1])

	var doc struct {
		Exception string `yaml:"exception"`
		Traceback string `yaml:"traceback"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(strings.Join(got[1:len(got)-1], "\n")), &doc))
	assert.Equal(t, "reading sensor: i2c nack", doc.Exception)
	assert.True(t, strings.HasPrefix(doc.Traceback, "reading sensor: i2c nack\n"))
	assert.Contains(t, doc.Traceback, "TestDiagnosticLines_IsValidYAML")
}

func TestDiagnosticLines_QuotesAmbiguousMessages(t *testing.T) {
	got := diagnosticLines(captured{outcome: Errored, err: errors.New("true")})
	assert.Contains(t, got, `exception: "true"`)
}

func TestDiagnosticLines_InvalidUTF8(t *testing.T) {
	got := diagnosticLines(captured{outcome: Errored, err: errors.New("bad \xff\xfe")})
	require.Equal(t, "---", got[0])
	require.Equal(t, "...", got[len(got)-1])

	var doc struct {
		Exception string `yaml:"exception"`
		Traceback string `yaml:"traceback"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(strings.Join(got[1:len(got)-1], "\n")), &doc))
	assert.Equal(t, "bad \uFFFD", doc.Exception)
	assert.Equal(t, "bad \uFFFD", doc.Traceback)
}

func TestFallbackDiagnostic(t *testing.T) {
	got := fallbackDiagnostic(captured{outcome: Errored, err: errors.New(`say "hi"`)})
	assert.Equal(t, []string{"---", `exception: "say \"hi\""`, "..."}, got)

	var doc struct {
		Exception string `yaml:"exception"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(got[1]), &doc))
	assert.Equal(t, `say "hi"`, doc.Exception)
}

func TestInnermostStack(t *testing.T) {
	assert.Nil(t, innermostStack(errors.New("plain")))
	inner := pkgerrors.New("inner")
	wrapped := fmt.Errorf("outer: %w", pkgerrors.WithMessage(inner, "mid"))
	assert.Equal(t, inner, innermostStack(wrapped))
}

func TestCleanTrace(t *testing.T) {
	raw := "\n  msg  \n\n\tframe.go:1\t\n"
	assert.Equal(t, "msg\n  frame.go:1", cleanTrace(raw))
}
