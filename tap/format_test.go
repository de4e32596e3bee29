package tap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "device absent", "device absent"},
		{"hash", "issue #12", `issue \#12`},
		{"backslash", `C:\temp`, `C:\\temp`},
		{"both", `a\#b`, `a\\\#b`},
		{"trimmed", "  spaced  ", "spaced"},
		{"blank", " \t ", ""},
		{"empty", "", ""},
		{"line breaks", "one\ntwo\r\nthree", "one two three"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escape(tt.in))
		})
	}
}

func TestResultLine(t *testing.T) {
	tests := []struct {
		name        string
		index       int
		description string
		outcome     Outcome
		reason      string
		want        string
	}{
		{"passed", 1, "", Passed, "", "ok 1"},
		{"passed with description", 2, "adds", Passed, "", "ok 2 - adds"},
		{"skipped", 3, "uart", Skipped, "device absent", "ok 3 - uart # SKIP device absent"},
		{"skipped without reason", 3, "", Skipped, "  ", "ok 3 # SKIP"},
		{"todo", 4, "", Incomplete, "not implemented", "not ok 4 # TODO not implemented"},
		{"failed ignores reason", 5, "sum", Failed, "bad sum", "not ok 5 - sum"},
		{"errored", 6, "", Errored, "", "not ok 6"},
		{"escaped reason", 7, "", Skipped, `see #3 \ later`, `ok 7 # SKIP see \#3 \\ later`},
		{"escaped description", 8, `flash # TODO later`, Passed, "", `ok 8 - flash \# TODO later`},
		{"escaped description with directive", 9, `c:\tmp #1`, Skipped, "no disk", `ok 9 - c:\\tmp \#1 # SKIP no disk`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resultLine(tt.index, tt.description, tt.outcome, tt.reason))
		})
	}
}

func TestSkippedPlanLine(t *testing.T) {
	assert.Equal(t, "1..0", skippedPlanLine(""))
	assert.Equal(t, "1..0 # SKIP no radio", skippedPlanLine("no radio"))
	assert.Equal(t, `1..0 # SKIP needs \#2`, skippedPlanLine("needs #2"))
}

func TestBailOutLine(t *testing.T) {
	assert.Equal(t, "Bail out! overheat", bailOutLine("overheat"))
	assert.Equal(t, "Bail out!", bailOutLine(""))
	assert.Equal(t, `Bail out! rail \#3 down`, bailOutLine("rail #3 down\n"))
}
