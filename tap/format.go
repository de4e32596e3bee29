package tap

import (
	"strconv"
	"strings"
)

// Version is the header written first in every report.
const Version = "TAP version 14"

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// singleLine trims s and folds any line break into a space, so that a
// description or reason can never split a record over two lines. A blank
// string comes back empty.
func singleLine(s string) string {
	return strings.TrimSpace(lineBreaks.Replace(s))
}

var escaper = strings.NewReplacer(`\`, `\\`, `#`, `\#`)

// escape applies the TAP 14 escaping rules for descriptions and for text
// following a directive, so a "#" inside them is never read as one.
func escape(s string) string {
	return escaper.Replace(singleLine(s))
}

func planLine(count int) string {
	return "1.." + strconv.Itoa(count)
}

// skippedPlanLine is the plan line of a plan that runs nothing.
func skippedPlanLine(reason string) string {
	line := planLine(0)
	if r := escape(reason); r != "" {
		line += " # SKIP " + r
	}
	return line
}

func resultLine(index int, description string, outcome Outcome, reason string) string {
	var b strings.Builder
	if !outcome.OK() {
		b.WriteString("not ")
	}
	b.WriteString("ok ")
	b.WriteString(strconv.Itoa(index))
	if d := escape(description); d != "" {
		b.WriteString(" - ")
		b.WriteString(d)
	}
	if d := outcome.Directive(); d != "" {
		b.WriteString(" # ")
		b.WriteString(d)
		if r := escape(reason); r != "" {
			b.WriteString(" ")
			b.WriteString(r)
		}
	}
	return b.String()
}

func bailOutLine(reason string) string {
	if r := escape(reason); r != "" {
		return "Bail out! " + r
	}
	return "Bail out!"
}

func commentLine(text string) string {
	return "# " + singleLine(text)
}
