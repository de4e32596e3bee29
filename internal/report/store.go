// Package report persists finished sessions so they can be inspected after
// the fact: the per-plan aggregates and the full TAP transcript.
package report

import (
	"strings"
	"time"

	"github.com/deixis/microtap/tap"
)

// Store persists and retrieves session records.
type Store interface {
	Save(record *SessionRecord) error
	Load(runID string) (*SessionRecord, error)
}

// SessionRecord holds everything kept about one run.
type SessionRecord struct {
	ID         string    `json:"id"`
	Dir        string    `json:"dir"`
	StartedAt  time.Time `json:"started_at"`
	Transcript string    `json:"transcript"`

	Plans         []tap.PlanResult `json:"plans"`
	BailedOut     bool             `json:"bailed_out,omitempty"`
	BailOutReason string           `json:"bail_out_reason,omitempty"`
	BailOutFile   string           `json:"bail_out_file,omitempty"`

	// Rejected lists manifests that discovery could not load.
	Rejected []string `json:"rejected,omitempty"`
}

// NewSessionRecord builds a record from a finished session.
func NewSessionRecord(id, dir string, started time.Time, transcript string, s *tap.Summary) *SessionRecord {
	r := &SessionRecord{
		ID:         id,
		Dir:        dir,
		StartedAt:  started,
		Transcript: transcript,
	}
	if s != nil {
		r.Plans = s.Plans
		r.BailedOut = s.BailedOut
		r.BailOutReason = s.BailOutReason
		r.BailOutFile = s.BailOutFile
	}
	return r
}

// Success reports whether the run completed and every plan succeeded.
func (r *SessionRecord) Success() bool {
	s := tap.Summary{Plans: r.Plans, BailedOut: r.BailedOut}
	return s.Success()
}

// ByFile returns the results of the plans built from file, in run order.
func ByFile(r *SessionRecord, file string) []tap.PlanResult {
	var out []tap.PlanResult
	for _, p := range r.Plans {
		if p.FileName == file {
			out = append(out, p)
		}
	}
	return out
}

const commentPrefix = "# Tests for "

// Section returns the transcript lines that belong to file's plans. In a
// multi-plan report those are the comment line naming the file and the
// indented lines under it, plus a bail-out line if the file raised one.
// A single-plan report has no such markers and is returned whole.
func Section(transcript, file string) string {
	lines := strings.Split(strings.TrimSuffix(transcript, "\n"), "\n")

	multi := false
	for _, line := range lines {
		if strings.HasPrefix(line, commentPrefix) {
			multi = true
			break
		}
	}
	if !multi {
		return transcript
	}

	var b strings.Builder
	inside := false
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, commentPrefix):
			inside = strings.TrimPrefix(line, commentPrefix) == file
		case strings.HasPrefix(line, " "):
			// Sub-plan content keeps the current state.
		case inside && strings.HasPrefix(line, "Bail out!"):
			// The bail-out ends the report right under the plan that raised it.
		default:
			inside = false
		}
		if inside {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
