package tap

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// subPlanIndent is how far a sub-plan's lines are nested under the root
// plan in multi-plan mode.
const subPlanIndent = 4

// Option configures a session.
type Option func(*options)

type options struct {
	rootPlan bool
	log      zerolog.Logger
}

// WithRootPlan controls whether a multi-plan session writes a synthetic
// root plan line up front and one roll-up result per plan at the end.
// It is on by default; some consumers cannot handle sub-plans without it.
func WithRootPlan(enabled bool) Option {
	return func(o *options) {
		o.rootPlan = enabled
	}
}

// WithLogger sets the logger for engine events. The report itself is never
// written to it.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// Summary is what a session returns once its report is written.
type Summary struct {
	// Plans holds one entry per plan that ran to completion or was
	// skipped, in input order.
	Plans         []PlanResult `json:"plans"`
	BailedOut     bool         `json:"bailed_out"`
	BailOutReason string       `json:"bail_out_reason,omitempty"`
	// BailOutFile names the plan that bailed out.
	BailOutFile string `json:"bail_out_file,omitempty"`
}

// Success reports whether the session completed and every plan succeeded.
func (s *Summary) Success() bool {
	if s.BailedOut {
		return false
	}
	for _, p := range s.Plans {
		if !p.Success {
			return false
		}
	}
	return true
}

// ExecutePlan runs a single plan and writes its report to w.
func ExecutePlan(w io.Writer, plan *Plan, opts ...Option) (*Summary, error) {
	return Execute(w, []*Plan{plan}, opts...)
}

// Execute runs plans in order and writes a TAP version 14 report to w.
//
// A single plan is reported at the top level. Several plans are reported
// as indented sub-plans, each introduced by a comment naming its file and,
// unless disabled with WithRootPlan, wrapped in a synthetic root plan.
// A bail-out ends the report with a "Bail out!" line and nothing else is
// written after it.
//
// The returned error is only ever a failure to write to w.
func Execute(w io.Writer, plans []*Plan, opts ...Option) (*Summary, error) {
	o := options{rootPlan: true, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	out := NewLineWriter(w, 0)
	if err := out.WriteLine(Version); err != nil {
		return nil, err
	}

	s := &Summary{}
	if len(plans) == 1 {
		err := runSingle(out, plans[0], s, o.log)
		return s, err
	}
	err := runMany(out, plans, s, o)
	return s, err
}

func runSingle(out *LineWriter, plan *Plan, s *Summary, log zerolog.Logger) error {
	res, err := runPlan(plan, out, log)
	if err != nil {
		return bailOrFail(out, plan, err, s, log)
	}
	s.Plans = append(s.Plans, res)
	return nil
}

func runMany(out *LineWriter, plans []*Plan, s *Summary, o options) error {
	if o.rootPlan {
		if err := out.WriteLine(planLine(len(plans))); err != nil {
			return err
		}
	}

	sub := out.Indent(subPlanIndent)
	for _, plan := range plans {
		if err := out.WriteLine(commentLine("Tests for " + plan.FileName())); err != nil {
			return err
		}
		res, err := runPlan(plan, sub, o.log)
		if err != nil {
			return bailOrFail(out, plan, err, s, o.log)
		}
		s.Plans = append(s.Plans, res)
	}

	if !o.rootPlan {
		return nil
	}
	for i, res := range s.Plans {
		outcome := Passed
		if !res.Success {
			outcome = Failed
		}
		if err := out.WriteLine(resultLine(i+1, res.Description, outcome, "")); err != nil {
			return err
		}
	}
	return nil
}

// bailOrFail turns a bail-out raised while running plan into the terminal
// report line. Any other error is a sink failure and is passed through.
func bailOrFail(out *LineWriter, plan *Plan, err error, s *Summary, log zerolog.Logger) error {
	if !IsBailOut(err) {
		return err
	}
	var sig *Signal
	errors.As(err, &sig)

	s.BailedOut = true
	s.BailOutReason = singleLine(sig.Reason)
	s.BailOutFile = plan.FileName()
	log.Warn().Str("plan", plan.FileName()).Str("reason", s.BailOutReason).Msg("session bailed out")

	if werr := out.WriteLine(bailOutLine(sig.Reason)); werr != nil {
		return fmt.Errorf("reporting bail out: %w", werr)
	}
	return nil
}
