package tap

import (
	"github.com/rs/zerolog"
)

// Counts tallies test point outcomes within one plan.
type Counts struct {
	Passed     int `json:"passed"`
	Skipped    int `json:"skipped"`
	Incomplete int `json:"incomplete"`
	Failed     int `json:"failed"`
	Errored    int `json:"errored"`
}

// Total returns the number of test points that were run.
func (c Counts) Total() int {
	return c.Passed + c.Skipped + c.Incomplete + c.Failed + c.Errored
}

func (c *Counts) add(o Outcome) {
	switch o {
	case Passed:
		c.Passed++
	case Skipped:
		c.Skipped++
	case Incomplete:
		c.Incomplete++
	case Failed:
		c.Failed++
	case Errored:
		c.Errored++
	}
}

// PlanResult is the aggregate outcome of one plan.
type PlanResult struct {
	FileName    string `json:"file_name"`
	Description string `json:"description,omitempty"`
	Skipped     bool   `json:"skipped"`
	// Success is false when any test point failed, errored or is
	// incomplete. Skips do not count against it.
	Success bool   `json:"success"`
	Counts  Counts `json:"counts"`
}

// runPlan executes the plan's test points in order and writes one result
// line per point. A bail-out signal is returned unchanged once the lines
// written so far are out; every other outcome is absorbed here.
func runPlan(plan *Plan, lw *LineWriter, log zerolog.Logger) (PlanResult, error) {
	res := PlanResult{
		FileName:    plan.FileName(),
		Description: plan.Description(),
		Skipped:     !plan.runnable(),
		Success:     true,
	}
	log = log.With().Str("plan", plan.FileName()).Logger()

	if !plan.runnable() {
		log.Debug().Bool("skipped", plan.Skipped()).Msg("plan has nothing to run")
		return res, lw.WriteLine(skippedPlanLine(plan.Description()))
	}

	if err := lw.WriteLine(planLine(plan.Len())); err != nil {
		return res, err
	}

	for i, tp := range plan.points {
		index := i + 1
		c := invoke(tp.run)
		log.Debug().Int("index", index).Stringer("outcome", c.outcome).Msg("test point finished")

		if c.outcome == BailedOut {
			return res, c.err
		}

		res.Counts.add(c.outcome)
		if !c.outcome.OK() {
			res.Success = false
		}

		if err := lw.WriteLine(resultLine(index, tp.description, c.outcome, c.reason)); err != nil {
			return res, err
		}
		if c.outcome != Errored {
			continue
		}

		diag := lw.Indent(diagnosticIndent)
		for _, line := range diagnosticLines(c) {
			if err := diag.WriteLine(line); err != nil {
				return res, err
			}
		}
	}

	log.Info().Bool("success", res.Success).Int("points", res.Counts.Total()).Msg("plan finished")
	return res, nil
}
