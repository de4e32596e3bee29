// Package tap executes plans of test points and serializes their outcomes
// as a Test Anything Protocol version 14 report.
//
// A test point is a function that takes no arguments. It reports anything
// other than success by returning (or panicking with) one of the signals
// built by Skip, ToDo, Fail and BailOut. Any other error or panic is an
// unhandled error and gets a YAML diagnostic block in the report.
package tap

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// TestPoint is the atomic unit of testing.
type TestPoint func() error

// SignalKind identifies what a test point asked the engine to record.
type SignalKind int

const (
	// SkipSignal marks a test point that could not run because of an
	// external condition. It does not fail the plan.
	SkipSignal SignalKind = iota + 1
	// ToDoSignal marks a test point that is deliberately incomplete.
	ToDoSignal
	// FailSignal marks a failure detected by the test point itself.
	FailSignal
	// BailOutSignal stops the whole session.
	BailOutSignal
)

func (k SignalKind) String() string {
	switch k {
	case SkipSignal:
		return "skip"
	case ToDoSignal:
		return "todo"
	case FailSignal:
		return "fail"
	case BailOutSignal:
		return "bail out"
	default:
		return fmt.Sprintf("signal(%d)", int(k))
	}
}

// Signal is the error value a test point returns to report a non-default
// outcome. Signals may be wrapped; they are matched with errors.As.
type Signal struct {
	Kind   SignalKind
	Reason string
}

func (s *Signal) Error() string {
	if s.Reason == "" {
		return s.Kind.String()
	}
	return s.Kind.String() + ": " + s.Reason
}

// Skip returns a signal marking the test point as skipped.
func Skip(reason string) error { return &Signal{Kind: SkipSignal, Reason: reason} }

// ToDo returns a signal marking the test point as not yet finished.
func ToDo(reason string) error { return &Signal{Kind: ToDoSignal, Reason: reason} }

// Fail returns a signal marking the test point as failed.
func Fail(reason string) error { return &Signal{Kind: FailSignal, Reason: reason} }

// Failf is Fail with a formatted reason.
func Failf(format string, args ...any) error {
	return Fail(fmt.Sprintf(format, args...))
}

// BailOut returns a signal that ends the session after the current line.
func BailOut(reason string) error { return &Signal{Kind: BailOutSignal, Reason: reason} }

// IsBailOut reports whether err carries a bail-out signal.
func IsBailOut(err error) bool {
	var sig *Signal
	return errors.As(err, &sig) && sig.Kind == BailOutSignal
}

// Outcome is the closed set of results a single test point invocation can
// have.
type Outcome int

const (
	Passed Outcome = iota
	Skipped
	Incomplete
	Failed
	Errored
	BailedOut
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "passed"
	case Skipped:
		return "skipped"
	case Incomplete:
		return "incomplete"
	case Failed:
		return "failed"
	case Errored:
		return "errored"
	case BailedOut:
		return "bailed out"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// OK reports whether the outcome is written as an "ok" result line.
func (o Outcome) OK() bool { return o == Passed || o == Skipped }

// Directive returns the TAP directive attached to the outcome, or "".
func (o Outcome) Directive() string {
	switch o {
	case Skipped:
		return "SKIP"
	case Incomplete:
		return "TODO"
	default:
		return ""
	}
}

// captured is what one invocation of a test point produced.
type captured struct {
	outcome Outcome
	reason  string
	err     error
	// stack is the goroutine stack at recover time, set for panics only.
	stack []byte
}

// panicError carries a recovered panic value that is not an error.
type panicError struct {
	value any
}

func (p *panicError) Error() string { return fmt.Sprint(p.value) }

// invoke runs point and classifies what it returned or panicked with.
func invoke(point TestPoint) (c captured) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err, ok := r.(error)
		if !ok {
			err = &panicError{value: r}
		}
		c = classify(err)
		if c.outcome == Errored {
			c.stack = debug.Stack()
		}
	}()
	return classify(point())
}

func classify(err error) captured {
	if err == nil {
		return captured{outcome: Passed}
	}

	var sig *Signal
	if !errors.As(err, &sig) {
		return captured{outcome: Errored, err: err}
	}

	c := captured{reason: sig.Reason, err: err}
	switch sig.Kind {
	case SkipSignal:
		c.outcome = Skipped
	case ToDoSignal:
		c.outcome = Incomplete
	case FailSignal:
		c.outcome = Failed
	case BailOutSignal:
		c.outcome = BailedOut
	default:
		c.outcome = Errored
	}
	return c
}
