package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/deixis/microtap/internal/config"
	"github.com/deixis/microtap/internal/runner"
	"github.com/deixis/microtap/tap"
	"github.com/pkg/errors"
)

// CommandRunner executes commands within a root directory.
// Implemented by runner.Runner.
type CommandRunner interface {
	Run(ctx context.Context, argv []string, cwd string) (*runner.Result, error)
}

// ExitError reports a command that exited with a status no outcome is
// mapped to. It is reported as an unhandled error, with the captured
// stderr in the diagnostic trace.
type ExitError struct {
	Argv   []string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Argv[0], e.Code)
}

// Format prints stderr after the message for %+v.
func (e *ExitError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%s\ncommand: %s", e.Error(), strings.Join(e.Argv, " "))
			if stderr := strings.TrimRight(e.Stderr, "\n"); stderr != "" {
				fmt.Fprintf(s, "\nstderr:\n%s", stderr)
			}
			return
		}
		fallthrough
	case 's':
		fmt.Fprint(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

// commandPoint returns a test point that runs argv in dir and maps its exit
// status to an outcome.
func commandPoint(ctx context.Context, r CommandRunner, codes config.ExitCodes, argv []string, dir string) tap.TestPoint {
	return func() error {
		res, err := r.Run(ctx, argv, dir)
		if err != nil {
			return errors.Wrapf(err, "running %s", argv[0])
		}
		return outcomeOf(res, codes, argv)
	}
}

func outcomeOf(res *runner.Result, codes config.ExitCodes, argv []string) error {
	switch code := res.ExitCode; {
	case code == 0:
		return nil
	case code == codes.SkipCode():
		return tap.Skip(reasonOf(res))
	case codes.ToDoCode() != 0 && code == codes.ToDoCode():
		return tap.ToDo(reasonOf(res))
	case code == codes.FailCode():
		return tap.Fail(reasonOf(res))
	case code == codes.BailOutCode():
		return tap.BailOut(reasonOf(res))
	default:
		return &ExitError{Argv: argv, Code: code, Stderr: string(res.Stderr)}
	}
}

// reasonOf picks the first non-blank line of stdout, falling back to
// stderr.
func reasonOf(res *runner.Result) string {
	for _, stream := range [][]byte{res.Stdout, res.Stderr} {
		for _, line := range strings.Split(string(stream), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				return line
			}
		}
	}
	return ""
}
