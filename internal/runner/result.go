package runner

import "time"

// Result holds the output of a finished command.
type Result struct {
	ExitCode  int           // process exit status
	Stdout    []byte        // captured stdout (may be truncated)
	Stderr    []byte        // captured stderr (may be truncated)
	Truncated bool          // true if either stream exceeded the size cap
	Duration  time.Duration // wall time from start to exit
}
