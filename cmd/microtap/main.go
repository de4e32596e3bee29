// Command microtap runs YAML-declared test plans and reports them in TAP
// version 14.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "microtap: %v\n", err)
		os.Exit(2)
	}
}

// exitError ends the process with code without printing anything; the
// command has already reported what went wrong.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
