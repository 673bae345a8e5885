package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess = 0 // Command completed
	ExitError   = 1 // Malformed input, configuration or runtime error
	ExitPartial = 2 // Batch completed but some listings failed
)

// ReportedError indicates the command finished and already wrote its
// output, but the outcome still counts as a failure.
type ReportedError struct {
	Message string
}

func (e *ReportedError) Error() string {
	return e.Message
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	err := execute(args)
	if err == nil {
		return ExitSuccess
	}

	var reported *ReportedError
	if errors.As(err, &reported) {
		fmt.Fprintln(os.Stderr, reported.Message) //nolint:errcheck
		return ExitPartial
	}

	writeErrorJSON(err)
	return ExitError
}

// writeErrorJSON prints {"error": "..."} on stdout so callers parsing the
// command output always receive JSON.
func writeErrorJSON(err error) {
	json.NewEncoder(os.Stdout).Encode(map[string]string{"error": err.Error()}) //nolint:errcheck
}
