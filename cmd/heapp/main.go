package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mdlhea/heapp/internal/descriptor"
)

// Exit codes for different failure modes
const (
	ExitSuccess          = 0 // Calculation completed
	ExitInsufficientData = 1 // Reference data missing for the composition
	ExitError            = 2 // Input, configuration or runtime error
)

func main() {
	if err := execute(); err != nil {
		os.Exit(exitCode(err, os.Stderr))
	}
}

// exitCode reports err on w and maps it to a process exit code.
func exitCode(err error, w io.Writer) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, descriptor.ErrInsufficientData) {
		fmt.Fprintf(w, "Not enough data: %v\n", err) //nolint:errcheck
		return ExitInsufficientData
	}
	fmt.Fprintln(w, err) //nolint:errcheck
	return ExitError
}
