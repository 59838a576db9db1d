package errors

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/julianstephens/tally/internal/logger"
)

// Format formats an error message with a consistent "Error: " prefix.
// Aggregated errors are printed one per line under the prefix.
func Format(err error) string {
	if err == nil {
		return ""
	}
	var merr *multierror.Error
	if errors.As(err, &merr) && len(merr.Errors) > 1 {
		var b strings.Builder
		fmt.Fprintf(&b, "Error: %d problems found", len(merr.Errors))
		for _, e := range merr.Errors {
			fmt.Fprintf(&b, "\n  - %v", e)
		}
		return b.String()
	}
	if merr != nil && len(merr.Errors) == 1 {
		return fmt.Sprintf("Error: %v", merr.Errors[0])
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
