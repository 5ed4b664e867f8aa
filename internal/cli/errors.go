package cli

import (
	"errors"

	ferrors "github.com/frackdev/frack/internal/errors"
)

// ExitCode returns the exit code for any error.
func ExitCode(err error) int {
	var derr *ferrors.Error
	if errors.As(err, &derr) {
		return derr.CLIExitCode()
	}
	return ExitGeneralError
}

// FormatErrorMessage returns a formatted error message for display.
func FormatErrorMessage(err error) string {
	return "Error: " + err.Error()
}
