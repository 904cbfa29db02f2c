package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// ExitError carries a process exit code out of RunE. A nil Err exits
// silently.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the wrapped message, or the exit status when there is none.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// printError writes err to w. Colors are only used when w is a terminal.
func printError(w io.Writer, err error) {
	style := lipgloss.NewRenderer(w).NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	fmt.Fprintf(w, "%s %v\n", style.Render("Error:"), err)
}
