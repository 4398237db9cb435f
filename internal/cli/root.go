// Package cli provides the command-line interface for the support copilot.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ExitError carries a process exit code through cobra.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "draft-cli",
		Short: "Draft support replies from the command line",
		Long: `draft-cli runs the support copilot pipeline locally: it validates a
ticket file, extracts order ids and asks the model for a draft reply.
Set COPILOT_MODE=MOCK (or pass --mock) to work offline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newDraftCommand())
	root.AddCommand(newExtractCommand())
	return root
}

// Execute runs the root command and exits with the command's exit code.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
