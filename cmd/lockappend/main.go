package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/zoro11031/lockappend/internal/cli"
	"github.com/zoro11031/lockappend/internal/common"
	"github.com/zoro11031/lockappend/internal/lockfile"
	"github.com/zoro11031/lockappend/pkg/version"
)

const usageText = `Usage: %s [-c] out_file message_string
  where the message_string is appended to out_file.
  The -c option clears the file before the message is appended.

Flags:
%s`

// errUsage marks argument problems, which exit with lockfile.OutcomeUsage
var errUsage = errors.New("usage error")

// outcomeError carries a non-zero outcome out of RunE
type outcomeError struct {
	code lockfile.Outcome
}

func (e *outcomeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	var (
		clearFile  bool
		verbose    bool
		configPath string
	)

	rootCmd := &cobra.Command{
		Use:   "lockappend [-c] out_file message_string",
		Short: "Append a line to a permission-locked file",
		Long: `Append a line to a file that is kept at mode 0000 between writes.

The file must be absent (it is created at mode 0000) or already at mode 0000.
Owner write access is granted only while the line is written, then the file is
locked again. Any other mode is refused and the file is left untouched.

A message that starts with '-' must follow '--'.`,
		Version:       version.Short(),
		SilenceUsage:  true, // Usage is printed only for argument errors
		SilenceErrors: true, // Diagnostics are printed by the UI
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errUsage
			}
			path, message := args[0], args[1]
			if err := common.ValidateTargetPath(path); err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return errUsage
			}

			ctx, err := cli.NewAppContext(cli.Options{
				ConfigPath: configPath,
				Verbose:    verbose,
				Output:     stderr,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}

			if code := ctx.Run(path, message, clearFile); code != lockfile.OutcomeSuccess {
				return &outcomeError{code: code}
			}
			return nil
		},
	}

	rootCmd.Flags().BoolVarP(&clearFile, "clear", "c", false, "Clear the file before the message is appended")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Trace each step on stderr")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file (default ~/.lockappend.conf)")

	rootCmd.SetVersionTemplate(version.Info() + "\n")
	rootCmd.SetErr(stderr)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return errUsage
	})

	return rootCmd
}

// execute runs the command and maps its result to a process exit code
func execute(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stderr)
	rootCmd.SetOut(stdout)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	if err == nil {
		return int(lockfile.OutcomeSuccess)
	}

	var outcome *outcomeError
	switch {
	case errors.As(err, &outcome):
		return int(outcome.code)
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, usageText, rootCmd.Name(), rootCmd.Flags().FlagUsages())
		return int(lockfile.OutcomeUsage)
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return int(lockfile.OutcomeUsage)
	}
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
