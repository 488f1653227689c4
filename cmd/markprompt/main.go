package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	exitCode := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	os.Exit(exitCode)
}

// exitError carries the exit code a command failed with
type exitError struct {
	code int
	msg  string
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.err)
}

func (e *exitError) Unwrap() error { return e.err }

func fail(code int, msg string, err error) error {
	return &exitError{code: code, msg: msg, err: err}
}

// cliIO bundles the streams commands read from and write to
type cliIO struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// run is the main entry point for the CLI, separated for testing
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	streams := &cliIO{stdin: stdin, stdout: stdout, stderr: stderr}
	root := rootCmd(streams)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		return ExitCodeUsageError
	}
	return ExitCodeSuccess
}

func rootCmd(streams *cliIO) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:           CLIName,
		Short:         CLIDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&verbose, FlagVerbose, FlagVerboseShort, false, "Log pipeline steps to stderr")

	newLogger := func() *zap.Logger {
		if !verbose {
			return zap.NewNop()
		}
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(streams.stderr),
			zap.DebugLevel,
		)
		return zap.New(core)
	}

	cmd.AddCommand(
		renderCmd(streams, newLogger),
		formatCmd(streams, newLogger),
		checkCmd(streams, newLogger),
		versionCmd(streams),
	)
	return cmd
}
