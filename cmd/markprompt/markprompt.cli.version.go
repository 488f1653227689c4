package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// versionOutput represents JSON output for version
type versionOutput struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
}

func versionCmd(streams *cliIO) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   CmdNameVersion,
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case OutputFormatText:
				fmt.Fprintf(streams.stdout, VersionTextTemplate, version, commit, runtime.Version())
				return nil
			case OutputFormatJSON:
				out, err := json.MarshalIndent(versionOutput{
					Version:   version,
					Commit:    commit,
					GoVersion: runtime.Version(),
				}, "", "  ")
				if err != nil {
					return fail(ExitCodeError, ErrMsgInvalidFormat, err)
				}
				fmt.Fprintln(streams.stdout, string(out))
				return nil
			default:
				return fail(ExitCodeUsageError, ErrMsgInvalidFormat+" '"+format+"'", nil)
			}
		},
	}
	cmd.Flags().StringVar(&format, FlagFormat, FlagDefaultFormat, "Output format (text or json)")
	return cmd
}
