package main

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itsatony/go-markprompt"
)

// formatConfig holds parsed format command configuration
type formatConfig struct {
	outputPath string
	indent     int
}

func formatCmd(streams *cliIO, newLogger func() *zap.Logger) *cobra.Command {
	cfg := &formatConfig{}
	cmd := &cobra.Command{
		Use:   CmdNameFormat + " [file|-]",
		Short: "Pretty-print markup",
		Long: `Pretty-print a markup fragment. Reads stdin when no file is given.

Tag and attribute names are lower-cased; text is never re-escaped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := InputSourceStdin
			if len(args) == 1 {
				path = args[0]
			}
			return runFormat(path, cfg, streams, newLogger())
		},
	}
	cmd.Flags().StringVarP(&cfg.outputPath, FlagOutput, FlagOutputShort, FlagDefaultOutput, "Output file (- for stdout)")
	cmd.Flags().IntVar(&cfg.indent, FlagIndent, len(markprompt.DefaultIndent), "Spaces per indentation level")
	return cmd
}

func runFormat(path string, cfg *formatConfig, streams *cliIO, logger *zap.Logger) error {
	raw, err := readInput(path, streams.stdin)
	if err != nil {
		return fail(ExitCodeInputError, ErrMsgReadFileFailed, err)
	}
	if cfg.indent < 0 {
		cfg.indent = 0
	}
	engine, err := markprompt.New(
		markprompt.WithLogger(logger),
		markprompt.WithIndent(strings.Repeat(" ", cfg.indent)),
	)
	if err != nil {
		return fail(ExitCodeError, ErrMsgFormatFailed, err)
	}
	out, err := engine.Format(string(raw))
	if err != nil {
		return fail(ExitCodeValidationError, ErrMsgFormatFailed, err)
	}
	if err := writeOutput(cfg.outputPath, []byte(out+"\n"), streams.stdout); err != nil {
		return fail(ExitCodeError, ErrMsgWriteOutputFailed, err)
	}
	return nil
}
