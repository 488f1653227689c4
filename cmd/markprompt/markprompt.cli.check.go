package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itsatony/go-markprompt"
)

// checkConfig holds parsed check command configuration
type checkConfig struct {
	dataInline   string
	dataFilePath string
}

func checkCmd(streams *cliIO, newLogger func() *zap.Logger) *cobra.Command {
	cfg := &checkConfig{}
	cmd := &cobra.Command{
		Use:   CmdNameCheck + " <file>...",
		Short: "Compile templates and report errors",
		Long: `Compile each template with the given data and report whether it renders.

Exits non-zero if any template fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), args, cfg, streams, newLogger())
		},
	}
	cmd.Flags().StringVarP(&cfg.dataInline, FlagData, FlagDataShort, "", "Template data as JSON or YAML")
	cmd.Flags().StringVarP(&cfg.dataFilePath, FlagDataFile, FlagDataFileShort, "", "File holding template data")
	return cmd
}

func runCheck(ctx context.Context, paths []string, cfg *checkConfig, streams *cliIO, logger *zap.Logger) error {
	data, err := loadData(cfg.dataInline, cfg.dataFilePath)
	if err != nil {
		return fail(ExitCodeInputError, ErrMsgInvalidData, err)
	}
	engine, err := markprompt.New(markprompt.WithLogger(logger))
	if err != nil {
		return fail(ExitCodeError, ErrMsgCheckFailed, err)
	}

	failed := 0
	for _, path := range paths {
		if err := checkFile(ctx, engine, path, data); err != nil {
			failed++
			fmt.Fprintf(streams.stdout, FmtCheckErr, CheckFailed, path, err)
			continue
		}
		fmt.Fprintf(streams.stdout, FmtCheckOK, CheckOK, path)
	}
	if failed > 0 {
		return fail(ExitCodeValidationError, ErrMsgCheckFailed, fmt.Errorf("%d of %d templates", failed, len(paths)))
	}
	return nil
}

// checkFile renders a template the way render would, discarding the output
func checkFile(ctx context.Context, engine *markprompt.Engine, path string, data map[string]any) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	_, err := engine.RenderFile(ctx, markprompt.RenderOptions{FilePath: path, Data: data})
	return err
}
