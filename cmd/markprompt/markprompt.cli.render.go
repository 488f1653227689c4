package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itsatony/go-markprompt"
)

// renderConfig holds parsed render command configuration
type renderConfig struct {
	dataInline   string
	dataFilePath string
	outputPath   string
	templatesDir string
}

func renderCmd(streams *cliIO, newLogger func() *zap.Logger) *cobra.Command {
	cfg := &renderConfig{}
	cmd := &cobra.Command{
		Use:   CmdNameRender + " <file|->",
		Short: "Compile a template and print the formatted prompt",
		Long: `Compile a template document with optional data and print the formatted prompt.

Data is given inline with --data or from a file with --data-file, as JSON
or YAML. Includes resolve against --templates, or the template's directory
when rendering a file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), args[0], cfg, streams, newLogger())
		},
	}
	cmd.Flags().StringVarP(&cfg.dataInline, FlagData, FlagDataShort, "", "Template data as JSON or YAML")
	cmd.Flags().StringVarP(&cfg.dataFilePath, FlagDataFile, FlagDataFileShort, "", "File holding template data")
	cmd.Flags().StringVarP(&cfg.outputPath, FlagOutput, FlagOutputShort, FlagDefaultOutput, "Output file (- for stdout)")
	cmd.Flags().StringVarP(&cfg.templatesDir, FlagTemplates, FlagTemplatesShort, "", "Directory mp.include loads from")
	return cmd
}

func runRender(ctx context.Context, path string, cfg *renderConfig, streams *cliIO, logger *zap.Logger) error {
	data, err := loadData(cfg.dataInline, cfg.dataFilePath)
	if err != nil {
		return fail(ExitCodeInputError, ErrMsgInvalidData, err)
	}

	opts := []markprompt.Option{markprompt.WithLogger(logger)}
	if cfg.templatesDir != "" {
		opts = append(opts, markprompt.WithSource(markprompt.NewFileSource(cfg.templatesDir)))
	}
	engine, err := markprompt.New(opts...)
	if err != nil {
		return fail(ExitCodeError, ErrMsgRenderFailed, err)
	}

	var out string
	if path == InputSourceStdin {
		source, err := readInput(path, streams.stdin)
		if err != nil {
			return fail(ExitCodeInputError, ErrMsgReadFileFailed, err)
		}
		node, err := engine.Compile(ctx, string(source), data, nil)
		if err != nil {
			return fail(renderExitCode(err), ErrMsgRenderFailed, err)
		}
		out, err = engine.RenderNode(node)
		if err != nil {
			return fail(renderExitCode(err), ErrMsgRenderFailed, err)
		}
	} else {
		out, err = engine.RenderFile(ctx, markprompt.RenderOptions{FilePath: path, Data: data})
		if err != nil {
			return fail(renderExitCode(err), ErrMsgRenderFailed, err)
		}
	}

	if err := writeOutput(cfg.outputPath, []byte(out+"\n"), streams.stdout); err != nil {
		return fail(ExitCodeError, ErrMsgWriteOutputFailed, err)
	}
	return nil
}

// renderExitCode maps a render failure to an exit code. Template problems
// are validation errors, serialize and format failures are internal, and
// anything else came from reading files or sources.
func renderExitCode(err error) int {
	switch {
	case markprompt.IsCompileError(err), markprompt.IsPropsShapeError(err):
		return ExitCodeValidationError
	case markprompt.IsSerializeError(err), markprompt.IsFormatError(err):
		return ExitCodeError
	default:
		return ExitCodeInputError
	}
}
