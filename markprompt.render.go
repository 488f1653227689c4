package markprompt

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// RenderOptions configures RenderFile
type RenderOptions struct {
	// FilePath is the template document to render
	FilePath string
	// Data is exposed to the template under "data"
	Data map[string]any
	// Components override registry entries by tag name for this call
	Components Components
}

// defaultEngine backs the package-level helpers
var defaultEngine = MustNew()

// RenderNode serializes and formats a node tree. Trusted content reaches
// the output byte-for-byte; the formatter never sees inside it.
func (e *Engine) RenderNode(n *Node) (string, error) {
	markup, verbatim, err := serializeProtected(n)
	if err != nil {
		return "", err
	}
	e.logger.Debug(LogMsgSerializeEnd, zap.Int(LogFieldBytes, len(markup)), zap.Int(LogFieldVerbatim, len(verbatim)))

	out, err := e.Format(markup)
	if err != nil {
		return "", err
	}
	return restoreVerbatim(out, verbatim), nil
}

// RenderFile reads a template document, compiles it and renders the
// result. A read failure is returned as the filesystem error itself. When
// the engine has no template source, includes resolve against the file's
// directory.
func (e *Engine) RenderFile(ctx context.Context, opts RenderOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	e.logger.Debug(LogMsgRenderFile, zap.String(LogFieldPath, opts.FilePath))

	source, err := os.ReadFile(opts.FilePath)
	if err != nil {
		return "", err
	}

	includes := e.config.source
	if includes == nil {
		includes = NewFileSource(filepath.Dir(opts.FilePath))
	}
	node, err := e.compile(ctx, string(source), opts.Data, opts.Components, includes)
	if err != nil {
		return "", err
	}
	return e.RenderNode(node)
}

// RenderTemplate loads a named template from the engine's source, compiles
// it and renders the result.
func (e *Engine) RenderTemplate(ctx context.Context, name string, data map[string]any, components Components) (string, error) {
	if e.config.source == nil {
		return "", NewSourceError(ErrMsgNoSource, name, nil)
	}
	e.logger.Debug(LogMsgRenderTemplate, zap.String(LogFieldTemplate, name))

	source, err := e.config.source.Load(ctx, name)
	if err != nil {
		return "", err
	}
	node, err := e.Compile(ctx, source, data, components)
	if err != nil {
		return "", err
	}
	return e.RenderNode(node)
}

// Compile compiles template source with the default engine
func Compile(ctx context.Context, source string, data map[string]any, components Components) (*Node, error) {
	return defaultEngine.Compile(ctx, source, data, components)
}

// RenderNode renders a node tree with the default engine
func RenderNode(n *Node) (string, error) {
	return defaultEngine.RenderNode(n)
}

// RenderFile renders a template document with the default engine
func RenderFile(ctx context.Context, opts RenderOptions) (string, error) {
	return defaultEngine.RenderFile(ctx, opts)
}
