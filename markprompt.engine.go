package markprompt

import (
	"context"

	"go.uber.org/zap"

	"github.com/itsatony/go-markprompt/internal"
)

// Engine is the main entry point for markprompt. It owns the configuration
// shared by every render call and is safe for concurrent use: each call
// builds its own node tree and registry view.
type Engine struct {
	config     *engineConfig
	components Components
	funcs      *internal.FuncRegistry
	logger     *zap.Logger
}

// New creates a new markprompt Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	components := defaultComponents.Merge(config.components)
	if err := config.components.validate(); err != nil {
		return nil, err
	}

	logger.Debug(LogMsgEngineCreated, zap.Int(LogFieldComponents, len(components)))
	return &Engine{
		config:     config,
		components: components,
		funcs:      internal.NewBuiltinFuncRegistry(),
		logger:     logger,
	}, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// Components returns a copy of the engine's registry
func (e *Engine) Components() Components {
	return e.components.Clone()
}

func (e *Engine) lexerConfig() internal.LexerConfig {
	return internal.LexerConfig{
		OpenDelim:  e.config.openDelim,
		CloseDelim: e.config.closeDelim,
	}
}

// registry returns the engine registry overlaid by per-call overrides
func (e *Engine) registry(overrides Components) (Components, error) {
	if len(overrides) == 0 {
		return e.components, nil
	}
	if err := overrides.validate(); err != nil {
		return nil, err
	}
	return e.components.Merge(overrides), nil
}

// Compile turns template source into a node tree. data is exposed to the
// template under "data"; components override registry entries by tag name
// for this call only.
func (e *Engine) Compile(ctx context.Context, source string, data map[string]any, components Components) (*Node, error) {
	return e.compile(ctx, source, data, components, e.config.source)
}

func (e *Engine) compile(ctx context.Context, source string, data map[string]any, components Components, includes TemplateSource) (*Node, error) {
	comps, err := e.registry(components)
	if err != nil {
		return nil, err
	}
	e.logger.Debug(LogMsgCompileStart, zap.Int(LogFieldBytes, len(source)))

	c := &compiler{engine: e, components: comps, logger: e.logger, source: includes}
	node, err := c.compileDocument(ctx, source, data)
	if err != nil {
		return nil, err
	}

	e.logger.Debug(LogMsgCompileEnd, zap.Int(LogFieldComponents, c.invoked))
	return node, nil
}

// Serialize writes a node tree as flat markup
func (e *Engine) Serialize(n *Node) (string, error) {
	out, err := Serialize(n)
	if err != nil {
		return "", err
	}
	e.logger.Debug(LogMsgSerializeEnd, zap.Int(LogFieldBytes, len(out)))
	return out, nil
}

// Format pretty-prints markup with the engine's indent
func (e *Engine) Format(raw string) (string, error) {
	out, err := formatMarkup(raw, e.config.indent)
	if err != nil {
		return "", err
	}
	e.logger.Debug(LogMsgFormatEnd, zap.Int(LogFieldBytes, len(out)))
	return out, nil
}
