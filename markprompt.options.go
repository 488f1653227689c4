package markprompt

import (
	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

type engineConfig struct {
	openDelim  string
	closeDelim string
	maxDepth   int
	indent     string
	logger     *zap.Logger
	components Components
	source     TemplateSource
}

func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		openDelim:  DefaultOpenDelim,
		closeDelim: DefaultCloseDelim,
		maxDepth:   DefaultMaxDepth,
		indent:     DefaultIndent,
	}
}

// WithDelimiters sets custom delimiters for template tags.
// Default: "{~" and "~}"
func WithDelimiters(open, close string) Option {
	return func(c *engineConfig) {
		if open != "" {
			c.openDelim = open
		}
		if close != "" {
			c.closeDelim = close
		}
	}
}

// WithMaxDepth sets how deeply mp.include may nest.
// Use 0 for unlimited depth.
// Default: 10
func WithMaxDepth(depth int) Option {
	return func(c *engineConfig) {
		c.maxDepth = depth
	}
}

// WithIndent sets the string the formatter indents one level with.
// Default: two spaces
func WithIndent(indent string) Option {
	return func(c *engineConfig) {
		c.indent = indent
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithComponents adds engine-wide components on top of the defaults. They
// are merged once at construction; per-call overrides still win over them.
func WithComponents(components Components) Option {
	return func(c *engineConfig) {
		c.components = c.components.Merge(components)
	}
}

// WithSource sets where mp.include and RenderTemplate load templates from
func WithSource(source TemplateSource) Option {
	return func(c *engineConfig) {
		c.source = source
	}
}
