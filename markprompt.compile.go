package markprompt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/itsatony/go-markprompt/internal"
)

// compiler turns one parsed template into render nodes. It is created per
// Compile call and discarded afterwards.
type compiler struct {
	engine     *Engine
	components Components
	source     TemplateSource
	logger     *zap.Logger
	invoked    int
}

// unit is one document being compiled: the root template or an include
type unit struct {
	*compiler
	lineOffset int
	depth      int
}

// compileDocument parses frontmatter and body and compiles the body into a
// root fragment.
func (c *compiler) compileDocument(ctx context.Context, source string, data map[string]any) (*Node, error) {
	doc, err := parseDocument(source)
	if err != nil {
		return nil, err
	}
	scope := NewScope(doc.scopeVars(data))
	nodes, err := c.compileBody(ctx, doc.Body, doc.BodyLine, scope, 0)
	if err != nil {
		return nil, err
	}
	return Fragment(nodes...), nil
}

func (c *compiler) compileBody(ctx context.Context, body string, bodyLine int, scope *Scope, depth int) ([]*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := internal.ParseTemplate(body, c.engine.lexerConfig(), c.logger)
	if err != nil {
		return nil, syntaxError(err, bodyLine-1)
	}
	u := &unit{compiler: c, lineOffset: bodyLine - 1, depth: depth}
	return u.nodes(ctx, root.Children, scope)
}

// syntaxError converts lexer and parser failures into a CompileError
// positioned in the full document.
func syntaxError(err error, lineOffset int) error {
	var lexErr *internal.LexerError
	if errors.As(err, &lexErr) {
		return NewCompileError(ErrMsgMalformedDocument+": "+lexErr.Message, shift(lexErr.Position, lineOffset), err)
	}
	var parseErr *internal.ParserError
	if errors.As(err, &parseErr) {
		msg := ErrMsgMalformedDocument + ": " + parseErr.Message
		if parseErr.ExpectedTag != "" {
			msg += " '" + parseErr.ExpectedTag + "'"
		} else if parseErr.ActualTag != "" {
			msg += " '" + parseErr.ActualTag + "'"
		}
		return NewCompileError(msg, shift(parseErr.Position, lineOffset), err)
	}
	return NewCompileError(ErrMsgMalformedDocument, Position{Line: lineOffset + 1, Column: 1}, err)
}

func shift(p internal.Position, lineOffset int) Position {
	return Position{Offset: p.Offset, Line: p.Line + lineOffset, Column: p.Column}
}

func (u *unit) pos(p internal.Position) Position {
	return shift(p, u.lineOffset)
}

func (u *unit) nodes(ctx context.Context, nodes []internal.Node, scope *Scope) ([]*Node, error) {
	var out []*Node
	for _, n := range nodes {
		compiled, err := u.node(ctx, n, scope)
		if err != nil {
			return nil, err
		}
		if compiled != nil {
			out = append(out, compiled)
		}
	}
	return out, nil
}

func (u *unit) node(ctx context.Context, n internal.Node, scope *Scope) (*Node, error) {
	switch n := n.(type) {
	case *internal.TextNode:
		if n.Content == "" {
			return nil, nil
		}
		return Text(n.Content), nil
	case *internal.TagNode:
		if n.IsBuiltin() {
			return u.builtin(ctx, n, scope)
		}
		return u.component(ctx, n, scope)
	case *internal.ConditionalNode:
		return u.conditional(ctx, n, scope)
	case *internal.ForNode:
		return u.loop(ctx, n, scope)
	default:
		return nil, NewCompileError(ErrMsgMalformedDocument, u.pos(n.Pos()), nil)
	}
}

// component resolves a tag against the registry and invokes it with the
// compiled children and evaluated attributes.
func (u *unit) component(ctx context.Context, tag *internal.TagNode, scope *Scope) (*Node, error) {
	fn, ok := u.components.Resolve(tag.Name)
	if !ok {
		suggestions := internal.FindSimilarStrings(tag.Name, u.components.Names(), internal.SuggestionMaxResults)
		return nil, NewUnknownComponentError(tag.Name, u.pos(tag.Position), suggestions)
	}

	children, err := u.nodes(ctx, tag.Children, scope)
	if err != nil {
		return nil, err
	}
	props := NewProps(children...)
	for _, attr := range tag.Attrs {
		var value any = attr.Value
		if attr.Expr {
			value, err = u.eval(attr.Value, scope, attr.Position)
			if err != nil {
				return nil, err
			}
		}
		props = props.With(attr.Name, value)
	}

	u.invoked++
	u.logger.Debug(LogMsgComponentInvoked, zap.String(LogFieldTag, tag.Name))
	node, err := fn(props)
	if err != nil {
		if IsPropsShapeError(err) {
			return nil, err
		}
		return nil, NewComponentError(tag.Name, u.pos(tag.Position), err)
	}
	if node == nil {
		return nil, NewCompileError(ErrMsgNilComponentResult+" '"+tag.Name+"'", u.pos(tag.Position), nil)
	}
	return node, nil
}

// eval evaluates an expression. Paths that do not resolve are reported with
// the closest known paths.
func (u *unit) eval(expr string, scope *Scope, at internal.Position) (any, error) {
	val, err := internal.EvaluateExpression(expr, u.engine.funcs, scope)
	if err == nil {
		return val, nil
	}
	var undef *internal.UndefinedPathError
	if errors.As(err, &undef) {
		suggestions := internal.FindSimilarStrings(undef.Path, scope.Keys(), internal.SuggestionMaxResults)
		return nil, NewUndefinedReferenceError(undef.Path, u.pos(at), suggestions)
	}
	return nil, NewCompileError(ErrMsgInvalidExpression+": "+expr, u.pos(at), err)
}

func (u *unit) conditional(ctx context.Context, cond *internal.ConditionalNode, scope *Scope) (*Node, error) {
	for _, branch := range cond.Branches {
		if !branch.IsElse {
			val, err := u.eval(branch.Condition, scope, branch.Position)
			if err != nil {
				return nil, err
			}
			if !internal.IsTruthy(val) {
				continue
			}
		}
		nodes, err := u.nodes(ctx, branch.Children, scope)
		if err != nil {
			return nil, err
		}
		return Fragment(nodes...), nil
	}
	return nil, nil
}

func (u *unit) loop(ctx context.Context, loop *internal.ForNode, scope *Scope) (*Node, error) {
	val, err := u.eval(loop.Source, scope, loop.Position)
	if err != nil {
		return nil, err
	}
	items, err := internal.ToSlice(val)
	if err != nil {
		return nil, NewAttributeError(ErrMsgNotIterable, internal.TagNameFor, internal.AttrIn, u.pos(loop.Position))
	}
	if loop.Limit > 0 && len(items) > loop.Limit {
		items = items[:loop.Limit]
	}

	var out []*Node
	for i, item := range items {
		vars := map[string]any{loop.ItemVar: item}
		if loop.IndexVar != "" {
			vars[loop.IndexVar] = i
		}
		nodes, err := u.nodes(ctx, loop.Children, scope.Child(vars))
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	return Fragment(out...), nil
}

func (u *unit) builtin(ctx context.Context, tag *internal.TagNode, scope *Scope) (*Node, error) {
	switch tag.Name {
	case internal.TagNameVar:
		return u.variable(tag, scope)
	case internal.TagNameRaw:
		return u.raw(tag, scope)
	case internal.TagNameInclude:
		return u.include(ctx, tag, scope)
	default:
		return nil, NewCompileError(ErrMsgUnknownBuiltin+" '"+tag.Name+"'", u.pos(tag.Position), nil)
	}
}

// variable inlines a scope value as a text leaf
func (u *unit) variable(tag *internal.TagNode, scope *Scope) (*Node, error) {
	name, ok := tag.Attrs.Get(internal.AttrName)
	if !ok || name == "" {
		return nil, NewAttributeError(ErrMsgMissingAttribute, tag.Name, internal.AttrName, u.pos(tag.Position))
	}
	val, found := scope.Get(name)
	if !found {
		if def, ok := tag.Attrs.Get(internal.AttrDefault); ok {
			return Text(def), nil
		}
		suggestions := internal.FindSimilarStrings(name, scope.Keys(), internal.SuggestionMaxResults)
		return nil, NewUndefinedReferenceError(name, u.pos(tag.Position), suggestions)
	}
	format := tag.Attrs.GetDefault(internal.AttrFormat, FormatText)
	if format != FormatText && format != FormatJSON && format != FormatYAML {
		return nil, NewAttributeError(ErrMsgInvalidAttribute+" '"+format+"'", tag.Name, internal.AttrFormat, u.pos(tag.Position))
	}
	text, err := formatValue(val, format, true)
	if err != nil {
		return nil, NewCompileError(ErrMsgEncodeFailed, u.pos(tag.Position), err)
	}
	return Text(text), nil
}

// raw emits a verbatim region: the block body, or a scope value when used
// as a self-closing tag with a name.
func (u *unit) raw(tag *internal.TagNode, scope *Scope) (*Node, error) {
	if !tag.SelfClose {
		return Verbatim(tag.Raw), nil
	}
	name, ok := tag.Attrs.Get(internal.AttrName)
	if !ok || name == "" {
		return nil, NewAttributeError(ErrMsgMissingAttribute, tag.Name, internal.AttrName, u.pos(tag.Position))
	}
	val, found := scope.Get(name)
	if !found {
		suggestions := internal.FindSimilarStrings(name, scope.Keys(), internal.SuggestionMaxResults)
		return nil, NewUndefinedReferenceError(name, u.pos(tag.Position), suggestions)
	}
	text, err := formatValue(val, FormatText, false)
	if err != nil {
		return nil, NewCompileError(ErrMsgEncodeFailed, u.pos(tag.Position), err)
	}
	return Verbatim(text), nil
}

// include compiles another template from the engine's source in the
// current scope
func (u *unit) include(ctx context.Context, tag *internal.TagNode, scope *Scope) (*Node, error) {
	name, ok := tag.Attrs.Get(internal.AttrTemplate)
	if !ok || name == "" {
		return nil, NewAttributeError(ErrMsgMissingAttribute, tag.Name, internal.AttrTemplate, u.pos(tag.Position))
	}
	if u.source == nil {
		return nil, NewCompileError(ErrMsgNoSource, u.pos(tag.Position), nil)
	}
	depth := u.depth + 1
	if limit := u.engine.config.maxDepth; limit > 0 && depth > limit {
		return nil, NewCompileError(ErrMsgDepthExceeded, u.pos(tag.Position), nil)
	}

	text, err := u.source.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	u.logger.Debug(LogMsgIncludeLoaded, zap.String(LogFieldTemplate, name), zap.Int(LogFieldDepth, depth))

	doc, err := parseDocument(text)
	if err != nil {
		return nil, err
	}
	nodes, err := u.compileBody(ctx, doc.Body, doc.BodyLine, scope, depth)
	if err != nil {
		return nil, err
	}
	return Fragment(nodes...), nil
}

// formatValue renders a scope value as text. Scalars print as-is; lists
// and maps are encoded as JSON unless YAML is asked for. Inline encodings
// stay on one line, since text leaves are reflowed by the formatter.
func formatValue(val any, format string, inline bool) (string, error) {
	switch format {
	case FormatJSON:
		return encodeJSON(val, inline)
	case FormatYAML:
		return encodeYAML(val, inline)
	}
	if internal.IsScalar(val) {
		return internal.AnyToString(val), nil
	}
	return encodeJSON(val, inline)
}

// encodeJSON writes JSON without HTML escaping, indented unless inline
func encodeJSON(val any, inline bool) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if !inline {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(val); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// encodeYAML writes YAML, in flow style when inline
func encodeYAML(val any, inline bool) (string, error) {
	var doc yaml.Node
	if err := doc.Encode(val); err != nil {
		return "", err
	}
	if inline {
		flowStyle(&doc)
	}
	out, err := yaml.Marshal(&doc)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}

func flowStyle(n *yaml.Node) {
	if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
		n.Style |= yaml.FlowStyle
	}
	for _, c := range n.Content {
		flowStyle(c)
	}
}
