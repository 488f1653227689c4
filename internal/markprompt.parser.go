package internal

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// Parser produces an AST from a token stream
type Parser struct {
	tokens []Token
	pos    int
	logger *zap.Logger
}

// NewParser creates a new parser for the given token stream
func NewParser(tokens []Token, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgParserCreated, zap.Int(LogFieldTokens, len(tokens)))
	return &Parser{tokens: tokens, logger: logger}
}

// Parse produces the AST root node from the token stream
func (p *Parser) Parse() (*RootNode, error) {
	p.logger.Debug(LogMsgParserStart)

	nodes, err := p.parseNodes()
	if err != nil {
		return nil, err
	}
	if p.isBlockClose() {
		name := p.peekName()
		return nil, &ParserError{Message: ErrMsgUnexpectedClose, Position: p.current().Position, ActualTag: name}
	}

	p.logger.Debug(LogMsgParserEnd, zap.Int(LogFieldNodes, len(nodes)))
	return &RootNode{Children: nodes}, nil
}

// ParseTemplate tokenizes and parses source in one step
func ParseTemplate(source string, config LexerConfig, logger *zap.Logger) (*RootNode, error) {
	tokens, err := NewLexerWithConfig(source, config, logger).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens, logger).Parse()
}

// parseNodes parses a sequence of nodes until EOF or a closing tag
func (p *Parser) parseNodes() ([]Node, error) {
	var nodes []Node
	for !p.isAtEnd() && !p.isBlockClose() {
		node, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

func (p *Parser) parseNode() (Node, error) {
	tok := p.current()
	switch tok.Type {
	case TokenTypeText:
		p.advance()
		return NewTextNode(tok.Value, tok.Position), nil
	case TokenTypeOpenTag:
		return p.parseTag()
	default:
		return nil, p.newUnexpectedTokenError(tok)
	}
}

// parseTag parses a tag (self-closing or block)
func (p *Parser) parseTag() (Node, error) {
	openTok := p.advance()

	nameTok := p.current()
	if nameTok.Type != TokenTypeTagName {
		return nil, p.newExpectedTokenError(TokenTypeTagName, nameTok)
	}
	p.advance()

	attrs, err := p.parseAttributes()
	if err != nil {
		return nil, err
	}

	endTok := p.current()
	switch endTok.Type {
	case TokenTypeSelfClose:
		p.advance()
		if nameTok.Value == TagNameIf || nameTok.Value == TagNameFor {
			return nil, &ParserError{Message: ErrMsgBlockRequired, Position: openTok.Position, ActualTag: nameTok.Value}
		}
		if nameTok.Value == TagNameElseIf || nameTok.Value == TagNameElse {
			return nil, &ParserError{Message: ErrMsgCondOutsideIf, Position: openTok.Position, ActualTag: nameTok.Value}
		}
		if nameTok.Value == TagNameComment {
			return nil, nil
		}
		return &TagNode{Name: nameTok.Value, Attrs: attrs, SelfClose: true, Position: openTok.Position}, nil
	case TokenTypeCloseTag:
		p.advance()
		return p.parseBlockTag(nameTok.Value, attrs, openTok.Position)
	default:
		return nil, p.newUnexpectedTokenError(endTok)
	}
}

// parseBlockTag parses the content and closing of a block tag
func (p *Parser) parseBlockTag(name string, attrs Attributes, pos Position) (Node, error) {
	switch name {
	case TagNameIf:
		return p.parseConditional(attrs, pos)
	case TagNameElseIf, TagNameElse:
		return nil, &ParserError{Message: ErrMsgCondOutsideIf, Position: pos, ActualTag: name}
	case TagNameRaw, TagNameComment:
		// The lexer delivers the body as at most one text token.
		body := ""
		if p.current().Type == TokenTypeText {
			body = p.advance().Value
		}
		if err := p.expectClose(name); err != nil {
			return nil, err
		}
		if name == TagNameComment {
			return nil, nil
		}
		return &TagNode{Name: name, Attrs: attrs, Raw: body, Position: pos}, nil
	}

	children, err := p.parseNodes()
	if err != nil {
		return nil, err
	}
	if err := p.expectClose(name); err != nil {
		return nil, err
	}

	if name == TagNameFor {
		return p.newForNode(attrs, children, pos)
	}
	return &TagNode{Name: name, Attrs: attrs, Children: children, Position: pos}, nil
}

// expectClose consumes the closing sequence {~/name~}
func (p *Parser) expectClose(name string) error {
	if !p.isBlockClose() {
		return &ParserError{Message: ErrMsgUnclosedTag, Position: p.current().Position, ExpectedTag: name}
	}
	p.advance()

	closeNameTok := p.current()
	if closeNameTok.Type != TokenTypeTagName {
		return p.newExpectedTokenError(TokenTypeTagName, closeNameTok)
	}
	if closeNameTok.Value != name {
		return &ParserError{
			Message:     ErrMsgMismatchedTag,
			Position:    closeNameTok.Position,
			ExpectedTag: name,
			ActualTag:   closeNameTok.Value,
		}
	}
	p.advance()

	if p.current().Type != TokenTypeCloseTag {
		return p.newExpectedTokenError(TokenTypeCloseTag, p.current())
	}
	p.advance()
	return nil
}

func (p *Parser) newForNode(attrs Attributes, children []Node, pos Position) (*ForNode, error) {
	item, ok := attrs.Get(AttrItem)
	if !ok || item == "" {
		return nil, &ParserError{Message: ErrMsgForMissingItem, Position: pos, ActualTag: TagNameFor}
	}
	source, ok := attrs.Get(AttrIn)
	if !ok || source == "" {
		return nil, &ParserError{Message: ErrMsgForMissingIn, Position: pos, ActualTag: TagNameFor}
	}
	limit := 0
	if raw, ok := attrs.Get(AttrLimit); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, &ParserError{Message: ErrMsgForInvalidLimit, Position: pos, ActualTag: TagNameFor}
		}
		limit = n
	}
	return &ForNode{
		ItemVar:  item,
		IndexVar: attrs.GetDefault(AttrIndex, ""),
		Source:   source,
		Limit:    limit,
		Children: children,
		Position: pos,
	}, nil
}

// parseConditional parses an if/elseif/else conditional block
func (p *Parser) parseConditional(ifAttrs Attributes, pos Position) (*ConditionalNode, error) {
	condition, ok := ifAttrs.Get(AttrEval)
	if !ok {
		return nil, &ParserError{Message: ErrMsgCondMissingEval, Position: pos, ActualTag: TagNameIf}
	}

	var branches []ConditionalBranch
	branchPos := pos
	isElse := false

	for {
		children, next, nextAttrs, nextPos, err := p.parseConditionalBranch(pos)
		if err != nil {
			return nil, err
		}
		branches = append(branches, ConditionalBranch{
			Condition: condition,
			Children:  children,
			IsElse:    isElse,
			Position:  branchPos,
		})

		switch next {
		case "":
			return &ConditionalNode{Branches: branches, Position: pos}, nil
		case TagNameElseIf:
			if isElse {
				return nil, &ParserError{Message: ErrMsgCondElseNotLast, Position: nextPos, ActualTag: next}
			}
			condition, ok = nextAttrs.Get(AttrEval)
			if !ok {
				return nil, &ParserError{Message: ErrMsgCondMissingEval, Position: nextPos, ActualTag: next}
			}
		case TagNameElse:
			if isElse {
				return nil, &ParserError{Message: ErrMsgCondElseNotLast, Position: nextPos, ActualTag: next}
			}
			if nextAttrs.Has(AttrEval) {
				return nil, &ParserError{Message: ErrMsgCondInvalidElse, Position: nextPos, ActualTag: next}
			}
			condition = ""
			isElse = true
		}
		branchPos = nextPos
	}
}

// parseConditionalBranch parses nodes until an elseif, an else, or the
// closing if tag. It returns the name of the boundary tag, or "" when the
// conditional was closed.
func (p *Parser) parseConditionalBranch(ifPos Position) ([]Node, string, Attributes, Position, error) {
	var children []Node

	for !p.isAtEnd() {
		tok := p.current()

		if tok.Type == TokenTypeBlockClose {
			if err := p.expectClose(TagNameIf); err != nil {
				return nil, "", nil, Position{}, err
			}
			return children, "", nil, tok.Position, nil
		}

		if tok.Type == TokenTypeOpenTag {
			name := p.peekName()
			if name == TagNameElseIf || name == TagNameElse {
				p.advance() // OPEN_TAG
				p.advance() // TAG_NAME
				attrs, err := p.parseAttributes()
				if err != nil {
					return nil, "", nil, Position{}, err
				}
				closeTok := p.current()
				if closeTok.Type == TokenTypeSelfClose {
					// {~mp.else /~} is accepted as a boundary marker
					p.advance()
				} else if closeTok.Type == TokenTypeCloseTag {
					p.advance()
				} else {
					return nil, "", nil, Position{}, p.newExpectedTokenError(TokenTypeCloseTag, closeTok)
				}
				return children, name, attrs, tok.Position, nil
			}
		}

		node, err := p.parseNode()
		if err != nil {
			return nil, "", nil, Position{}, err
		}
		if node != nil {
			children = append(children, node)
		}
	}

	return nil, "", nil, Position{}, &ParserError{Message: ErrMsgUnclosedTag, Position: ifPos, ExpectedTag: TagNameIf}
}

// parseAttributes parses tag attributes until we hit a closing token
func (p *Parser) parseAttributes() (Attributes, error) {
	var attrs Attributes

	for !p.isAtEnd() {
		tok := p.current()
		if tok.Type == TokenTypeSelfClose || tok.Type == TokenTypeCloseTag {
			break
		}
		if tok.Type != TokenTypeAttrName {
			return nil, p.newUnexpectedTokenError(tok)
		}
		p.advance()

		if p.current().Type != TokenTypeEquals {
			return nil, p.newExpectedTokenError(TokenTypeEquals, p.current())
		}
		p.advance()

		valTok := p.current()
		if valTok.Type != TokenTypeAttrValue && valTok.Type != TokenTypeAttrExpr {
			return nil, p.newExpectedTokenError(TokenTypeAttrValue, valTok)
		}
		p.advance()

		if attrs.Has(tok.Value) {
			return nil, &ParserError{Message: ErrMsgDuplicateAttr, Position: tok.Position, Token: tok}
		}
		attrs = append(attrs, Attribute{
			Name:     tok.Value,
			Value:    valTok.Value,
			Expr:     valTok.Type == TokenTypeAttrExpr,
			Position: tok.Position,
		})
	}

	return attrs, nil
}

// peekName returns the tag name following the current delimiter token
func (p *Parser) peekName() string {
	if p.pos+1 < len(p.tokens) && p.tokens[p.pos+1].Type == TokenTypeTagName {
		return p.tokens[p.pos+1].Value
	}
	return ""
}

func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenTypeEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) isAtEnd() bool {
	return p.current().Type == TokenTypeEOF
}

func (p *Parser) isBlockClose() bool {
	return p.current().Type == TokenTypeBlockClose
}

func (p *Parser) newUnexpectedTokenError(tok Token) error {
	return &ParserError{Message: ErrMsgUnexpectedToken, Position: tok.Position, Token: tok}
}

func (p *Parser) newExpectedTokenError(expected TokenType, actual Token) error {
	return &ParserError{Message: ErrMsgExpectedToken, Position: actual.Position, Expected: expected, Token: actual}
}

// ParserError represents a parser error with context
type ParserError struct {
	Message     string
	Position    Position
	Token       Token
	Expected    TokenType
	ExpectedTag string
	ActualTag   string
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Position.String())
}

// Parser error message constants
const (
	ErrMsgUnexpectedToken = "unexpected token"
	ErrMsgExpectedToken   = "expected token"
	ErrMsgMismatchedTag   = "mismatched closing tag"
	ErrMsgUnclosedTag     = "unclosed tag"
	ErrMsgUnexpectedClose = "closing tag without matching open tag"
	ErrMsgDuplicateAttr   = "duplicate attribute"
	ErrMsgBlockRequired   = "tag must be used as a block"
	ErrMsgCondMissingEval = "conditional requires an eval attribute"
	ErrMsgCondInvalidElse = "else branch cannot have an eval attribute"
	ErrMsgCondElseNotLast = "else must be the last branch"
	ErrMsgCondOutsideIf   = "branch tag outside of a conditional"
	ErrMsgForMissingItem  = "loop requires an item attribute"
	ErrMsgForMissingIn    = "loop requires an in attribute"
	ErrMsgForInvalidLimit = "loop limit must be a non-negative integer"
)
