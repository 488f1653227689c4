package internal

import "fmt"

// ExprParser parses expression tokens into an AST using precedence climbing:
// || < && < equality < comparison < unary < call/primary.
type ExprParser struct {
	tokens []ExprToken
	pos    int
}

// NewExprParser creates a new expression parser
func NewExprParser(tokens []ExprToken) *ExprParser {
	return &ExprParser{tokens: tokens}
}

// Parse parses the expression and returns the root AST node
func (p *ExprParser) Parse() (ExprNode, error) {
	if p.check(ExprTokenTypeEOF) {
		return nil, NewExprParseError(ErrMsgExprEmptyExpression, 0, "")
	}

	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.check(ExprTokenTypeEOF) {
		return nil, NewExprParseError(ErrMsgExprUnexpectedToken, p.peek().Pos, p.peek().Value)
	}
	return node, nil
}

func (p *ExprParser) parseOr() (ExprNode, error) {
	return p.parseBinary(p.parseAnd, ExprTokenTypeOr)
}

func (p *ExprParser) parseAnd() (ExprNode, error) {
	return p.parseBinary(p.parseEquality, ExprTokenTypeAnd)
}

func (p *ExprParser) parseEquality() (ExprNode, error) {
	return p.parseBinary(p.parseComparison, ExprTokenTypeEq, ExprTokenTypeNeq)
}

func (p *ExprParser) parseComparison() (ExprNode, error) {
	return p.parseBinary(p.parseUnary, ExprTokenTypeLt, ExprTokenTypeGt, ExprTokenTypeLte, ExprTokenTypeGte)
}

// parseBinary parses a left-associative chain of the given operators
func (p *ExprParser) parseBinary(next func() (ExprNode, error), ops ...ExprTokenType) (ExprNode, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.matchAny(ops...) {
		op := p.previous().Type
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *ExprParser) parseUnary() (ExprNode, error) {
	if p.matchAny(ExprTokenTypeNot) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryNode{Op: ExprTokenTypeNot, Right: right}, nil
	}
	return p.parseCall()
}

func (p *ExprParser) parseCall() (ExprNode, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if ident, ok := node.(*IdentifierNode); ok && p.matchAny(ExprTokenTypeLParen) {
		args, err := p.parseList(ExprTokenTypeRParen)
		if err != nil {
			return nil, err
		}
		return &CallNode{Name: ident.Name, Args: args}, nil
	}
	return node, nil
}

// parseList parses comma-separated expressions up to the closing token
func (p *ExprParser) parseList(closing ExprTokenType) ([]ExprNode, error) {
	var items []ExprNode
	if !p.check(closing) {
		for {
			item, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			if !p.matchAny(ExprTokenTypeComma) {
				break
			}
		}
	}
	if !p.matchAny(closing) {
		return nil, NewExprParseError(ErrMsgExprExpectedClose, p.peek().Pos, string(closing))
	}
	return items, nil
}

func (p *ExprParser) parsePrimary() (ExprNode, error) {
	switch {
	case p.matchAny(ExprTokenTypeString, ExprTokenTypeNumber, ExprTokenTypeBool, ExprTokenTypeNil):
		return &LiteralNode{Value: p.previous().Literal}, nil
	case p.matchAny(ExprTokenTypeIdentifier):
		return &IdentifierNode{Name: p.previous().Value}, nil
	case p.matchAny(ExprTokenTypeLBracket):
		items, err := p.parseList(ExprTokenTypeRBracket)
		if err != nil {
			return nil, err
		}
		return &ListNode{Items: items}, nil
	case p.matchAny(ExprTokenTypeLParen):
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.matchAny(ExprTokenTypeRParen) {
			return nil, NewExprParseError(ErrMsgExprExpectedClose, p.peek().Pos, string(ExprTokenTypeRParen))
		}
		return expr, nil
	case p.check(ExprTokenTypeEOF):
		return nil, NewExprParseError(ErrMsgExprUnexpectedEOF, p.peek().Pos, "")
	default:
		return nil, NewExprParseError(ErrMsgExprUnexpectedToken, p.peek().Pos, p.peek().Value)
	}
}

func (p *ExprParser) matchAny(types ...ExprTokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.pos++
			return true
		}
	}
	return false
}

func (p *ExprParser) check(tokenType ExprTokenType) bool {
	return p.peek().Type == tokenType
}

func (p *ExprParser) peek() ExprToken {
	if p.pos >= len(p.tokens) {
		end := 0
		if len(p.tokens) > 0 {
			end = p.tokens[len(p.tokens)-1].Pos
		}
		return ExprToken{Type: ExprTokenTypeEOF, Pos: end}
	}
	return p.tokens[p.pos]
}

func (p *ExprParser) previous() ExprToken {
	return p.tokens[p.pos-1]
}

// ExprParseError represents an error during expression parsing
type ExprParseError struct {
	Message string
	Pos     int
	Detail  string
}

// NewExprParseError creates a new expression parse error
func NewExprParseError(message string, pos int, detail string) *ExprParseError {
	return &ExprParseError{Message: message, Pos: pos, Detail: detail}
}

func (e *ExprParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s at position %d: %s", e.Message, e.Pos, e.Detail)
	}
	return fmt.Sprintf("%s at position %d", e.Message, e.Pos)
}

// Expression parser error messages
const (
	ErrMsgExprEmptyExpression = "empty expression"
	ErrMsgExprUnexpectedToken = "unexpected token"
	ErrMsgExprExpectedClose   = "expected closing token"
	ErrMsgExprUnexpectedEOF   = "unexpected end of expression"
)

// ParseExpression tokenizes and parses an expression string
func ParseExpression(expr string) (ExprNode, error) {
	tokens, err := NewExprTokenizer(expr).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewExprParser(tokens).Parse()
}
