package internal

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ExprTokenType represents the type of an expression token
type ExprTokenType string

const (
	ExprTokenTypeIdentifier ExprTokenType = "IDENT"
	ExprTokenTypeString     ExprTokenType = "STRING"
	ExprTokenTypeNumber     ExprTokenType = "NUMBER"
	ExprTokenTypeBool       ExprTokenType = "BOOL"
	ExprTokenTypeNil        ExprTokenType = "NIL"
	ExprTokenTypeLParen     ExprTokenType = "LPAREN"
	ExprTokenTypeRParen     ExprTokenType = "RPAREN"
	ExprTokenTypeLBracket   ExprTokenType = "LBRACKET"
	ExprTokenTypeRBracket   ExprTokenType = "RBRACKET"
	ExprTokenTypeComma      ExprTokenType = "COMMA"

	ExprTokenTypeAnd ExprTokenType = "AND"
	ExprTokenTypeOr  ExprTokenType = "OR"
	ExprTokenTypeNot ExprTokenType = "NOT"
	ExprTokenTypeEq  ExprTokenType = "EQ"
	ExprTokenTypeNeq ExprTokenType = "NEQ"
	ExprTokenTypeLt  ExprTokenType = "LT"
	ExprTokenTypeGt  ExprTokenType = "GT"
	ExprTokenTypeLte ExprTokenType = "LTE"
	ExprTokenTypeGte ExprTokenType = "GTE"

	ExprTokenTypeEOF ExprTokenType = "EOF"
)

// Expression operator strings
const (
	ExprOpAnd = "&&"
	ExprOpOr  = "||"
	ExprOpNot = "!"
	ExprOpEq  = "=="
	ExprOpNeq = "!="
	ExprOpLt  = "<"
	ExprOpGt  = ">"
	ExprOpLte = "<="
	ExprOpGte = ">="
)

// Expression keyword constants
const (
	ExprKeywordTrue  = "true"
	ExprKeywordFalse = "false"
	ExprKeywordNil   = "nil"
)

var twoCharOps = map[string]ExprTokenType{
	ExprOpAnd: ExprTokenTypeAnd,
	ExprOpOr:  ExprTokenTypeOr,
	ExprOpEq:  ExprTokenTypeEq,
	ExprOpNeq: ExprTokenTypeNeq,
	ExprOpLte: ExprTokenTypeLte,
	ExprOpGte: ExprTokenTypeGte,
}

var oneCharOps = map[byte]ExprTokenType{
	'(': ExprTokenTypeLParen,
	')': ExprTokenTypeRParen,
	'[': ExprTokenTypeLBracket,
	']': ExprTokenTypeRBracket,
	',': ExprTokenTypeComma,
	'!': ExprTokenTypeNot,
	'<': ExprTokenTypeLt,
	'>': ExprTokenTypeGt,
}

// ExprToken represents a token in an expression
type ExprToken struct {
	Type    ExprTokenType
	Value   string
	Pos     int
	Literal any // Parsed value for literals (string, float64, bool, nil)
}

func (t ExprToken) String() string {
	if t.Value != "" {
		return fmt.Sprintf("%s(%s)", t.Type, t.Value)
	}
	return string(t.Type)
}

// ExprTokenizer tokenizes expression strings
type ExprTokenizer struct {
	input string
	pos   int
}

// NewExprTokenizer creates a new expression tokenizer
func NewExprTokenizer(input string) *ExprTokenizer {
	return &ExprTokenizer{input: input}
}

// Tokenize converts the input string into a slice of tokens
func (t *ExprTokenizer) Tokenize() ([]ExprToken, error) {
	var tokens []ExprToken
	for {
		t.skipWhitespace()
		if t.pos >= len(t.input) {
			return append(tokens, ExprToken{Type: ExprTokenTypeEOF, Pos: t.pos}), nil
		}
		token, err := t.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
}

func (t *ExprTokenizer) nextToken() (ExprToken, error) {
	startPos := t.pos
	ch := t.input[t.pos]

	switch {
	case ch == '"' || ch == '\'':
		return t.readString()
	case isDigit(ch) || (ch == '-' && t.pos+1 < len(t.input) && isDigit(t.input[t.pos+1])):
		return t.readNumber()
	case unicode.IsLetter(rune(ch)) || ch == '_':
		return t.readIdentifier(), nil
	}

	if t.pos+1 < len(t.input) {
		if typ, ok := twoCharOps[t.input[t.pos:t.pos+2]]; ok {
			t.pos += 2
			return ExprToken{Type: typ, Value: t.input[startPos:t.pos], Pos: startPos}, nil
		}
	}
	if typ, ok := oneCharOps[ch]; ok {
		t.pos++
		return ExprToken{Type: typ, Value: string(ch), Pos: startPos}, nil
	}

	return ExprToken{}, NewExprTokenError(ErrMsgExprUnexpectedChar, startPos, string(ch))
}

func (t *ExprTokenizer) readString() (ExprToken, error) {
	startPos := t.pos
	quote := t.input[t.pos]
	t.pos++

	var sb strings.Builder
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if ch == quote {
			t.pos++
			value := sb.String()
			return ExprToken{Type: ExprTokenTypeString, Value: value, Pos: startPos, Literal: value}, nil
		}
		if ch == '\\' && t.pos+1 < len(t.input) {
			t.pos++
			switch esc := t.input[t.pos]; esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(esc)
			}
			t.pos++
			continue
		}
		sb.WriteByte(ch)
		t.pos++
	}

	return ExprToken{}, NewExprTokenError(ErrMsgExprUnterminatedStr, startPos, "")
}

func (t *ExprTokenizer) readNumber() (ExprToken, error) {
	startPos := t.pos
	if t.input[t.pos] == '-' {
		t.pos++
	}
	hasDecimal := false
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if ch == '.' && !hasDecimal {
			hasDecimal = true
		} else if !isDigit(ch) {
			break
		}
		t.pos++
	}

	value := t.input[startPos:t.pos]
	literal, err := strconv.ParseFloat(value, FloatBitSize64)
	if err != nil {
		return ExprToken{}, NewExprTokenError(ErrMsgExprInvalidNumber, startPos, value)
	}
	return ExprToken{Type: ExprTokenTypeNumber, Value: value, Pos: startPos, Literal: literal}, nil
}

// readIdentifier reads an identifier or keyword. Dots are part of the
// identifier so that scope paths tokenize as one unit.
func (t *ExprTokenizer) readIdentifier() ExprToken {
	startPos := t.pos
	for t.pos < len(t.input) {
		ch := rune(t.input[t.pos])
		if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) && ch != '_' && ch != '.' && ch != '-' {
			break
		}
		t.pos++
	}

	value := t.input[startPos:t.pos]
	switch value {
	case ExprKeywordTrue:
		return ExprToken{Type: ExprTokenTypeBool, Value: value, Pos: startPos, Literal: true}
	case ExprKeywordFalse:
		return ExprToken{Type: ExprTokenTypeBool, Value: value, Pos: startPos, Literal: false}
	case ExprKeywordNil:
		return ExprToken{Type: ExprTokenTypeNil, Value: value, Pos: startPos}
	}
	return ExprToken{Type: ExprTokenTypeIdentifier, Value: value, Pos: startPos}
}

func (t *ExprTokenizer) skipWhitespace() {
	for t.pos < len(t.input) && unicode.IsSpace(rune(t.input[t.pos])) {
		t.pos++
	}
}

// ExprTokenError represents an error during expression tokenization
type ExprTokenError struct {
	Message string
	Pos     int
	Detail  string
}

// NewExprTokenError creates a new expression token error
func NewExprTokenError(message string, pos int, detail string) *ExprTokenError {
	return &ExprTokenError{Message: message, Pos: pos, Detail: detail}
}

func (e *ExprTokenError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s at position %d: %s", e.Message, e.Pos, e.Detail)
	}
	return fmt.Sprintf("%s at position %d", e.Message, e.Pos)
}

// Expression tokenizer error messages
const (
	ErrMsgExprUnexpectedChar  = "unexpected character in expression"
	ErrMsgExprUnterminatedStr = "unterminated string literal in expression"
	ErrMsgExprInvalidNumber   = "invalid number format"
)

// FloatBitSize64 is the bit size used for number literals
const FloatBitSize64 = 64
