package internal

import "fmt"

// Position represents a location in the source template
type Position struct {
	Offset int // Byte offset from start
	Line   int // 1-indexed line number
	Column int // 1-indexed column number
}

// String returns a human-readable position string
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// TokenType identifies the kind of a lexical token
type TokenType int

const (
	TokenTypeText TokenType = iota
	TokenTypeOpenTag
	TokenTypeCloseTag
	TokenTypeSelfClose
	TokenTypeBlockClose
	TokenTypeTagName
	TokenTypeAttrName
	TokenTypeAttrValue
	TokenTypeAttrExpr
	TokenTypeEquals
	TokenTypeEOF
)

var tokenTypeNames = map[TokenType]string{
	TokenTypeText:       "TEXT",
	TokenTypeOpenTag:    "OPEN_TAG",
	TokenTypeCloseTag:   "CLOSE_TAG",
	TokenTypeSelfClose:  "SELF_CLOSE",
	TokenTypeBlockClose: "BLOCK_CLOSE",
	TokenTypeTagName:    "TAG_NAME",
	TokenTypeAttrName:   "ATTR_NAME",
	TokenTypeAttrValue:  "ATTR_VALUE",
	TokenTypeAttrExpr:   "ATTR_EXPR",
	TokenTypeEquals:     "EQUALS",
	TokenTypeEOF:        "EOF",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Token represents a lexical token produced by the lexer
type Token struct {
	Type     TokenType
	Value    string
	Position Position
}

// String returns a human-readable representation of the token
func (t Token) String() string {
	if t.Value == "" {
		return fmt.Sprintf("Token{%s @ %s}", t.Type, t.Position)
	}
	return fmt.Sprintf("Token{%s: %q @ %s}", t.Type, t.Value, t.Position)
}

// IsEOF returns true if this is an end-of-file token
func (t Token) IsEOF() bool {
	return t.Type == TokenTypeEOF
}

// NewToken creates a new token with the given type, value, and position
func NewToken(tokenType TokenType, value string, pos Position) Token {
	return Token{Type: tokenType, Value: value, Position: pos}
}
