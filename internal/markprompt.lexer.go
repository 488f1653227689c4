package internal

import (
	"strings"

	"go.uber.org/zap"
)

// LexerConfig holds lexer configuration
type LexerConfig struct {
	OpenDelim  string // Opening delimiter (default: "{~")
	CloseDelim string // Closing delimiter (default: "~}")
}

// DefaultLexerConfig returns the default lexer configuration
func DefaultLexerConfig() LexerConfig {
	return LexerConfig{
		OpenDelim:  StrOpenDelim,
		CloseDelim: StrCloseDelim,
	}
}

func (c LexerConfig) selfClose() string  { return "/" + c.CloseDelim }
func (c LexerConfig) blockClose() string { return c.OpenDelim + "/" }
func (c LexerConfig) escapeOpen() string { return "\\" + c.OpenDelim }

// Lexer tokenizes template source into a token stream
type Lexer struct {
	source string
	config LexerConfig
	pos    int
	line   int
	column int
	logger *zap.Logger
}

// NewLexer creates a new lexer with default configuration
func NewLexer(source string, logger *zap.Logger) *Lexer {
	return NewLexerWithConfig(source, DefaultLexerConfig(), logger)
}

// NewLexerWithConfig creates a lexer with custom configuration
func NewLexerWithConfig(source string, config LexerConfig, logger *zap.Logger) *Lexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgLexerCreated, zap.Int(LogFieldSource, len(source)))
	return &Lexer{
		source: source,
		config: config,
		line:   1,
		column: 1,
		logger: logger,
	}
}

// Tokenize processes the source and returns a token stream
func (l *Lexer) Tokenize() ([]Token, error) {
	l.logger.Debug(LogMsgTokenizerStart)
	var tokens []Token

	for !l.isAtEnd() {
		if l.isEscapedOpenDelim() {
			pos := l.currentPosition()
			l.advanceN(len(l.config.escapeOpen()))
			tokens = append(tokens, NewToken(TokenTypeText, l.config.OpenDelim, pos))
			continue
		}

		if l.matchStr(l.config.blockClose()) {
			pos := l.currentPosition()
			l.advanceN(len(l.config.blockClose()))
			tokens = append(tokens, NewToken(TokenTypeBlockClose, "", pos))
			tagTokens, err := l.scanTagContent(true)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tagTokens...)
			continue
		}

		if l.matchStr(l.config.OpenDelim) {
			pos := l.currentPosition()
			l.advanceN(len(l.config.OpenDelim))
			tokens = append(tokens, NewToken(TokenTypeOpenTag, "", pos))
			tagTokens, err := l.scanTagContent(false)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tagTokens...)

			// Bodies of raw and comment blocks are never tokenized.
			name := tagTokens[0].Value
			last := tagTokens[len(tagTokens)-1]
			if last.Type == TokenTypeCloseTag && (name == TagNameRaw || name == TagNameComment) {
				body, err := l.scanVerbatim(name)
				if err != nil {
					return nil, err
				}
				if body.Value != "" {
					tokens = append(tokens, body)
				}
			}
			continue
		}

		text := l.scanText()
		if text.Value != "" {
			tokens = append(tokens, text)
		}
	}

	tokens = append(tokens, NewToken(TokenTypeEOF, "", l.currentPosition()))
	l.logger.Debug(LogMsgTokenizerEnd, zap.Int(LogFieldTokens, len(tokens)))
	return tokens, nil
}

// scanText scans text content until the next delimiter or escape sequence
func (l *Lexer) scanText() Token {
	startPos := l.currentPosition()
	start := l.pos
	for !l.isAtEnd() {
		if l.isEscapedOpenDelim() || l.matchStr(l.config.OpenDelim) {
			break
		}
		l.advance()
	}
	return NewToken(TokenTypeText, l.source[start:l.pos], startPos)
}

// scanVerbatim consumes everything up to the closing tag of the named block
// and returns it as a single text token. The closing tag itself is left for
// the main loop.
func (l *Lexer) scanVerbatim(name string) (Token, error) {
	startPos := l.currentPosition()
	start := l.pos
	for !l.isAtEnd() {
		if l.matchStr(l.config.blockClose()) && l.closesBlock(name) {
			return NewToken(TokenTypeText, l.source[start:l.pos], startPos), nil
		}
		l.advance()
	}
	return Token{}, &LexerError{Message: ErrMsgUnterminatedBlock, Position: startPos}
}

// closesBlock reports whether the block-close delimiter at the current
// position closes the named tag.
func (l *Lexer) closesBlock(name string) bool {
	rest := l.source[l.pos+len(l.config.blockClose()):]
	rest = strings.TrimLeft(rest, " \t\r\n")
	if !strings.HasPrefix(rest, name) {
		return false
	}
	rest = strings.TrimLeft(rest[len(name):], " \t\r\n")
	return strings.HasPrefix(rest, l.config.CloseDelim)
}

// scanTagContent scans the content inside a tag (name, attributes, closing)
func (l *Lexer) scanTagContent(isBlockClose bool) ([]Token, error) {
	var tokens []Token

	l.skipWhitespace()
	nameToken, err := l.scanTagName()
	if err != nil {
		return nil, err
	}
	tokens = append(tokens, nameToken)
	l.skipWhitespace()

	if isBlockClose {
		if !l.matchStr(l.config.CloseDelim) {
			return nil, l.newError(ErrMsgUnterminatedTag)
		}
		pos := l.currentPosition()
		l.advanceN(len(l.config.CloseDelim))
		return append(tokens, NewToken(TokenTypeCloseTag, "", pos)), nil
	}

	for !l.isAtEnd() {
		l.skipWhitespace()

		if l.matchStr(l.config.selfClose()) {
			pos := l.currentPosition()
			l.advanceN(len(l.config.selfClose()))
			return append(tokens, NewToken(TokenTypeSelfClose, "", pos)), nil
		}
		if l.matchStr(l.config.CloseDelim) {
			pos := l.currentPosition()
			l.advanceN(len(l.config.CloseDelim))
			return append(tokens, NewToken(TokenTypeCloseTag, "", pos)), nil
		}

		attrTokens, err := l.scanAttribute()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, attrTokens...)
	}

	return nil, l.newError(ErrMsgUnterminatedTag)
}

// scanTagName scans an identifier for a tag name
func (l *Lexer) scanTagName() (Token, error) {
	startPos := l.currentPosition()
	start := l.pos

	if l.isAtEnd() || !(isLetter(l.peek()) || l.peek() == '_') {
		return Token{}, l.newError(ErrMsgInvalidTagName)
	}
	l.advance()
	for !l.isAtEnd() {
		ch := l.peek()
		if !(isLetter(ch) || isDigit(ch) || ch == '_' || ch == '-' || ch == '.') {
			break
		}
		l.advance()
	}
	return NewToken(TokenTypeTagName, l.source[start:l.pos], startPos), nil
}

// scanAttribute scans an attribute name=value pair
func (l *Lexer) scanAttribute() ([]Token, error) {
	nameToken, err := l.scanAttrName()
	if err != nil {
		return nil, err
	}
	l.skipWhitespace()

	if l.isAtEnd() || l.peek() != CharEquals {
		return nil, l.newError(ErrMsgUnexpectedChar)
	}
	equals := NewToken(TokenTypeEquals, "", l.currentPosition())
	l.advance()
	l.skipWhitespace()

	var valueToken Token
	if !l.isAtEnd() && l.peek() == CharBraceOpen {
		valueToken, err = l.scanAttrExpr()
	} else {
		valueToken, err = l.scanAttrValue()
	}
	if err != nil {
		return nil, err
	}
	return []Token{nameToken, equals, valueToken}, nil
}

// scanAttrName scans an attribute name identifier
func (l *Lexer) scanAttrName() (Token, error) {
	startPos := l.currentPosition()
	start := l.pos

	if l.isAtEnd() || !(isLetter(l.peek()) || l.peek() == '_') {
		return Token{}, l.newError(ErrMsgUnexpectedChar)
	}
	l.advance()
	for !l.isAtEnd() {
		ch := l.peek()
		if !(isLetter(ch) || isDigit(ch) || ch == '_' || ch == '-') {
			break
		}
		l.advance()
	}
	return NewToken(TokenTypeAttrName, l.source[start:l.pos], startPos), nil
}

// scanAttrValue scans a quoted attribute value
func (l *Lexer) scanAttrValue() (Token, error) {
	startPos := l.currentPosition()
	if l.isAtEnd() {
		return Token{}, l.newError(ErrMsgUnterminatedStr)
	}

	quote := l.peek()
	if quote != CharDoubleQuote && quote != CharSingleQuote {
		return Token{}, l.newError(ErrMsgUnexpectedChar)
	}
	l.advance()

	var sb strings.Builder
	for !l.isAtEnd() {
		ch := l.peek()
		if ch == quote {
			l.advance()
			return NewToken(TokenTypeAttrValue, sb.String(), startPos), nil
		}
		if ch == CharBackslash && l.pos+1 < len(l.source) {
			next := l.source[l.pos+1]
			if next == quote || next == CharBackslash {
				l.advance()
				sb.WriteByte(l.advance())
				continue
			}
		}
		sb.WriteByte(l.advance())
	}

	return Token{}, &LexerError{Message: ErrMsgUnterminatedStr, Position: startPos}
}

// scanAttrExpr scans a brace-delimited expression value. Braces nest and
// quoted strings inside the expression may contain braces.
func (l *Lexer) scanAttrExpr() (Token, error) {
	startPos := l.currentPosition()
	l.advance() // consume {
	start := l.pos
	depth := 1
	var quote byte

	for !l.isAtEnd() {
		ch := l.peek()
		switch {
		case quote != 0:
			if ch == CharBackslash {
				l.advance()
			} else if ch == quote {
				quote = 0
			}
		case ch == CharDoubleQuote || ch == CharSingleQuote:
			quote = ch
		case ch == CharBraceOpen:
			depth++
		case ch == CharBraceClose:
			depth--
			if depth == 0 {
				expr := strings.TrimSpace(l.source[start:l.pos])
				l.advance()
				if expr == "" {
					return Token{}, &LexerError{Message: ErrMsgEmptyExpression, Position: startPos}
				}
				return NewToken(TokenTypeAttrExpr, expr, startPos), nil
			}
		}
		l.advance()
	}

	return Token{}, &LexerError{Message: ErrMsgUnterminatedExpr, Position: startPos}
}

func (l *Lexer) currentPosition() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.column}
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

// advance consumes and returns the current character
func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	l.pos++
	if ch == CharNewline {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n && !l.isAtEnd(); i++ {
		l.advance()
	}
}

func (l *Lexer) matchStr(s string) bool {
	return strings.HasPrefix(l.source[l.pos:], s)
}

func (l *Lexer) isEscapedOpenDelim() bool {
	return l.matchStr(l.config.escapeOpen())
}

func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		switch l.peek() {
		case CharSpace, CharTab, CharNewline, CharCarriageRet:
			l.advance()
		default:
			return
		}
	}
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func (l *Lexer) newError(msg string) error {
	return &LexerError{Message: msg, Position: l.currentPosition()}
}

// LexerError represents a lexer error with position
type LexerError struct {
	Message  string
	Position Position
}

func (e *LexerError) Error() string {
	return e.Message + " at " + e.Position.String()
}

// Error message constants for lexer
const (
	ErrMsgUnterminatedTag   = "unterminated tag"
	ErrMsgUnterminatedStr   = "unterminated string literal"
	ErrMsgUnterminatedExpr  = "unterminated expression"
	ErrMsgUnterminatedBlock = "unterminated block"
	ErrMsgEmptyExpression   = "empty expression"
	ErrMsgInvalidTagName    = "invalid tag name"
	ErrMsgUnexpectedChar    = "unexpected character"
)
