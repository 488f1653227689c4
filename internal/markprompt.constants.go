package internal

// Delimiter strings
const (
	StrOpenDelim   = "{~"
	StrCloseDelim  = "~}"
	StrSelfClose   = "/~}"
	StrBlockClose  = "{~/"
	StrEscapeOpen  = "\\{~"
	StrExprOpen    = "{"
	StrExprClose   = "}"
	StrFrontmatter = "---"
)

// Character constants
const (
	CharEquals      = '='
	CharDoubleQuote = '"'
	CharSingleQuote = '\''
	CharBackslash   = '\\'
	CharNewline     = '\n'
	CharCarriageRet = '\r'
	CharSpace       = ' '
	CharTab         = '\t'
	CharBraceOpen   = '{'
	CharBraceClose  = '}'
)

// Reserved built-in tag names. The prefix cannot be claimed by components.
const (
	TagPrefixReserved = "mp."

	TagNameVar     = "mp.var"
	TagNameRaw     = "mp.raw"
	TagNameComment = "mp.comment"
	TagNameIf      = "mp.if"
	TagNameElseIf  = "mp.elseif"
	TagNameElse    = "mp.else"
	TagNameFor     = "mp.for"
	TagNameInclude = "mp.include"
)

// Built-in attribute names
const (
	AttrName     = "name"
	AttrDefault  = "default"
	AttrFormat   = "format"
	AttrEval     = "eval"
	AttrItem     = "item"
	AttrIndex    = "index"
	AttrIn       = "in"
	AttrLimit    = "limit"
	AttrTemplate = "template"
)

// Scope path separator
const PathSeparator = "."

// Log messages
const (
	LogMsgLexerCreated   = "lexer created"
	LogMsgTokenizerStart = "tokenizing template"
	LogMsgTokenizerEnd   = "tokenizing complete"
	LogMsgParserCreated  = "parser created"
	LogMsgParserStart    = "parsing tokens"
	LogMsgParserEnd      = "parsing complete"
)

// Log field names
const (
	LogFieldSource = "source_len"
	LogFieldTokens = "tokens"
	LogFieldNodes  = "nodes"
)

// Suggestion tuning
const (
	SuggestionMaxDistance = 3
	SuggestionMaxResults  = 3
)
