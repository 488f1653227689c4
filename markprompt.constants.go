package markprompt

import "time"

// Delimiter constants - the {~ ~} syntax chosen for minimal collision with prompt content
const (
	DefaultOpenDelim  = "{~"
	DefaultCloseDelim = "~}"
)

// Engine defaults
const (
	DefaultMaxDepth    = 10
	DefaultIndent      = "  "
	DefaultTemplateExt = ".mdp"
)

// PostgreSQL template source defaults
const (
	postgresDriverName             = "postgres"
	PostgresTablePrefix            = "markprompt_"
	PostgresDefaultMaxOpenConns    = 10
	PostgresDefaultMaxIdleConns    = 2
	PostgresDefaultConnMaxLifetime = 5 * time.Minute
	PostgresDefaultQueryTimeout    = 30 * time.Second
)

// Scope keys visible to templates
const (
	ScopeKeyData = "data"
	ScopeKeyMeta = "meta"
)

// Frontmatter keys exposed under the meta scope
const (
	MetaTitle       = "title"
	MetaDescription = "description"
)

// Component tag names
const (
	TagPrompt       = "prompt"
	TagPurpose      = "purpose"
	TagBackground   = "background"
	TagVariables    = "variables"
	TagData         = "data"
	TagTools        = "tools"
	TagTool         = "tool"
	TagInstructions = "instructions"
	TagInstruction  = "instruction"
	TagUserInput    = "user-input"
	TagExample      = "example"
	TagExamples     = "examples"
	TagInputFormat  = "input-format"
	TagOutputFormat = "output-format"
	TagChatHistory  = "chat-history"
	TagMessage      = "message"

	TagParagraph     = "p"
	TagUnorderedList = "ul"
	TagOrderedList   = "ol"
	TagListItem      = "li"
)

// Component prop names
const (
	PropTitle        = "title"
	PropFormat       = "format"
	PropInstructions = "instructions"
	PropExamples     = "examples"
	PropMessages     = "messages"
	PropRaw          = "raw"
	PropName         = "name"
)

// Default titles shown on section tags
const (
	DefaultDataTitle         = "You are provided with the following data:"
	DefaultToolsTitle        = "You are provided with the following tools:"
	DefaultInputFormatTitle  = "You are provided with the following inputs:"
	DefaultOutputFormatTitle = "Your response should be formatted as:"
)

// ListItemPrefix starts every rendered list item
const ListItemPrefix = "- "

// Value encodings accepted by mp.var
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Metadata keys for error context
const (
	MetaKeyKind      = "kind"
	MetaKeyLine      = "line"
	MetaKeyColumn    = "column"
	MetaKeyOffset    = "offset"
	MetaKeyTag       = "tag"
	MetaKeyPath      = "path"
	MetaKeyAttribute = "attribute"
	MetaKeyProp      = "prop"
	MetaKeyExpected  = "expected"
	MetaKeyActual    = "actual"
	MetaKeyValue     = "value"
	MetaKeyTemplate  = "template"
	MetaKeyReason    = "reason"
)

// Log messages
const (
	LogMsgEngineCreated    = "markprompt engine created"
	LogMsgCompileStart     = "compiling document"
	LogMsgCompileEnd       = "document compiled"
	LogMsgComponentInvoked = "component invoked"
	LogMsgIncludeLoaded    = "include loaded"
	LogMsgSerializeEnd     = "node tree serialized"
	LogMsgFormatEnd        = "markup formatted"
	LogMsgRenderFile       = "rendering file"
	LogMsgRenderTemplate   = "rendering template"
	LogMsgSourceLoad       = "loading template"
	LogMsgSourceSave       = "saving template"
	LogMsgPostgresMigrated = "template table migrated"
)

// Log field names
const (
	LogFieldTag        = "tag"
	LogFieldPath       = "path"
	LogFieldTemplate   = "template"
	LogFieldDepth      = "depth"
	LogFieldBytes      = "bytes"
	LogFieldComponents = "components"
	LogFieldVerbatim   = "verbatim"
)
