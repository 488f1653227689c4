package markprompt

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-markprompt/internal"
)

// Error message constants - ALL error messages must be constants (NO MAGIC STRINGS)
const (
	// Compile errors
	ErrMsgMalformedDocument  = "malformed document"
	ErrMsgUnknownComponent   = "no component registered for tag"
	ErrMsgUndefinedReference = "undefined scope reference"
	ErrMsgInvalidExpression  = "invalid expression"
	ErrMsgInvalidFrontmatter = "invalid frontmatter"
	ErrMsgMissingAttribute   = "required attribute missing"
	ErrMsgInvalidAttribute   = "invalid attribute value"
	ErrMsgReservedTag        = "tag name is reserved for built-ins"
	ErrMsgUnknownBuiltin     = "unknown built-in tag"
	ErrMsgDepthExceeded      = "maximum include depth exceeded"
	ErrMsgNoSource           = "no template source configured"
	ErrMsgComponentFailed    = "component render failed"
	ErrMsgNilComponentResult = "component returned no node"
	ErrMsgNotIterable        = "loop source is not a list"
	ErrMsgEncodeFailed       = "value could not be encoded"

	// Format errors
	ErrMsgStrayEndTag    = "closing tag without matching open tag"
	ErrMsgTokenizeFailed = "markup could not be tokenized"

	// Props shape errors
	ErrMsgPropsShape = "component props do not match the expected shape"

	// Serialize errors
	ErrMsgInvalidTagName  = "invalid tag name"
	ErrMsgInvalidAttrName = "invalid attribute name"
	ErrMsgNilNode         = "node is nil"
	ErrMsgInvalidKind     = "unknown node kind"
	ErrMsgVoidContent     = "void element cannot have content"

	// Source errors
	ErrMsgTemplateNotFound  = "template not found"
	ErrMsgInvalidTemplate   = "invalid template name"
	ErrMsgSourceFailed      = "template source operation failed"
	ErrMsgSourceClosed      = "template source is closed"
	ErrMsgPostgresConnect   = "failed to connect to postgres"
	ErrMsgPostgresMigration = "failed to migrate template table"
)

// Error code constants for categorization
const (
	ErrCodeCompile   = "MARKPROMPT_COMPILE"
	ErrCodeFormat    = "MARKPROMPT_FORMAT"
	ErrCodeProps     = "MARKPROMPT_PROPS"
	ErrCodeSerialize = "MARKPROMPT_SERIALIZE"
	ErrCodeSource    = "MARKPROMPT_SOURCE"
	ErrCodeRegistry  = "MARKPROMPT_REGISTRY"
)

// Error kinds, stored under MetaKeyKind
const (
	ErrKindCompile    = "compile"
	ErrKindFormat     = "format"
	ErrKindPropsShape = "props_shape"
	ErrKindSerialize  = "serialize"
	ErrKindSource     = "source"

	ReasonNotFound = "not_found"
)

// Position represents a location in a source document
type Position struct {
	Offset int // Byte offset from start
	Line   int // 1-indexed line number
	Column int // 1-indexed column number
}

// String returns a human-readable position string
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

func withPosition(err *cuserr.CustomError, pos Position) *cuserr.CustomError {
	return err.
		WithMetadata(MetaKeyLine, strconv.Itoa(pos.Line)).
		WithMetadata(MetaKeyColumn, strconv.Itoa(pos.Column)).
		WithMetadata(MetaKeyOffset, strconv.Itoa(pos.Offset))
}

// NewCompileError creates a compile error with position context
func NewCompileError(msg string, pos Position, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeCompile, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeCompile, msg)
	}
	return withPosition(err.WithMetadata(MetaKeyKind, ErrKindCompile), pos)
}

// NewUnknownComponentError reports a tag with no registry entry
func NewUnknownComponentError(tag string, pos Position, suggestions []string) error {
	err := cuserr.NewValidationError(ErrCodeCompile, withSuggestions(ErrMsgUnknownComponent+" '"+tag+"'", suggestions)).
		WithMetadata(MetaKeyKind, ErrKindCompile).
		WithMetadata(MetaKeyTag, tag)
	return withPosition(err, pos)
}

// NewUndefinedReferenceError reports a scope path that does not resolve
func NewUndefinedReferenceError(path string, pos Position, suggestions []string) error {
	err := cuserr.NewValidationError(ErrCodeCompile, withSuggestions(ErrMsgUndefinedReference+" '"+path+"'", suggestions)).
		WithMetadata(MetaKeyKind, ErrKindCompile).
		WithMetadata(MetaKeyPath, path)
	return withPosition(err, pos)
}

// NewAttributeError reports a missing or invalid built-in attribute
func NewAttributeError(msg, tag, attr string, pos Position) error {
	err := cuserr.NewValidationError(ErrCodeCompile, msg).
		WithMetadata(MetaKeyKind, ErrKindCompile).
		WithMetadata(MetaKeyTag, tag).
		WithMetadata(MetaKeyAttribute, attr)
	return withPosition(err, pos)
}

// NewComponentError wraps a failure returned by a component
func NewComponentError(tag string, pos Position, cause error) error {
	err := cuserr.WrapStdError(cause, ErrCodeCompile, ErrMsgComponentFailed).
		WithMetadata(MetaKeyKind, ErrKindCompile).
		WithMetadata(MetaKeyTag, tag)
	return withPosition(err, pos)
}

// NewReservedTagError reports a component registered under a built-in name
func NewReservedTagError(tag string) error {
	return cuserr.NewValidationError(ErrCodeRegistry, ErrMsgReservedTag).
		WithMetadata(MetaKeyTag, tag)
}

// NewFormatError creates a formatter error at a byte offset of the input
func NewFormatError(msg string, offset int, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeFormat, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeFormat, msg)
	}
	return err.
		WithMetadata(MetaKeyKind, ErrKindFormat).
		WithMetadata(MetaKeyOffset, strconv.Itoa(offset))
}

// NewPropsShapeError reports props that do not match a component's contract
func NewPropsShapeError(prop, expected string, actual any) error {
	return cuserr.NewValidationError(ErrCodeProps, ErrMsgPropsShape+": "+prop+" must be "+expected).
		WithMetadata(MetaKeyKind, ErrKindPropsShape).
		WithMetadata(MetaKeyProp, prop).
		WithMetadata(MetaKeyExpected, expected).
		WithMetadata(MetaKeyActual, fmt.Sprintf("%T", actual))
}

// NewSerializeError reports a node tree that cannot be written as markup
func NewSerializeError(msg, value string) error {
	return cuserr.NewValidationError(ErrCodeSerialize, msg).
		WithMetadata(MetaKeyKind, ErrKindSerialize).
		WithMetadata(MetaKeyValue, value)
}

// NewTemplateNotFoundError reports a template name unknown to a source
func NewTemplateNotFoundError(name string) error {
	return cuserr.NewValidationError(ErrCodeSource, ErrMsgTemplateNotFound+": "+name).
		WithMetadata(MetaKeyKind, ErrKindSource).
		WithMetadata(MetaKeyReason, ReasonNotFound).
		WithMetadata(MetaKeyTemplate, name)
}

// NewSourceError wraps a template source failure
func NewSourceError(msg, name string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeSource, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeSource, msg)
	}
	return err.
		WithMetadata(MetaKeyKind, ErrKindSource).
		WithMetadata(MetaKeyTemplate, name)
}

func withSuggestions(msg string, suggestions []string) string {
	if len(suggestions) == 0 {
		return msg
	}
	return msg + "; " + internal.FormatSuggestions(suggestions)
}

func errorKind(err error) string {
	var customErr *cuserr.CustomError
	if !errors.As(err, &customErr) {
		return ""
	}
	kind, _ := customErr.GetMetadata(MetaKeyKind)
	return kind
}

// IsCompileError reports whether err was raised by the Document Compiler
func IsCompileError(err error) bool { return errorKind(err) == ErrKindCompile }

// IsFormatError reports whether err was raised by the Formatter
func IsFormatError(err error) bool { return errorKind(err) == ErrKindFormat }

// IsPropsShapeError reports whether err is a component props contract violation
func IsPropsShapeError(err error) bool { return errorKind(err) == ErrKindPropsShape }

// IsSerializeError reports whether err was raised by the Serializer
func IsSerializeError(err error) bool { return errorKind(err) == ErrKindSerialize }

// IsTemplateNotFound reports whether err means a source had no such template
func IsTemplateNotFound(err error) bool {
	var customErr *cuserr.CustomError
	if !errors.As(err, &customErr) {
		return false
	}
	reason, _ := customErr.GetMetadata(MetaKeyReason)
	return reason == ReasonNotFound
}
