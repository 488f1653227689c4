package main

// CLI identity
const (
	CLIName        = "markprompt"
	CLIDescription = "Render semantic LLM prompts from markprompt templates"
)

// Command names
const (
	CmdNameRender  = "render"
	CmdNameFormat  = "format"
	CmdNameCheck   = "check"
	CmdNameVersion = "version"
)

// Flag names - long form
const (
	FlagData      = "data"
	FlagDataFile  = "data-file"
	FlagOutput    = "output"
	FlagTemplates = "templates"
	FlagIndent    = "indent"
	FlagVerbose   = "verbose"
	FlagFormat    = "format"
)

// Flag names - short form
const (
	FlagDataShort      = "d"
	FlagDataFileShort  = "f"
	FlagOutputShort    = "o"
	FlagTemplatesShort = "t"
	FlagVerboseShort   = "v"
)

// Flag default values
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = "text"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Error messages - ALL must be constants
const (
	ErrMsgInvalidData       = "invalid data"
	ErrMsgReadFileFailed    = "failed to read file"
	ErrMsgWriteOutputFailed = "failed to write output"
	ErrMsgRenderFailed      = "render failed"
	ErrMsgFormatFailed      = "format failed"
	ErrMsgCheckFailed       = "check failed"
	ErrMsgInvalidFormat     = "invalid output format"
)

// Check output
const (
	CheckOK     = "ok"
	CheckFailed = "FAIL"
	FmtCheckOK  = "%s %s\n"
	FmtCheckErr = "%s %s: %v\n"
)

// Version output
const (
	VersionTextTemplate = CLIName + " version %s\nCommit: %s\nGo: %s\n"
)

// File settings
const (
	FilePermissions = 0644
)
