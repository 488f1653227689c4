package internal

import "strings"

const (
	byteOrderMark = "\xef\xbb\xbf"

	// DefaultMaxFrontmatterSize bounds the YAML header of a document
	DefaultMaxFrontmatterSize = 64 * 1024
)

// FrontmatterResult holds a document split into its YAML header and body
type FrontmatterResult struct {
	HasFrontmatter bool
	YAML           string
	Body           string
	// BodyLine is the 1-indexed source line on which Body starts
	BodyLine int
}

// ExtractFrontmatter splits a leading "---" delimited YAML block from the
// template body. Documents without one are returned unchanged as body.
func ExtractFrontmatter(source string) (*FrontmatterResult, error) {
	content := strings.TrimPrefix(source, byteOrderMark)
	result := &FrontmatterResult{Body: content, BodyLine: 1}

	afterOpening, ok := cutDelimiterLine(content)
	if !ok {
		return result, nil
	}

	var fmYAML, rest string
	if strings.HasPrefix(afterOpening, StrFrontmatter) {
		// empty header: "---\n---"
		fmYAML, rest = "", afterOpening[len(StrFrontmatter):]
	} else {
		closeIdx := strings.Index(afterOpening, "\n"+StrFrontmatter)
		if closeIdx == -1 {
			return nil, &FrontmatterError{Message: ErrMsgFrontmatterUnclosed, Position: Position{Line: 1, Column: 1}}
		}
		fmYAML = afterOpening[:closeIdx+1]
		rest = afterOpening[closeIdx+1+len(StrFrontmatter):]
	}
	if len(fmYAML) > DefaultMaxFrontmatterSize {
		return nil, &FrontmatterError{Message: ErrMsgFrontmatterTooLarge, Position: Position{Line: 1, Column: 1}}
	}

	// The closing delimiter must sit on its own line.
	trailing := rest
	if i := strings.IndexByte(rest, CharNewline); i >= 0 {
		trailing = rest[:i]
		rest = rest[i+1:]
	} else {
		rest = ""
	}
	if strings.TrimSpace(trailing) != "" {
		return nil, &FrontmatterError{Message: ErrMsgFrontmatterUnclosed, Position: Position{Line: 1, Column: 1}}
	}

	result.HasFrontmatter = true
	result.YAML = fmYAML
	result.Body = rest
	result.BodyLine = strings.Count(content[:len(content)-len(rest)], "\n") + 1
	return result, nil
}

// cutDelimiterLine strips an opening "---" line, accepting LF and CRLF
func cutDelimiterLine(content string) (string, bool) {
	if !strings.HasPrefix(content, StrFrontmatter) {
		return "", false
	}
	after := content[len(StrFrontmatter):]
	switch {
	case strings.HasPrefix(after, "\r\n"):
		return after[2:], true
	case strings.HasPrefix(after, "\n"):
		return after[1:], true
	default:
		return "", false
	}
}

// FrontmatterError reports a malformed document header
type FrontmatterError struct {
	Message  string
	Position Position
}

func (e *FrontmatterError) Error() string {
	return e.Message + " at " + e.Position.String()
}

// Frontmatter error messages
const (
	ErrMsgFrontmatterUnclosed = "frontmatter is not closed"
	ErrMsgFrontmatterTooLarge = "frontmatter exceeds maximum size"
)
