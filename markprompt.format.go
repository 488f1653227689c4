package markprompt

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// inlineElements are phrasing elements that stay on the line of their
// surrounding text. Every other element, including all prompt tags, is
// laid out as a block.
var inlineElements = map[string]bool{
	"a":      true,
	"abbr":   true,
	"b":      true,
	"bdi":    true,
	"bdo":    true,
	"br":     true,
	"cite":   true,
	"code":   true,
	"dfn":    true,
	"em":     true,
	"i":      true,
	"kbd":    true,
	"mark":   true,
	"q":      true,
	"s":      true,
	"samp":   true,
	"small":  true,
	"span":   true,
	"strong": true,
	"sub":    true,
	"sup":    true,
	"u":      true,
	"var":    true,
	"wbr":    true,
}

// preservedElements keep their body exactly as written
var preservedElements = map[string]bool{
	"pre":       true,
	"textarea":  true,
	"script":    true,
	"style":     true,
	"title":     true,
	"xmp":       true,
	"iframe":    true,
	"noembed":   true,
	"noframes":  true,
	"noscript":  true,
	"plaintext": true,
}

// Format pretty-prints a markup fragment.
//
// Element and attribute names are lower-cased and attribute values are
// re-quoted with double quotes. Text is copied as written, so no entity is
// ever added or removed. Block elements go on their own lines with their
// children indented by indent; phrasing elements stay inline. A closing
// tag with no open element is a FormatError.
func Format(raw string) (string, error) {
	return formatMarkup(raw, DefaultIndent)
}

func formatMarkup(raw, indent string) (string, error) {
	root, err := parseFragment(raw)
	if err != nil {
		return "", err
	}
	p := &printer{indent: indent}
	p.children(root.children, 0)
	return strings.Join(p.lines, "\n"), nil
}

type fmtKind int

const (
	fmtText fmtKind = iota
	fmtElement
	fmtOpaque // comment, doctype
)

type fmtNode struct {
	kind        fmtKind
	name        string
	attrs       []rawAttr
	selfClosing bool
	void        bool
	text        string // raw bytes of text, opaque tokens and preserved bodies
	preserved   bool
	children    []*fmtNode
}

type rawAttr struct {
	name     string
	value    string
	hasValue bool
	quote    byte
}

// parseFragment builds a loose element tree from markup. Unclosed elements
// end with their parent.
func parseFragment(raw string) (*fmtNode, error) {
	z := html.NewTokenizer(strings.NewReader(raw))
	root := &fmtNode{kind: fmtElement}
	stack := []*fmtNode{root}
	offset := 0

	var keep *fmtNode // open preserved element collecting raw bytes
	keepDepth := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				break
			}
			return nil, NewFormatError(ErrMsgTokenizeFailed, offset, z.Err())
		}
		tokRaw := string(z.Raw())
		tokOffset := offset
		offset += len(tokRaw)
		top := stack[len(stack)-1]

		if keep != nil {
			name, _ := z.TagName()
			switch {
			case tt == html.StartTagToken && string(name) == keep.name:
				keepDepth++
			case tt == html.EndTagToken && string(name) == keep.name:
				if keepDepth == 0 {
					keep = nil
					continue
				}
				keepDepth--
			}
			keep.text += tokRaw
			continue
		}

		switch tt {
		case html.TextToken:
			top.children = append(top.children, &fmtNode{kind: fmtText, text: tokRaw})

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			n := &fmtNode{
				kind:        fmtElement,
				name:        string(name),
				attrs:       scanRawAttrs(tokRaw),
				selfClosing: tt == html.SelfClosingTagToken,
				void:        voidElements[string(name)],
			}
			top.children = append(top.children, n)
			if n.selfClosing || n.void {
				continue
			}
			if preservedElements[n.name] {
				n.preserved = true
				keep, keepDepth = n, 0
				continue
			}
			stack = append(stack, n)

		case html.EndTagToken:
			name, _ := z.TagName()
			i := len(stack) - 1
			for i > 0 && stack[i].name != string(name) {
				i--
			}
			if i == 0 {
				return nil, NewFormatError(ErrMsgStrayEndTag+": </"+string(name)+">", tokOffset, nil)
			}
			stack = stack[:i]

		case html.CommentToken, html.DoctypeToken:
			top.children = append(top.children, &fmtNode{kind: fmtOpaque, text: tokRaw})
		}
	}
	return root, nil
}

// scanRawAttrs reads attributes from the raw bytes of a start tag. Values
// are kept exactly as written; the tokenizer's own accessor would decode
// entities.
func scanRawAttrs(tag string) []rawAttr {
	i := 1
	for i < len(tag) && !isTagSpace(tag[i]) && tag[i] != '/' && tag[i] != '>' {
		i++
	}
	var attrs []rawAttr
	for i < len(tag) {
		for i < len(tag) && (isTagSpace(tag[i]) || tag[i] == '/') {
			i++
		}
		if i >= len(tag) || tag[i] == '>' {
			break
		}
		start := i
		i++
		for i < len(tag) && !isTagSpace(tag[i]) && tag[i] != '/' && tag[i] != '>' && tag[i] != '=' {
			i++
		}
		attr := rawAttr{name: strings.ToLower(tag[start:i])}
		j := i
		for j < len(tag) && isTagSpace(tag[j]) {
			j++
		}
		if j < len(tag) && tag[j] == '=' {
			attr.hasValue = true
			i = j + 1
			for i < len(tag) && isTagSpace(tag[i]) {
				i++
			}
			if i < len(tag) && (tag[i] == '"' || tag[i] == '\'') {
				attr.quote = tag[i]
				i++
				vstart := i
				for i < len(tag) && tag[i] != attr.quote {
					i++
				}
				attr.value = tag[vstart:i]
				i++
			} else {
				vstart := i
				for i < len(tag) && !isTagSpace(tag[i]) && tag[i] != '>' {
					i++
				}
				attr.value = tag[vstart:i]
			}
		}
		attrs = append(attrs, attr)
	}
	return attrs
}

func isTagSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func (n *fmtNode) isBlock() bool {
	switch n.kind {
	case fmtText:
		return false
	case fmtOpaque:
		return true
	}
	if !inlineElements[n.name] || n.preserved {
		return true
	}
	for _, c := range n.children {
		if c.isBlock() {
			return true
		}
	}
	return false
}

func (n *fmtNode) openTag() string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(n.name)
	for _, a := range n.attrs {
		b.WriteByte(' ')
		b.WriteString(a.name)
		if !a.hasValue {
			continue
		}
		b.WriteString(`="`)
		if a.quote == '"' {
			b.WriteString(a.value)
		} else {
			b.WriteString(strings.ReplaceAll(a.value, `"`, "&quot;"))
		}
		b.WriteByte('"')
	}
	if n.selfClosing {
		b.WriteString(" />")
	} else {
		b.WriteByte('>')
	}
	return b.String()
}

func (n *fmtNode) closeTag() string {
	return "</" + n.name + ">"
}

type printer struct {
	indent string
	lines  []string
}

func (p *printer) emit(depth int, line string) {
	if line == "" {
		p.lines = append(p.lines, "")
		return
	}
	p.lines = append(p.lines, strings.Repeat(p.indent, depth)+line)
}

// children lays out siblings: each block on its own line(s), and each run
// of inline siblings as normalized text lines.
func (p *printer) children(nodes []*fmtNode, depth int) {
	var run []*fmtNode
	flush := func() {
		for _, line := range inlineLines(run) {
			p.emit(depth, line)
		}
		run = run[:0]
	}
	for _, n := range nodes {
		if n.isBlock() {
			flush()
			p.block(n, depth)
			continue
		}
		run = append(run, n)
	}
	flush()
}

func (p *printer) block(n *fmtNode, depth int) {
	if n.kind == fmtOpaque {
		p.emit(depth, n.text)
		return
	}
	open := n.openTag()
	switch {
	case n.selfClosing || n.void:
		p.emit(depth, open)
		return
	case n.preserved:
		p.emit(depth, open+n.text+n.closeTag())
		return
	}

	hasBlock := false
	for _, c := range n.children {
		if c.isBlock() {
			hasBlock = true
			break
		}
	}
	if !hasBlock {
		lines := inlineLines(n.children)
		switch len(lines) {
		case 0:
			p.emit(depth, open+n.closeTag())
			return
		case 1:
			p.emit(depth, open+lines[0]+n.closeTag())
			return
		}
	}
	p.emit(depth, open)
	p.children(n.children, depth+1)
	p.emit(depth, n.closeTag())
}

// inlineLines renders a run of inline nodes and splits it into trimmed
// lines. Horizontal whitespace in text collapses to one space, edge blank
// lines are dropped and inner blank lines are kept at most once.
func inlineLines(run []*fmtNode) []string {
	var b strings.Builder
	writeInline(&b, run)

	var lines []string
	blank := false
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.Trim(line, " ")
		if line == "" {
			blank = len(lines) > 0
			continue
		}
		if blank {
			lines = append(lines, "")
			blank = false
		}
		lines = append(lines, line)
	}
	return lines
}

func writeInline(b *strings.Builder, nodes []*fmtNode) {
	for _, n := range nodes {
		switch {
		case n.kind == fmtText:
			b.WriteString(collapseSpace(n.text))
		case n.selfClosing || n.void:
			b.WriteString(n.openTag())
		default:
			b.WriteString(n.openTag())
			writeInline(b, n.children)
			b.WriteString(n.closeTag())
		}
	}
}

// collapseSpace folds runs of spaces, tabs, carriage returns and form feeds
// into one space. Newlines are kept.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case ' ', '\t', '\r', '\f':
			space = true
		default:
			if space {
				b.WriteByte(' ')
				space = false
			}
			b.WriteByte(c)
		}
	}
	if space {
		b.WriteByte(' ')
	}
	return b.String()
}
