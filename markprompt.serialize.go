package markprompt

import (
	"strconv"
	"strings"
)

// Private-use runes that bracket a verbatim placeholder in protected output
const (
	verbatimOpen  = '\uE000'
	verbatimClose = '\uE001'
)

// voidElements never carry content and have no closing tag. Keys are
// lowercase; lookups fold the tag first.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer(`"`, "&quot;")
)

// Serialize writes a node tree as flat markup.
//
// Attributes are emitted in insertion order with only double quotes
// escaped. Text leaves have &, < and > escaped. Trusted content is written
// byte-for-byte and replaces the node's children or text.
func Serialize(n *Node) (string, error) {
	s := &serializer{}
	if err := s.node(n); err != nil {
		return "", err
	}
	return s.buf.String(), nil
}

// serializeProtected serializes n with every trusted region replaced by a
// placeholder, so the formatter sees it as one opaque word. The returned
// table restores the regions with restoreVerbatim.
func serializeProtected(n *Node) (string, []string, error) {
	s := &serializer{protect: true}
	if err := s.node(n); err != nil {
		return "", nil, err
	}
	return s.buf.String(), s.verbatim, nil
}

// restoreVerbatim swaps placeholders back for the content they stand for
func restoreVerbatim(out string, table []string) string {
	if len(table) == 0 {
		return out
	}
	var b strings.Builder
	b.Grow(len(out))
	for {
		start := strings.IndexRune(out, verbatimOpen)
		if start < 0 {
			b.WriteString(out)
			return b.String()
		}
		b.WriteString(out[:start])
		rest := out[start+len(string(verbatimOpen)):]
		end := strings.IndexRune(rest, verbatimClose)
		if end < 0 {
			b.WriteString(out[start:])
			return b.String()
		}
		idx, err := strconv.Atoi(rest[:end])
		if err != nil || idx < 0 || idx >= len(table) {
			b.WriteString(out[start : start+len(string(verbatimOpen))+end])
			out = rest[end:]
			continue
		}
		b.WriteString(table[idx])
		out = rest[end+len(string(verbatimClose)):]
	}
}

type serializer struct {
	buf      strings.Builder
	protect  bool
	verbatim []string
}

func (s *serializer) node(n *Node) error {
	if n == nil {
		return NewSerializeError(ErrMsgNilNode, "")
	}
	switch n.Kind {
	case KindText, KindFragment:
		if n.IsTrusted() {
			s.trusted(*n.TrustedContent)
			return nil
		}
		if n.Kind == KindText {
			s.write(textEscaper.Replace(n.Text))
			return nil
		}
		return s.children(n.Children)
	case KindElement:
		return s.element(n)
	default:
		return NewSerializeError(ErrMsgInvalidKind, n.Kind.String())
	}
}

func (s *serializer) element(n *Node) error {
	if !validName(n.Tag) {
		return NewSerializeError(ErrMsgInvalidTagName, n.Tag)
	}
	s.buf.WriteByte('<')
	s.buf.WriteString(n.Tag)
	for _, attr := range n.Attrs {
		if !validName(attr.Name) {
			return NewSerializeError(ErrMsgInvalidAttrName, attr.Name)
		}
		s.buf.WriteByte(' ')
		s.buf.WriteString(attr.Name)
		s.buf.WriteString(`="`)
		s.write(attrEscaper.Replace(attr.Value))
		s.buf.WriteByte('"')
	}
	s.buf.WriteByte('>')

	if voidElements[strings.ToLower(n.Tag)] {
		if n.IsTrusted() || len(n.Children) > 0 {
			return NewSerializeError(ErrMsgVoidContent, n.Tag)
		}
		return nil
	}

	if n.IsTrusted() {
		s.trusted(*n.TrustedContent)
	} else if err := s.children(n.Children); err != nil {
		return err
	}
	s.buf.WriteString("</")
	s.buf.WriteString(n.Tag)
	s.buf.WriteByte('>')
	return nil
}

func (s *serializer) children(children []*Node) error {
	for _, child := range children {
		if err := s.node(child); err != nil {
			return err
		}
	}
	return nil
}

func (s *serializer) trusted(content string) {
	if !s.protect {
		s.buf.WriteString(content)
		return
	}
	s.placeholder(content)
}

// write emits already-escaped text. In protected mode a stray placeholder
// rune is itself stored verbatim so restoreVerbatim cannot misread it.
func (s *serializer) write(text string) {
	if !s.protect || !strings.ContainsRune(text, verbatimOpen) {
		s.buf.WriteString(text)
		return
	}
	for {
		i := strings.IndexRune(text, verbatimOpen)
		if i < 0 {
			s.buf.WriteString(text)
			return
		}
		s.buf.WriteString(text[:i])
		s.placeholder(string(verbatimOpen))
		text = text[i+len(string(verbatimOpen)):]
	}
}

func (s *serializer) placeholder(content string) {
	s.buf.WriteRune(verbatimOpen)
	s.buf.WriteString(strconv.Itoa(len(s.verbatim)))
	s.buf.WriteRune(verbatimClose)
	s.verbatim = append(s.verbatim, content)
}

// validName accepts a letter followed by letters, digits, '-', '_', '.' or ':'
func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-' || r == '_' || r == '.' || r == ':'):
		default:
			return false
		}
	}
	return true
}
