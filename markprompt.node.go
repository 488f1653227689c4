package markprompt

// Kind identifies what a Node renders as
type Kind int

const (
	// KindFragment renders only its children (or trusted content) with no wrapper
	KindFragment Kind = iota
	// KindElement renders as a tag wrapping its children
	KindElement
	// KindText is a literal text leaf, escaped on serialization
	KindText
)

var kindNames = [...]string{
	KindFragment: "fragment",
	KindElement:  "element",
	KindText:     "text",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Attr is a single name/value attribute
type Attr struct {
	Name  string
	Value string
}

// Attrs is an attribute list kept in insertion order
type Attrs []Attr

// Get returns the value of the named attribute
func (a Attrs) Get(name string) (string, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Set returns the list with name set to value. An existing attribute keeps
// its position; a new one is appended.
func (a Attrs) Set(name, value string) Attrs {
	for i := range a {
		if a[i].Name == name {
			out := append(Attrs(nil), a...)
			out[i].Value = value
			return out
		}
	}
	return append(append(Attrs(nil), a...), Attr{Name: name, Value: value})
}

// Node is one unit of the render tree.
//
// When TrustedContent is non-nil it is the whole body of the node: the
// serializer writes it byte-for-byte and ignores Children.
type Node struct {
	Kind           Kind
	Tag            string
	Attrs          Attrs
	Children       []*Node
	Text           string
	TrustedContent *string
}

// Element creates a tagged node
func Element(tag string, attrs Attrs, children ...*Node) *Node {
	return &Node{Kind: KindElement, Tag: tag, Attrs: attrs, Children: compact(children)}
}

// Text creates a literal text leaf
func Text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// Fragment groups nodes without emitting a wrapper
func Fragment(children ...*Node) *Node {
	return &Node{Kind: KindFragment, Children: compact(children)}
}

// Trusted creates a tagged node whose body is emitted verbatim
func Trusted(tag string, attrs Attrs, content string) *Node {
	return &Node{Kind: KindElement, Tag: tag, Attrs: attrs, TrustedContent: &content}
}

// Verbatim creates an untagged node whose content is emitted verbatim
func Verbatim(content string) *Node {
	return &Node{Kind: KindFragment, TrustedContent: &content}
}

// IsTrusted reports whether the node carries trusted content
func (n *Node) IsTrusted() bool {
	return n != nil && n.TrustedContent != nil
}

// Trusted returns the trusted content, or "" when none is set
func (n *Node) Trusted() string {
	if n == nil || n.TrustedContent == nil {
		return ""
	}
	return *n.TrustedContent
}

// Append adds children and returns the node
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, compact(children)...)
	return n
}

func compact(nodes []*Node) []*Node {
	var out []*Node
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
