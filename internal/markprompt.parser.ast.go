package internal

import (
	"fmt"
	"strings"
)

// NodeType identifies template AST node kinds
type NodeType int

const (
	NodeTypeRoot NodeType = iota
	NodeTypeText
	NodeTypeTag
	NodeTypeConditional
	NodeTypeFor
)

// Node is implemented by all template AST nodes
type Node interface {
	Type() NodeType
	Pos() Position
	String() string
}

// RootNode is the top of a parsed template
type RootNode struct {
	Children []Node
}

func (n *RootNode) Type() NodeType { return NodeTypeRoot }
func (n *RootNode) Pos() Position  { return Position{Line: 1, Column: 1} }

func (n *RootNode) String() string {
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = c.String()
	}
	return fmt.Sprintf("Root[%s]", strings.Join(parts, ", "))
}

// TextNode holds literal template text
type TextNode struct {
	Content  string
	Position Position
}

func (n *TextNode) Type() NodeType { return NodeTypeText }
func (n *TextNode) Pos() Position  { return n.Position }
func (n *TextNode) String() string { return fmt.Sprintf("Text(%q)", n.Content) }

// NewTextNode creates a text node
func NewTextNode(content string, pos Position) *TextNode {
	return &TextNode{Content: content, Position: pos}
}

// TagNode is a component reference or a built-in tag. Raw holds the body of
// verbatim blocks (mp.raw) and is empty otherwise.
type TagNode struct {
	Name      string
	Attrs     Attributes
	Children  []Node
	SelfClose bool
	Raw       string
	Position  Position
}

func (n *TagNode) Type() NodeType { return NodeTypeTag }
func (n *TagNode) Pos() Position  { return n.Position }

func (n *TagNode) String() string {
	if n.SelfClose {
		return fmt.Sprintf("Tag(%s %s /)", n.Name, n.Attrs)
	}
	return fmt.Sprintf("Tag(%s %s, %d children)", n.Name, n.Attrs, len(n.Children))
}

// IsBuiltin reports whether the tag lives in the reserved namespace
func (n *TagNode) IsBuiltin() bool {
	return strings.HasPrefix(n.Name, TagPrefixReserved)
}

// Attribute is a single tag attribute. Expr marks brace-delimited values that
// must be evaluated against the scope.
type Attribute struct {
	Name     string
	Value    string
	Expr     bool
	Position Position
}

// Attributes keeps attributes in source order
type Attributes []Attribute

// Get returns the raw value of the named attribute
func (a Attributes) Get(name string) (string, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// GetDefault returns the named attribute value or defaultVal
func (a Attributes) GetDefault(name, defaultVal string) string {
	if v, ok := a.Get(name); ok {
		return v
	}
	return defaultVal
}

// Has reports whether the attribute is present
func (a Attributes) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

func (a Attributes) String() string {
	parts := make([]string, len(a))
	for i, attr := range a {
		if attr.Expr {
			parts[i] = fmt.Sprintf("%s={%s}", attr.Name, attr.Value)
		} else {
			parts[i] = fmt.Sprintf("%s=%q", attr.Name, attr.Value)
		}
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// ConditionalBranch is one if/elseif/else arm
type ConditionalBranch struct {
	Condition string
	Children  []Node
	IsElse    bool
	Position  Position
}

// ConditionalNode is an mp.if block with its branches
type ConditionalNode struct {
	Branches []ConditionalBranch
	Position Position
}

func (n *ConditionalNode) Type() NodeType { return NodeTypeConditional }
func (n *ConditionalNode) Pos() Position  { return n.Position }

func (n *ConditionalNode) String() string {
	parts := make([]string, len(n.Branches))
	for i, b := range n.Branches {
		if b.IsElse {
			parts[i] = "else"
		} else {
			parts[i] = b.Condition
		}
	}
	return fmt.Sprintf("If[%s]", strings.Join(parts, " | "))
}

// ForNode is an mp.for loop
type ForNode struct {
	ItemVar  string
	IndexVar string
	Source   string
	Limit    int
	Children []Node
	Position Position
}

func (n *ForNode) Type() NodeType { return NodeTypeFor }
func (n *ForNode) Pos() Position  { return n.Position }

func (n *ForNode) String() string {
	return fmt.Sprintf("For(%s in %s, %d children)", n.ItemVar, n.Source, len(n.Children))
}
