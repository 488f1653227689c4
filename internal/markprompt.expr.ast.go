package internal

import (
	"fmt"
	"strings"
)

// ExprNode is the interface for all expression AST nodes
type ExprNode interface {
	String() string
	exprNode()
}

// LiteralNode represents a literal value (string, number, bool, nil)
type LiteralNode struct {
	Value any
}

func (n *LiteralNode) exprNode() {}

func (n *LiteralNode) String() string {
	switch v := n.Value.(type) {
	case nil:
		return ExprKeywordNil
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// IdentifierNode represents a scope path reference (may include dot notation)
type IdentifierNode struct {
	Name string
}

func (n *IdentifierNode) exprNode()      {}
func (n *IdentifierNode) String() string { return n.Name }

// ListNode represents a list literal
type ListNode struct {
	Items []ExprNode
}

func (n *ListNode) exprNode() {}

func (n *ListNode) String() string {
	parts := make([]string, len(n.Items))
	for i, item := range n.Items {
		parts[i] = item.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// UnaryNode represents a unary operation (e.g., !x)
type UnaryNode struct {
	Op    ExprTokenType
	Right ExprNode
}

func (n *UnaryNode) exprNode()      {}
func (n *UnaryNode) String() string { return fmt.Sprintf("(%s%s)", ExprOpNot, n.Right) }

// BinaryNode represents a binary operation (e.g., a && b)
type BinaryNode struct {
	Left  ExprNode
	Op    ExprTokenType
	Right ExprNode
}

func (n *BinaryNode) exprNode()      {}
func (n *BinaryNode) String() string { return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right) }

// CallNode represents a function call (e.g., len(items))
type CallNode struct {
	Name string
	Args []ExprNode
}

func (n *CallNode) exprNode() {}

func (n *CallNode) String() string {
	args := make([]string, len(n.Args))
	for i, arg := range n.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", n.Name, strings.Join(args, ", "))
}
