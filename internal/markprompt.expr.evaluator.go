package internal

import "fmt"

// ContextAccessor resolves dot-notation scope paths
type ContextAccessor interface {
	Get(path string) (any, bool)
}

// KeyLister is an optional interface a ContextAccessor can implement to
// support "did you mean" suggestions.
type KeyLister interface {
	Keys() []string
}

// FuncNameDefined is the one call the evaluator handles itself: it tests a
// path for existence instead of resolving it.
const FuncNameDefined = "defined"

// ExprEvaluator evaluates expression AST nodes against a scope. Unlike
// literal text, every path an expression names must resolve.
type ExprEvaluator struct {
	funcs *FuncRegistry
	ctx   ContextAccessor
}

// NewExprEvaluator creates a new expression evaluator
func NewExprEvaluator(funcs *FuncRegistry, ctx ContextAccessor) *ExprEvaluator {
	return &ExprEvaluator{funcs: funcs, ctx: ctx}
}

// Evaluate evaluates an expression and returns the result
func (e *ExprEvaluator) Evaluate(node ExprNode) (any, error) {
	switch n := node.(type) {
	case *LiteralNode:
		return n.Value, nil
	case *IdentifierNode:
		return e.evaluateIdentifier(n)
	case *ListNode:
		items := make([]any, len(n.Items))
		for i, item := range n.Items {
			v, err := e.Evaluate(item)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	case *UnaryNode:
		right, err := e.Evaluate(n.Right)
		if err != nil {
			return nil, err
		}
		return !IsTruthy(right), nil
	case *BinaryNode:
		return e.evaluateBinary(n)
	case *CallNode:
		return e.evaluateCall(n)
	case nil:
		return nil, NewExprEvalError(ErrMsgExprNilNode, "")
	default:
		return nil, NewExprEvalError(ErrMsgExprUnknownNodeType, fmt.Sprintf("%T", node))
	}
}

// EvaluateBool evaluates an expression and coerces the result to a boolean
func (e *ExprEvaluator) EvaluateBool(node ExprNode) (bool, error) {
	result, err := e.Evaluate(node)
	if err != nil {
		return false, err
	}
	return IsTruthy(result), nil
}

func (e *ExprEvaluator) evaluateIdentifier(node *IdentifierNode) (any, error) {
	if e.ctx == nil {
		return nil, NewExprEvalError(ErrMsgExprNoContext, node.Name)
	}
	val, found := e.ctx.Get(node.Name)
	if !found {
		return nil, &UndefinedPathError{Path: node.Name}
	}
	return val, nil
}

func (e *ExprEvaluator) evaluateBinary(node *BinaryNode) (any, error) {
	left, err := e.Evaluate(node.Left)
	if err != nil {
		return nil, err
	}

	switch node.Op {
	case ExprTokenTypeAnd:
		if !IsTruthy(left) {
			return false, nil
		}
		right, err := e.Evaluate(node.Right)
		if err != nil {
			return nil, err
		}
		return IsTruthy(right), nil
	case ExprTokenTypeOr:
		if IsTruthy(left) {
			return true, nil
		}
		right, err := e.Evaluate(node.Right)
		if err != nil {
			return nil, err
		}
		return IsTruthy(right), nil
	}

	right, err := e.Evaluate(node.Right)
	if err != nil {
		return nil, err
	}

	switch node.Op {
	case ExprTokenTypeEq:
		return compareEqual(left, right), nil
	case ExprTokenTypeNeq:
		return !compareEqual(left, right), nil
	case ExprTokenTypeLt:
		return compareOrdered(left, right, func(c int) bool { return c < 0 })
	case ExprTokenTypeGt:
		return compareOrdered(left, right, func(c int) bool { return c > 0 })
	case ExprTokenTypeLte:
		return compareOrdered(left, right, func(c int) bool { return c <= 0 })
	case ExprTokenTypeGte:
		return compareOrdered(left, right, func(c int) bool { return c >= 0 })
	default:
		return nil, NewExprEvalError(ErrMsgExprUnknownOperator, string(node.Op))
	}
}

func (e *ExprEvaluator) evaluateCall(node *CallNode) (any, error) {
	if node.Name == FuncNameDefined {
		if len(node.Args) != 1 {
			return nil, NewFuncArgError(ErrMsgFuncTooManyArgs, FuncNameDefined, 1, len(node.Args))
		}
		ident, ok := node.Args[0].(*IdentifierNode)
		if !ok || e.ctx == nil {
			return false, nil
		}
		_, found := e.ctx.Get(ident.Name)
		return found, nil
	}

	if e.funcs == nil {
		return nil, NewExprEvalError(ErrMsgExprNoFuncRegistry, node.Name)
	}
	args := make([]any, len(node.Args))
	for i, argNode := range node.Args {
		val, err := e.Evaluate(argNode)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}
	return e.funcs.Call(node.Name, args)
}

func compareEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if an, ok := toNumber(a); ok {
		if bn, ok := toNumber(b); ok {
			return an == bn
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as == bs
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			return ab == bb
		}
	}
	return AnyToString(a) == AnyToString(b)
}

func compareOrdered(a, b any, pred func(int) bool) (bool, error) {
	if an, ok := toNumber(a); ok {
		if bn, ok := toNumber(b); ok {
			switch {
			case an < bn:
				return pred(-1), nil
			case an > bn:
				return pred(1), nil
			default:
				return pred(0), nil
			}
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		switch {
		case as < bs:
			return pred(-1), nil
		case as > bs:
			return pred(1), nil
		default:
			return pred(0), nil
		}
	}
	return false, NewExprEvalError(ErrMsgExprTypeMismatch, fmt.Sprintf("cannot compare %T and %T", a, b))
}

// UndefinedPathError reports a scope path that does not resolve
type UndefinedPathError struct {
	Path string
}

func (e *UndefinedPathError) Error() string {
	return ErrMsgExprUndefinedPath + ": " + e.Path
}

// ExprEvalError represents an expression evaluation error
type ExprEvalError struct {
	Message string
	Detail  string
}

// NewExprEvalError creates a new expression evaluation error
func NewExprEvalError(message, detail string) *ExprEvalError {
	return &ExprEvalError{Message: message, Detail: detail}
}

func (e *ExprEvalError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Expression evaluator error messages
const (
	ErrMsgExprNilNode         = "nil expression node"
	ErrMsgExprUnknownNodeType = "unknown expression node type"
	ErrMsgExprNoContext       = "no context available for variable lookup"
	ErrMsgExprUnknownOperator = "unknown operator"
	ErrMsgExprNoFuncRegistry  = "no function registry available"
	ErrMsgExprTypeMismatch    = "type mismatch in comparison"
	ErrMsgExprUndefinedPath   = "undefined scope path"
)

// EvaluateExpression parses and evaluates an expression string
func EvaluateExpression(expr string, funcs *FuncRegistry, ctx ContextAccessor) (any, error) {
	node, err := ParseExpression(expr)
	if err != nil {
		return nil, err
	}
	return NewExprEvaluator(funcs, ctx).Evaluate(node)
}

// EvaluateExpressionBool parses and evaluates an expression as a boolean
func EvaluateExpressionBool(expr string, funcs *FuncRegistry, ctx ContextAccessor) (bool, error) {
	node, err := ParseExpression(expr)
	if err != nil {
		return false, err
	}
	return NewExprEvaluator(funcs, ctx).EvaluateBool(node)
}
