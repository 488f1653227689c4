package internal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapContext resolves dot paths through nested maps
type mapContext map[string]any

func (m mapContext) Get(path string) (any, bool) {
	var current any = map[string]any(m)
	for _, part := range strings.Split(path, PathSeparator) {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func testContext() mapContext {
	return mapContext{
		"data": map[string]any{
			"name":  "Ada",
			"count": 3,
			"items": []any{"a", "b"},
			"empty": []any{},
			"flag":  true,
		},
	}
}

func TestExprTokenizer_Tokenize(t *testing.T) {
	tokens, err := NewExprTokenizer(`a.b >= -1.5 && !"x\"y" || [c, nil]`).Tokenize()
	require.NoError(t, err)

	types := make([]ExprTokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	assert.Equal(t, []ExprTokenType{
		ExprTokenTypeIdentifier, ExprTokenTypeGte, ExprTokenTypeNumber, ExprTokenTypeAnd,
		ExprTokenTypeNot, ExprTokenTypeString, ExprTokenTypeOr,
		ExprTokenTypeLBracket, ExprTokenTypeIdentifier, ExprTokenTypeComma, ExprTokenTypeNil, ExprTokenTypeRBracket,
		ExprTokenTypeEOF,
	}, types)
	assert.Equal(t, "a.b", tokens[0].Value)
	assert.Equal(t, -1.5, tokens[2].Literal)
	assert.Equal(t, `x"y`, tokens[5].Literal)
}

func TestExprTokenizer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{name: "unexpected character", input: "a @ b", message: ErrMsgExprUnexpectedChar},
		{name: "unterminated string", input: `"abc`, message: ErrMsgExprUnterminatedStr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExprTokenizer(tt.input).Tokenize()
			var tokErr *ExprTokenError
			require.ErrorAs(t, err, &tokErr)
			assert.Equal(t, tt.message, tokErr.Message)
		})
	}
}

func TestParseExpression(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "a", expected: "a"},
		{input: `"hi"`, expected: `"hi"`},
		{input: "nil", expected: "nil"},
		{input: "a && b || c", expected: "((a AND b) OR c)"},
		{input: "a || b && c", expected: "(a OR (b AND c))"},
		{input: "!a && (b || c) == len(x)", expected: "((!a) AND ((b OR c) EQ len(x)))"},
		{input: "[1, x, true]", expected: "[1, x, true]"},
		{input: "a < b == c >= d", expected: "((a LT b) EQ (c GTE d))"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := ParseExpression(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, node.String())
		})
	}
}

func TestParseExpression_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{name: "empty", input: "  ", message: ErrMsgExprEmptyExpression},
		{name: "unclosed paren", input: "(a", message: ErrMsgExprExpectedClose},
		{name: "unclosed list", input: "[a, b", message: ErrMsgExprExpectedClose},
		{name: "trailing token", input: "a b", message: ErrMsgExprUnexpectedToken},
		{name: "dangling operator", input: "a &&", message: ErrMsgExprUnexpectedEOF},
		{name: "operator first", input: "== a", message: ErrMsgExprUnexpectedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExpression(tt.input)
			var parseErr *ExprParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.message, parseErr.Message)
		})
	}
}

func TestExprEvaluator_Evaluate(t *testing.T) {
	funcs := NewBuiltinFuncRegistry()
	ctx := testContext()

	tests := []struct {
		expr     string
		expected any
	}{
		{expr: `data.name == "Ada"`, expected: true},
		{expr: `data.name != "Ada"`, expected: false},
		{expr: "data.count == 3", expected: true},
		{expr: "data.count > 2 && data.flag", expected: true},
		{expr: "!data.flag", expected: false},
		{expr: `"a" < "b"`, expected: true},
		{expr: "2 >= 2.0", expected: true},
		{expr: "nil == nil", expected: true},
		{expr: "data.name == nil", expected: false},
		{expr: "len(data.items)", expected: 2},
		{expr: "upper(data.name)", expected: "ADA"},
		{expr: `join(data.items, ", ")`, expected: "a, b"},
		{expr: `contains(data.items, "b")`, expected: true},
		{expr: `contains(data.name, "d")`, expected: true},
		{expr: "first(data.items)", expected: "a"},
		{expr: "last(data.items)", expected: "b"},
		{expr: `default(data.empty, "none")`, expected: "none"},
		{expr: "defined(data.name)", expected: true},
		{expr: "defined(data.missing)", expected: false},
		{expr: "!defined(data.missing.deeper)", expected: true},
		{expr: "false && data.missing", expected: false},
		{expr: "true || data.missing", expected: true},
		{expr: `[1, "x", nil]`, expected: []any{float64(1), "x", nil}},
		{expr: "data.items", expected: []any{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			result, err := EvaluateExpression(tt.expr, funcs, ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestExprEvaluator_EvaluateBool(t *testing.T) {
	funcs := NewBuiltinFuncRegistry()
	ctx := testContext()

	tests := []struct {
		expr     string
		expected bool
	}{
		{expr: "data.items", expected: true},
		{expr: "data.empty", expected: false},
		{expr: "data.name", expected: true},
		{expr: `""`, expected: false},
		{expr: "0", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			result, err := EvaluateExpressionBool(tt.expr, funcs, ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestExprEvaluator_Errors(t *testing.T) {
	funcs := NewBuiltinFuncRegistry()
	ctx := testContext()

	t.Run("undefined path", func(t *testing.T) {
		_, err := EvaluateExpression("data.missing == 1", funcs, ctx)
		var undefined *UndefinedPathError
		require.ErrorAs(t, err, &undefined)
		assert.Equal(t, "data.missing", undefined.Path)
		assert.Equal(t, ErrMsgExprUndefinedPath+": data.missing", err.Error())
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, err := EvaluateExpression(`"a" < 1`, funcs, ctx)
		var evalErr *ExprEvalError
		require.ErrorAs(t, err, &evalErr)
		assert.Equal(t, ErrMsgExprTypeMismatch, evalErr.Message)
	})

	t.Run("unknown function", func(t *testing.T) {
		_, err := EvaluateExpression("nope(1)", funcs, ctx)
		var funcErr *FuncError
		require.ErrorAs(t, err, &funcErr)
		assert.Equal(t, ErrMsgFuncNotFound, funcErr.Message)
	})

	t.Run("too many arguments", func(t *testing.T) {
		_, err := EvaluateExpression("len(data.items, 2)", funcs, ctx)
		var argErr *FuncArgError
		require.ErrorAs(t, err, &argErr)
		assert.Equal(t, 1, argErr.Expected)
		assert.Equal(t, 2, argErr.Actual)
	})

	t.Run("defined takes one path", func(t *testing.T) {
		_, err := EvaluateExpression("defined(a, b)", funcs, ctx)
		var argErr *FuncArgError
		require.ErrorAs(t, err, &argErr)
		assert.Equal(t, FuncNameDefined, argErr.FuncName)
	})

	t.Run("function failure is wrapped", func(t *testing.T) {
		_, err := EvaluateExpression("len(data.count)", funcs, ctx)
		var execErr *FuncExecError
		require.ErrorAs(t, err, &execErr)
		var funcErr *FuncError
		require.ErrorAs(t, err, &funcErr)
		assert.Equal(t, ErrMsgFuncExpectedSlice, funcErr.Message)
	})

	t.Run("no registry", func(t *testing.T) {
		_, err := EvaluateExpression("len(data.items)", nil, ctx)
		var evalErr *ExprEvalError
		require.ErrorAs(t, err, &evalErr)
		assert.Equal(t, ErrMsgExprNoFuncRegistry, evalErr.Message)
	})

	t.Run("no context", func(t *testing.T) {
		_, err := EvaluateExpression("data.name", funcs, nil)
		var evalErr *ExprEvalError
		require.ErrorAs(t, err, &evalErr)
		assert.Equal(t, ErrMsgExprNoContext, evalErr.Message)
	})
}
