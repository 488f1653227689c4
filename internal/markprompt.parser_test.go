package internal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var ignorePositions = []cmp.Option{
	cmpopts.IgnoreTypes(Position{}),
	cmpopts.EquateEmpty(),
}

func parse(t *testing.T, source string) *RootNode {
	t.Helper()
	root, err := ParseTemplate(source, DefaultLexerConfig(), zap.NewNop())
	require.NoError(t, err)
	return root
}

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Node
	}{
		{
			name:     "text only",
			input:    "Hello",
			expected: []Node{&TextNode{Content: "Hello"}},
		},
		{
			name:  "self-closing tag between text",
			input: `Hi {~mp.var name="user" /~}!`,
			expected: []Node{
				&TextNode{Content: "Hi "},
				&TagNode{Name: "mp.var", Attrs: Attributes{{Name: "name", Value: "user"}}, SelfClose: true},
				&TextNode{Content: "!"},
			},
		},
		{
			name:  "component with expression attribute",
			input: `{~Examples examples={data.examples} /~}`,
			expected: []Node{
				&TagNode{Name: "Examples", Attrs: Attributes{{Name: "examples", Value: "data.examples", Expr: true}}, SelfClose: true},
			},
		},
		{
			name:  "nested block tags",
			input: `{~Instructions~}{~Instruction~}Be brief{~/Instruction~}{~/Instructions~}`,
			expected: []Node{
				&TagNode{Name: "Instructions", Children: []Node{
					&TagNode{Name: "Instruction", Children: []Node{&TextNode{Content: "Be brief"}}},
				}},
			},
		},
		{
			name:     "comments are dropped",
			input:    `a{~mp.comment~}hidden {~x /~}{~/mp.comment~}b{~mp.comment text="note" /~}`,
			expected: []Node{&TextNode{Content: "a"}, &TextNode{Content: "b"}},
		},
		{
			name:  "raw block keeps body",
			input: `{~mp.raw~}<b>{~x /~}</b>{~/mp.raw~}`,
			expected: []Node{
				&TagNode{Name: "mp.raw", Raw: "<b>{~x /~}</b>"},
			},
		},
		{
			name:  "loop",
			input: `{~mp.for item="ex" index="i" in="data.examples" limit="2"~}{~mp.var name="ex" /~}{~/mp.for~}`,
			expected: []Node{
				&ForNode{
					ItemVar:  "ex",
					IndexVar: "i",
					Source:   "data.examples",
					Limit:    2,
					Children: []Node{
						&TagNode{Name: "mp.var", Attrs: Attributes{{Name: "name", Value: "ex"}}, SelfClose: true},
					},
				},
			},
		},
		{
			name:  "conditional with all branches",
			input: `{~mp.if eval="a"~}A{~mp.elseif eval="b"~}B{~mp.else~}C{~/mp.if~}`,
			expected: []Node{
				&ConditionalNode{Branches: []ConditionalBranch{
					{Condition: "a", Children: []Node{&TextNode{Content: "A"}}},
					{Condition: "b", Children: []Node{&TextNode{Content: "B"}}},
					{Children: []Node{&TextNode{Content: "C"}}, IsElse: true},
				}},
			},
		},
		{
			name:  "self-closing else marker",
			input: `{~mp.if eval="a"~}A{~mp.else /~}C{~/mp.if~}`,
			expected: []Node{
				&ConditionalNode{Branches: []ConditionalBranch{
					{Condition: "a", Children: []Node{&TextNode{Content: "A"}}},
					{Children: []Node{&TextNode{Content: "C"}}, IsElse: true},
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := parse(t, tt.input)
			if diff := cmp.Diff(tt.expected, root.Children, ignorePositions...); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParser_Parse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		message  string
		expected string
		actual   string
	}{
		{name: "stray close", input: `{~/x~}`, message: ErrMsgUnexpectedClose, actual: "x"},
		{name: "mismatched close", input: `{~a~}x{~/b~}`, message: ErrMsgMismatchedTag, expected: "a", actual: "b"},
		{name: "unclosed block", input: `{~a~}x`, message: ErrMsgUnclosedTag, expected: "a"},
		{name: "self-closing if", input: `{~mp.if eval="a" /~}`, message: ErrMsgBlockRequired, actual: TagNameIf},
		{name: "self-closing for", input: `{~mp.for item="x" in="xs" /~}`, message: ErrMsgBlockRequired, actual: TagNameFor},
		{name: "else outside if", input: `{~mp.else~}x{~/mp.else~}`, message: ErrMsgCondOutsideIf, actual: TagNameElse},
		{name: "elseif outside if", input: `{~mp.elseif eval="a" /~}`, message: ErrMsgCondOutsideIf, actual: TagNameElseIf},
		{name: "if without eval", input: `{~mp.if~}x{~/mp.if~}`, message: ErrMsgCondMissingEval, actual: TagNameIf},
		{name: "else not last", input: `{~mp.if eval="a"~}x{~mp.else~}y{~mp.else~}z{~/mp.if~}`, message: ErrMsgCondElseNotLast, actual: TagNameElse},
		{name: "elseif after else", input: `{~mp.if eval="a"~}x{~mp.else~}y{~mp.elseif eval="b"~}z{~/mp.if~}`, message: ErrMsgCondElseNotLast, actual: TagNameElseIf},
		{name: "else with eval", input: `{~mp.if eval="a"~}x{~mp.else eval="b"~}y{~/mp.if~}`, message: ErrMsgCondInvalidElse, actual: TagNameElse},
		{name: "unclosed if", input: `{~mp.if eval="a"~}x`, message: ErrMsgUnclosedTag, expected: TagNameIf},
		{name: "for without item", input: `{~mp.for in="xs"~}{~/mp.for~}`, message: ErrMsgForMissingItem, actual: TagNameFor},
		{name: "for without in", input: `{~mp.for item="x"~}{~/mp.for~}`, message: ErrMsgForMissingIn, actual: TagNameFor},
		{name: "negative limit", input: `{~mp.for item="x" in="xs" limit="-1"~}{~/mp.for~}`, message: ErrMsgForInvalidLimit, actual: TagNameFor},
		{name: "duplicate attribute", input: `{~x a="1" a="2" /~}`, message: ErrMsgDuplicateAttr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTemplate(tt.input, DefaultLexerConfig(), zap.NewNop())
			require.Error(t, err)
			var parseErr *ParserError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.message, parseErr.Message)
			assert.Equal(t, tt.expected, parseErr.ExpectedTag)
			assert.Equal(t, tt.actual, parseErr.ActualTag)
		})
	}
}

func TestParser_LexerErrorsPassThrough(t *testing.T) {
	_, err := ParseTemplate(`{~x v="open`, DefaultLexerConfig(), nil)
	var lexErr *LexerError
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, ErrMsgUnterminatedStr, lexErr.Message)
}

func TestAttributes(t *testing.T) {
	attrs := Attributes{
		{Name: "name", Value: "user"},
		{Name: "items", Value: "data.items", Expr: true},
	}

	v, ok := attrs.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "user", v)
	assert.Equal(t, "fallback", attrs.GetDefault("missing", "fallback"))
	assert.True(t, attrs.Has("items"))
	assert.False(t, attrs.Has("missing"))
	assert.Equal(t, `{name="user" items={data.items}}`, attrs.String())
}

func TestNode_String(t *testing.T) {
	root := parse(t, `a{~mp.if eval="x"~}b{~mp.else~}c{~/mp.if~}{~mp.for item="i" in="xs"~}{~/mp.for~}{~T /~}`)
	assert.Equal(t, `Root[Text("a"), If[x | else], For(i in xs, 0 children), Tag(T {} /)]`, root.String())

	tag := &TagNode{Name: "mp.var"}
	assert.True(t, tag.IsBuiltin())
	assert.False(t, (&TagNode{Name: "Examples"}).IsBuiltin())
}
