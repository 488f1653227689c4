package markprompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialize(t *testing.T) {
	tests := []struct {
		name     string
		node     *Node
		expected string
	}{
		{
			name:     "text is escaped",
			node:     Element(TagPurpose, nil, Text(`a < b & c > "d"`)),
			expected: `<purpose>a &lt; b &amp; c &gt; "d"</purpose>`,
		},
		{
			name:     "only quotes are escaped in attributes",
			node:     Element(TagData, Attrs{{Name: PropTitle, Value: `say "hi" & <go>`}}),
			expected: `<data title="say &quot;hi&quot; & <go>"></data>`,
		},
		{
			name:     "attributes keep insertion order",
			node:     Element("x", Attrs{{Name: "z", Value: "1"}, {Name: "a", Value: "2"}}),
			expected: `<x z="1" a="2"></x>`,
		},
		{
			name:     "fragment has no wrapper",
			node:     Fragment(Text("a"), Element("b", nil), Text("c")),
			expected: "a<b></b>c",
		},
		{
			name:     "empty fragment",
			node:     Fragment(),
			expected: "",
		},
		{
			name:     "nil children are dropped",
			node:     Element("a", nil, nil, Text("x"), nil),
			expected: "<a>x</a>",
		},
		{
			name:     "trusted element is verbatim",
			node:     Trusted(TagInstruction, nil, `<b>"x" &amp; y</b>`),
			expected: `<instruction><b>"x" &amp; y</b></instruction>`,
		},
		{
			name:     "trusted content replaces children",
			node:     &Node{Kind: KindElement, Tag: "t", Children: []*Node{Text("ignored")}, TrustedContent: strPtr("kept")},
			expected: "<t>kept</t>",
		},
		{
			name:     "verbatim fragment",
			node:     Fragment(Text("<"), Verbatim("<")),
			expected: "&lt;<",
		},
		{
			name:     "void element",
			node:     Element("p", nil, Text("a"), Element("br", nil), Text("b")),
			expected: "<p>a<br>b</p>",
		},
		{
			name:     "tag case is kept",
			node:     Element("MyComponent", Attrs{{Name: "className", Value: "test"}}),
			expected: `<MyComponent className="test"></MyComponent>`,
		},
		{
			name:     "void element in mixed case",
			node:     Element("p", nil, Element("Br", nil), Element("HR", nil)),
			expected: "<p><Br><HR></p>",
		},
		{
			name:     "trusted text leaf replaces text",
			node:     &Node{Kind: KindText, Text: "plain", TrustedContent: strPtr(`<k a="b">`)},
			expected: `<k a="b">`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Serialize(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestSerialize_Errors(t *testing.T) {
	tests := []struct {
		name string
		node *Node
	}{
		{name: "nil node", node: nil},
		{name: "nil child", node: &Node{Kind: KindFragment, Children: []*Node{nil}}},
		{name: "empty tag", node: Element("", nil)},
		{name: "tag starting with digit", node: Element("1x", nil)},
		{name: "tag with space", node: Element("a b", nil)},
		{name: "bad attribute name", node: Element("a", Attrs{{Name: `x"y`, Value: "1"}})},
		{name: "void with children", node: Element("br", nil, Text("x"))},
		{name: "void with trusted content", node: Trusted("img", nil, "x")},
		{name: "mixed case void with children", node: Element("Br", nil, Text("x"))},
		{name: "unknown kind", node: &Node{Kind: Kind(42)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Serialize(tt.node)
			require.Error(t, err)
			assert.True(t, IsSerializeError(err))
		})
	}
}

func TestRenderNode_MixedCaseVoid(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		expected string
	}{
		{name: "inline", tag: "Br", expected: "<purpose>a<br>b</purpose>"},
		{name: "inline upper", tag: "WBR", expected: "<purpose>a<wbr>b</purpose>"},
		{name: "block", tag: "Hr", expected: "<purpose>\n  a\n  <hr>\n  b\n</purpose>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := RenderNode(Element(TagPurpose, nil, Text("a"), Element(tt.tag, nil), Text("b")))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestRenderNode_TrustedTextLeaf(t *testing.T) {
	leaf := &Node{Kind: KindText, Text: "plain", TrustedContent: strPtr(`<q a="b">'x'</q>`)}
	out, err := RenderNode(Element(TagUserInput, nil, leaf))
	require.NoError(t, err)
	assert.Equal(t, `<user-input><q a="b">'x'</q></user-input>`, out)
}

func TestSerializeProtected(t *testing.T) {
	tree := Fragment(
		Text("a\uE000b"),
		Element(TagExamples, nil, Trusted(TagExample, nil, "<x> & y")),
		Verbatim("<raw>"),
	)

	plain, err := Serialize(tree)
	require.NoError(t, err)

	protected, table, err := serializeProtected(tree)
	require.NoError(t, err)
	assert.Len(t, table, 3)
	assert.NotContains(t, protected, "<x>")
	assert.NotContains(t, protected, "<raw>")
	assert.Equal(t, plain, restoreVerbatim(protected, table))
}

func TestRestoreVerbatim(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		table    []string
		expected string
	}{
		{name: "no table", input: "abc", table: nil, expected: "abc"},
		{name: "single", input: "a\uE0000\uE001c", table: []string{"<b>"}, expected: "a<b>c"},
		{name: "reused index", input: "\uE0000\uE001\uE0000\uE001", table: []string{"x"}, expected: "xx"},
		{name: "bad index kept", input: "\uE000zz\uE001", table: []string{"x"}, expected: "\uE000zz\uE001"},
		{name: "out of range kept", input: "\uE0005\uE001", table: []string{"x"}, expected: "\uE0005\uE001"},
		{name: "unterminated kept", input: "a\uE0000", table: []string{"x"}, expected: "a\uE0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, restoreVerbatim(tt.input, tt.table))
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "fragment", KindFragment.String())
	assert.Equal(t, "element", KindElement.String())
	assert.Equal(t, "text", KindText.String())
	assert.Equal(t, "unknown", Kind(9).String())
}

func TestAttrs(t *testing.T) {
	attrs := Attrs{{Name: "a", Value: "1"}}
	updated := attrs.Set("a", "2").Set("b", "3")

	assert.Equal(t, Attrs{{Name: "a", Value: "1"}}, attrs)
	assert.Equal(t, Attrs{{Name: "a", Value: "2"}, {Name: "b", Value: "3"}}, updated)

	v, ok := updated.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
	_, ok = updated.Get("c")
	assert.False(t, ok)
}

func TestNode_Helpers(t *testing.T) {
	n := Trusted("t", nil, "")
	assert.True(t, n.IsTrusted())
	assert.Equal(t, "", n.Trusted())

	var nilNode *Node
	assert.False(t, nilNode.IsTrusted())
	assert.Equal(t, "", nilNode.Trusted())

	el := Element("a", nil).Append(Text("x"), nil)
	assert.Len(t, el.Children, 1)
}

func strPtr(s string) *string { return &s }
