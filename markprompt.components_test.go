package markprompt

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponents_Constructors(t *testing.T) {
	tests := []struct {
		name     string
		node     *Node
		expected string
	}{
		{
			name:     "prompt has no wrapper",
			node:     Prompt(Purpose(Text("Be brief")), Background(Text("Context"))),
			expected: "<purpose>Be brief</purpose>\n<background>Context</background>",
		},
		{
			name:     "data default title",
			node:     Data("", Text("x")),
			expected: `<data title="You are provided with the following data:">x</data>`,
		},
		{
			name:     "tools custom title",
			node:     Tools("Available", Tool(Text("search"))),
			expected: "<tools title=\"Available\">\n  <tool>search</tool>\n</tools>",
		},
		{
			name:     "instruction text is escaped",
			node:     Instruction(Text("use <b>")),
			expected: "<instruction>use &lt;b&gt;</instruction>",
		},
		{
			name:     "raw instruction is verbatim",
			node:     InstructionRaw("use <b>"),
			expected: "<instruction>use <b></instruction>",
		},
		{
			name: "instructions wrap each string",
			node: Instructions([]string{"Keep <code> blocks", "Be brief"}, Instruction(Text("Extra"))),
			expected: strings.Join([]string{
				"<instructions>",
				"  <instruction>Keep <code> blocks</instruction>",
				"  <instruction>Be brief</instruction>",
				"  <instruction>Extra</instruction>",
				"</instructions>",
			}, "\n"),
		},
		{
			name: "examples keep symbols",
			node: Examples([]string{"X reduced latency by 40%", `"quoted" & <tagged>`}),
			expected: strings.Join([]string{
				"<examples>",
				"  <example>X reduced latency by 40%</example>",
				`  <example>"quoted" & <tagged></example>`,
				"</examples>",
			}, "\n"),
		},
		{
			name:     "empty instructions",
			node:     Instructions(nil),
			expected: "<instructions></instructions>",
		},
		{
			name:     "output format appends format",
			node:     OutputFormat("", "JSON", Text("Return")),
			expected: `<output-format title="Your response should be formatted as:">Return JSON</output-format>`,
		},
		{
			name:     "input format without children",
			node:     InputFormat("Inputs", "markdown"),
			expected: `<input-format title="Inputs">markdown</input-format>`,
		},
		{
			name: "chat history quotes content",
			node: ChatHistory([]Message{
				{Role: "user", Content: "Hello!"},
				{Role: "assistant", Content: "Say \"hi\"\n<b>"},
			}),
			expected: strings.Join([]string{
				"<chat-history>",
				`  <message>user: "Hello!"</message>`,
				`  <message>assistant: "Say \"hi\"\n<b>"</message>`,
				"</chat-history>",
			}, "\n"),
		},
		{
			name:     "user input and variables",
			node:     Prompt(Variables(Text("v")), UserInput(Text("q")), Example(Text("e"))),
			expected: "<variables>v</variables>\n<user-input>q</user-input>\n<example>e</example>",
		},
		{
			name:     "raw tool",
			node:     ToolRaw("fn(x: int)"),
			expected: "<tool>fn(x: int)</tool>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := RenderNode(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestComponents_Adapters(t *testing.T) {
	tests := []struct {
		name      string
		component Component
		props     Props
		expected  string
	}{
		{
			name:      "data default title",
			component: DataComponent,
			props:     NewProps(Text("x")),
			expected:  `<data title="You are provided with the following data:">x</data>`,
		},
		{
			name:      "explicit empty title is kept",
			component: DataComponent,
			props:     NewProps(Text("x")).With(PropTitle, ""),
			expected:  `<data title="">x</data>`,
		},
		{
			name:      "tools title",
			component: ToolsComponent,
			props:     NewProps().With(PropTitle, "T"),
			expected:  `<tools title="T"></tools>`,
		},
		{
			name:      "tool raw prop",
			component: ToolComponent,
			props:     NewProps(Text("ignored")).With(PropRaw, "<fn>"),
			expected:  "<tool><fn></tool>",
		},
		{
			name:      "instruction children",
			component: InstructionComponent,
			props:     NewProps(Text("a < b")),
			expected:  "<instruction>a &lt; b</instruction>",
		},
		{
			name:      "instructions from list",
			component: InstructionsComponent,
			props:     NewProps().With(PropInstructions, []any{"<one>"}),
			expected:  "<instructions>\n  <instruction><one></instruction>\n</instructions>",
		},
		{
			name:      "examples from list",
			component: ExamplesComponent,
			props:     NewProps().With(PropExamples, []string{"ex"}),
			expected:  "<examples>\n  <example>ex</example>\n</examples>",
		},
		{
			name:      "output format props",
			component: OutputFormatComponent,
			props:     NewProps().With(PropTitle, "Out").With(PropFormat, "JSON"),
			expected:  `<output-format title="Out">JSON</output-format>`,
		},
		{
			name:      "input format default title",
			component: InputFormatComponent,
			props:     NewProps(Text("text")),
			expected:  `<input-format title="You are provided with the following inputs:">text</input-format>`,
		},
		{
			name:      "chat history from maps",
			component: ChatHistoryComponent,
			props:     NewProps().With(PropMessages, []any{map[string]any{"role": "user", "content": "Hi"}}),
			expected:  "<chat-history>\n  <message>user: \"Hi\"</message>\n</chat-history>",
		},
		{
			name:      "paragraph unwraps",
			component: ParagraphComponent,
			props:     NewProps(Text("para")),
			expected:  "para",
		},
		{
			name:      "list unwraps",
			component: ListComponent,
			props:     NewProps(Text("items")),
			expected:  "items",
		},
		{
			name:      "list item prefix",
			component: ListItemComponent,
			props:     NewProps(Text("item")),
			expected:  "- item",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := tt.component(tt.props)
			require.NoError(t, err)
			out, err := RenderNode(node)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestComponents_Adapters_PropsShape(t *testing.T) {
	tests := []struct {
		name      string
		component Component
		props     Props
	}{
		{name: "instructions not a list", component: InstructionsComponent, props: NewProps().With(PropInstructions, "one")},
		{name: "examples with numbers", component: ExamplesComponent, props: NewProps().With(PropExamples, []any{1})},
		{name: "messages without role", component: ChatHistoryComponent, props: NewProps().With(PropMessages, []any{map[string]any{"content": "x"}})},
		{name: "structured title", component: DataComponent, props: NewProps().With(PropTitle, []string{"a"})},
		{name: "structured raw", component: ToolComponent, props: NewProps().With(PropRaw, map[string]any{})},
		{name: "structured format", component: OutputFormatComponent, props: NewProps().With(PropFormat, []any{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.component(tt.props)
			require.Error(t, err)
			assert.True(t, IsPropsShapeError(err))
		})
	}
}

func TestComponents_Registry(t *testing.T) {
	defaults := DefaultComponents()
	assert.Equal(t, []string{
		"background", "chat-history", "data", "example", "examples",
		"input-format", "instruction", "instructions", "li", "ol",
		"output-format", "p", "prompt", "purpose", "tool", "tools",
		"ul", "user-input", "variables",
	}, defaults.Names())

	_, ok := defaults.Resolve("Purpose")
	assert.False(t, ok, "names are case-sensitive")
	_, ok = defaults.Resolve(TagPurpose)
	assert.True(t, ok)
}

func TestComponents_Merge(t *testing.T) {
	goal := func(p Props) (*Node, error) { return Element("goal", nil, p.Children...), nil }
	base := DefaultComponents()
	merged := base.Merge(Components{TagPurpose: goal, "extra": goal, "skipped": nil})

	node, err := merged[TagPurpose](NewProps(Text("x")))
	require.NoError(t, err)
	assert.Equal(t, "goal", node.Tag)
	assert.Contains(t, merged, "extra")
	assert.NotContains(t, merged, "skipped")

	node, err = base[TagPurpose](NewProps(Text("x")))
	require.NoError(t, err)
	assert.Equal(t, TagPurpose, node.Tag)
	assert.NotContains(t, base, "extra")

	node, err = DefaultComponents()[TagPurpose](NewProps())
	require.NoError(t, err)
	assert.Equal(t, TagPurpose, node.Tag)
}

func TestComponents_ReservedNames(t *testing.T) {
	_, err := New(WithComponents(Components{"mp.var": PurposeComponent}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgReservedTag)

	engine := MustNew()
	_, err = engine.Compile(context.Background(), "x", nil, Components{"mp.if": PurposeComponent})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgReservedTag)
}
