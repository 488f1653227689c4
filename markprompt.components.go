package markprompt

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Prompt is the logical root of a prompt. It renders its children with no
// wrapper tag.
func Prompt(children ...*Node) *Node {
	return Fragment(children...)
}

// Purpose states the overall goal of the prompt
func Purpose(children ...*Node) *Node {
	return Element(TagPurpose, nil, children...)
}

// Background holds context the model should consider
func Background(children ...*Node) *Node {
	return Element(TagBackground, nil, children...)
}

// Variables groups dynamic values
func Variables(children ...*Node) *Node {
	return Element(TagVariables, nil, children...)
}

// UserInput wraps the raw user message
func UserInput(children ...*Node) *Node {
	return Element(TagUserInput, nil, children...)
}

// Example holds a single example
func Example(children ...*Node) *Node {
	return Element(TagExample, nil, children...)
}

// Data groups structured data under a title. An empty title uses
// DefaultDataTitle.
func Data(title string, children ...*Node) *Node {
	return Element(TagData, Attrs{{Name: PropTitle, Value: orDefault(title, DefaultDataTitle)}}, children...)
}

// Tools lists the tools available to the model. An empty title uses
// DefaultToolsTitle.
func Tools(title string, children ...*Node) *Node {
	return Element(TagTools, Attrs{{Name: PropTitle, Value: orDefault(title, DefaultToolsTitle)}}, children...)
}

// Tool describes one tool
func Tool(children ...*Node) *Node {
	return Element(TagTool, nil, children...)
}

// ToolRaw describes one tool with content emitted verbatim
func ToolRaw(content string) *Node {
	return Trusted(TagTool, nil, content)
}

// Instruction holds one instruction
func Instruction(children ...*Node) *Node {
	return Element(TagInstruction, nil, children...)
}

// InstructionRaw holds one instruction emitted verbatim
func InstructionRaw(content string) *Node {
	return Trusted(TagInstruction, nil, content)
}

// Instructions wraps each string in its own verbatim <instruction>, followed
// by any extra children. The strings are not escaped: markup-looking text
// in them reaches the output unchanged.
func Instructions(instructions []string, children ...*Node) *Node {
	return expandTrusted(TagInstructions, TagInstruction, instructions, children)
}

// Examples wraps each string in its own verbatim <example>, followed by any
// extra children. The strings are not escaped.
func Examples(examples []string, children ...*Node) *Node {
	return expandTrusted(TagExamples, TagExample, examples, children)
}

func expandTrusted(tag, itemTag string, items []string, children []*Node) *Node {
	nodes := make([]*Node, 0, len(items)+len(children))
	for _, item := range items {
		nodes = append(nodes, Trusted(itemTag, nil, item))
	}
	return Element(tag, nil, append(nodes, children...)...)
}

// InputFormat describes the inputs the model receives. An empty title uses
// DefaultInputFormatTitle; a non-empty format is appended after the children.
func InputFormat(title, format string, children ...*Node) *Node {
	return formatSection(TagInputFormat, orDefault(title, DefaultInputFormatTitle), format, children)
}

// OutputFormat describes the expected response. An empty title uses
// DefaultOutputFormatTitle; a non-empty format is appended after the children.
func OutputFormat(title, format string, children ...*Node) *Node {
	return formatSection(TagOutputFormat, orDefault(title, DefaultOutputFormatTitle), format, children)
}

func formatSection(tag, title, format string, children []*Node) *Node {
	n := Element(tag, Attrs{{Name: PropTitle, Value: title}}, children...)
	if format != "" {
		n.Append(Text(" " + format))
	}
	return n
}

// ChatHistory renders one <message> per entry reading `role: "content"`,
// with the content JSON-quoted so quotes and newlines stay visible.
func ChatHistory(messages []Message) *Node {
	nodes := make([]*Node, len(messages))
	for i, m := range messages {
		nodes[i] = Trusted(TagMessage, nil, m.Role+": "+quoteJSON(m.Content))
	}
	return Element(TagChatHistory, nil, nodes...)
}

// quoteJSON encodes s as a JSON string without HTML escaping
func quoteJSON(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Registry adapters. Each maps template props onto the typed constructor.

// PromptComponent renders Prompt
func PromptComponent(p Props) (*Node, error) {
	return Prompt(p.Children...), nil
}

// PurposeComponent renders Purpose
func PurposeComponent(p Props) (*Node, error) {
	return Purpose(p.Children...), nil
}

// BackgroundComponent renders Background
func BackgroundComponent(p Props) (*Node, error) {
	return Background(p.Children...), nil
}

// VariablesComponent renders Variables
func VariablesComponent(p Props) (*Node, error) {
	return Variables(p.Children...), nil
}

// UserInputComponent renders UserInput
func UserInputComponent(p Props) (*Node, error) {
	return UserInput(p.Children...), nil
}

// ExampleComponent renders Example
func ExampleComponent(p Props) (*Node, error) {
	return Example(p.Children...), nil
}

// DataComponent renders Data with an optional title prop
func DataComponent(p Props) (*Node, error) {
	return titled(p, DefaultDataTitle, func(title string) *Node { return Data(title, p.Children...) })
}

// ToolsComponent renders Tools with an optional title prop
func ToolsComponent(p Props) (*Node, error) {
	return titled(p, DefaultToolsTitle, func(title string) *Node { return Tools(title, p.Children...) })
}

// ToolComponent renders Tool; a raw prop becomes verbatim content
func ToolComponent(p Props) (*Node, error) {
	return rawOr(p, ToolRaw, Tool)
}

// InstructionComponent renders Instruction; a raw prop becomes verbatim content
func InstructionComponent(p Props) (*Node, error) {
	return rawOr(p, InstructionRaw, Instruction)
}

// InstructionsComponent renders Instructions from an instructions prop
func InstructionsComponent(p Props) (*Node, error) {
	items, err := p.Strings(PropInstructions)
	if err != nil {
		return nil, err
	}
	return Instructions(items, p.Children...), nil
}

// ExamplesComponent renders Examples from an examples prop
func ExamplesComponent(p Props) (*Node, error) {
	items, err := p.Strings(PropExamples)
	if err != nil {
		return nil, err
	}
	return Examples(items, p.Children...), nil
}

// InputFormatComponent renders InputFormat from title and format props
func InputFormatComponent(p Props) (*Node, error) {
	return formatComponent(p, TagInputFormat, DefaultInputFormatTitle)
}

// OutputFormatComponent renders OutputFormat from title and format props
func OutputFormatComponent(p Props) (*Node, error) {
	return formatComponent(p, TagOutputFormat, DefaultOutputFormatTitle)
}

// ChatHistoryComponent renders ChatHistory from a messages prop
func ChatHistoryComponent(p Props) (*Node, error) {
	messages, err := p.Messages(PropMessages)
	if err != nil {
		return nil, err
	}
	return ChatHistory(messages), nil
}

// titled resolves the title prop. An explicit empty title is kept, only a
// missing one falls back to the default.
func titled(p Props, def string, build func(string) *Node) (*Node, error) {
	title, err := p.String(PropTitle, def)
	if err != nil {
		return nil, err
	}
	n := build(title)
	n.Attrs = n.Attrs.Set(PropTitle, title)
	return n, nil
}

func rawOr(p Props, raw func(string) *Node, plain func(...*Node) *Node) (*Node, error) {
	if !p.Has(PropRaw) {
		return plain(p.Children...), nil
	}
	content, err := p.String(PropRaw, "")
	if err != nil {
		return nil, err
	}
	return raw(content), nil
}

func formatComponent(p Props, tag, defTitle string) (*Node, error) {
	title, err := p.String(PropTitle, defTitle)
	if err != nil {
		return nil, err
	}
	format, err := p.String(PropFormat, "")
	if err != nil {
		return nil, err
	}
	return formatSection(tag, title, format, p.Children), nil
}
