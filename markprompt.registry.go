package markprompt

import (
	"sort"
	"strings"

	"github.com/itsatony/go-markprompt/internal"
)

// Component renders a props bundle into a node. Components must be pure:
// the same props always produce an equivalent node. A component that yields
// several nodes returns them wrapped in a Fragment.
type Component func(Props) (*Node, error)

// Components maps tag names to components
type Components map[string]Component

// defaultComponents is shared by every render call and never mutated.
var defaultComponents = Components{
	TagPrompt:       PromptComponent,
	TagPurpose:      PurposeComponent,
	TagBackground:   BackgroundComponent,
	TagVariables:    VariablesComponent,
	TagData:         DataComponent,
	TagTools:        ToolsComponent,
	TagTool:         ToolComponent,
	TagInstructions: InstructionsComponent,
	TagInstruction:  InstructionComponent,
	TagUserInput:    UserInputComponent,
	TagExample:      ExampleComponent,
	TagExamples:     ExamplesComponent,
	TagInputFormat:  InputFormatComponent,
	TagOutputFormat: OutputFormatComponent,
	TagChatHistory:  ChatHistoryComponent,

	TagParagraph:     ParagraphComponent,
	TagUnorderedList: ListComponent,
	TagOrderedList:   ListComponent,
	TagListItem:      ListItemComponent,
}

// DefaultComponents returns a copy of the default registry
func DefaultComponents() Components {
	return defaultComponents.Clone()
}

// Clone returns a shallow copy of the registry
func (c Components) Clone() Components {
	out := make(Components, len(c))
	for name, fn := range c {
		out[name] = fn
	}
	return out
}

// Merge returns a new registry holding c overlaid by each override in turn.
// Later entries win by tag name; neither input is modified.
func (c Components) Merge(overrides ...Components) Components {
	size := len(c)
	for _, o := range overrides {
		size += len(o)
	}
	out := make(Components, size)
	for name, fn := range c {
		out[name] = fn
	}
	for _, o := range overrides {
		for name, fn := range o {
			if fn != nil {
				out[name] = fn
			}
		}
	}
	return out
}

// Resolve looks up the component for a tag name
func (c Components) Resolve(name string) (Component, bool) {
	fn, ok := c[name]
	return fn, ok && fn != nil
}

// Names returns the registered tag names, sorted
func (c Components) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validate rejects names that collide with built-in tags
func (c Components) validate() error {
	for _, name := range c.Names() {
		if strings.HasPrefix(name, internal.TagPrefixReserved) {
			return NewReservedTagError(name)
		}
	}
	return nil
}
