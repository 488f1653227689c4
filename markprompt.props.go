package markprompt

import (
	"github.com/itsatony/go-markprompt/internal"
)

// Message is one chat-history entry
type Message struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// Prop is a single named component attribute
type Prop struct {
	Name  string
	Value any
}

// Props is the bundle a component receives: its children plus named
// attributes in declaration order. Attribute values are strings for literal
// template attributes and arbitrary scope values for expressions.
type Props struct {
	Children []*Node
	values   []Prop
}

// NewProps creates props holding the given children
func NewProps(children ...*Node) Props {
	return Props{Children: compact(children)}
}

// With returns a copy of the props with name set to value
func (p Props) With(name string, value any) Props {
	out := Props{Children: p.Children, values: make([]Prop, len(p.values), len(p.values)+1)}
	copy(out.values, p.values)
	for i := range out.values {
		if out.values[i].Name == name {
			out.values[i].Value = value
			return out
		}
	}
	out.values = append(out.values, Prop{Name: name, Value: value})
	return out
}

// Get returns the raw value of a named prop
func (p Props) Get(name string) (any, bool) {
	for _, v := range p.values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return nil, false
}

// Has reports whether the prop was supplied
func (p Props) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Names returns prop names in declaration order
func (p Props) Names() []string {
	names := make([]string, len(p.values))
	for i, v := range p.values {
		names[i] = v.Name
	}
	return names
}

// String returns a prop as text. Scalars are stringified; structured values
// are a PropsShapeError. A missing or nil prop yields def.
func (p Props) String(name, def string) (string, error) {
	v, ok := p.Get(name)
	if !ok || v == nil {
		return def, nil
	}
	if !internal.IsScalar(v) {
		return "", NewPropsShapeError(name, "a string", v)
	}
	return internal.AnyToString(v), nil
}

// Strings returns a prop that must be a list of strings. A missing prop
// yields nil.
func (p Props) Strings(name string) ([]string, error) {
	v, ok := p.Get(name)
	if !ok || v == nil {
		return nil, nil
	}
	if s, ok := v.([]string); ok {
		return s, nil
	}
	items, err := internal.ToSlice(v)
	if err != nil {
		return nil, NewPropsShapeError(name, "a list of strings", v)
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, NewPropsShapeError(name, "a list of strings", v)
		}
		out[i] = s
	}
	return out, nil
}

// Messages returns a prop that must be a list of role/content pairs. Items
// may be Message values or maps with string "role" and "content" keys.
func (p Props) Messages(name string) ([]Message, error) {
	v, ok := p.Get(name)
	if !ok || v == nil {
		return nil, nil
	}
	if m, ok := v.([]Message); ok {
		return m, nil
	}
	items, err := internal.ToSlice(v)
	if err != nil {
		return nil, NewPropsShapeError(name, "a list of messages", v)
	}
	out := make([]Message, len(items))
	for i, item := range items {
		msg, ok := toMessage(item)
		if !ok {
			return nil, NewPropsShapeError(name, "a list of messages", v)
		}
		out[i] = msg
	}
	return out, nil
}

func toMessage(v any) (Message, bool) {
	switch m := v.(type) {
	case Message:
		return m, true
	case *Message:
		if m == nil {
			return Message{}, false
		}
		return *m, true
	case map[string]string:
		role, rok := m["role"]
		content, cok := m["content"]
		return Message{Role: role, Content: content}, rok && cok
	case map[string]any:
		role, rok := m["role"].(string)
		content, cok := m["content"].(string)
		return Message{Role: role, Content: content}, rok && cok
	default:
		return Message{}, false
	}
}

// Attrs returns scalar props as node attributes, in declaration order.
// Structured values are skipped.
func (p Props) Attrs() Attrs {
	var attrs Attrs
	for _, v := range p.values {
		if v.Value != nil && internal.IsScalar(v.Value) {
			attrs = append(attrs, Attr{Name: v.Name, Value: internal.AnyToString(v.Value)})
		}
	}
	return attrs
}
