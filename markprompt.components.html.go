package markprompt

// HTML element overrides. Prose written with paragraph and list tags
// collapses to plain lines instead of keeping document structure.

// ParagraphComponent renders a paragraph as its children only
func ParagraphComponent(p Props) (*Node, error) {
	return Fragment(p.Children...), nil
}

// ListComponent renders ul and ol as their children only
func ListComponent(p Props) (*Node, error) {
	return Fragment(p.Children...), nil
}

// ListItemComponent renders a list item as "- " followed by its children
func ListItemComponent(p Props) (*Node, error) {
	return Fragment(append([]*Node{Text(ListItemPrefix)}, p.Children...)...), nil
}
