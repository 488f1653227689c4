package markprompt

import (
	"gopkg.in/yaml.v3"

	"github.com/itsatony/go-markprompt/internal"
)

// Frontmatter is the optional YAML header of a template document
type Frontmatter struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Data        map[string]any `yaml:"data"`
}

// document is a template split into header and body
type document struct {
	Frontmatter
	Body string
	// BodyLine is the source line the body starts on
	BodyLine int
}

// parseDocument splits the frontmatter from a template. A document without
// a header is all body.
func parseDocument(source string) (*document, error) {
	result, err := internal.ExtractFrontmatter(source)
	if err != nil {
		return nil, NewCompileError(ErrMsgInvalidFrontmatter, Position{Line: 1, Column: 1}, err)
	}
	doc := &document{Body: result.Body, BodyLine: result.BodyLine}
	if !result.HasFrontmatter {
		return doc, nil
	}
	if err := yaml.Unmarshal([]byte(result.YAML), &doc.Frontmatter); err != nil {
		return nil, NewCompileError(ErrMsgInvalidFrontmatter, Position{Line: 2, Column: 1}, err)
	}
	return doc, nil
}

// scopeVars builds the root template scope. Caller data wins over
// frontmatter defaults key by key.
func (d *document) scopeVars(data map[string]any) map[string]any {
	merged := make(map[string]any, len(d.Data)+len(data))
	for k, v := range d.Data {
		merged[k] = v
	}
	for k, v := range data {
		merged[k] = v
	}
	return map[string]any{
		ScopeKeyData: merged,
		ScopeKeyMeta: map[string]any{
			MetaTitle:       d.Title,
			MetaDescription: d.Description,
		},
	}
}
