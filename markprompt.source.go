package markprompt

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// TemplateSource supplies template text by name. It backs mp.include and
// Engine.RenderTemplate. Sources only hand out text; nothing is cached.
type TemplateSource interface {
	Load(ctx context.Context, name string) (string, error)
}

// FileSource loads templates from files under a root directory. Names
// without an extension get DefaultTemplateExt appended.
type FileSource struct {
	root string
}

// NewFileSource creates a source rooted at dir
func NewFileSource(dir string) *FileSource {
	return &FileSource{root: dir}
}

// Root returns the directory templates are read from
func (s *FileSource) Root() string {
	return s.root
}

// Load reads the named template. Names may not leave the root directory.
func (s *FileSource) Load(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.path(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", NewTemplateNotFoundError(name)
		}
		return "", NewSourceError(ErrMsgSourceFailed, name, err)
	}
	return string(data), nil
}

// Names lists the templates under the root, without the default extension
func (s *FileSource) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != DefaultTemplateExt {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		names = append(names, strings.TrimSuffix(filepath.ToSlash(rel), DefaultTemplateExt))
		return nil
	})
	if err != nil {
		return nil, NewSourceError(ErrMsgSourceFailed, s.root, err)
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileSource) path(name string) (string, error) {
	if name == "" {
		return "", NewSourceError(ErrMsgInvalidTemplate, name, nil)
	}
	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		return "", NewSourceError(ErrMsgInvalidTemplate, name, nil)
	}
	if filepath.Ext(rel) == "" {
		rel += DefaultTemplateExt
	}
	return filepath.Join(s.root, rel), nil
}

// MemorySource holds templates in memory. It is safe for concurrent use.
type MemorySource struct {
	mu        sync.RWMutex
	templates map[string]string
}

// NewMemorySource creates a source preloaded with templates
func NewMemorySource(templates map[string]string) *MemorySource {
	s := &MemorySource{templates: make(map[string]string, len(templates))}
	for name, text := range templates {
		s.templates[name] = text
	}
	return s
}

// Set stores a template, replacing any previous text
func (s *MemorySource) Set(name, text string) error {
	if name == "" {
		return NewSourceError(ErrMsgInvalidTemplate, name, nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[name] = text
	return nil
}

// Delete removes a template and reports whether it existed
func (s *MemorySource) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.templates[name]
	delete(s.templates, name)
	return ok
}

// Names returns the stored template names, sorted
func (s *MemorySource) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load returns the named template
func (s *MemorySource) Load(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.templates[name]
	if !ok {
		return "", NewTemplateNotFoundError(name)
	}
	return text, nil
}
