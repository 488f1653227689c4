package markprompt

import (
	"reflect"
	"sort"
	"strings"

	"github.com/itsatony/go-markprompt/internal"
)

// Scope resolves the dot-notation paths templates refer to, such as
// "data.user.name". Loop bodies run in child scopes whose bindings shadow
// the parent's.
type Scope struct {
	vars   map[string]any
	parent *Scope
}

// NewScope creates a root scope over vars. A nil map is treated as empty.
func NewScope(vars map[string]any) *Scope {
	if vars == nil {
		vars = make(map[string]any)
	}
	return &Scope{vars: vars}
}

// Child creates a scope layered over s
func (s *Scope) Child(vars map[string]any) *Scope {
	child := NewScope(vars)
	child.parent = s
	return child
}

// Get resolves a dot-notation path. The first segment is looked up in the
// nearest scope that binds it; later segments walk maps, struct fields and
// list indexes.
func (s *Scope) Get(path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	head, rest, _ := strings.Cut(path, internal.PathSeparator)
	for sc := s; sc != nil; sc = sc.parent {
		val, ok := sc.vars[head]
		if !ok {
			continue
		}
		if rest == "" {
			return val, true
		}
		return walkPath(val, strings.Split(rest, internal.PathSeparator))
	}
	return nil, false
}

// Has reports whether a path resolves
func (s *Scope) Has(path string) bool {
	_, ok := s.Get(path)
	return ok
}

// Keys lists every resolvable path down to leaf values, for suggestions
func (s *Scope) Keys() []string {
	seen := make(map[string]bool)
	for sc := s; sc != nil; sc = sc.parent {
		for name, val := range sc.vars {
			collectKeys(name, val, seen, 0)
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// maxKeyDepth bounds how deep Keys descends into nested data
const maxKeyDepth = 4

func collectKeys(prefix string, val any, seen map[string]bool, depth int) {
	seen[prefix] = true
	if depth >= maxKeyDepth {
		return
	}
	switch m := val.(type) {
	case map[string]any:
		for k, v := range m {
			collectKeys(prefix+internal.PathSeparator+k, v, seen, depth+1)
		}
	case map[string]string:
		for k := range m {
			seen[prefix+internal.PathSeparator+k] = true
		}
	}
}

func walkPath(current any, parts []string) (any, bool) {
	for _, part := range parts {
		if part == "" {
			continue
		}
		next, ok := step(current, part)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func step(current any, key string) (any, bool) {
	switch v := current.(type) {
	case map[string]any:
		val, ok := v[key]
		return val, ok
	case map[string]string:
		val, ok := v[key]
		return val, ok
	case Message:
		return messageField(v, key)
	case *Message:
		if v == nil {
			return nil, false
		}
		return messageField(*v, key)
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(current)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		val := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !val.IsValid() {
			return nil, false
		}
		return val.Interface(), true
	case reflect.Slice, reflect.Array:
		idx, ok := parseIndex(key)
		if !ok || idx >= rv.Len() {
			return nil, false
		}
		return rv.Index(idx).Interface(), true
	case reflect.Struct:
		field := rv.FieldByName(key)
		if !field.IsValid() || !field.CanInterface() {
			return nil, false
		}
		return field.Interface(), true
	}
	return nil, false
}

func messageField(m Message, key string) (any, bool) {
	switch key {
	case "role", "Role":
		return m.Role, true
	case "content", "Content":
		return m.Content, true
	}
	return nil, false
}

func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
