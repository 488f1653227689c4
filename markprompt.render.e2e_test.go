package markprompt

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestE2E_RenderFile(t *testing.T) {
	doc := `---
title: Review
data:
  tone: friendly
---
{~purpose~}
  Review the code in a {~mp.var name="data.tone" /~} tone.
{~/purpose~}
{~data title="Context"~}
  {~mp.var name="data.code" /~}
{~/data~}
{~output-format format="JSON" /~}
`
	path := writeTemplate(t, t.TempDir(), "review.mdp", doc)

	out, err := RenderFile(context.Background(), RenderOptions{
		FilePath: path,
		Data:     map[string]any{"code": "if a < b {}"},
	})
	require.NoError(t, err)

	expected := strings.Join([]string{
		"<purpose>Review the code in a friendly tone.</purpose>",
		`<data title="Context">if a &lt; b {}</data>`,
		`<output-format title="Your response should be formatted as:">JSON</output-format>`,
	}, "\n")
	assert.Equal(t, expected, out)
}

// A plan full of JSX-like markup placed in a trusted position reaches the
// output exactly as written.
func TestE2E_TrustedPlanKeepsMarkup(t *testing.T) {
	plan := "<MyComponent>\n  <div className=\"test\">x</div>\n</MyComponent>"
	doc := "{~purpose~}Implement the plan{~/purpose~}\n{~instructions instructions={[data.plan]} /~}\n"
	path := writeTemplate(t, t.TempDir(), "plan.mdp", doc)

	out, err := RenderFile(context.Background(), RenderOptions{
		FilePath: path,
		Data:     map[string]any{"plan": plan},
	})
	require.NoError(t, err)

	expected := strings.Join([]string{
		"<purpose>Implement the plan</purpose>",
		"<instructions>",
		"  <instruction>" + plan + "</instruction>",
		"</instructions>",
	}, "\n")
	assert.Equal(t, expected, out)
	assert.Contains(t, out, "<MyComponent>")
	assert.Contains(t, out, `className="test"`)
	assert.NotContains(t, out, "&lt;")
}

func TestE2E_TrustedListsAndHistory(t *testing.T) {
	doc := `{~examples examples={data.examples} /~}
{~chat-history messages={data.history} /~}`
	path := writeTemplate(t, t.TempDir(), "chat.mdp", doc)

	out, err := RenderFile(context.Background(), RenderOptions{
		FilePath: path,
		Data: map[string]any{
			"examples": []string{"X reduced latency by 40%"},
			"history": []any{
				map[string]any{"role": "user", "content": "Hello!"},
				map[string]any{"role": "assistant", "content": "Hi & welcome"},
			},
		},
	})
	require.NoError(t, err)

	expected := strings.Join([]string{
		"<examples>",
		"  <example>X reduced latency by 40%</example>",
		"</examples>",
		"<chat-history>",
		`  <message>user: "Hello!"</message>`,
		`  <message>assistant: "Hi & welcome"</message>`,
		"</chat-history>",
	}, "\n")
	assert.Equal(t, expected, out)
}

func TestE2E_InstructionsKeepOrder(t *testing.T) {
	doc := `{~instructions instructions={data.rules}~}{~instruction~}last{~/instruction~}{~/instructions~}`
	path := writeTemplate(t, t.TempDir(), "rules.mdp", doc)

	out, err := RenderFile(context.Background(), RenderOptions{
		FilePath: path,
		Data:     map[string]any{"rules": []string{"first", "second"}},
	})
	require.NoError(t, err)

	first := strings.Index(out, "first")
	second := strings.Index(out, "second")
	last := strings.Index(out, "last")
	assert.True(t, first < second && second < last, out)
}

func TestE2E_OverridesArePerCall(t *testing.T) {
	doc := `{~purpose~}Ship it{~/purpose~}`
	path := writeTemplate(t, t.TempDir(), "goal.mdp", doc)
	engine := MustNew()
	ctx := context.Background()

	goal := Components{TagPurpose: func(p Props) (*Node, error) {
		return Element("goal", nil, p.Children...), nil
	}}

	out, err := engine.RenderFile(ctx, RenderOptions{FilePath: path, Components: goal})
	require.NoError(t, err)
	assert.Equal(t, "<goal>Ship it</goal>", out)

	out, err = engine.RenderFile(ctx, RenderOptions{FilePath: path})
	require.NoError(t, err)
	assert.Equal(t, "<purpose>Ship it</purpose>", out)
}

func TestE2E_ConcurrentRenders(t *testing.T) {
	doc := `{~purpose~}{~mp.var name="data.n" /~}{~/purpose~}`
	path := writeTemplate(t, t.TempDir(), "n.mdp", doc)
	engine := MustNew()

	var wg sync.WaitGroup
	results := make([]string, 20)
	errs := make([]error, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var comps Components
			if i%2 == 0 {
				comps = Components{TagPurpose: func(p Props) (*Node, error) {
					return Element("even", nil, p.Children...), nil
				}}
			}
			results[i], errs[i] = engine.RenderFile(context.Background(), RenderOptions{
				FilePath:   path,
				Data:       map[string]any{"n": i},
				Components: comps,
			})
		}(i)
	}
	wg.Wait()

	for i, out := range results {
		require.NoError(t, errs[i])
		if i%2 == 0 {
			assert.Equal(t, "<even>"+strconv.Itoa(i)+"</even>", out)
		} else {
			assert.Equal(t, "<purpose>"+strconv.Itoa(i)+"</purpose>", out)
		}
	}
}

func TestE2E_RenderIsRepeatable(t *testing.T) {
	doc := "{~purpose~}a{~/purpose~}\n{~tools~}{~tool~}search{~/tool~}{~/tools~}"
	path := writeTemplate(t, t.TempDir(), "tools.mdp", doc)
	opts := RenderOptions{FilePath: path}

	first, err := RenderFile(context.Background(), opts)
	require.NoError(t, err)
	second, err := RenderFile(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	reformatted, err := Format(first)
	require.NoError(t, err)
	assert.Equal(t, first, reformatted)
}

func TestE2E_RenderFile_Include(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "header.mdp", `{~purpose~}{~mp.var name="data.goal" /~}{~/purpose~}`)
	path := writeTemplate(t, dir, "main.mdp", "{~mp.include template=\"header\" /~}\n{~background~}ctx{~/background~}")

	out, err := RenderFile(context.Background(), RenderOptions{
		FilePath: path,
		Data:     map[string]any{"goal": "Summarize"},
	})
	require.NoError(t, err)
	assert.Equal(t, "<purpose>Summarize</purpose>\n<background>ctx</background>", out)
}

func TestE2E_RenderFile_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file returns the filesystem error", func(t *testing.T) {
		_, err := RenderFile(ctx, RenderOptions{FilePath: filepath.Join(t.TempDir(), "nope.mdp")})
		require.Error(t, err)
		assert.True(t, errors.Is(err, fs.ErrNotExist))
		var pathErr *fs.PathError
		assert.True(t, errors.As(err, &pathErr))
		assert.False(t, IsCompileError(err))
	})

	t.Run("compile error", func(t *testing.T) {
		path := writeTemplate(t, t.TempDir(), "bad.mdp", "ok\n{~Purpose~}x{~/Purpose~}")
		_, err := RenderFile(ctx, RenderOptions{FilePath: path})
		require.Error(t, err)
		assert.True(t, IsCompileError(err))
		assert.Equal(t, "2", metadata(t, err, MetaKeyLine))
	})

	t.Run("canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := RenderFile(canceled, RenderOptions{FilePath: "unused.mdp"})
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestE2E_RenderTemplate(t *testing.T) {
	source := NewMemorySource(map[string]string{
		"greet": `{~purpose~}Hello {~mp.var name="data.name" /~}{~/purpose~}`,
	})
	engine := MustNew(WithSource(source))
	ctx := context.Background()

	out, err := engine.RenderTemplate(ctx, "greet", map[string]any{"name": "Ada"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "<purpose>Hello Ada</purpose>", out)

	_, err = engine.RenderTemplate(ctx, "missing", nil, nil)
	assert.True(t, IsTemplateNotFound(err))

	_, err = MustNew().RenderTemplate(ctx, "greet", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgNoSource)
}

func TestE2E_RenderNode_ProtectsPlaceholderRunes(t *testing.T) {
	node := Prompt(
		Purpose(Text("odd 0 text")),
		Instructions([]string{"<Keep>"}),
	)
	out, err := RenderNode(node)
	require.NoError(t, err)
	assert.Equal(t, "<purpose>odd 0 text</purpose>\n<instructions>\n  <instruction><Keep></instruction>\n</instructions>", out)
}

func renderSource(t *testing.T, source string, data map[string]any) string {
	t.Helper()
	node, err := Compile(context.Background(), source, data, nil)
	require.NoError(t, err)
	out, err := RenderNode(node)
	require.NoError(t, err)
	return out
}

func TestE2E_UserInputKeepsMarkup(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		data     map[string]any
		expected string
	}{
		{
			name:     "raw value",
			source:   `{~user-input~}{~mp.raw name="data.q" /~}{~/user-input~}`,
			data:     map[string]any{"q": `<q a="b">'x'</q>`},
			expected: `<user-input><q a="b">'x'</q></user-input>`,
		},
		{
			name:     "raw block",
			source:   `{~user-input~}{~mp.raw~}if a < b && c > "d" {}{~/mp.raw~}{~/user-input~}`,
			expected: `<user-input>if a < b && c > "d" {}</user-input>`,
		},
		{
			name:     "multi-line raw value",
			source:   `{~user-input~}{~mp.raw name="data.q" /~}{~/user-input~}`,
			data:     map[string]any{"q": "<a href='x'>\n    \"quoted\"\n</a>"},
			expected: "<user-input><a href='x'>\n    \"quoted\"\n</a></user-input>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := renderSource(t, tt.source, tt.data)
			assert.Equal(t, tt.expected, out)
			assert.NotContains(t, out, "&lt;")
			assert.NotContains(t, out, "&quot;")
			assert.NotContains(t, out, "&#39;")
		})
	}
}

func TestE2E_StructuredVariables(t *testing.T) {
	data := map[string]any{
		"obj":     map[string]any{"k": "<v>", "n": []int{1, 2}},
		"profile": map[string]any{"name": "Ada", "tags": []string{"a", "b"}},
	}

	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{
			name:     "json on one line",
			source:   `{~data title="Config"~}{~mp.var name="data.obj" /~}{~/data~}`,
			expected: `<data title="Config">{"k":"&lt;v&gt;","n":[1,2]}</data>`,
		},
		{
			name:     "yaml in flow style",
			source:   `{~data title="Profile"~}{~mp.var name="data.profile" format="yaml" /~}{~/data~}`,
			expected: `<data title="Profile">{name: Ada, tags: [a, b]}</data>`,
		},
		{
			name:     "raw keeps indentation",
			source:   `{~data title="Config"~}{~mp.raw name="data.profile" /~}{~/data~}`,
			expected: "<data title=\"Config\">{\n  \"name\": \"Ada\",\n  \"tags\": [\n    \"a\",\n    \"b\"\n  ]\n}</data>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, renderSource(t, tt.source, data))
		})
	}
}
