package main

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// readInput reads content from a file or stdin
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == InputSourceStdin || path == "" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// writeOutput writes content to a file or stdout
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == FlagDefaultOutput || path == "" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, FilePermissions)
}

// loadData reads template data from an inline string or a file. Both are
// parsed as YAML, which also accepts JSON.
func loadData(inline, filePath string) (map[string]any, error) {
	var raw []byte
	switch {
	case filePath != "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		raw = data
	case inline != "":
		raw = []byte(inline)
	default:
		return map[string]any{}, nil
	}

	result := map[string]any{}
	if err := yaml.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return result, nil
}
