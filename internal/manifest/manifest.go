// Package manifest reads record files: YAML frontmatter naming a panel and
// the record's fields, followed by an optional free-text body.
package manifest

import (
	"bytes"
	"errors"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Document struct {
	Panel      string
	Fields     map[string]any
	Body       string
	SourceFile string
}

var (
	ErrNoFrontmatter = errors.New("no frontmatter found")
	ErrInvalidYAML   = errors.New("invalid YAML in frontmatter")
	ErrMissingPanel  = errors.New("frontmatter missing required 'panel' field")
)

func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc.SourceFile = path
	return doc, nil
}

func Parse(content []byte) (*Document, error) {
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	trimmed := bytes.TrimLeft(content, "\ufeff\n\t ")
	if !bytes.HasPrefix(trimmed, []byte("---\n")) {
		return nil, ErrNoFrontmatter
	}

	rest := trimmed[len("---\n"):]
	end := bytes.Index(rest, []byte("\n---"))
	if end == -1 {
		return nil, ErrNoFrontmatter
	}
	yamlBytes := rest[:end+1]
	body := strings.TrimPrefix(string(rest[end+len("\n---"):]), "\n")

	var frontmatter map[string]any
	if err := yaml.Unmarshal(yamlBytes, &frontmatter); err != nil {
		return nil, ErrInvalidYAML
	}

	panel, ok := frontmatter["panel"].(string)
	if !ok || strings.TrimSpace(panel) == "" {
		return nil, ErrMissingPanel
	}
	delete(frontmatter, "panel")

	return &Document{
		Panel:  strings.TrimSpace(panel),
		Fields: frontmatter,
		Body:   strings.TrimSpace(body),
	}, nil
}
