package insight

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	textReadLimit      = 64 << 10
	textLineLimit      = 100
	textHighlightLimit = 5
)

// TextBackend takes the first line of a plain text file, or its title when
// the line is a level-one heading.
type TextBackend struct{}

func (TextBackend) Extract(_ context.Context, path string) (*Insight, error) {
	data, err := readHead(path, textReadLimit)
	if err != nil {
		return nil, err
	}
	first := firstTextLine(data)
	if first == "" {
		return nil, nil
	}
	return New([]string{first}, ""), nil
}

func firstTextLine(data []byte) string {
	line, _, _ := bytes.Cut(data, []byte("\n"))
	s := strings.TrimPrefix(strings.ToValidUTF8(string(line), ""), "\ufeff")
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return ""
	case strings.HasPrefix(s, "# "):
		return strings.TrimSpace(s[2:])
	case strings.HasPrefix(s, "#"):
		return ""
	default:
		return truncateRunes(s, textLineLimit)
	}
}

// MarkdownBackend reads YAML front matter (title, description, tags,
// keywords) and ATX headings.
type MarkdownBackend struct{}

type frontMatter struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Tags        stringList `yaml:"tags"`
	Keywords    stringList `yaml:"keywords"`
}

// stringList accepts either a YAML sequence or a comma separated scalar.
type stringList []string

func (l *stringList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		for _, part := range strings.Split(n.Value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				*l = append(*l, part)
			}
		}
	case yaml.SequenceNode:
		var items []string
		if err := n.Decode(&items); err != nil {
			return err
		}
		*l = items
	}
	return nil
}

func (MarkdownBackend) Extract(_ context.Context, path string) (*Insight, error) {
	data, err := readHead(path, textReadLimit)
	if err != nil {
		return nil, err
	}
	text := strings.ToValidUTF8(string(data), "")
	text = strings.TrimPrefix(text, "\ufeff")

	fm, body, err := splitFrontMatter(text)
	if err != nil {
		return nil, err
	}

	var candidates []string
	if fm != nil {
		candidates = append(candidates, fm.Title)
		candidates = append(candidates, fm.Tags...)
		candidates = append(candidates, fm.Keywords...)
	}
	candidates = append(candidates, markdownHeadings(body)...)
	if len(candidates) == 0 {
		if first := firstTextLine([]byte(body)); first != "" {
			candidates = append(candidates, first)
		}
	}

	caption := ""
	if fm != nil {
		caption = collapseSpace(fm.Description)
	}
	return New(uniqueFold(candidates, textHighlightLimit), caption), nil
}

// splitFrontMatter separates a leading "---" YAML block from the body.
func splitFrontMatter(text string) (*frontMatter, string, error) {
	if !strings.HasPrefix(text, "---\n") && !strings.HasPrefix(text, "---\r\n") {
		return nil, text, nil
	}
	rest := text[strings.Index(text, "\n")+1:]
	for pos := 0; pos <= len(rest); {
		line, next := rest[pos:], len(rest)
		if nl := strings.IndexByte(rest[pos:], '\n'); nl >= 0 {
			line, next = rest[pos:pos+nl], pos+nl+1
		}
		if strings.TrimRight(line, "\r") == "---" {
			var fm frontMatter
			if err := yaml.Unmarshal([]byte(rest[:pos]), &fm); err != nil {
				return nil, "", fmt.Errorf("front matter: %w", err)
			}
			return &fm, rest[next:], nil
		}
		if next == len(rest) {
			break
		}
		pos = next
	}
	return nil, text, nil
}

func markdownHeadings(body string) []string {
	var out []string
	inFence := false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence || !strings.HasPrefix(trimmed, "#") {
			continue
		}
		level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
		if level > 6 {
			continue
		}
		rest := trimmed[level:]
		if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
			continue
		}
		h := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(rest), "#"))
		if h != "" {
			out = append(out, h)
		}
	}
	return out
}

func readHead(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit))
}
