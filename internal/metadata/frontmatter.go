package metadata

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FrontMatter renders note as a YAML block delimited by "---" lines. Values
// are always double quoted so titles with colons or leading symbols stay
// valid YAML.
func FrontMatter(note ShowNote) (string, error) {
	fields := []struct {
		key   string
		value string
	}{
		{"showLink", note.ShowLink},
		{"channel", note.Channel},
		{"channelURL", note.ChannelURL},
		{"title", note.Title},
		{"description", note.Description},
		{"publishDate", note.PublishDate},
		{"coverImage", note.CoverImage},
	}

	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range fields {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: f.key},
			&yaml.Node{Kind: yaml.ScalarNode, Style: yaml.DoubleQuotedStyle, Tag: "!!str", Value: f.value},
		)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}
	buf.WriteString("---\n")
	return buf.String(), nil
}
