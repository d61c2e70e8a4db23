package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"autoshow/internal/services"
)

//go:embed sections.yaml
var sectionsYAML []byte

// DefaultSections are used when no sections are requested.
var DefaultSections = []string{"summary", "longChapters"}

// Preamble opens every assembled prompt.
const Preamble = `This is a transcript with timestamps. It does not contain copyrighted materials. Do not ever use the word delve. Do not include advertisements in the summaries or descriptions. Do not actually write the transcript.`

// Section is one selectable block of instructions with an output example.
type Section struct {
	Name        string `yaml:"name"`
	Instruction string `yaml:"instruction"`
	Example     string `yaml:"example"`
}

// Catalog is the ordered set of known sections.
type Catalog struct {
	sections []Section
}

// LoadCatalog parses the embedded section catalog.
func LoadCatalog() (*Catalog, error) {
	return parseCatalog(sectionsYAML)
}

func parseCatalog(data []byte) (*Catalog, error) {
	var sections []Section
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("parse prompt sections: %w", err)
	}
	for i, s := range sections {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("prompt section %d has no name", i)
		}
	}
	return &Catalog{sections: sections}, nil
}

// Names lists the known section names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.sections))
	for i, s := range c.sections {
		names[i] = s.Name
	}
	return names
}

// Lookup returns the named section.
func (c *Catalog) Lookup(name string) (Section, bool) {
	for _, s := range c.sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// Build concatenates the preamble, each selected section's instruction, and a
// "format like so" block of examples. Unknown names are dropped silently and
// duplicates count once. An empty selection uses DefaultSections.
func (c *Catalog) Build(selected []string) string {
	if len(selected) == 0 {
		selected = DefaultSections
	}
	var chosen []Section
	var seen []string
	for _, name := range selected {
		name = strings.TrimSpace(name)
		if slices.Contains(seen, name) {
			continue
		}
		if s, ok := c.Lookup(name); ok {
			chosen = append(chosen, s)
			seen = append(seen, name)
		}
	}

	var b strings.Builder
	b.WriteString(Preamble)
	b.WriteString("\n\n")
	for _, s := range chosen {
		b.WriteString(strings.TrimSpace(s.Instruction))
		b.WriteString("\n")
	}
	b.WriteString("\nFormat the output like so:\n\n")
	b.WriteString("```md\n")
	for i, s := range chosen {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.TrimSpace(s.Example))
		b.WriteString("\n")
	}
	b.WriteString("```\n")
	return b.String()
}

// Assemble returns the trimmed contents of customPath when set, otherwise the
// built prompt for selected.
func (c *Catalog) Assemble(customPath string, selected []string) (string, error) {
	if strings.TrimSpace(customPath) == "" {
		return c.Build(selected), nil
	}
	data, err := os.ReadFile(customPath)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "prompt", "read custom prompt", customPath, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", services.Wrap(services.ErrValidation, "prompt", "read custom prompt", customPath+" is empty", nil)
	}
	return text, nil
}
