package localdump

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Header is the YAML front matter optionally written above the Markdown.
type Header struct {
	Title        string    `yaml:"title"`
	ObjectID     string    `yaml:"object_id"`
	Version      int       `yaml:"version,omitempty"`
	Space        string    `yaml:"space,omitempty"`
	Status       string    `yaml:"status,omitempty"`
	URI          string    `yaml:"uri,omitempty"`
	LastModified string    `yaml:"last_modified,omitempty"`
	Exported     time.Time `yaml:"exported"`
}

func headerFor(doc Document, now time.Time) Header {
	h := Header{
		Title:    doc.Page.Title,
		ObjectID: doc.Page.ID,
		Space:    doc.Page.SpaceKey(),
		Status:   doc.Page.Status,
		URI:      doc.URI,
		Exported: now.UTC().Truncate(time.Second),
	}
	if doc.Page.Version != nil {
		h.Version = doc.Page.Version.Number
		h.LastModified = doc.Page.Version.When
	}
	return h
}

// render assembles the file contents: optional front matter, a level one heading with the page
// title, then the body.
func render(doc Document, frontMatter bool, now time.Time) (string, error) {
	var b strings.Builder

	if frontMatter {
		yamlHeader, err := yaml.Marshal(headerFor(doc, now))
		if err != nil {
			return "", fmt.Errorf("localdump: couldn't marshal header YAML: %w", err)
		}
		fmt.Fprintf(&b, "---\n%s\n---\n", strings.TrimSpace(string(yamlHeader)))
	}

	fmt.Fprintf(&b, "# %s\n\n", doc.Page.Title)
	b.WriteString(strings.TrimLeft(doc.Markdown, "\n"))
	if !strings.HasSuffix(b.String(), "\n") {
		b.WriteString("\n")
	}

	return b.String(), nil
}
