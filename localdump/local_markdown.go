package localdump

import (
	"github.com/toothbrush/confluence2md/attachments"
	"github.com/toothbrush/confluence2md/confluence"
)

// Document is everything that ends up on disk for one exported page.
type Document struct {
	Page *confluence.Page

	// web UI link of the page, for the front matter
	URI string

	// converted body, attachment links already pointing into attachments/
	Markdown string

	Attachments []attachments.Ref
}

// Written describes where a Document landed.
type Written struct {
	MarkdownPath string

	// empty when the page had no attachments
	AttachmentsDir string
}
