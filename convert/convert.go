// Package convert turns Confluence storage-format HTML into Markdown.  Two interchangeable
// backends implement Converter: the in-process html-to-markdown library, and pandoc run as a
// subprocess.
package convert

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrConversionUnavailable means the requested external converter isn't installed.
	ErrConversionUnavailable = errors.New("converter unavailable")

	// ErrConversionFailed means the converter ran but did not produce Markdown.
	ErrConversionFailed = errors.New("conversion failed")
)

// Converter transforms an HTML document into Markdown text.
type Converter interface {
	// Name identifies the backend in logs and output.
	Name() string

	// Convert returns the Markdown rendition of html.  Links and images must survive as
	// Markdown link/image syntax.
	Convert(ctx context.Context, html string) (string, error)
}

// Kind selects a Converter backend.
type Kind string

const (
	KindHTMLToMarkdown Kind = "html-to-markdown"
	KindPandoc         Kind = "pandoc"
)

// Kinds lists the supported backends, default first.
var Kinds = []Kind{KindHTMLToMarkdown, KindPandoc}

// New returns the converter for kind.  An empty kind means the default, html-to-markdown.
func New(kind Kind) (Converter, error) {
	switch kind {
	case "", KindHTMLToMarkdown:
		return NewHTMLToMarkdown(), nil
	case KindPandoc:
		return NewPandoc(), nil
	default:
		return nil, fmt.Errorf("convert: unknown converter %q (want one of %v)", kind, Kinds)
	}
}
