package attachments

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// span is a half-open byte range of the Markdown text.
type span struct {
	start, end int
}

// codeSpans returns, in document order, the byte ranges holding the content of code blocks
// and inline code spans.  Links inside them are sample text, not references.
func codeSpans(markdown string) []span {
	src := []byte(markdown)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var spans []span
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if lines := n.Lines(); lines.Len() > 0 {
				spans = append(spans, span{start: lines.At(0).Start, end: lines.At(lines.Len() - 1).Stop})
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					spans = append(spans, span{start: t.Segment.Start, end: t.Segment.Stop})
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return spans
}

func inCode(spans []span, pos int) bool {
	for _, s := range spans {
		if pos < s.start {
			return false
		}
		if pos < s.end {
			return true
		}
	}
	return false
}
