package convert

import (
	"context"
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"
	mdplugin "github.com/JohannesKaufmann/html-to-markdown/plugin"
)

// HTMLToMarkdown is the lightweight, in-process converter.
type HTMLToMarkdown struct {
	converter *md.Converter
}

func NewHTMLToMarkdown() *HTMLToMarkdown {
	// No domain: root-relative links such as /download/attachments/... must stay relative so
	// attachment resolution can recognise them.
	converter := md.NewConverter("", true, &md.Options{
		LinkStyle:      "inlined",
		CodeBlockStyle: "fenced",
		Fence:          "```",
	})
	// Github flavoured Markdown knows about tables 👍
	converter.Use(mdplugin.GitHubFlavored())

	return &HTMLToMarkdown{converter: converter}
}

func (c *HTMLToMarkdown) Name() string { return string(KindHTMLToMarkdown) }

func (c *HTMLToMarkdown) Convert(ctx context.Context, html string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	markdown, err := c.converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert: %w: %v", ErrConversionFailed, err)
	}

	return markdown, nil
}
