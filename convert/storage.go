package convert

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var cdataPattern = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)

// AttachmentPath is where Confluence serves attachment filename of page pageID, relative to
// the wiki root.
func AttachmentPath(pageID, filename string) string {
	return fmt.Sprintf("/download/attachments/%s/%s", url.PathEscape(pageID), url.PathEscape(filename))
}

// NormalizeStorage rewrites the Confluence-specific parts of a storage-format body (ac:* and
// ri:* elements) into plain HTML that any HTML→Markdown converter understands.  Attachment
// references become <img>/<a> elements pointing at /download/attachments/{pageID}/...
func NormalizeStorage(storage string, pageID string) (string, error) {
	// The HTML parser treats CDATA as a bogus comment and drops it.
	storage = cdataPattern.ReplaceAllStringFunc(storage, func(m string) string {
		return html.EscapeString(cdataPattern.FindStringSubmatch(m)[1])
	})

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(storage))
	if err != nil {
		return "", fmt.Errorf("convert: couldn't parse storage format: %w", err)
	}
	body := doc.Find("body")

	elements(body, "ac:structured-macro").Each(func(_ int, macro *goquery.Selection) {
		if !attached(macro) || attr(macro, "ac:name") != "code" {
			return
		}
		replaceWithCode(macro)
	})

	elements(body, "ac:image").Each(func(_ int, image *goquery.Selection) {
		if !attached(image) {
			return
		}
		replaceImage(image, pageID)
	})

	elements(body, "ac:link").Each(func(_ int, link *goquery.Selection) {
		if !attached(link) {
			return
		}
		replaceLink(link, pageID)
	})

	// Whatever's left are attachments embedded through macros such as view-file.
	elements(body, "ri:attachment").Each(func(_ int, ref *goquery.Selection) {
		if !attached(ref) {
			return
		}
		filename := attr(ref, "ri:filename")
		target := ref
		for p := ref.Parent(); p.Length() > 0 && goquery.NodeName(p) != "body"; p = p.Parent() {
			if goquery.NodeName(p) == "ac:structured-macro" {
				target = p
			}
		}
		target.ReplaceWithHtml(attachmentAnchor(ref, pageID, filename, filename))
	})

	out, err := body.Html()
	if err != nil {
		return "", fmt.Errorf("convert: couldn't render normalised HTML: %w", err)
	}

	return out, nil
}

func replaceWithCode(macro *goquery.Selection) {
	language := ""
	elements(macro, "ac:parameter").Each(func(_ int, p *goquery.Selection) {
		if attr(p, "ac:name") == "language" {
			language = strings.TrimSpace(p.Text())
		}
	})
	code := elements(macro, "ac:plain-text-body").First().Text()

	class := ""
	if language != "" {
		class = fmt.Sprintf(` class="language-%s"`, html.EscapeString(language))
	}
	macro.ReplaceWithHtml(fmt.Sprintf("<pre><code%s>%s</code></pre>", class, html.EscapeString(code)))
}

func replaceImage(image *goquery.Selection, pageID string) {
	alt := attr(image, "ac:alt")
	title := attr(image, "ac:title")

	if ref := elements(image, "ri:attachment").First(); ref.Length() > 0 {
		filename := attr(ref, "ri:filename")
		if filename == "" || belongsElsewhere(ref) {
			image.ReplaceWithHtml(html.EscapeString(filename))
			return
		}
		if alt == "" {
			alt = filename
		}
		image.ReplaceWithHtml(imgTag(AttachmentPath(pageID, filename), alt, title))
		return
	}

	if ref := elements(image, "ri:url").First(); ref.Length() > 0 {
		image.ReplaceWithHtml(imgTag(attr(ref, "ri:value"), alt, title))
		return
	}

	image.Remove()
}

func replaceLink(link *goquery.Selection, pageID string) {
	ref := elements(link, "ri:attachment").First()
	if ref.Length() == 0 {
		// Links to other pages, users, etc. keep their visible text only.
		link.ReplaceWithHtml(html.EscapeString(linkText(link)))
		return
	}

	filename := attr(ref, "ri:filename")
	text := linkText(link)
	if text == "" {
		text = filename
	}
	link.ReplaceWithHtml(attachmentAnchor(ref, pageID, filename, text))
}

func attachmentAnchor(ref *goquery.Selection, pageID, filename, text string) string {
	if filename == "" || belongsElsewhere(ref) {
		return html.EscapeString(text)
	}
	return fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(AttachmentPath(pageID, filename)), html.EscapeString(text))
}

func imgTag(src, alt, title string) string {
	tag := fmt.Sprintf(`<img src="%s" alt="%s"`, html.EscapeString(src), html.EscapeString(alt))
	if title != "" {
		tag += fmt.Sprintf(` title="%s"`, html.EscapeString(title))
	}
	return tag + ">"
}

func linkText(link *goquery.Selection) string {
	for _, name := range []string{"ac:plain-text-link-body", "ac:link-body"} {
		if b := elements(link, name).First(); b.Length() > 0 {
			return strings.TrimSpace(b.Text())
		}
	}
	return strings.TrimSpace(link.Text())
}

// An ri:attachment carrying a page/blogpost reference lives on some other page.
func belongsElsewhere(ref *goquery.Selection) bool {
	return elements(ref, "ri:page").Length() > 0 ||
		elements(ref, "ri:blog-post").Length() > 0 ||
		elements(ref, "ri:content-entity").Length() > 0
}

// elements finds descendants by literal tag name; namespaced names like ac:image don't play
// well with CSS selectors.
func elements(s *goquery.Selection, name string) *goquery.Selection {
	return s.Find("*").FilterFunction(func(_ int, e *goquery.Selection) bool {
		return goquery.NodeName(e) == name
	})
}

// attached reports whether s is still part of the document, i.e. wasn't swallowed by an
// earlier replacement.
func attached(s *goquery.Selection) bool {
	return s.Closest("body").Length() > 0
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return v
}
