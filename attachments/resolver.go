// Package attachments finds the links in converted Markdown that point at the exported page's
// own attachments, downloads each of them once and rewrites the links to local copies.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// Dir is the directory, relative to the Markdown file, that attachments are written to.
const Dir = "attachments"

// UnavailableMarker follows a link whose attachment couldn't be downloaded.
const UnavailableMarker = " (attachment unavailable)"

var ErrAttachmentDownloadFailed = errors.New("attachment download failed")

// destinationPattern matches the "](destination "optional title")" tail of inline links and
// images.  Destinations are either <angle bracketed> or bare, with one level of balanced
// parentheses allowed.
var destinationPattern = regexp.MustCompile(
	`\]\(\s*(<[^<>\n]*>|(?:[^\s()]|\([^\s()]*\))+)(?:\s+(?:"[^"\n]*"|'[^'\n]*'|\([^()\n]*\)))?\s*\)`)

// Downloader fetches the bytes behind an absolute attachment URL.  *confluence.API is one.
type Downloader interface {
	DownloadAttachment(ctx context.Context, u *url.URL) ([]byte, error)
}

// Progress is told how many distinct attachments there are and when each one settles.
type Progress interface {
	Begin(total int)
	Downloaded(originalURL string, err error)
}

// Ref is one successfully downloaded attachment.
type Ref struct {
	OriginalURL   string
	LocalFilename string
	Bytes         []byte
}

// RelativePath is how the Markdown refers to the attachment.
func (r Ref) RelativePath() string {
	return path.Join(Dir, r.LocalFilename)
}

type Resolution struct {
	Markdown    string
	Attachments []Ref
	// Warnings holds one ErrAttachmentDownloadFailed per attachment that couldn't be fetched.
	Warnings []error
}

type Resolver struct {
	Downloader Downloader
	// BaseURL is the wiki root, e.g. https://acme.atlassian.net/wiki.
	BaseURL  *url.URL
	Progress Progress
}

type occurrence struct {
	start, end int // destination span
	matchEnd   int
	key        string
}

// Resolve rewrites every link in markdown that targets an attachment of page pageID, leaving
// code blocks and code spans as they are.  A failed
// download is not an error: the link is made absolute, marked unavailable and reported in
// Warnings.  Only a cancelled context aborts.
func (r *Resolver) Resolve(ctx context.Context, markdown string, pageID string) (Resolution, error) {
	if r.Downloader == nil || r.BaseURL == nil {
		return Resolution{}, errors.New("attachments: resolver needs a downloader and a base URL")
	}

	var (
		occurrences []occurrence
		order       []string
		targets     = make(map[string]*url.URL)
	)
	code := codeSpans(markdown)
	for _, m := range destinationPattern.FindAllStringSubmatchIndex(markdown, -1) {
		if inCode(code, m[2]) {
			continue
		}
		dest := markdown[m[2]:m[3]]
		if strings.HasPrefix(dest, "<") {
			dest = strings.TrimSuffix(strings.TrimPrefix(dest, "<"), ">")
		}

		u, ok := r.classify(dest, pageID)
		if !ok {
			continue
		}
		key := u.String()
		if _, seen := targets[key]; !seen {
			targets[key] = u
			order = append(order, key)
		}
		occurrences = append(occurrences, occurrence{start: m[2], end: m[3], matchEnd: m[1], key: key})
	}

	if r.Progress != nil {
		r.Progress.Begin(len(order))
	}

	res := Resolution{}
	names := newNameRegistry()
	local := make(map[string]string, len(order))
	for _, key := range order {
		if err := ctx.Err(); err != nil {
			return Resolution{}, err
		}

		data, err := r.Downloader.DownloadAttachment(ctx, targets[key])
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Resolution{}, ctxErr
			}
			res.Warnings = append(res.Warnings, fmt.Errorf("attachments: %w: %s: %v", ErrAttachmentDownloadFailed, key, err))
		} else {
			ref := Ref{OriginalURL: key, LocalFilename: names.claim(Filename(targets[key])), Bytes: data}
			local[key] = ref.RelativePath()
			res.Attachments = append(res.Attachments, ref)
		}

		if r.Progress != nil {
			r.Progress.Downloaded(key, err)
		}
	}

	var b strings.Builder
	last := 0
	for _, o := range occurrences {
		b.WriteString(markdown[last:o.start])
		if rel, ok := local[o.key]; ok {
			b.WriteString(rel)
			last = o.end
			continue
		}

		b.WriteString(o.key)
		b.WriteString(markdown[o.end:o.matchEnd])
		if !strings.HasPrefix(markdown[o.matchEnd:], UnavailableMarker) {
			b.WriteString(UnavailableMarker)
		}
		last = o.matchEnd
	}
	b.WriteString(markdown[last:])
	res.Markdown = b.String()

	return res, nil
}

// classify reports whether dest points at an attachment of pageID on the wiki's own host, and
// if so returns it as an absolute URL.
func (r *Resolver) classify(dest, pageID string) (*url.URL, bool) {
	if pageID == "" || dest == "" || strings.HasPrefix(dest, "#") {
		return nil, false
	}
	u, err := url.Parse(dest)
	if err != nil {
		return nil, false
	}

	switch {
	case u.Scheme != "":
		if (u.Scheme != "http" && u.Scheme != "https") || !strings.EqualFold(u.Host, r.BaseURL.Host) {
			return nil, false
		}
		// http links to an https wiki are fetched over https.
		u.Scheme = r.BaseURL.Scheme
	case u.Host != "":
		if !strings.EqualFold(u.Host, r.BaseURL.Host) {
			return nil, false
		}
		u.Scheme = r.BaseURL.Scheme
	case strings.HasPrefix(u.Path, "/"):
		if u, err = r.absolute(u); err != nil {
			return nil, false
		}
	default:
		// document-relative, e.g. something we already rewrote to attachments/...
		return nil, false
	}

	if !isAttachmentPath(u.Path, pageID) {
		return nil, false
	}
	return u, true
}

// absolute places a root-relative reference on the wiki host, adding the wiki's path prefix
// (usually /wiki) when the reference doesn't carry it already.
func (r *Resolver) absolute(u *url.URL) (*url.URL, error) {
	prefix := strings.TrimRight(r.BaseURL.EscapedPath(), "/")
	p := u.EscapedPath()
	if prefix != "" && p != prefix && !strings.HasPrefix(p, prefix+"/") {
		p = prefix + p
	}

	abs, err := url.Parse(r.BaseURL.Scheme + "://" + r.BaseURL.Host + p)
	if err != nil {
		return nil, err
	}
	abs.RawQuery = u.RawQuery
	abs.Fragment = u.Fragment
	abs.RawFragment = u.RawFragment

	return abs, nil
}

func isAttachmentPath(p, pageID string) bool {
	for _, dir := range []string{"/download/attachments/", "/download/thumbnails/"} {
		needle := dir + pageID + "/"
		if i := strings.Index(p, needle); i >= 0 && len(p) > i+len(needle) {
			return true
		}
	}
	return false
}
