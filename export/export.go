// Package export runs one page through the whole pipeline: fetch, normalise the storage format,
// convert to Markdown, pull in attachments and write everything to disk.  The CLI and the web
// form are both thin wrappers around Exporter.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/toothbrush/confluence2md/attachments"
	"github.com/toothbrush/confluence2md/confluence"
	"github.com/toothbrush/confluence2md/convert"
	"github.com/toothbrush/confluence2md/localdump"
)

// Request names the page and where to put it.
type Request struct {
	Query  confluence.PageQuery
	OutDir string
}

type Result struct {
	Page *confluence.Page

	// Markdown as written below the title heading, links already rewritten.
	Markdown    string
	Attachments []attachments.Ref

	OutDir         string
	MarkdownPath   string
	AttachmentsDir string // empty when nothing was downloaded

	// Warnings are problems that didn't stop the export, e.g. attachments that couldn't be
	// fetched.
	Warnings []error
}

type Exporter struct {
	API       *confluence.API
	Converter convert.Converter
	Writer    *localdump.Writer
	Progress  attachments.Progress

	Logger *log.Logger
}

// Export fetches and writes a single page.  Any error returned happened before the Writer ran,
// so nothing was written; non-fatal problems end up in Result.Warnings instead.
func (e *Exporter) Export(ctx context.Context, req Request) (Result, error) {
	if e.API == nil {
		return Result{}, errors.New("export: no Confluence session")
	}
	if strings.TrimSpace(req.OutDir) == "" {
		return Result{}, errors.New("export: no output directory given")
	}
	converter := e.Converter
	if converter == nil {
		c, err := convert.New("")
		if err != nil {
			return Result{}, err
		}
		converter = c
	}
	writer := e.Writer
	if writer == nil {
		writer = &localdump.Writer{}
	}

	e.logf("Fetching %s...", req.Query)
	page, err := e.API.FetchPage(ctx, req.Query)
	if err != nil {
		return Result{}, fmt.Errorf("export: couldn't fetch %s: %w", req.Query, err)
	}
	e.logf("...found %q (id %s) in space %s", page.Title, page.ID, page.SpaceKey())

	normalized, err := convert.NormalizeStorage(page.StorageHTML(), page.ID)
	if err != nil {
		return Result{}, fmt.Errorf("export: %w", err)
	}

	e.logf("Converting with %s...", converter.Name())
	markdown, err := converter.Convert(ctx, normalized)
	if err != nil {
		return Result{}, fmt.Errorf("export: couldn't convert page %s: %w", page.ID, err)
	}

	resolver := &attachments.Resolver{
		Downloader: e.API,
		BaseURL:    e.API.BaseURI,
		Progress:   e.Progress,
	}
	resolution, err := resolver.Resolve(ctx, markdown, page.ID)
	if err != nil {
		return Result{}, fmt.Errorf("export: couldn't resolve attachments: %w", err)
	}
	for _, w := range resolution.Warnings {
		e.logf("WARNING: %v", w)
	}
	e.logf("...downloaded %d attachments.", len(resolution.Attachments))

	doc := localdump.Document{
		Page:        page,
		URI:         webURI(e.API, page),
		Markdown:    resolution.Markdown,
		Attachments: resolution.Attachments,
	}
	e.notePreviousExport(filepath.Join(req.OutDir, localdump.MarkdownFilename(page.Title, page.ID)), page)

	written, err := writer.Write(doc, req.OutDir)
	if err != nil {
		return Result{}, fmt.Errorf("export: %w", err)
	}
	e.logf("Saved %s", written.MarkdownPath)

	return Result{
		Page:           page,
		Markdown:       resolution.Markdown,
		Attachments:    resolution.Attachments,
		OutDir:         req.OutDir,
		MarkdownPath:   written.MarkdownPath,
		AttachmentsDir: written.AttachmentsDir,
		Warnings:       resolution.Warnings,
	}, nil
}

// notePreviousExport logs what an earlier export with front matter is about to be replaced by.
func (e *Exporter) notePreviousExport(mdPath string, page *confluence.Page) {
	if _, err := os.Stat(mdPath); err != nil {
		return
	}
	header, ok, err := localdump.ReadHeader(mdPath)
	if err != nil || !ok {
		e.logf("Overwriting %s", mdPath)
		return
	}
	if header.ObjectID != page.ID {
		e.logf("Overwriting %s, which was exported from page %s", mdPath, header.ObjectID)
		return
	}
	if page.Version != nil {
		e.logf("Replacing version %d of %s with version %d", header.Version, mdPath, page.Version.Number)
	}
}

var discard = log.New(io.Discard, "", 0)

func (e *Exporter) logf(format string, args ...any) {
	logger := e.Logger
	if logger == nil {
		logger = discard
	}
	logger.Printf(format, args...)
}

func webURI(api *confluence.API, page *confluence.Page) string {
	if page.Links.WebUI == "" {
		return ""
	}
	return strings.TrimRight(api.BaseURI.String(), "/") + page.Links.WebUI
}
