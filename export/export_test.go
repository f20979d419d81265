package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toothbrush/confluence2md/attachments"
	"github.com/toothbrush/confluence2md/confluence"
	"github.com/toothbrush/confluence2md/convert"
	"github.com/toothbrush/confluence2md/localdump"
)

const reportStorage = `<p>See <ac:link><ri:attachment ri:filename="report.pdf" /><ac:plain-text-link-body><![CDATA[Report]]></ac:plain-text-link-body></ac:link></p>` +
	`<p><ac:image ac:alt="Chart"><ri:attachment ri:filename="chart.png" /></ac:image></p>` +
	`<p><ac:link><ri:attachment ri:filename="report.pdf" /><ac:plain-text-link-body><![CDATA[again]]></ac:plain-text-link-body></ac:link></p>`

type fakeWiki struct {
	*httptest.Server

	mu        sync.Mutex
	downloads map[string]int
}

func (f *fakeWiki) downloaded(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.downloads[path]
}

func (f *fakeWiki) serveFile(contentType, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.downloads[r.URL.Path]++
		f.mu.Unlock()
		w.Header().Set("Content-Type", contentType)
		w.Write([]byte(body))
	}
}

func newFakeWiki(t *testing.T) *fakeWiki {
	t.Helper()
	f := &fakeWiki{downloads: make(map[string]int)}

	page := map[string]any{
		"id":      "100",
		"type":    "page",
		"status":  "current",
		"title":   "Q3 Report",
		"space":   map[string]any{"key": "ENG"},
		"version": map[string]any{"number": 4},
		"body":    map[string]any{"storage": map[string]any{"value": reportStorage, "representation": "storage"}},
		"_links":  map[string]any{"webui": "/spaces/ENG/pages/100/Q3+Report"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/wiki/rest/api/content/100", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, page)
	})
	mux.HandleFunc("/wiki/rest/api/content", func(w http.ResponseWriter, r *http.Request) {
		results := []any{}
		if r.URL.Query().Get("title") == "Q3 Report" && r.URL.Query().Get("spaceKey") == "ENG" {
			results = append(results, page)
		}
		writeJSON(t, w, map[string]any{"results": results})
	})
	mux.HandleFunc("/wiki/download/attachments/100/report.pdf", f.serveFile("application/pdf", "%PDF-1.4"))
	mux.HandleFunc("/wiki/download/attachments/100/chart.png", f.serveFile("image/png", "PNG"))

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func newExporter(t *testing.T, wiki *fakeWiki) (*Exporter, *bytes.Buffer) {
	t.Helper()
	api, err := confluence.NewAPI(wiki.URL+"/wiki", "me@acme.com", "t0k3n")
	require.NoError(t, err)

	var logs bytes.Buffer
	return &Exporter{
		API:       api,
		Converter: convert.NewHTMLToMarkdown(),
		Logger:    log.New(&logs, "", 0),
	}, &logs
}

func TestExportByID(t *testing.T) {
	wiki := newFakeWiki(t)
	e, logs := newExporter(t, wiki)
	out := filepath.Join(t.TempDir(), "out")

	res, err := e.Export(context.Background(), Request{Query: confluence.PageQuery{ID: "100"}, OutDir: out})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "Q3 Report.md"), res.MarkdownPath)
	assert.Equal(t, filepath.Join(out, "attachments"), res.AttachmentsDir)
	assert.Empty(t, res.Warnings)

	require.Len(t, res.Attachments, 2)
	assert.Equal(t, "report.pdf", res.Attachments[0].LocalFilename)
	assert.Equal(t, "chart.png", res.Attachments[1].LocalFilename)
	assert.Equal(t, 1, wiki.downloaded("/wiki/download/attachments/100/report.pdf"))

	md, err := os.ReadFile(res.MarkdownPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Q3 Report\n")
	assert.Contains(t, string(md), "[Report](attachments/report.pdf)")
	assert.Contains(t, string(md), "[again](attachments/report.pdf)")
	assert.Contains(t, string(md), "![Chart](attachments/chart.png)")
	assert.NotContains(t, string(md), "/download/attachments/")

	pdf, err := os.ReadFile(filepath.Join(out, "attachments", "report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(pdf))

	assert.Contains(t, logs.String(), "downloaded 2 attachments")
}

func TestExportByTitle(t *testing.T) {
	wiki := newFakeWiki(t)
	e, _ := newExporter(t, wiki)

	res, err := e.Export(context.Background(), Request{
		Query:  confluence.PageQuery{Title: "Q3 Report", SpaceKey: "ENG"},
		OutDir: t.TempDir(),
	})
	require.NoError(t, err)
	assert.Equal(t, "100", res.Page.ID)
	assert.FileExists(t, res.MarkdownPath)
}

func TestExportNotFoundWritesNothing(t *testing.T) {
	wiki := newFakeWiki(t)
	e, _ := newExporter(t, wiki)
	out := filepath.Join(t.TempDir(), "out")

	_, err := e.Export(context.Background(), Request{Query: confluence.PageQuery{ID: "999"}, OutDir: out})
	require.Error(t, err)
	assert.ErrorIs(t, err, confluence.ErrNotFound)
	assert.NoDirExists(t, out)

	_, err = e.Export(context.Background(), Request{Query: confluence.PageQuery{Title: "Nope", SpaceKey: "ENG"}, OutDir: out})
	assert.ErrorIs(t, err, confluence.ErrNotFound)
	assert.NoDirExists(t, out)
}

type failingConverter struct{}

func (failingConverter) Name() string { return "failing" }

func (failingConverter) Convert(context.Context, string) (string, error) {
	return "", errors.Join(convert.ErrConversionUnavailable, errors.New("pandoc not found"))
}

func TestExportConversionFailureWritesNothing(t *testing.T) {
	wiki := newFakeWiki(t)
	e, _ := newExporter(t, wiki)
	e.Converter = failingConverter{}
	out := filepath.Join(t.TempDir(), "out")

	_, err := e.Export(context.Background(), Request{Query: confluence.PageQuery{ID: "100"}, OutDir: out})
	assert.ErrorIs(t, err, convert.ErrConversionUnavailable)
	assert.NoDirExists(t, out)
	assert.Zero(t, wiki.downloaded("/wiki/download/attachments/100/report.pdf"))
}

func TestExportMissingAttachmentIsAWarning(t *testing.T) {
	wiki := newFakeWiki(t)
	e, _ := newExporter(t, wiki)
	e.Converter = stubConverter("![](/download/attachments/100/gone.png) [r](/download/attachments/100/report.pdf)")

	res, err := e.Export(context.Background(), Request{Query: confluence.PageQuery{ID: "100"}, OutDir: t.TempDir()})
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.ErrorIs(t, res.Warnings[0], attachments.ErrAttachmentDownloadFailed)
	assert.Contains(t, res.Markdown, "![]("+wiki.URL+"/wiki/download/attachments/100/gone.png)"+attachments.UnavailableMarker)
	assert.Contains(t, res.Markdown, "[r](attachments/report.pdf)")
}

func TestExportFrontMatterAndReexport(t *testing.T) {
	wiki := newFakeWiki(t)
	e, logs := newExporter(t, wiki)
	e.Writer = &localdump.Writer{FrontMatter: true}
	out := t.TempDir()

	res, err := e.Export(context.Background(), Request{Query: confluence.PageQuery{ID: "100"}, OutDir: out})
	require.NoError(t, err)

	header, ok, err := localdump.ReadHeader(res.MarkdownPath)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "100", header.ObjectID)
	assert.Equal(t, 4, header.Version)
	assert.Equal(t, wiki.URL+"/wiki/spaces/ENG/pages/100/Q3+Report", header.URI)

	_, err = e.Export(context.Background(), Request{Query: confluence.PageQuery{ID: "100"}, OutDir: out})
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "Replacing version 4")
}

type stubConverter string

func (s stubConverter) Name() string { return "stub" }

func (s stubConverter) Convert(context.Context, string) (string, error) { return string(s), nil }

func TestExportFetchesPlainHTTPLinksOverTLS(t *testing.T) {
	var (
		mu        sync.Mutex
		plaintext []string
	)
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS == nil {
			mu.Lock()
			plaintext = append(plaintext, r.URL.Path)
			mu.Unlock()
		}
		switch r.URL.Path {
		case "/wiki/rest/api/content/100":
			writeJSON(t, w, map[string]any{
				"id":    "100",
				"title": "Diagram",
				"body":  map[string]any{"storage": map[string]any{"value": "<p>x</p>"}},
			})
		case "/wiki/download/attachments/100/a.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("PNG"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	api, err := confluence.NewAPI(srv.URL+"/wiki", "me@acme.com", "t0k3n")
	require.NoError(t, err)
	api.Client = srv.Client()

	host := strings.TrimPrefix(srv.URL, "https://")
	e := &Exporter{API: api, Converter: stubConverter("![x](http://" + host + "/wiki/download/attachments/100/a.png)")}

	res, err := e.Export(context.Background(), Request{Query: confluence.PageQuery{ID: "100"}, OutDir: t.TempDir()})
	require.NoError(t, err)

	assert.Empty(t, res.Warnings)
	assert.Equal(t, "![x](attachments/a.png)", res.Markdown)
	require.Len(t, res.Attachments, 1)
	assert.Equal(t, srv.URL+"/wiki/download/attachments/100/a.png", res.Attachments[0].OriginalURL)

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, plaintext)
}
