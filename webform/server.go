// Package webform serves a small HTML form for exporting a page from the browser: the same
// export the CLI runs, plus a rendered preview of the result.
package webform

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/toothbrush/confluence2md/confluence"
	"github.com/toothbrush/confluence2md/convert"
	"github.com/toothbrush/confluence2md/export"
	"github.com/toothbrush/confluence2md/localdump"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

//go:embed form.html.tmpl
var formTemplate string

var formPage = template.Must(template.New("form").Parse(formTemplate))

// Defaults prefill the form; Token is never rendered back into the page.
type Defaults struct {
	ConfluenceURL string
	Username      string
	Token         string
	OutDir        string
	Pandoc        bool
}

type Server struct {
	Defaults Defaults
	Logger   *log.Logger

	// Configure, if set, adjusts each submission's session, e.g. its HTTP timeout.
	Configure func(*confluence.API)
	// FrontMatter is passed on to the writer.
	FrontMatter bool
}

type formValues struct {
	ConfluenceURL string
	Username      string
	TokenSet      bool
	PageID        string
	Title         string
	Space         string
	OutDir        string
	Pandoc        bool
}

type view struct {
	Form     formValues
	Error    string
	User     string
	Result   *export.Result
	Warnings []string
	Preview  template.HTML
	Download template.URL
	Filename string
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleForm)
	return mux
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.render(w, http.StatusOK, view{Form: s.defaultForm()})
	case http.MethodPost:
		s.handleSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) defaultForm() formValues {
	return formValues{
		ConfluenceURL: s.Defaults.ConfluenceURL,
		Username:      s.Defaults.Username,
		TokenSet:      s.Defaults.Token != "",
		OutDir:        s.Defaults.OutDir,
		Pandoc:        s.Defaults.Pandoc,
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if !sameOrigin(r) {
		s.logf("refused form post from another site (Origin %q, Referer %q)", r.Header.Get("Origin"), r.Header.Get("Referer"))
		http.Error(w, "form posts from other sites are not accepted", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, view{Form: s.defaultForm(), Error: fmt.Sprintf("bad form submission: %v", err)})
		return
	}

	form := formValues{
		ConfluenceURL: strings.TrimSpace(r.PostFormValue("confluence_url")),
		Username:      strings.TrimSpace(r.PostFormValue("user")),
		TokenSet:      s.Defaults.Token != "",
		PageID:        strings.TrimSpace(r.PostFormValue("page_id")),
		Title:         strings.TrimSpace(r.PostFormValue("title")),
		Space:         strings.TrimSpace(r.PostFormValue("space")),
		OutDir:        strings.TrimSpace(r.PostFormValue("out")),
		Pandoc:        r.PostFormValue("pandoc") == "on",
	}
	// Empty fields fall back to the configured values.
	if form.ConfluenceURL == "" {
		form.ConfluenceURL = s.Defaults.ConfluenceURL
	}
	if form.Username == "" {
		form.Username = s.Defaults.Username
	}
	if form.OutDir == "" {
		form.OutDir = s.Defaults.OutDir
	}
	v := view{Form: form}

	// The configured token only ever goes to the configured wiki.
	token := strings.TrimSpace(r.PostFormValue("token"))
	if token == "" && s.Defaults.Token != "" {
		if !sameSite(form.ConfluenceURL, s.Defaults.ConfluenceURL) {
			v.Error = "credentials error: the configured token is only used for the configured Confluence URL; enter a token for this site"
			s.render(w, http.StatusOK, v)
			return
		}
		token = s.Defaults.Token
	}

	res, user, err := s.export(r.Context(), form, token)
	if err != nil {
		s.logf("export failed: %v", err)
		v.Error = err.Error()
		s.render(w, http.StatusOK, v)
		return
	}

	v.User = user
	v.Result = &res
	for _, warning := range res.Warnings {
		v.Warnings = append(v.Warnings, warning.Error())
	}
	v.Preview, err = renderPreview(res.Markdown)
	if err != nil {
		s.logf("preview failed: %v", err)
	}
	v.Filename = filepath.Base(res.MarkdownPath)
	v.Download = template.URL("data:text/markdown;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(res.Markdown)))

	s.render(w, http.StatusOK, v)
}

// export runs one submission with its own session.  The credential check comes first so that
// a typo in the token reads as such rather than as a missing page.
func (s *Server) export(ctx context.Context, form formValues, token string) (export.Result, string, error) {
	if form.PageID == "" && (form.Title == "" || form.Space == "") {
		return export.Result{}, "", fmt.Errorf("enter a page ID, or both a title and a space key")
	}

	api, err := confluence.NewAPI(form.ConfluenceURL, form.Username, token)
	if err != nil {
		return export.Result{}, "", fmt.Errorf("credentials error: %w", err)
	}
	if s.Configure != nil {
		s.Configure(api)
	}

	user, err := api.CurrentUser(ctx)
	if err != nil {
		return export.Result{}, "", fmt.Errorf("credentials error: %w", err)
	}

	kind := convert.KindHTMLToMarkdown
	if form.Pandoc {
		kind = convert.KindPandoc
	}
	converter, err := convert.New(kind)
	if err != nil {
		return export.Result{}, "", err
	}

	exporter := &export.Exporter{
		API:       api,
		Converter: converter,
		Writer:    &localdump.Writer{FrontMatter: s.FrontMatter},
		Logger:    s.logger(),
	}
	res, err := exporter.Export(ctx, export.Request{
		Query:  confluence.PageQuery{ID: form.PageID, Title: form.Title, SpaceKey: form.Space},
		OutDir: form.OutDir,
	})
	if err != nil {
		return export.Result{}, "", err
	}

	return res, user.DisplayName, nil
}

// sameOrigin accepts requests without Origin and Referer (curl, scripts) and otherwise wants
// them to name this server.
func sameOrigin(r *http.Request) bool {
	source := r.Header.Get("Origin")
	if source == "" {
		source = r.Header.Get("Referer")
	}
	if source == "" {
		return true
	}
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return u.Host != "" && strings.EqualFold(u.Host, r.Host)
}

// sameSite compares scheme and host:port of two wiki URLs.
func sameSite(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil || ua.Host == "" {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil || ub.Host == "" {
		return false
	}
	return strings.EqualFold(ua.Scheme, ub.Scheme) && strings.EqualFold(ua.Host, ub.Host)
}

var previewEngine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// renderPreview turns the exported Markdown into HTML.  Raw HTML in the Markdown is dropped
// since goldmark isn't told WithUnsafe.
func renderPreview(markdown string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := previewEngine.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("webform: markdown preview: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func (s *Server) render(w http.ResponseWriter, status int, v view) {
	var buf bytes.Buffer
	if err := formPage.Execute(&buf, v); err != nil {
		s.logf("template failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (s *Server) logger() *log.Logger {
	if s.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return s.Logger
}

func (s *Server) logf(format string, args ...any) {
	s.logger().Printf(format, args...)
}
