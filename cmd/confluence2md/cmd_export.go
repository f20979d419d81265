package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence2md/attachments"
	"github.com/toothbrush/confluence2md/confluence"
	"github.com/toothbrush/confluence2md/convert"
	"github.com/toothbrush/confluence2md/export"
	"github.com/toothbrush/confluence2md/internal/termfmt"
	"github.com/toothbrush/confluence2md/localdump"
)

var exportUsage = strings.TrimSpace(`
Export one page.  Name it with --page-id, or with --title and --space together; the ID wins if
you give both.  The page lands in <out>/<title>.md and everything it links to from its own
attachments goes into <out>/attachments/.

Attachments that can't be downloaded don't stop the export: the link keeps pointing at
Confluence and is marked "(attachment unavailable)".
`)

var (
	PageID      string
	PageTitle   string
	SpaceKey    string
	OutDir      string
	UsePandoc   bool
	Converter   string
	FrontMatter bool
	WithVCR     bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a page and its attachments to Markdown",
	Long:  exportUsage,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := confluence.PageQuery{ID: PageID, Title: PageTitle, SpaceKey: SpaceKey}
		if query.ID == "" && (query.Title == "" || query.SpaceKey == "") {
			return fmt.Errorf("export: need --page-id, or both --title and --space")
		}

		out, err := homedir.Expand(OutDir)
		if err != nil {
			return fmt.Errorf("export: couldn't expand homedir: %w", err)
		}

		kind := convert.Kind(Converter)
		if UsePandoc {
			kind = convert.KindPandoc
		}
		converter, err := convert.New(kind)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}

		api, err := newAPI()
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if WithVCR {
			stop, err := withVCR(api)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			// Make sure recorder is stopped once done with it
			defer stop()
		}

		logOut := io.Discard
		if Debug {
			logOut = os.Stderr
		}
		exporter := &export.Exporter{
			API:       api,
			Converter: converter,
			Writer:    &localdump.Writer{FrontMatter: FrontMatter},
			Logger:    log.New(logOut, "[confluence2md] ", 0),
		}

		var bar *barProgress
		if interactive(os.Stderr) && !Debug {
			bar = newBarProgress(os.Stderr)
			exporter.Progress = bar
		} else {
			exporter.Progress = logProgress{}
		}

		res, err := exporter.Export(cmd.Context(), export.Request{Query: query, OutDir: out})
		if bar != nil {
			bar.Wait()
		}
		if err != nil {
			return err
		}

		printResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), res)
		return nil
	},
}

func printResult(stdout, stderr io.Writer, res export.Result) {
	fmt.Fprintf(stdout, "%s %s\n", termfmt.Fg(termfmt.Green).Bold().V("Saved"), termfmt.Linked("file://"+res.MarkdownPath).V(res.MarkdownPath))
	if res.AttachmentsDir != "" {
		fmt.Fprintf(stdout, "%s %s (%d files)\n", termfmt.Bold().V("Attachments"), res.AttachmentsDir, len(res.Attachments))
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(stderr, "%s %v\n", termfmt.Fg(termfmt.Yellow).Bold().V("warning:"), w)
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintf(stderr, "%d of the page's attachments are marked %q in the Markdown.\n", len(res.Warnings), strings.TrimSpace(attachments.UnavailableMarker))
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&PageID, "page-id", "", "numeric ID of the page to export")
	exportCmd.Flags().StringVar(&PageTitle, "title", "", "exact title of the page to export (needs --space)")
	exportCmd.Flags().StringVar(&SpaceKey, "space", "", "key of the space holding --title, e.g. ENG")
	exportCmd.Flags().StringVar(&OutDir, "out", "./export", "directory to write the Markdown and attachments/ into")
	exportCmd.Flags().BoolVar(&UsePandoc, "pandoc", false, "convert with pandoc instead of the built-in converter")
	exportCmd.Flags().StringVar(&Converter, "converter", string(convert.KindHTMLToMarkdown), fmt.Sprintf("HTML to Markdown converter, one of %v", convert.Kinds))
	exportCmd.Flags().BoolVar(&FrontMatter, "front-matter", false, "prepend YAML front matter with page metadata")
	exportCmd.Flags().BoolVar(&WithVCR, "with-vcr", false, "use go-vcr to record and replay Confluence responses")
}
