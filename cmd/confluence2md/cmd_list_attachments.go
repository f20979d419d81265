package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence2md/confluence"
	"github.com/toothbrush/confluence2md/internal/termfmt"
	"golang.org/x/exp/slices"
)

var listAttachmentsUsage = strings.TrimSpace(`
Show every attachment stored on a page.  Only the ones the page body actually links to end up in
an export.
`)

var listAttachmentsCmd = &cobra.Command{
	Use:   "attachments",
	Short: "Print the attachments of a page",
	Long:  listAttachmentsUsage,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		if PageID == "" {
			return fmt.Errorf("list attachments: --page-id is required")
		}

		api, err := newAPI()
		if err != nil {
			return fmt.Errorf("list attachments: %w", err)
		}

		found, err := api.ListAttachments(cmd.Context(), PageID)
		if err != nil {
			return fmt.Errorf("list attachments: %w", err)
		}
		slices.SortFunc(found, func(a, b confluence.Attachment) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		})

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "attachments of page %s:\n", termfmt.Bold().V(PageID))
		for _, a := range found {
			mediaType := a.Extensions.MediaType
			if mediaType == "" {
				mediaType = a.Metadata.MediaType
			}
			fmt.Fprintf(out, "  - %s (%s, %d bytes)\n", a.Title, mediaType, a.Extensions.FileSize)
		}

		return nil
	},
}

func init() {
	listCmd.AddCommand(listAttachmentsCmd)

	listAttachmentsCmd.Flags().StringVar(&PageID, "page-id", "", "numeric ID of the page")
}
