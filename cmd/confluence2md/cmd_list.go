/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Commands to list items",
	Long: `
Commands in this namespace help you find what to export: spaces, and the attachments of a page.
`,
}

func init() {
	rootCmd.AddCommand(listCmd)
}
