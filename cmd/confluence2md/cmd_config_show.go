/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Output current config",
	Long: `
Is something not working for you?  Have a look whether your config is as you expect.
`,
	Run: func(cmd *cobra.Command, args []string) {
		// Note, you can only talk about persistent flags here.  Command-specific ones won't be
		// visible.
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Dump current config state:\n\n")

		fmt.Fprintf(out, "  Config file: %s\n", Config)
		fmt.Fprintf(out, "  Debug: %v\n", Debug)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  Parsed YAML:\n%#v\n", ParsedConfig)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  ConfluenceURL: %s\n", ConfluenceURL)
		fmt.Fprintf(out, "  ConfluenceInstance: %s\n", ConfluenceInstance)
		fmt.Fprintf(out, "  AuthUsername: %s\n", AuthUsername)
		fmt.Fprintf(out, "  AuthTokenCmd: %v\n", AuthTokenCmd)
		fmt.Fprintf(out, "  Timeout: %s\n", Timeout)
		if base, err := baseURL(); err == nil {
			fmt.Fprintf(out, "  Resolved wiki: %s\n", base)
		}
		fmt.Fprintf(out, "  CONFLUENCE_API_TOKEN set: %v\n", envIsSet("CONFLUENCE_API_TOKEN"))
	},
}

func envIsSet(name string) bool {
	v, ok := os.LookupEnv(name)
	return ok && strings.TrimSpace(v) != ""
}

func init() {
	configCmd.AddCommand(showCmd)
}
