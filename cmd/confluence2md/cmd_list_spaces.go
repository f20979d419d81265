/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var listSpacesUsage = strings.TrimSpace(`
If you want to find out what spaces your Confluence wiki has, and hence what to pass to
"export --space", use this command.
`)

var IncludePersonal bool

var listSpacesCmd = &cobra.Command{
	Use:   "spaces",
	Short: "Print list of spaces",
	Long:  listSpacesUsage,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPI()
		if err != nil {
			return fmt.Errorf("list spaces: %w", err)
		}

		log.Printf("Listing Confluence spaces in %s...\n", api.BaseURI)
		spacesRemote, err := api.ListAllSpaces(cmd.Context(), IncludePersonal)
		if err != nil {
			return fmt.Errorf("list spaces: couldn't list Confluence spaces: %w", err)
		}
		log.Printf("Found %d spaces.\n", len(spacesRemote))

		spaceKeys := maps.Keys(spacesRemote)
		slices.Sort(spaceKeys)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "spaces:\n")
		for _, spaceKey := range spaceKeys {
			fmt.Fprintf(out, "  - %s: %s\n", spaceKey, spacesRemote[spaceKey].Name)
		}

		return nil
	},
}

func init() {
	listCmd.AddCommand(listSpacesCmd)

	listSpacesCmd.Flags().BoolVar(&IncludePersonal, "include-personal-spaces", false, "list individuals' personal spaces")
}
