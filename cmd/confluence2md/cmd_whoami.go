package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence2md/confluence"
	"github.com/toothbrush/confluence2md/internal/termfmt"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Check that your credentials work",
	Long: `
Ask Confluence who it thinks you are.  Handy before a big export, or when an export fails with an
authentication error.
`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPI()
		if err != nil {
			return fmt.Errorf("whoami: %w", err)
		}

		user, err := api.CurrentUser(cmd.Context())
		if errors.Is(err, confluence.ErrAuthenticationFailed) {
			return fmt.Errorf("whoami: %s rejected the credentials for %q: %w", api.BaseURI, api.Username(), err)
		}
		if err != nil {
			return fmt.Errorf("whoami: couldn't query current user: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as '%s (%s)'\n",
			api.BaseURI, termfmt.Bold().V(user.DisplayName), user.AccountID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
