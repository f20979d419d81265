package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var configUsage = strings.TrimSpace(`
Settings come from, highest first: command line flags, the environment (CONFLUENCE_URL,
CONFLUENCE_USER, CONFLUENCE_API_TOKEN, also read from ./.env), the YAML config file, and the
built-in defaults.  The config file is ` + defaultConfigPath + ` unless --config or
CONFLUENCE2MD_CONFIG name another one.
`)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect where settings come from",
	Long:  configUsage,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
