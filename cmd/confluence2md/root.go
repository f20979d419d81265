/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"syscall"
	"time"

	"github.com/fatih/structs"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence2md/confluence"
	"github.com/toothbrush/confluence2md/internal/termfmt"
	"gopkg.in/yaml.v2"
)

const defaultConfigPath = "~/.config/confluence2md.yaml"

var (
	// Store the result of binding cobra flags
	Config string
	Debug  bool

	// Command to run to retrieve API Personal Access Token
	AuthTokenCmd []string

	AuthUsername       string
	ConfluenceURL      string
	ConfluenceInstance string
	Timeout            time.Duration

	// ConfigActual is the config file that was read, if any.
	ConfigActual string
	ParsedConfig YamlConfig
)

// Build the cobra command that handles our command line tool.
var rootCmd = &cobra.Command{
	Use:   "confluence2md",
	Short: "Export a Confluence page to Markdown, attachments included",
	Long: `
Grab a single Confluence page, by ID or by title and space, convert it to Markdown and save it
next to a folder holding every attachment the page links to.  Links in the Markdown point at the
local copies.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initializeConfig(cmd); err != nil {
			return fmt.Errorf("failed to initialise config: %w", err)
		}
		termfmt.SetEnabled(interactive(os.Stdout))
		return nil
	},
}

func init() {
	// Define cobra flags, the default value has the lowest (least significant) precedence
	rootCmd.PersistentFlags().StringVar(&Config, "config", "", "config file location (default: "+defaultConfigPath+", respects CONFLUENCE2MD_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "display debug output")
	rootCmd.PersistentFlags().StringSliceVar(&AuthTokenCmd, "auth-token-cmd", []string{}, "shell command to retrieve Atlassian auth token (default: $CONFLUENCE_API_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&AuthUsername, "auth-username", "", "your Atlassian username, usually an email address (respects CONFLUENCE_USER)")
	rootCmd.PersistentFlags().StringVar(&ConfluenceURL, "confluence-url", "", "base URL of the wiki, e.g. https://ORG.atlassian.net/wiki (respects CONFLUENCE_URL)")
	rootCmd.PersistentFlags().StringVar(&ConfluenceInstance, "confluence-instance", "", "your Atlassian ORG name, e.g. ORG in ORG.atlassian.net")
	rootCmd.PersistentFlags().DurationVar(&Timeout, "timeout", confluence.DefaultTimeout, "timeout for each request to Confluence")
}

// envFlags are filled from the environment (or .env) when not given on the command line.
var envFlags = map[string]string{
	"confluence-url": "CONFLUENCE_URL",
	"auth-username":  "CONFLUENCE_USER",
}

func initializeConfig(cmd *cobra.Command) error {
	// A missing .env is fine; anything in it never overrides the real environment.
	_ = godotenv.Load()

	explicit := true
	if Config == "" {
		// Did the user provide an ENV?
		if envConfig := os.Getenv("CONFLUENCE2MD_CONFIG"); envConfig != "" {
			Config = envConfig
		} else {
			// As fallback, search for config in home XDG-ish directory
			Config = defaultConfigPath
			explicit = false
		}
	}
	config, err := homedir.Expand(Config)
	if err != nil {
		return fmt.Errorf("confluence2md: unable to expand homedir: %w", err)
	}
	Config = config

	// Environment beats the config file, so bind it first: bindFlags skips anything already set.
	if err := bindEnv(cmd); err != nil {
		return fmt.Errorf("confluence2md: failed to bind environment: %w", err)
	}

	if _, err := os.Stat(Config); errors.Is(err, os.ErrNotExist) {
		if explicit {
			return fmt.Errorf("confluence2md: specified config file does not exist: %w", err)
		}
		debugLog("No config file at %s, carrying on with flags and environment.\n", Config)
		return nil
	}

	yamlFile, err := os.ReadFile(Config)
	if err != nil {
		return fmt.Errorf("confluence2md: error reading config file: %w", err)
	}

	// I'd like to bark if a user sets a flag we don't recognise:
	ParsedConfig = YamlConfig{}
	if err := yaml.UnmarshalStrict(yamlFile, &ParsedConfig); err != nil {
		return fmt.Errorf("confluence2md: issue parsing config file %s: %w", Config, err)
	}
	ConfigActual = Config

	if err := bindFlags(cmd, ParsedConfig); err != nil {
		return fmt.Errorf("confluence2md: failed to bind flags: %w", err)
	}

	return nil
}

type YamlConfig struct {
	Debug       *bool `yaml:"debug"`
	Pandoc      *bool `yaml:"pandoc"`
	FrontMatter *bool `yaml:"front-matter"`
	WithVCR     *bool `yaml:"with-vcr"`

	ConfluenceURL      string   `yaml:"confluence-url"`
	ConfluenceInstance string   `yaml:"confluence-instance"`
	AuthUsername       string   `yaml:"auth-username"`
	AuthTokenCmd       []string `yaml:"auth-token-cmd"`
	Converter          string   `yaml:"converter"`
	Out                string   `yaml:"out"`
	Listen             string   `yaml:"listen"`
	Timeout            string   `yaml:"timeout"`
}

func bindEnv(cmd *cobra.Command) error {
	for key, env := range envFlags {
		value := os.Getenv(env)
		if value == "" || cmd.Flag(key) == nil || cmd.Flags().Changed(key) {
			continue
		}
		if err := cmd.Flags().Set(key, value); err != nil {
			return fmt.Errorf("confluence2md: bad value for %s: %w", env, err)
		}
	}
	return nil
}

// Bind each cobra flag to its associated value from the config file, unless already set.
func bindFlags(cmd *cobra.Command, v YamlConfig) error {
	for _, field := range structs.Fields(v) {
		key := field.Tag("yaml")
		if key == "" {
			return fmt.Errorf("confluence2md: could not retrieve struct tag 'yaml'")
		}
		if flag := cmd.Flag(key); flag == nil {
			// the flag is unknown to this command, e.g. `list spaces` has no --pandoc.  that's fine.
			continue
		}
		if cmd.Flags().Changed(key) {
			continue
		}

		switch field.Kind() {
		case reflect.Ptr:
			// YamlConfig only uses pointers for bools.
			b, ok := field.Value().(*bool)
			if !ok {
				return fmt.Errorf("confluence2md: found unrecognised field: %+v", field)
			}
			if b != nil {
				if err := cmd.Flags().Set(key, fmt.Sprintf("%v", *b)); err != nil {
					return fmt.Errorf("confluence2md: bad value for %s: %w", key, err)
				}
			}

		case reflect.String:
			s, ok := field.Value().(string)
			if !ok {
				return fmt.Errorf("confluence2md: found unrecognised field: %+v", field)
			}
			if s != "" {
				if err := cmd.Flags().Set(key, s); err != nil {
					return fmt.Errorf("confluence2md: bad value for %s: %w", key, err)
				}
			}

		case reflect.Slice:
			ss, ok := field.Value().([]string)
			if !ok {
				return fmt.Errorf("confluence2md: found unrecognised field: %+v", field)
			}
			for _, s := range ss {
				// yes, repeatedly calling Set() appends to the slice...
				if err := cmd.Flags().Set(key, s); err != nil {
					return fmt.Errorf("confluence2md: bad value for %s: %w", key, err)
				}
			}

		default:
			return fmt.Errorf("confluence2md: found unrecognised field: %+v", field)
		}
	}

	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Ctrl-C cancels whatever request is in flight, and stops `serve`.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("confluence2md: %w", err)
	}

	return nil
}
