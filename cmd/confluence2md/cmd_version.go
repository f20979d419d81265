package main

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

// Version may be stamped with -ldflags "-X main.Version=v1.2.3"; otherwise the module version
// from the build info is used.
var Version = ""

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the confluence2md version and the commit it was built from",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return fmt.Errorf("version: no build info in this binary")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "confluence2md %s (%s)\n", describeBuild(Version, info), info.GoVersion)
		return nil
	},
}

// describeBuild renders e.g. "v1.2.0", "rev-3f2a9c1d0e4b-dirty" or "devel".
func describeBuild(stamped string, info *debug.BuildInfo) string {
	version := stamped
	if version == "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}

	var revision string
	dirty := false
	for _, kv := range info.Settings {
		switch kv.Key {
		case "vcs.revision":
			revision = kv.Value
		case "vcs.modified":
			dirty = kv.Value == "true"
		}
	}

	parts := []string{}
	if version != "" {
		parts = append(parts, version)
	}
	if revision != "" {
		if len(revision) > 12 {
			revision = revision[:12]
		}
		parts = append(parts, "rev", revision)
		if dirty {
			parts = append(parts, "dirty")
		}
	}
	if len(parts) == 0 {
		return "devel"
	}
	return strings.Join(parts, "-")
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
