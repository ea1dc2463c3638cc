package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/aretw0/mercato"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the mercato release and the build it came from",
	Run: func(cmd *cobra.Command, args []string) {
		info, _ := debug.ReadBuildInfo()
		printVersion(cmd.OutOrStdout(), info)
	},
}

// printVersion writes the release followed by the toolchain and, when the
// binary was built from a checkout, the VCS revision.
func printVersion(w io.Writer, info *debug.BuildInfo) {
	fmt.Fprintf(w, "mercato %s\n", mercato.Version)
	fmt.Fprintf(w, "  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if info == nil {
		return
	}
	var revision, modified string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		}
	}
	if revision == "" {
		return
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if modified == "true" {
		revision += " (dirty)"
	}
	fmt.Fprintf(w, "  revision: %s\n", revision)
}

func init() {
	rootCmd.Version = mercato.Version
	rootCmd.AddCommand(versionCmd)
}
