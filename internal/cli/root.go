package cli

import (
	"fmt"
	"os"

	"ctxcat/internal/flags"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "ctxcat",
	Short: "Concatenate source files into a single annotated context document",
	Long: `ctxcat concatenates a list of files into one text document, each file
preceded by a header naming its path.

Files that are missing, cannot be decoded or cannot be read are never fatal:
they are replaced by a marker line in the document and reported on stderr.

Examples:
	# Concatenate the built-in path list into context.txt
	ctxcat concat

	# Concatenate explicit paths to stdout
	ctxcat concat -o - go.mod main.go

	# Use a manifest
	ctxcat concat -m ctxcat.yaml

	# Print the paths a run would use
	ctxcat paths -m ctxcat.yaml

	# Print build info
	ctxcat version`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, flags.FlagVerbose, false, "Enable verbose logging (prints every entry, every GitHub API call and run totals)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
