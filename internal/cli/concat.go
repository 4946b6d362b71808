package cli

import (
	"context"
	"fmt"
	"os"

	"ctxcat/internal/config"
	"ctxcat/internal/engine"
	"ctxcat/internal/flags"

	"github.com/spf13/cobra"
)

var cfg = config.New()

const concatHelpTemplate = `{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}Usage:
  {{.UseLine}}

{{if .HasAvailableLocalFlags}}Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}Environment:
	Only consulted when --github is set.

	Token sources (in order):
	1) --token
	2) GITHUB_TOKEN environment variable
	3) GH_TOKEN environment variable
	4) GitHub CLI (gh) authentication via gh auth token (if gh is installed and logged in)

	Without a token, public repositories are read anonymously (low rate limit).

	GITHUB_API_URL overrides the REST API root, e.g. for GitHub Enterprise Server:
	  export GITHUB_API_URL="https://ghe.example.com/api/v3/"

{{if .HasAvailableSubCommands}}Available Commands:
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.
{{end}}`

var concatCmd = &cobra.Command{
	Use:   "concat [paths...]",
	Short: "Concatenate files into one document",
	Long: `Concatenate files into one document.

Each file becomes a section:

	--- File: <path> ---
	<content, newline-terminated>
	<blank line>

Sections appear in the order the paths were given; duplicates are written
again. A missing file gets the line "[!] File not found." instead of its
content, and files that cannot be decoded or read get an "[!] ERROR: ..."
line. None of these stop the run.

Paths:
	Positional arguments win over the manifest "paths" list, which wins over
	the built-in list. Relative paths resolve against --root, or against the
	repository root when --github is set.

Output:
	The document is written to --output (default: context.txt), replacing any
	previous content. Use "-" for stdout. Diagnostics go to stderr and can be
	switched to NDJSON events with --console-format ndjson, or silenced with
	--no-console. --report writes a JSON or NDJSON run report to a file.

Exit codes:
	0 = run completed (markers allowed)
	2 = --strict and at least one file was replaced by a marker
	3 = fatal error (invalid flags, output not writable, timeout)

Examples:
  # Built-in path list into context.txt
  ctxcat concat

  # Explicit paths, legacy Windows sources
  ctxcat concat -e windows-1251 -o legacy.txt src/a.pas src/b.pas

  # Files from a GitHub repository at a tag
  ctxcat concat --github octocat/hello-world@v1.0 README.md

  # Machine-readable progress for scripts
  ctxcat concat -m ctxcat.yaml --console-format ndjson
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := prepareConfig(cmd, cfg, args); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			os.Exit(3)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		eng := engine.NewEngine(cmd.OutOrStdout(), cmd.ErrOrStderr())
		eng.UserAgent = "ctxcat/" + buildVersion
		eng.GitHubAPIURL = os.Getenv("GITHUB_API_URL")
		os.Exit(eng.Run(ctx, cfg))
	},
}

// prepareConfig folds positional paths and the optional manifest into c and
// validates the result. Flags set on cmd keep precedence over manifest values.
func prepareConfig(cmd *cobra.Command, c *config.Config, args []string) error {
	if len(args) > 0 {
		c.Input.Paths = append([]string(nil), args...)
	}
	if c.Input.Manifest != "" {
		m, err := config.LoadManifest(c.Input.Manifest)
		if err != nil {
			return err
		}
		changed := func(string) bool { return false }
		if cmd != nil {
			changed = cmd.Flags().Changed
		}
		c.ApplyManifest(m, changed)
	}
	return c.Validate()
}

func init() {
	rootCmd.AddCommand(concatCmd)
	concatCmd.SetHelpTemplate(concatHelpTemplate)

	// Input
	concatCmd.Flags().StringVarP(&cfg.Input.Manifest, flags.FlagManifest, "m", "", "YAML manifest providing paths, output, encoding, root, github and report")
	concatCmd.Flags().StringVarP(&cfg.Input.Root, flags.FlagRoot, "C", config.DefaultRoot, "Base directory relative paths are resolved against")
	concatCmd.Flags().StringVarP(&cfg.Input.Encoding, flags.FlagEncoding, "e", config.DefaultEncoding, "Text encoding of the input files (WHATWG label, e.g. utf-8, windows-1251, shift_jis)")
	concatCmd.Flags().StringVar(&cfg.Input.GitHub, flags.FlagGitHub, "", "Read files from a GitHub repository: OWNER/REPO[@REF] or URL")
	concatCmd.Flags().StringVar(&cfg.Input.Token, flags.FlagToken, "", "GitHub token (default: GITHUB_TOKEN, GH_TOKEN, then gh auth token)")

	// Output
	concatCmd.Flags().StringVarP(&cfg.Output.Path, flags.FlagOutput, "o", config.DefaultOutput, "Output document path (\"-\" = stdout)")
	concatCmd.Flags().StringVar(&cfg.Output.Report, flags.FlagReport, "", "Write a run report to this path")
	concatCmd.Flags().StringVar(&cfg.Output.ReportFormat, flags.FlagReportFormat, "", "Report format for --report: json|ndjson (default: inferred from file extension)")
	concatCmd.Flags().StringVar(&cfg.Output.ConsoleFormat, flags.FlagConsoleFormat, config.DefaultConsoleFormat, "Diagnostics format on stderr: text|ndjson")
	concatCmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress diagnostics on stderr (use with --report)")

	// Runtime
	concatCmd.Flags().BoolVar(&cfg.Runtime.Strict, flags.FlagStrict, false, "Exit 2 when any file was replaced by a marker")
	concatCmd.Flags().DurationVar(&cfg.Runtime.Timeout, flags.FlagTimeout, config.DefaultTimeout, "Global timeout")
}
