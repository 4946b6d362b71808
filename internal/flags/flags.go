package flags

// Package flags defines canonical CLI flag names shared across the CLI and config.
// Keeping these as constants helps avoid drift between Cobra flag wiring and the
// code paths that need to know whether a flag was set explicitly (manifest merge).
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringVar(&cfg.Output.Path, flags.FlagOutput, "", "...")
//	arg := "--" + flags.FlagOutput
const (
	// Input
	FlagManifest = "manifest"
	FlagRoot     = "root"
	FlagEncoding = "encoding"
	FlagGitHub   = "github"
	FlagToken    = "token"

	// Output
	FlagOutput        = "output"
	FlagReport        = "report"
	FlagReportFormat  = "report-format"
	FlagConsoleFormat = "console-format"
	FlagNoConsole     = "no-console"

	// Runtime
	FlagStrict  = "strict"
	FlagTimeout = "timeout"
	FlagVerbose = "verbose"

	// paths
	FlagCheck = "check"
)
