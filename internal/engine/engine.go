package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"ctxcat/internal/concat"
	"ctxcat/internal/config"
	gh "ctxcat/internal/github"
	"ctxcat/internal/output"
	"ctxcat/internal/source"
	"ctxcat/internal/textenc"
)

func exitCodeForRun(fatal, partial bool) int {
	// Exit code contract:
	// 0 = run completed (markers allowed unless --strict)
	// 2 = --strict and at least one entry was replaced by a marker
	// 3 = fatal error (bad config, output not writable, timeout)
	if fatal {
		return 3
	}
	if partial {
		return 2
	}
	return 0
}

func setupOutputManager(cfg *config.Config, stderr io.Writer) (*output.Manager, error) {
	outMgr := output.NewManager()

	if !cfg.Output.NoConsole {
		if err := outMgr.AddSink(output.NewConsoleSink(stderr, cfg.Output.ConsoleFormat, cfg.Runtime.Verbose)); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	if cfg.Output.Report != "" {
		fs, err := output.NewFileSink(cfg.Output.Report, cfg.Output.ReportFormat)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

type Engine struct {
	Stdout io.Writer
	Stderr io.Writer

	// UserAgent is sent on GitHub API requests.
	UserAgent string

	// GitHubAPIURL overrides the GitHub REST root (GitHub Enterprise Server).
	GitHubAPIURL string
}

func NewEngine(stdout, stderr io.Writer) *Engine {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Engine{Stdout: stdout, Stderr: stderr}
}

// buildSource returns the source entries are read from. The rate budget is
// nil for local runs.
func (e *Engine) buildSource(ctx context.Context, cfg *config.Config) (source.Source, *gh.RateBudget, error) {
	if cfg.Input.Repo.IsZero() {
		return source.Dir(cfg.Input.Root), nil, nil
	}

	token, tokenSource, err := gh.ResolveAuthToken(ctx, cfg.Input.Token)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve GitHub auth token: %w", err)
	}
	if cfg.Runtime.Verbose {
		if token == "" {
			fmt.Fprintln(e.Stderr, "[verbose] github: no token found, using anonymous access")
		} else {
			fmt.Fprintf(e.Stderr, "[verbose] github: using token from %s\n", tokenSource)
		}
	}

	client, err := gh.NewClient(ctx, token,
		gh.WithVerbose(cfg.Runtime.Verbose, e.Stderr),
		gh.WithBaseURL(e.GitHubAPIURL),
		gh.WithUserAgent(e.UserAgent),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	repo := cfg.Input.Repo
	return source.Memo(source.GitHub(client, repo.Owner, repo.Name, repo.Ref)), client.Budget, nil
}

// Run executes one concatenation run and returns the process exit code. cfg
// must have been validated.
func (e *Engine) Run(ctx context.Context, cfg *config.Config) int {
	ctx, cancel := context.WithTimeout(ctx, cfg.Runtime.Timeout)
	defer cancel()

	enc, err := textenc.Lookup(cfg.Input.Encoding)
	if err != nil {
		fmt.Fprintf(e.Stderr, "Error: %v\n", err)
		return exitCodeForRun(true, false)
	}

	src, budget, err := e.buildSource(ctx, cfg)
	if err != nil {
		fmt.Fprintf(e.Stderr, "Error: %v\n", err)
		return exitCodeForRun(true, false)
	}

	outMgr, err := setupOutputManager(cfg, e.Stderr)
	if err != nil {
		fmt.Fprintf(e.Stderr, "Error creating output sinks: %v\n", err)
		return exitCodeForRun(true, false)
	}
	defer func() {
		if err := outMgr.Close(); err != nil {
			fmt.Fprintf(e.Stderr, "Error: %v\n", err)
		}
	}()

	paths := cfg.ResolvedPaths()
	outMgr.Emit(output.Event{Type: output.EventRunStarted, Source: src.Name(), Output: cfg.Output.Path, Entries: len(paths)})

	c := concat.New(src, enc,
		concat.WithStdout(e.Stdout),
		concat.WithObserver(func(en concat.Entry) {
			outMgr.Emit(output.EntryEvent(en))
		}),
	)
	sum, runErr := c.WriteFile(ctx, cfg.Output.Path, paths)

	fatal := runErr != nil
	if fatal {
		var openErr *concat.OutputOpenError
		switch {
		case errors.As(runErr, &openErr):
			fmt.Fprintf(e.Stderr, "Error opening output file %s: %v\n", openErr.Path, openErr.Err)
		case errors.Is(runErr, context.DeadlineExceeded):
			fmt.Fprintf(e.Stderr, "Error: run timed out after %s (%d of %d entries written)\n", cfg.Runtime.Timeout, sum.Entries, len(paths))
		default:
			fmt.Fprintf(e.Stderr, "Error writing output file %s: %v\n", cfg.Output.Path, runErr)
		}
	}

	code := exitCodeForRun(fatal, cfg.Runtime.Strict && sum.Partial())
	outMgr.Emit(output.Event{
		Type:          output.EventRunFinished,
		Output:        cfg.Output.Path,
		Entries:       sum.Entries,
		Failed:        sum.Failed(),
		DocumentBytes: sum.Bytes,
		ExitCode:      code,
	})
	if cfg.Runtime.Verbose && budget != nil && budget.Remaining() >= 0 {
		fmt.Fprintf(e.Stderr, "[verbose] github: %d requests left in the rate limit window\n", budget.Remaining())
	}
	// Diagnostics are best effort; the document decides the exit code.
	if err := outMgr.Err(); err != nil {
		fmt.Fprintf(e.Stderr, "Warning: %v\n", err)
	}
	return code
}
