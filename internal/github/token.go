package github

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"
)

type AuthTokenSource string

const (
	AuthTokenSourceExplicit AuthTokenSource = "explicit"
	AuthTokenSourceEnv      AuthTokenSource = "env:GITHUB_TOKEN"
	AuthTokenSourceGHEnv    AuthTokenSource = "env:GH_TOKEN"
	AuthTokenSourceGitHubCL AuthTokenSource = "gh"
)

// ResolveAuthToken resolves a GitHub access token for reading repository
// contents. An empty token with a nil error means anonymous access.
//
// Precedence:
//  1. provided (if non-empty, e.g. --token)
//  2. GITHUB_TOKEN env var
//  3. GH_TOKEN env var
//  4. GitHub CLI: `gh auth token -h github.com`
//
// It never prints the token.
func ResolveAuthToken(ctx context.Context, provided string) (token string, source AuthTokenSource, err error) {
	if tok := strings.TrimSpace(provided); tok != "" {
		return tok, AuthTokenSourceExplicit, nil
	}

	if env := strings.TrimSpace(os.Getenv("GITHUB_TOKEN")); env != "" {
		return env, AuthTokenSourceEnv, nil
	}
	if env := strings.TrimSpace(os.Getenv("GH_TOKEN")); env != "" {
		return env, AuthTokenSourceGHEnv, nil
	}

	tok, ok, err := tokenFromGitHubCLI(ctx)
	if err != nil {
		return "", "", err
	}
	if ok {
		return tok, AuthTokenSourceGitHubCL, nil
	}
	return "", "", nil
}

func tokenFromGitHubCLI(ctx context.Context) (token string, ok bool, err error) {
	if _, lookErr := exec.LookPath("gh"); lookErr != nil {
		return "", false, nil
	}

	// A broken gh config or credential helper must not hang the run.
	cmdCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	cmd := exec.CommandContext(cmdCtx, "gh", "auth", "token", "-h", "github.com")
	env := os.Environ()
	filteredEnv := env[:0]
	for _, entry := range env {
		if strings.HasPrefix(entry, "GH_PAGER=") {
			continue
		}
		filteredEnv = append(filteredEnv, entry)
	}
	cmd.Env = append(filteredEnv, "GH_PAGER=cat")
	out, runErr := cmd.CombinedOutput()
	if runErr != nil {
		if cmdCtx.Err() != nil {
			return "", false, cmdCtx.Err()
		}
		// gh present but not logged in: fall back to anonymous access. The raw
		// gh output is not surfaced.
		return "", false, nil
	}

	tok := strings.TrimSpace(string(out))
	if tok == "" {
		return "", false, nil
	}
	if strings.ContainsAny(tok, " \t\n\r") {
		return "", false, errors.New("invalid token returned by gh: contains whitespace")
	}

	return tok, true, nil
}
