package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	gh "ctxcat/internal/github"

	"github.com/google/go-github/v81/github"
)

// GitHubSource reads entries from a repository through the contents API.
// Paths are repository-relative and use forward slashes.
type GitHubSource struct {
	client *gh.Client
	owner  string
	repo   string
	ref    string // empty means the default branch
}

func GitHub(client *gh.Client, owner, repo, ref string) *GitHubSource {
	return &GitHubSource{client: client, owner: owner, repo: repo, ref: ref}
}

func (g *GitHubSource) Name() string {
	name := "github:" + g.owner + "/" + g.repo
	if g.ref != "" {
		name += "@" + g.ref
	}
	return name
}

func repoPath(name string) string {
	p := strings.ReplaceAll(name, "\\", "/")
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

func (g *GitHubSource) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if g.client == nil || g.client.Client == nil {
		return nil, errors.New("github source: client is nil")
	}
	p := repoPath(name)
	if p == "" {
		return nil, &fs.PathError{Op: "get", Path: name, Err: ErrIsDir}
	}

	var opts *github.RepositoryContentGetOptions
	if g.ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: g.ref}
	}

	file, _, resp, err := g.client.Client.Repositories.GetContents(ctx, g.owner, g.repo, p, opts)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, &fs.PathError{Op: "get", Path: name, Err: fs.ErrNotExist}
		}
		return nil, fmt.Errorf("get %s from %s/%s: %w", p, g.owner, g.repo, err)
	}
	if file == nil {
		return nil, &fs.PathError{Op: "get", Path: name, Err: ErrIsDir}
	}
	if t := file.GetType(); t != "" && t != "file" {
		return nil, fmt.Errorf("get %s: not a regular file (%s)", p, t)
	}

	// Blobs above the inline limit (1 MB) come back with encoding "none".
	if file.GetEncoding() == "none" {
		return g.download(ctx, p, file.GetDownloadURL())
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	return []byte(content), nil
}

func (g *GitHubSource) download(ctx context.Context, p, rawURL string) ([]byte, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("download %s: no download url", p)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", p, err)
	}
	resp, err := g.client.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", p, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: unexpected status %s", p, resp.Status)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", p, err)
	}
	return b, nil
}
