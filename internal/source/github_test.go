package source

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gh "ctxcat/internal/github"
)

func newGitHubTestSource(t *testing.T, ref string, handler http.HandlerFunc) *GitHubSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := gh.NewClient(context.Background(), "test-token", gh.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return GitHub(client, "acme", "widgets", ref)
}

func TestGitHubSource_ReadFile_Base64(t *testing.T) {
	var gotPath, gotRef string
	src := newGitHubTestSource(t, "main", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRef = r.URL.Query().Get("ref")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"type":"file","encoding":"base64","name":"a.txt","path":"src/a.txt","content":%q}`,
			base64.StdEncoding.EncodeToString([]byte("hello\n")))
	})

	got, err := src.ReadFile(context.Background(), "./src/a.txt")
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if string(got) != "hello\n" {
		t.Fatalf("want hello, got %q", got)
	}
	if gotPath != "/repos/acme/widgets/contents/src/a.txt" {
		t.Fatalf("unexpected request path: %q", gotPath)
	}
	if gotRef != "main" {
		t.Fatalf("want ref main, got %q", gotRef)
	}
	if src.Name() != "github:acme/widgets@main" {
		t.Fatalf("unexpected name: %q", src.Name())
	}
}

func TestGitHubSource_ReadFile_NotFound(t *testing.T) {
	src := newGitHubTestSource(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})

	_, err := src.ReadFile(context.Background(), "missing.bin")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("want fs.ErrNotExist, got %v", err)
	}
}

func TestGitHubSource_ReadFile_Directory(t *testing.T) {
	src := newGitHubTestSource(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"type":"file","name":"a.txt","path":"src/a.txt"}]`))
	})

	_, err := src.ReadFile(context.Background(), "src")
	if !errors.Is(err, ErrIsDir) {
		t.Fatalf("want ErrIsDir, got %v", err)
	}
}

func TestGitHubSource_ReadFile_ServerErrorIsReadError(t *testing.T) {
	src := newGitHubTestSource(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Resource not accessible"}`))
	})

	_, err := src.ReadFile(context.Background(), "a.txt")
	if err == nil {
		t.Fatalf("expected error")
	}
	if errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("403 must not be reported as missing: %v", err)
	}
	if !strings.Contains(err.Error(), "acme/widgets") {
		t.Fatalf("expected repo in error, got %v", err)
	}
}

func TestGitHubSource_ReadFile_LargeBlobDownloads(t *testing.T) {
	src := newGitHubTestSource(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/raw/big.txt" {
			if !strings.Contains(r.Header.Get("Authorization"), "test-token") {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte("big content\n"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"type":"file","encoding":"none","name":"big.txt","path":"big.txt","content":"","download_url":%q}`,
			"http://"+r.Host+"/raw/big.txt")
	})

	got, err := src.ReadFile(context.Background(), "big.txt")
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if string(got) != "big content\n" {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestGitHubSource_ReadFile_Symlink(t *testing.T) {
	src := newGitHubTestSource(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type":"symlink","target":"a.txt","name":"link","path":"link"}`))
	})

	_, err := src.ReadFile(context.Background(), "link")
	if err == nil || !strings.Contains(err.Error(), "not a regular file") {
		t.Fatalf("expected not a regular file error, got %v", err)
	}
}
