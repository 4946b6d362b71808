package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"ctxcat/internal/textenc"
)

const (
	DefaultOutput        = "context.txt"
	DefaultEncoding      = "utf-8"
	DefaultRoot          = "."
	DefaultConsoleFormat = "text"
	DefaultTimeout       = 5 * time.Minute
)

// DefaultPaths is the path list used when neither positional arguments nor a
// manifest provide one.
var DefaultPaths = []string{
	"src/main/java/com/example/imagetagger/MainApplication.java",
	"src/main/java/com/example/imagetagger/ui/controller/RightToolbarController.java",
	"src/main/java/com/example/imagetagger/ui/controller/MainViewController.java",
	"src/main/java/com/example/imagetagger/ui/controller/LeftToolbarController.java",
	"src/main/java/com/example/imagetagger/ui/task/ScanDirectoryTask.java",
	"src/main/java/com/example/imagetagger/core/model/TrackedFile.java",
	"src/main/java/com/example/imagetagger/core/model/Tag.java",
	"src/main/java/com/example/imagetagger/core/service/TrackedFileService.java",
	"src/main/java/com/example/imagetagger/core/service/FileScannerService.java",
	"src/main/java/com/example/imagetagger/core/service/TagService.java",
	"src/main/java/com/example/imagetagger/util/FileHasher.java",
	"src/main/java/com/example/imagetagger/persistence/dao/TrackedFileDAO.java",
	"src/main/java/com/example/imagetagger/persistence/dao/FileTagLinkDAO.java",
	"src/main/java/com/example/imagetagger/persistence/dao/TagDAO.java",
	"src/main/java/com/example/imagetagger/persistence/DatabaseManager.java",
	"src/main/resources/com/example/imagetagger/fxml/RightToolbar.fxml",
	"src/main/resources/com/example/imagetagger/fxml/LeftToolbar.fxml",
	"src/main/resources/com/example/imagetagger/fxml/MainView.fxml",
	"src/main/resources/logback.xml",
}

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields, keep these in sync:
	// - CLI flags in internal/cli/concat.go
	// - manifest keys in manifest.go
	Input   Input
	Output  Output
	Runtime Runtime
}

type Input struct {
	// Paths is the ordered path list. Duplicates are allowed and order defines
	// output order. Empty means "use the manifest, then DefaultPaths".
	Paths []string

	// Manifest is an optional YAML file providing paths and defaults (see --manifest).
	Manifest string

	// Root is the base directory relative paths are resolved against (see --root).
	Root string

	// Encoding is the text encoding input files are decoded with (see --encoding).
	Encoding string

	// GitHub selects a repository as the source instead of the local disk, as
	// OWNER/REPO[@REF] or a github.com URL (see --github).
	GitHub string

	// Repo is the parsed form of GitHub, populated by Validate.
	Repo RepoRef

	// Token is an explicit GitHub token (see --token). Optional.
	Token string
}

type Output struct {
	// Path is the output document location (see --output). "-" means stdout.
	Path string

	// Report writes a machine-readable run report to this path (see --report).
	Report string

	// ReportFormat selects the format for --report (see --report-format).
	// Allowed values: json, ndjson. If empty, it is inferred from the --report file extension.
	ReportFormat string

	// ConsoleFormat controls the diagnostic stream format (see --console-format).
	// Allowed values: text, ndjson.
	ConsoleFormat string

	// NoConsole suppresses per-entry diagnostics (see --no-console).
	NoConsole bool
}

type Runtime struct {
	// Strict turns per-entry failures into a non-zero exit (see --strict).
	Strict bool

	// Timeout bounds the whole run (see --timeout). Must be > 0.
	Timeout time.Duration

	// Verbose enables [verbose] diagnostics, including every GitHub API call.
	Verbose bool
}

// RepoRef identifies a GitHub repository and an optional git ref.
type RepoRef struct {
	Owner string
	Name  string
	Ref   string
}

func (r RepoRef) IsZero() bool {
	return r.Owner == "" && r.Name == ""
}

func (r RepoRef) String() string {
	if r.IsZero() {
		return ""
	}
	if r.Ref == "" {
		return r.Owner + "/" + r.Name
	}
	return r.Owner + "/" + r.Name + "@" + r.Ref
}

func New() *Config {
	return &Config{
		Input: Input{
			Root:     DefaultRoot,
			Encoding: DefaultEncoding,
		},
		Output: Output{
			Path:          DefaultOutput,
			ConsoleFormat: DefaultConsoleFormat,
		},
		Runtime: Runtime{
			Timeout: DefaultTimeout,
		},
	}
}

// ResolvedPaths returns the path list in effect: explicit paths if any,
// otherwise a copy of DefaultPaths.
func (c *Config) ResolvedPaths() []string {
	if len(c.Input.Paths) > 0 {
		return c.Input.Paths
	}
	return append([]string(nil), DefaultPaths...)
}

func (c *Config) Validate() error {
	// Input validation
	c.Input.Encoding = normalizeEnumValue(c.Input.Encoding)
	if c.Input.Encoding == "" {
		c.Input.Encoding = DefaultEncoding
	}
	if _, err := textenc.Lookup(c.Input.Encoding); err != nil {
		return fmt.Errorf("invalid --encoding value: %w", err)
	}

	c.Input.Root = strings.TrimSpace(c.Input.Root)
	if c.Input.Root == "" {
		c.Input.Root = DefaultRoot
	}

	c.Input.Repo = RepoRef{}
	if strings.TrimSpace(c.Input.GitHub) != "" {
		ref, err := ParseRepoRef(c.Input.GitHub)
		if err != nil {
			return fmt.Errorf("invalid --github value: %w", err)
		}
		c.Input.Repo = ref
	}

	// Output validation
	c.Output.Path = strings.TrimSpace(c.Output.Path)
	if c.Output.Path == "" {
		return errors.New("--output must not be empty")
	}

	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		c.Output.ConsoleFormat = DefaultConsoleFormat
	}
	if c.Output.ConsoleFormat != "text" && c.Output.ConsoleFormat != "ndjson" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, ndjson)", c.Output.ConsoleFormat)
	}

	if c.Output.Report != "" {
		if c.Output.Report == c.Output.Path {
			return errors.New("--report must not point at the --output document")
		}
		c.Output.ReportFormat = normalizeEnumValue(c.Output.ReportFormat)
		if c.Output.ReportFormat == "" {
			ext := strings.ToLower(filepath.Ext(c.Output.Report))
			switch ext {
			case ".json":
				c.Output.ReportFormat = "json"
			case ".ndjson", ".jsonl":
				c.Output.ReportFormat = "ndjson"
			default:
				if ext == "" {
					return errors.New("cannot infer report format from file extension (missing extension); use --report-format")
				}
				return fmt.Errorf("cannot infer report format from file extension %q; use --report-format", ext)
			}
		} else if c.Output.ReportFormat != "json" && c.Output.ReportFormat != "ndjson" {
			return fmt.Errorf("unsupported report format: %s", c.Output.ReportFormat)
		}
	}

	// Runtime validation
	if c.Runtime.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}

	return nil
}

// ParseRepoRef parses OWNER/REPO[@REF] or a GitHub URL such as
// https://github.com/OWNER/REPO/tree/REF.
func ParseRepoRef(raw string) (RepoRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RepoRef{}, errors.New("empty repository")
	}

	if strings.HasPrefix(raw, "github.com/") || strings.HasPrefix(raw, "www.github.com/") {
		raw = "https://" + raw
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		u, err := url.Parse(raw)
		if err != nil {
			return RepoRef{}, fmt.Errorf("%q", raw)
		}
		host := strings.ToLower(u.Hostname())
		if host == "www.github.com" {
			host = "github.com"
		}
		if host != "github.com" {
			return RepoRef{}, fmt.Errorf("%q: not a github.com URL", raw)
		}
		parts := strings.FieldsFunc(strings.Trim(u.Path, "/"), func(r rune) bool { return r == '/' })
		if len(parts) < 2 {
			return RepoRef{}, fmt.Errorf("%q: expected OWNER/REPO", raw)
		}
		ref := RepoRef{Owner: parts[0], Name: strings.TrimSuffix(parts[1], ".git")}
		// https://github.com/OWNER/REPO/tree/REF
		if len(parts) >= 4 && parts[2] == "tree" {
			ref.Ref = strings.Join(parts[3:], "/")
		}
		return ref, nil
	}

	repo, gitRef, _ := strings.Cut(raw, "@")
	owner, name, ok := strings.Cut(repo, "/")
	owner = strings.TrimSpace(owner)
	name = strings.TrimSpace(name)
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return RepoRef{}, fmt.Errorf("%q: expected OWNER/REPO[@REF]", raw)
	}
	return RepoRef{Owner: owner, Name: name, Ref: strings.TrimSpace(gitRef)}, nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
