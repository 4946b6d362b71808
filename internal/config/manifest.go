package config

import (
	"fmt"
	"os"
	"path/filepath"

	"ctxcat/internal/flags"

	"gopkg.in/yaml.v3"
)

// Manifest is the optional YAML file describing a concatenation run.
// All fields are optional; zero values leave the CLI defaults untouched.
type Manifest struct {
	Output   string   `yaml:"output"`
	Encoding string   `yaml:"encoding"`
	Root     string   `yaml:"root"` // relative to the manifest's directory
	GitHub   string   `yaml:"github"`
	Report   string   `yaml:"report"`
	Paths    []string `yaml:"paths"`

	// dir is the directory containing the manifest file.
	dir string
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// ApplyManifest merges m into c. Values whose flag was set explicitly are kept;
// changed reports whether a flag (by name, see internal/flags) was set on the
// command line. Explicit Paths always win over manifest paths.
func (c *Config) ApplyManifest(m *Manifest, changed func(name string) bool) {
	if m == nil {
		return
	}
	if changed == nil {
		changed = func(string) bool { return false }
	}

	if len(c.Input.Paths) == 0 && len(m.Paths) > 0 {
		c.Input.Paths = append([]string(nil), m.Paths...)
	}
	if m.Output != "" && !changed(flags.FlagOutput) {
		c.Output.Path = m.Output
	}
	if m.Encoding != "" && !changed(flags.FlagEncoding) {
		c.Input.Encoding = m.Encoding
	}
	if m.Root != "" && !changed(flags.FlagRoot) {
		root := m.Root
		if !filepath.IsAbs(root) && m.dir != "" {
			root = filepath.Join(m.dir, root)
		}
		c.Input.Root = root
	}
	if m.GitHub != "" && !changed(flags.FlagGitHub) {
		c.Input.GitHub = m.GitHub
	}
	if m.Report != "" && !changed(flags.FlagReport) {
		c.Output.Report = m.Report
	}
}
