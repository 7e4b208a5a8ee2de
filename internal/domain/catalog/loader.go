package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/terminal"
)

// FilePattern selects simulation files below a catalog directory
const FilePattern = "**/*.{yaml,yml,toml}"

// LoadReport summarizes a directory load
type LoadReport struct {
	Loaded  []string
	Failed  map[string]error
	IDs     map[string]string // entry id produced by each loaded file
	Removed []string          // ids dropped by Reload
}

// Err joins every per-file failure, or returns nil
func (r LoadReport) Err() error {
	errs := make([]error, 0, len(r.Failed))
	for file, err := range r.Failed {
		errs = append(errs, fmt.Errorf("%s: %w", file, err))
	}
	return errors.Join(errs...)
}

// fileEntry is the on-disk layout. Output stays untyped because it may be
// a single string or a list.
type fileEntry struct {
	ID          string   `yaml:"id" toml:"id"`
	Title       string   `yaml:"title" toml:"title"`
	Kind        string   `yaml:"kind" toml:"kind"`
	Description string   `yaml:"description" toml:"description"`
	Path        string   `yaml:"path" toml:"path"`
	Objectives  []string `yaml:"objectives" toml:"objectives"`
	CVE         string   `yaml:"cve" toml:"cve"`
	Severity    string   `yaml:"severity" toml:"severity"`
	Simulation  struct {
		Scenario string `yaml:"scenario" toml:"scenario"`
		Script   []struct {
			Command string `yaml:"command" toml:"command"`
			Output  any    `yaml:"output" toml:"output"`
			Delay   *int   `yaml:"delay" toml:"delay"`
		} `yaml:"script" toml:"script"`
	} `yaml:"simulation" toml:"simulation"`
}

func (f fileEntry) entry(source string) (Entry, error) {
	e := Entry{
		ID:          f.ID,
		Title:       f.Title,
		Kind:        Kind(f.Kind),
		Description: f.Description,
		Path:        f.Path,
		Objectives:  f.Objectives,
		CVE:         f.CVE,
		Severity:    f.Severity,
		Source:      source,
		Simulation:  terminal.Script{Scenario: f.Simulation.Scenario},
	}
	for i, s := range f.Simulation.Script {
		out, err := terminal.OutputFrom(s.Output)
		if err != nil {
			return Entry{}, fmt.Errorf("step %d: %w", i, err)
		}
		e.Simulation.Steps = append(e.Simulation.Steps, terminal.Step{
			Pattern: s.Command,
			Output:  out,
			DelayMS: s.Delay,
		})
	}
	return e, nil
}

// ParseFile decodes one simulation file. The format follows the extension.
func ParseFile(name string, data []byte) (Entry, error) {
	if err := checkText(data); err != nil {
		return Entry{}, err
	}

	var f fileEntry
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return Entry{}, fmt.Errorf("parse yaml: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &f); err != nil {
			return Entry{}, fmt.Errorf("parse toml: %w", err)
		}
	default:
		return Entry{}, fmt.Errorf("unsupported file type %q", path.Ext(name))
	}
	return f.entry(name)
}

// LoadDir adds every simulation file found under dir. A file that fails
// to parse or compile is reported and skipped; other files still load.
func (c *Catalog) LoadDir(dir string) (LoadReport, error) {
	return c.LoadFS(os.DirFS(dir))
}

// LoadFS is LoadDir over an arbitrary file system
func (c *Catalog) LoadFS(fsys fs.FS) (LoadReport, error) {
	report := LoadReport{
		Failed: make(map[string]error),
		IDs:    make(map[string]string),
	}

	matches, err := doublestar.Glob(fsys, FilePattern)
	if err != nil {
		return report, fmt.Errorf("glob catalog files: %w", err)
	}

	for _, name := range matches {
		id, err := c.loadFile(fsys, name)
		if err != nil {
			c.logger.Warn("Failed to load simulation", zap.String("file", name), zap.Error(err))
			report.Failed[name] = err
			continue
		}
		report.Loaded = append(report.Loaded, name)
		report.IDs[name] = id
	}

	c.logger.Info("Loaded simulation files",
		zap.Int("count", len(report.Loaded)),
		zap.Int("failed", len(report.Failed)),
	)
	return report, nil
}

// Reload is LoadDir that also drops entries their file no longer
// produces: the file is gone or now declares another id. A file that now
// fails to load keeps its previous entry.
func (c *Catalog) Reload(dir string) (LoadReport, error) {
	return c.ReloadFS(os.DirFS(dir))
}

// ReloadFS is Reload over an arbitrary file system
func (c *Catalog) ReloadFS(fsys fs.FS) (LoadReport, error) {
	report, err := c.LoadFS(fsys)
	if err != nil {
		return report, err
	}

	report.Removed = c.pruneStale(report.IDs, report.Failed)
	for _, id := range report.Removed {
		c.logger.Info("Removed simulation", zap.String("id", id))
	}
	return report, nil
}

func (c *Catalog) loadFile(fsys fs.FS, name string) (string, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", err
	}
	entry, err := ParseFile(name, data)
	if err != nil {
		return "", err
	}
	if err := c.Add(entry); err != nil {
		return "", err
	}
	return entry.ID, nil
}
