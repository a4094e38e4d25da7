// Package config reads and writes the fimo.yaml project configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/fimo-dev/fimo/internal/accounts"
	"github.com/fimo-dev/fimo/internal/model"
)

// FileName is the name of the configuration file in a project directory.
const FileName = "fimo.yaml"

const (
	defaultDelimiter  = ";"
	defaultDateFormat = "%d.%m.%Y"
	defaultLogDir     = "logs"
)

// Config represents the top-level fimo.yaml configuration.
type Config struct {
	Accounts []AccountConfig `yaml:"accounts"`
	Logs     LogsConfig      `yaml:"logs"`
	Git      GitConfig       `yaml:"git"`
}

// AccountConfig describes one statement source.
type AccountConfig struct {
	Name       string        `yaml:"name"`
	Path       string        `yaml:"path"`
	Delimiter  string        `yaml:"delimiter,omitempty"`
	Encoding   string        `yaml:"encoding,omitempty"`
	DateFormat string        `yaml:"date_format,omitempty"`
	Spender    string        `yaml:"spender"`
	Columns    ColumnsConfig `yaml:"columns"`
	Prelabeled bool          `yaml:"prelabeled,omitempty"`
}

// ColumnsConfig names the statement columns of an account.
type ColumnsConfig struct {
	Date     string `yaml:"date"`
	Value    string `yaml:"value"`
	Receiver string `yaml:"receiver,omitempty"`
	Purpose  string `yaml:"purpose,omitempty"`
}

// LogsConfig controls the import audit log.
type LogsConfig struct {
	Dir string `yaml:"dir"` // relative to the project directory
}

// GitConfig controls committing rule file changes after an import.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a fimo.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config listing the bank presets.
func Default() *Config {
	cfg := &Config{
		Logs: LogsConfig{Dir: defaultLogDir},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "fimo",
			AuthorEmail: "fimo@localhost",
		},
	}
	for _, a := range accounts.Presets() {
		cfg.Accounts = append(cfg.Accounts, FromAccount(a))
	}
	return cfg
}

// FromAccount converts an account to its configuration form.
func FromAccount(a model.Account) AccountConfig {
	return AccountConfig{
		Name:       a.Name,
		Path:       a.Path,
		Delimiter:  string(a.Delimiter),
		Encoding:   a.Encoding,
		DateFormat: a.DateFormat,
		Spender:    a.Spender,
		Columns: ColumnsConfig{
			Date:     a.Columns.Date,
			Value:    a.Columns.Value,
			Receiver: a.Columns.Receiver,
			Purpose:  a.Columns.Purpose,
		},
		Prelabeled: a.Prelabeled(),
	}
}

// Account validates the entry and converts it to a model.Account. A
// relative path is resolved against baseDir.
func (c AccountConfig) Account(baseDir string) (model.Account, error) {
	if c.Name == "" {
		return model.Account{}, errors.New("account without name")
	}
	if c.Path == "" {
		return model.Account{}, fmt.Errorf("account %s: missing path", c.Name)
	}
	if c.Columns.Date == "" || c.Columns.Value == "" {
		return model.Account{}, fmt.Errorf("account %s: date and value columns are required", c.Name)
	}

	delim := c.Delimiter
	if delim == "" {
		delim = defaultDelimiter
	}
	r, size := utf8.DecodeRuneInString(delim)
	if size != len(delim) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return model.Account{}, fmt.Errorf("account %s: invalid delimiter %q", c.Name, c.Delimiter)
	}

	dateFormat := c.DateFormat
	if dateFormat == "" {
		dateFormat = defaultDateFormat
	}

	path := c.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	labeling := model.LabelingRules
	if c.Prelabeled {
		labeling = model.LabelingInline
	}

	return model.Account{
		Name:       c.Name,
		Path:       path,
		Delimiter:  r,
		Encoding:   c.Encoding,
		DateFormat: dateFormat,
		Spender:    c.Spender,
		Columns: model.Columns{
			Date:     c.Columns.Date,
			Value:    c.Columns.Value,
			Receiver: c.Columns.Receiver,
			Purpose:  c.Columns.Purpose,
		},
		Labeling: labeling,
	}, nil
}

// ResolveAccounts converts every account entry, resolving paths against
// baseDir.
func (c *Config) ResolveAccounts(baseDir string) ([]model.Account, error) {
	result := make([]model.Account, 0, len(c.Accounts))
	for i, ac := range c.Accounts {
		a, err := ac.Account(baseDir)
		if err != nil {
			return nil, fmt.Errorf("accounts[%d]: %w", i, err)
		}
		result = append(result, a)
	}
	return result, nil
}

// LogDir returns the audit log directory resolved against baseDir.
func (c *Config) LogDir(baseDir string) string {
	dir := c.Logs.Dir
	if dir == "" {
		dir = defaultLogDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(baseDir, dir)
}
