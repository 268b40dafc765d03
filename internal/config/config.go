package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/icsimport/internal/ics"
)

// FileName is the configuration file looked up in the repository root.
const FileName = "icsimport.yaml"

// Config represents the top-level icsimport.yaml configuration.
type Config struct {
	Import ImportConfig `yaml:"import"`
	Parser ParserConfig `yaml:"parser"`
	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
	Git    GitConfig    `yaml:"git"`
}

// ImportConfig locates the directories used by the import command.
// Relative paths are resolved against the repository root.
type ImportConfig struct {
	Dir          string `yaml:"dir"`
	ProcessedDir string `yaml:"processed_dir"`
	ExportDir    string `yaml:"export_dir"`
	XLSX         bool   `yaml:"xlsx"`
}

// ParserConfig tunes the statement parser.
type ParserConfig struct {
	RowTolerance   float64 `yaml:"row_tolerance"`
	TotalTolerance string  `yaml:"total_tolerance"` // decimal, e.g. "0.02"
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig controls the preview HTTP server.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// GitConfig controls committing import results when the repository is a
// git working tree.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads an icsimport.yaml file from disk. Fields absent from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if _, err := cfg.Parser.Options(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default().
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
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

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			Dir:          "import",
			ProcessedDir: "import/processed",
			ExportDir:    "export",
			XLSX:         false,
		},
		Parser: ParserConfig{
			RowTolerance:   ics.DefaultRowTolerance,
			TotalTolerance: ics.DefaultTotalTolerance.String(),
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			MaxUploadMB: 10,
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "ICS Import",
			AuthorEmail: "icsimport@localhost",
		},
	}
}

// Options converts the parser settings into parser options. Zero values
// leave the parser defaults in place.
func (p ParserConfig) Options() ([]ics.Option, error) {
	var opts []ics.Option
	if p.RowTolerance < 0 {
		return nil, fmt.Errorf("parser.row_tolerance must not be negative, got %v", p.RowTolerance)
	}
	if p.RowTolerance > 0 {
		opts = append(opts, ics.WithRowTolerance(p.RowTolerance))
	}
	if p.TotalTolerance != "" {
		tol, err := decimal.NewFromString(p.TotalTolerance)
		if err != nil {
			return nil, fmt.Errorf("parsing parser.total_tolerance %q: %w", p.TotalTolerance, err)
		}
		if tol.IsNegative() {
			return nil, fmt.Errorf("parser.total_tolerance must not be negative, got %s", tol)
		}
		opts = append(opts, ics.WithTotalTolerance(tol))
	}
	return opts, nil
}

// MaxUploadBytes returns the upload limit in bytes.
func (s ServerConfig) MaxUploadBytes() int {
	if s.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return s.MaxUploadMB << 20
}
