// Package config loads refine.toml, the single configuration surface shared
// by the CLI, the instrumentation hook and the source API server.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the full configuration tree.
type Config struct {
	Instrument InstrumentConfig `toml:"instrument"`
	Templates  TemplatesConfig  `toml:"templates"`
	Server     ServerConfig     `toml:"server"`
}

// InstrumentConfig configures the instrumentation engine.
type InstrumentConfig struct {
	// Attribute is the marker attribute name injected into annotated tags.
	Attribute string `toml:"attribute"`
	// Tags is the plain tag-name set eligible for annotation.
	Tags []string `toml:"tags"`
	// Components toggles the component-tag sub-pass.
	Components bool `toml:"components"`
	// ComponentPrefix is the component naming-convention prefix.
	ComponentPrefix string `toml:"component_prefix"`
}

// TemplatesConfig configures path resolution.
type TemplatesConfig struct {
	// Roots is the ordered list of template root directories. First match
	// wins in both resolution directions.
	Roots []string `toml:"roots"`
	// Extensions lists recognized template file extensions.
	Extensions []string `toml:"extensions"`
}

// ServerConfig configures the source API.
type ServerConfig struct {
	// Enabled gates the server entirely; the source API reads and writes
	// project files and must never run outside development.
	Enabled bool `toml:"enabled"`
	Addr    string `toml:"addr"`
	// Backups is how many timestamped copies of each edited file to keep.
	Backups int `toml:"backups"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Instrument: InstrumentConfig{
			Attribute:       "data-source",
			Components:      true,
			ComponentPrefix: "x-",
		},
		Templates: TemplatesConfig{
			Roots:      []string{"resources/views"},
			Extensions: []string{".html", ".tmpl", ".gohtml"},
		},
		Server: ServerConfig{
			Enabled: false,
			Addr:    "localhost:8317",
			Backups: 5,
		},
	}
}

// Load reads a TOML config file over the defaults. A missing file is not an
// error: the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.Server.Backups < 0 {
		return Config{}, fmt.Errorf("config: server.backups must not be negative")
	}
	return cfg, nil
}
