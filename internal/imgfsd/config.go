// Package imgfsd is the HTTP frontend for the imgfs engine: routing,
// parameter extraction and body handling, at the level of its contract with
// the engine (spec.md §1, §4.G). The wire-level HTTP/1.1 parsing itself is
// delegated to net/http, per spec.md's call-out that the parser is
// "trivially reimplementable and not where the engineering lives".
package imgfsd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the imgfs-server startup configuration.
type Config struct {
	// Listen is the address the server binds, e.g. ":8080".
	Listen string `yaml:"listen"`

	// Container is the path to the ImgFS container file to serve.
	Container string `yaml:"container"`

	// BaseFile is the static HTML file served at "/" and "/index.html",
	// the BASE_FILE compile-time constant in spec.md §6.
	BaseFile string `yaml:"base_file"`
}

// DefaultConfig returns the built-in imgfs-server defaults.
func DefaultConfig() Config {
	return Config{
		Listen:    ":8080",
		Container: "imgfs.bin",
		BaseFile:  "web/index.html",
	}
}

// LoadConfig reads a YAML config file and overlays it onto [DefaultConfig].
// A missing path is not an error: callers fall back to defaults plus any
// CLI flag overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is operator-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return Config{}, fmt.Errorf("reading server config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing server config %s: %w", path, err)
	}

	return cfg, nil
}
