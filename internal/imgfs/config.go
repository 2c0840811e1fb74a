package imgfs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// CLIConfig holds the imgfscmd create defaults, loadable from a HUJSON
// (JSON-with-comments) file so operators can check in a commented config
// without fighting strict JSON syntax.
type CLIConfig struct {
	MaxFiles uint32 `json:"max_files,omitempty"`
	ThumbW   uint16 `json:"thumb_w,omitempty"`
	ThumbH   uint16 `json:"thumb_h,omitempty"`
	SmallW   uint16 `json:"small_w,omitempty"`
	SmallH   uint16 `json:"small_h,omitempty"`
}

// ConfigFileName is the project-local config file name, analogous to a
// dotfile checked in next to the container.
const ConfigFileName = ".imgfsrc"

// LoadCLIConfigInput parameterizes [LoadCLIConfig].
type LoadCLIConfigInput struct {
	WorkDir    string
	ConfigPath string // explicit -config flag value, "" if unset
	Env        map[string]string
}

// LoadCLIConfig loads imgfscmd defaults with precedence (highest wins):
// built-in defaults -> global user config -> project config -> explicit
// -config file. It does not apply CLI flag overrides; callers do that
// afterwards by comparing against [flag.FlagSet.Changed].
func LoadCLIConfig(in LoadCLIConfigInput) (CLIConfig, error) {
	cfg := CLIConfig{
		MaxFiles: DefaultMaxFiles,
		ThumbW:   DefaultThumbW, ThumbH: DefaultThumbH,
		SmallW: DefaultSmallW, SmallH: DefaultSmallH,
	}

	if globalPath := globalConfigPath(in.Env); globalPath != "" {
		overlay, loaded, err := loadConfigFile(globalPath, false)
		if err != nil {
			return CLIConfig{}, err
		}

		if loaded {
			cfg = mergeCLIConfig(cfg, overlay)
		}
	}

	projectPath := filepath.Join(in.WorkDir, ConfigFileName)

	overlay, loaded, err := loadConfigFile(projectPath, false)
	if err != nil {
		return CLIConfig{}, err
	}

	if loaded {
		cfg = mergeCLIConfig(cfg, overlay)
	}

	if in.ConfigPath != "" {
		path := in.ConfigPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(in.WorkDir, path)
		}

		overlay, loaded, err := loadConfigFile(path, true)
		if err != nil {
			return CLIConfig{}, err
		}

		if loaded {
			cfg = mergeCLIConfig(cfg, overlay)
		}
	}

	return cfg, nil
}

func globalConfigPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "imgfs", "config.hujson")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "imgfs", "config.hujson")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "imgfs", "config.hujson")
}

// loadConfigFile reads and parses a HUJSON config file. If mustExist is
// false, a missing file returns (zero, false, nil).
func loadConfigFile(path string, mustExist bool) (CLIConfig, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-controlled
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return CLIConfig{}, false, nil
		}

		return CLIConfig{}, false, fmt.Errorf("reading config %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return CLIConfig{}, false, fmt.Errorf("invalid config %s: %w", path, err)
	}

	var cfg CLIConfig
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return CLIConfig{}, false, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, true, nil
}

func mergeCLIConfig(base, overlay CLIConfig) CLIConfig {
	if overlay.MaxFiles != 0 {
		base.MaxFiles = overlay.MaxFiles
	}

	if overlay.ThumbW != 0 || overlay.ThumbH != 0 {
		base.ThumbW, base.ThumbH = overlay.ThumbW, overlay.ThumbH
	}

	if overlay.SmallW != 0 || overlay.SmallH != 0 {
		base.SmallW, base.SmallH = overlay.SmallW, overlay.SmallH
	}

	return base
}
