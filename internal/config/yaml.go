package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the top-level cardkey configuration file. Keys match
// the viper keys read by the CLI.
type YAMLConfig struct {
	Secret    string        `yaml:"secret"`
	DataDir   string        `yaml:"data_dir"`
	ExportDir string        `yaml:"export_dir"`
	Export    bool          `yaml:"export"`
	Lang      string        `yaml:"lang"`
	Log       LoggingConfig `yaml:"log"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultYAMLConfig returns a YAMLConfig pre-filled with sensible defaults.
// The secret is intentionally left empty so the file never carries the
// insecure fallback value.
func DefaultYAMLConfig() *YAMLConfig {
	d := Default()
	return &YAMLConfig{
		Export: d.Export,
		Lang:   d.Lang,
		Log: LoggingConfig{
			Level:  d.LogLevel,
			Format: d.LogFormat,
		},
	}
}

const configHeader = `# cardkey configuration
#
# secret: HMAC key used to compute and check integrity hashes.
#   Prefer the CARDKEY_SECRET environment variable over storing it here.
#   If unset, cardkey falls back to a PUBLIC default secret
#   ("` + DefaultSecret + `").
#   That fallback is INSECURE and only meant for local demos: anyone can
#   forge valid hashes with it. Changing the secret later invalidates the
#   hashes of every key issued before the change.
#
# data_dir:   directory holding keys.json (default ~/.cardkey)
# export_dir: directory for keys.txt / keys.csv (default: data_dir)
# lang:       en or zh-CN
# log.format: text, json or logfmt

`

// WriteDefaultConfig writes the default configuration to a YAML file.
func WriteDefaultConfig(path string) error {
	cfg := DefaultYAMLConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte(configHeader), data...), 0600)
}
