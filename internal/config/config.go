package config

import "path/filepath"

// DefaultSecret is the HMAC secret used when no secret is configured.
//
// WARNING: this value is public. Anyone who knows it can forge integrity
// hashes for arbitrary codes. It exists for local demos only; set
// CARDKEY_SECRET (or "secret" in cardkey.yaml) before issuing real keys.
const DefaultSecret = "default-secret-key-change-in-production"

// StoreFileName is the name of the key store document inside the data dir.
const StoreFileName = "keys.json"

// Config is the resolved runtime configuration shared by the generator and
// the verifier.
type Config struct {
	Secret    string
	DataDir   string
	ExportDir string // defaults to DataDir when empty
	Export    bool
	Lang      string
	LogLevel  string
	LogFormat string
}

// Default returns a Config with the built-in defaults. DataDir is left empty
// and must be set by the caller.
func Default() Config {
	return Config{
		Secret:    DefaultSecret,
		Export:    true,
		Lang:      "en",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// UsesDefaultSecret reports whether the insecure fallback secret is active.
func (c Config) UsesDefaultSecret() bool {
	return c.Secret == "" || c.Secret == DefaultSecret
}

// EffectiveSecret returns the configured secret or DefaultSecret.
func (c Config) EffectiveSecret() string {
	if c.Secret == "" {
		return DefaultSecret
	}
	return c.Secret
}

// StorePath returns the location of the key store document.
func (c Config) StorePath() string {
	return filepath.Join(c.DataDir, StoreFileName)
}

// ExportPath returns the directory that receives keys.txt and keys.csv.
func (c Config) ExportPath() string {
	if c.ExportDir != "" {
		return c.ExportDir
	}
	return c.DataDir
}
