package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cardkey/cardkey/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cardkey configuration",
		Long:  "Initialize a default configuration file or display the current effective configuration.",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

// ---------- config init ----------

func newConfigInitCmd() *cobra.Command {
	var (
		force bool
		path  string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default cardkey.yaml configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, path, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config file")
	cmd.Flags().StringVar(&path, "path", "cardkey.yaml", "Where to write the config file")

	return cmd
}

func runConfigInit(cmd *cobra.Command, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := config.WriteDefaultConfig(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", path)
	fmt.Fprintln(out, "Set CARDKEY_SECRET (or the secret field) before running 'cardkey generate'.")
	return nil
}

// ---------- config show ----------

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

type configView struct {
	ConfigFile string `json:"config_file,omitempty"`
	Secret     string `json:"secret"`
	SecretFrom string `json:"secret_source"`
	DataDir    string `json:"data_dir"`
	Store      string `json:"store"`
	ExportDir  string `json:"export_dir"`
	Export     bool   `json:"export"`
	Lang       string `json:"lang"`
	LogLevel   string `json:"log_level"`
	LogFormat  string `json:"log_format"`
}

// maskSecret hides all but the last four characters of a secret.
func maskSecret(cfg config.Config) string {
	if cfg.UsesDefaultSecret() {
		return "(built-in default, INSECURE)"
	}
	s := cfg.Secret
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool) error {
	cfg := loadConfig()
	view := configView{
		ConfigFile: viper.ConfigFileUsed(),
		Secret:     maskSecret(cfg),
		SecretFrom: secretSource(cfg),
		DataDir:    cfg.DataDir,
		Store:      cfg.StorePath(),
		ExportDir:  cfg.ExportPath(),
		Export:     cfg.Export,
		Lang:       cfg.Lang,
		LogLevel:   cfg.LogLevel,
		LogFormat:  cfg.LogFormat,
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, view)
	}

	if view.ConfigFile != "" {
		fmt.Fprintf(out, "Config file: %s\n", view.ConfigFile)
	} else {
		fmt.Fprintln(out, "Config file: (none found, using defaults)")
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  secret:     %s (%s)\n", view.Secret, view.SecretFrom)
	fmt.Fprintf(out, "  data_dir:   %s\n", view.DataDir)
	fmt.Fprintf(out, "  store:      %s\n", view.Store)
	fmt.Fprintf(out, "  export_dir: %s\n", view.ExportDir)
	fmt.Fprintf(out, "  export:     %t\n", view.Export)
	fmt.Fprintf(out, "  lang:       %s\n", view.Lang)
	fmt.Fprintf(out, "  log.level:  %s\n", view.LogLevel)
	fmt.Fprintf(out, "  log.format: %s\n", view.LogFormat)
	return nil
}
