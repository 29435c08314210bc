package cli

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cardkey/cardkey/internal/i18n"
	"github.com/cardkey/cardkey/internal/service"
)

type versionInfo struct {
	Version    string   `json:"version"`
	Commit     string   `json:"commit"`
	Built      string   `json:"built"`
	GoVersion  string   `json:"go_version"`
	Platform   string   `json:"platform"`
	Store      string   `json:"store"`
	Secret     string   `json:"secret_source"`
	HashLength int      `json:"hash_length"`
	Locales    []string `json:"locales"`
}

func newVersionCmd(version, commit, date string) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version and key store information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			info := versionInfo{
				Version:    version,
				Commit:     commit,
				Built:      date,
				GoVersion:  runtime.Version(),
				Platform:   runtime.GOOS + "/" + runtime.GOARCH,
				Store:      cfg.StorePath(),
				Secret:     secretSource(cfg),
				HashLength: service.HashLength,
				Locales:    i18n.Available(),
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), info)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "cardkey %s (%s, built %s)\n", info.Version, info.Commit, info.Built)
			fmt.Fprintf(out, "  %s %s\n", info.GoVersion, info.Platform)
			fmt.Fprintf(out, "  store:   %s\n", info.Store)
			fmt.Fprintf(out, "  secret:  %s\n", info.Secret)
			fmt.Fprintf(out, "  hash:    HMAC-SHA256, %d hex chars\n", info.HashLength)
			fmt.Fprintf(out, "  locales: %s\n", strings.Join(info.Locales, ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	return cmd
}
