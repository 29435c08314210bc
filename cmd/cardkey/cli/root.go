package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	appVersion string // set in Execute, used for the consumption user agent
	verbose    bool
)

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	appVersion = version
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cardkey",
		Short: "Issue and verify single-use redemption keys",
		Long: `cardkey issues and verifies single-use redemption keys.

Keys are generated in batches, each with an HMAC integrity hash, and stored in
a local keys.json document. Verifying a key checks it against the store and can
mark it as used. The HMAC secret comes from CARDKEY_SECRET; without it a public
default secret is used, which is only suitable for local demos.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./cardkey.yaml)")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding keys.json (default: ~/.cardkey)")
	cmd.PersistentFlags().String("lang", "", "output language (en, zh-CN)")
	cmd.PersistentFlags().String("log-format", "", "log format (text, json, logfmt)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	viper.BindPFlag("lang", cmd.PersistentFlags().Lookup("lang"))
	viper.BindPFlag("log.format", cmd.PersistentFlags().Lookup("log-format"))

	cobra.OnInitialize(initConfig)

	// Add subcommands
	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newVerifyCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))

	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("cardkey")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.cardkey")
	}

	viper.SetDefault("export", true)
	viper.SetDefault("lang", "en")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetEnvPrefix("CARDKEY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	// KEY_SECRET is honoured for stores created by the earlier key scripts.
	viper.BindEnv("secret", "CARDKEY_SECRET", "KEY_SECRET")
	viper.ReadInConfig() // Ignore error - config file is optional
}
