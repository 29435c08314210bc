package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cardkey/cardkey/internal/config"
	"github.com/cardkey/cardkey/internal/i18n"
	"github.com/cardkey/cardkey/internal/logging"
	"github.com/cardkey/cardkey/internal/model"
	"github.com/cardkey/cardkey/internal/service"
)

// ExitStoreUnavailable is the process exit status used when the key store
// cannot be loaded for verification.
const ExitStoreUnavailable = 2

// ExitError carries a specific process exit status up to main.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// storeError converts a store load failure into an ExitError with
// ExitStoreUnavailable; other errors pass through unchanged.
func storeError(err error) error {
	if errors.Is(err, config.ErrStoreUnavailable) {
		return &ExitError{
			Code:    ExitStoreUnavailable,
			Message: i18n.T("store_unavailable", err),
			Err:     err,
		}
	}
	return err
}

// dataDir holds the --data-dir persistent flag value (set on root command).
var dataDir string

// resolveDataDir returns the data directory from --data-dir flag,
// CARDKEY_DATA_DIR / data_dir config, or ~/.cardkey as fallback.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if d := viper.GetString("data_dir"); d != "" {
		return d
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cardkey")
}

// loadConfig resolves the typed configuration from viper.
func loadConfig() config.Config {
	cfg := config.Default()
	cfg.Secret = viper.GetString("secret")
	cfg.DataDir = resolveDataDir()
	cfg.ExportDir = viper.GetString("export_dir")
	cfg.Export = viper.GetBool("export")
	cfg.Lang = viper.GetString("lang")
	cfg.LogLevel = viper.GetString("log.level")
	cfg.LogFormat = viper.GetString("log.format")
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg
}

// app bundles the collaborators shared by the key commands.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	store  *config.Store
	hasher *service.Hasher
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg := loadConfig()
	i18n.Init(cfg.Lang)

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	store, err := config.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open key store: %w", err)
	}
	logger.Debug("key store resolved", "path", store.Path())

	if cfg.UsesDefaultSecret() {
		logger.Warn(i18n.T("default_secret_warning"))
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		hasher: service.NewHasher(cfg.EffectiveSecret()),
	}, nil
}

func (a *app) generator() *service.Generator {
	return service.NewGenerator(a.store, a.hasher, a.logger)
}

func (a *app) verifier() *service.Verifier {
	return service.NewVerifier(a.store, a.hasher, a.logger)
}

// secretSource names where the HMAC secret was resolved from, without
// revealing it.
func secretSource(cfg config.Config) string {
	switch {
	case cfg.UsesDefaultSecret():
		return "built-in default (INSECURE)"
	case os.Getenv("CARDKEY_SECRET") != "":
		return "env CARDKEY_SECRET"
	case os.Getenv("KEY_SECRET") != "":
		return "env KEY_SECRET"
	case viper.InConfig("secret"):
		return "config file " + viper.ConfigFileUsed()
	default:
		return "flag or default"
	}
}

// consumer describes this process for the usedBy field of a consumed key.
func consumer() model.UsedBy {
	by := model.UsedBy{
		UserAgent: fmt.Sprintf("cardkey/%s (%s/%s)", versionString(), runtime.GOOS, runtime.GOARCH),
	}
	if host, err := os.Hostname(); err == nil {
		by.Host = host
	}
	if u, err := user.Current(); err == nil {
		by.User = u.Username
	}
	return by
}

// versionString returns a display version string.
func versionString() string {
	if appVersion == "" || appVersion == "dev" {
		return "dev"
	}
	if strings.HasPrefix(appVersion, "v") {
		return appVersion
	}
	return "v" + appVersion
}
