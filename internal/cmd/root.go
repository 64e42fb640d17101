package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/namelens/fredlens/internal/appid"
	"github.com/namelens/fredlens/internal/config"
	apperrors "github.com/namelens/fredlens/internal/errors"
	"github.com/namelens/fredlens/internal/observability"
)

var (
	cfgFile string
	verbose bool
	noCache bool

	outputFormat string
	outputPath   string

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var rootCmd = &cobra.Command{
	Use:           appid.Get().BinaryName,
	Short:         appid.Get().Description,
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: fmt.Sprintf(`%s - %s

Every request goes through one dispatcher per API (FRED and GeoFRED maps)
that keeps the request budget, caches responses and retries transient
failures. Use the subcommands to query the API or to run the HTTP gateway.`,
		appid.Get().BinaryName, appid.Get().Description),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Disable global telemetry early to prevent config loading from emitting
	// metrics to stdout. Server mode will initialize proper telemetry later.
	if sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: false}); err == nil {
		telemetry.SetGlobalSystem(sys)
	}

	config.SetDefaults(viper.GetViper())
	cobra.OnInitialize(initConfig)

	identity := appid.Get()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default is $XDG_CONFIG_HOME/%s/config.yaml)", identity.ConfigName))
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
	flags.String("api-key", "", fmt.Sprintf("FRED API key (default $%s or $%s)", identity.EnvName("API_KEY"), config.LegacyAPIKeyEnv))
	flags.String("mode", "", "rate limit mode: sync or async")
	flags.BoolVar(&noCache, "no-cache", false, "bypass the response cache")
	flags.StringVarP(&outputFormat, "output-format", "o", "table", "output format: table|json|yaml|csv|markdown")
	flags.StringVar(&outputPath, "out", "", "write output to a file (default stdout)")

	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("api.key", flags.Lookup("api-key"))
	_ = viper.BindPFlag("api.mode", flags.Lookup("mode"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	identity := appid.Get()
	observability.InitCLILogger(identity.BinaryName, verbose)

	v := viper.GetViper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if dir := gfconfig.GetAppConfigDir(identity.ConfigName); dir != "" {
			v.AddConfigPath(dir)
			v.SetConfigName("config")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				ExitWithCode(observability.CLILogger, foundry.ExitFileNotFound, "Could not find home directory", err)
			}
			v.AddConfigPath(home)
			v.SetConfigName("." + identity.ConfigName)
		}
		v.AddConfigPath("./config")
		v.SetConfigType("yaml")
	}

	config.ConfigureEnv(v)

	if err := v.ReadInConfig(); err == nil {
		observability.CLILogger.Debug("Using config file", zap.String("path", v.ConfigFileUsed()))
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		observability.CLILogger.Debug("No config file found, using defaults and environment variables")
	} else {
		observability.CLILogger.Warn("Error reading config file", zap.Error(err))
	}
}

// loadConfig decodes the merged settings and applies the flags that have no
// config key of their own.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, apperrors.WrapConfigInvalid(context.Background(), err, err.Error())
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	return cfg, nil
}

// requireAPIKey fails early when a command is about to call FRED without a key.
func requireAPIKey(cfg *config.Config) error {
	if strings.TrimSpace(cfg.API.Key) != "" {
		return nil
	}
	return apperrors.NewConfigInvalidError(fmt.Sprintf("FRED API key not set: use --api-key, %s or %s",
		appid.Get().EnvName("API_KEY"), config.LegacyAPIKeyEnv))
}
