package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/namelens/fredlens/internal/appid"
	"github.com/namelens/fredlens/internal/core/cache"
	"github.com/namelens/fredlens/internal/observability"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display version, runtime and effective configuration. The API key is never printed.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		log := observability.CLILogger
		identity := appid.Get()
		version := crucible.GetVersion()

		log.Info("Application:")
		log.Info("  Name:       " + identity.BinaryName)
		log.Info("  Version:    " + versionInfo.Version)
		log.Info("  Commit:     " + versionInfo.Commit)
		log.Info("  Built:      " + versionInfo.BuildDate)
		log.Info("  Gofulmen:   "+version.Gofulmen, zap.String("gofulmen_version", version.Gofulmen))
		log.Info("  Crucible:   "+version.Crucible, zap.String("crucible_version", version.Crucible))
		log.Info("")

		log.Info("Runtime:")
		log.Info("  Go Version: "+runtime.Version(), zap.String("go_version", runtime.Version()))
		log.Info(fmt.Sprintf("  Platform:   %s/%s", runtime.GOOS, runtime.GOARCH))
		log.Info(fmt.Sprintf("  NumCPU:     %d", runtime.NumCPU()), zap.Int("num_cpu", runtime.NumCPU()))
		log.Info("")

		cfg, err := loadConfig()
		if err != nil {
			log.Warn("Config load failed", zap.Error(err))
			return
		}

		configFile := viper.ConfigFileUsed()
		if configFile == "" {
			configFile = "(none)"
		}
		keyState := "(not set)"
		if strings.TrimSpace(cfg.API.Key) != "" {
			keyState = "(set)"
		}

		log.Info("FRED API:")
		log.Info("  Base URL:       " + cfg.API.BaseURL)
		log.Info("  Maps URL:       " + cfg.Maps.BaseURL)
		log.Info("  API Key:        " + keyState)
		log.Info("  Mode:           "+cfg.API.Mode, zap.String("mode", cfg.API.Mode))
		log.Info(fmt.Sprintf("  Budget:         %d requests / %s (margin %.2f)", cfg.API.MaxRequestsPerWindow, cfg.API.Window, cfg.API.RateLimitMargin))
		log.Info(fmt.Sprintf("  Retry:          %d attempts, %s apart", cfg.Retry.Attempts, cfg.Retry.Wait))
		log.Info(fmt.Sprintf("  Persist Ledger: %t", cfg.API.PersistLedger))
		log.Info("")

		log.Info("Cache:")
		log.Info(fmt.Sprintf("  Enabled:        %t", cfg.Cache.Enabled))
		log.Info("  Backend:        " + cache.NormalizeBackend(cfg.Cache.Backend))
		log.Info("  TTL:            " + cfg.Cache.TTL.String())
		if strings.TrimSpace(cfg.Store.URL) != "" {
			log.Info("  Store URL:      " + cfg.Store.URL)
		} else {
			log.Info("  Store Path:     " + cfg.Store.Path)
		}
		log.Info("  Redis Addr:     " + cfg.Redis.Addr)
		log.Info("")

		log.Info("Server:")
		log.Info(fmt.Sprintf("  Listen:         %s:%d", cfg.Server.Host, cfg.Server.Port))
		log.Info(fmt.Sprintf("  Metrics Port:   %d", cfg.Metrics.Port))
		log.Info("  Log Level:      " + cfg.Logging.Level)
		log.Info("  Config File:    " + configFile)
	},
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}
