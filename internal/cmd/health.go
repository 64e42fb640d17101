package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apperrors "github.com/namelens/fredlens/internal/errors"
	"github.com/namelens/fredlens/internal/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long:  "Check that version information, logging and configuration are usable and that an API key is set.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if observability.CLILogger == nil {
			ExitWithCodeStderr(foundry.ExitConfigInvalid, "Logger not initialized", apperrors.NewConfigInvalidError("Logger not initialized"))
			return
		}
		log := observability.CLILogger

		if versionInfo.Version == "" {
			ExitWithCode(log, foundry.ExitConfigInvalid, "Version information missing", apperrors.NewConfigInvalidError("Version information missing"))
			return
		}
		log.Info("✅ Version information available", zap.String("version", versionInfo.Version))

		cfg, err := loadConfig()
		if err != nil {
			ExitWithCode(log, foundry.ExitConfigInvalid, "Configuration invalid", err)
			return
		}
		log.Info("✅ Configuration valid")

		if err := requireAPIKey(cfg); err != nil {
			ExitWithCode(log, foundry.ExitConfigInvalid, "API key missing", err)
			return
		}
		log.Info("✅ FRED API key set")

		log.Info("")
		log.Info("✅ All health checks passed")
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
