package cmd

import (
	"fmt"
	"runtime"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"

	"github.com/namelens/fredlens/internal/appid"
)

var extended bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version information. Use --extended for build, Go and Gofulmen details.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		name := appid.Get().BinaryName
		if !extended {
			_, err := fmt.Fprintf(w, "%s %s\n", name, versionInfo.Version)
			return err
		}

		version := crucible.GetVersion()
		_, err := fmt.Fprintf(w, "%s %s\nCommit: %s\nBuilt: %s\nGo: %s\n\nGofulmen: %s\nCrucible: %s\n",
			name, versionInfo.Version,
			versionInfo.Commit,
			versionInfo.BuildDate,
			runtime.Version(),
			version.Gofulmen,
			version.Crucible)
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&extended, "extended", "e", false, "show extended version information")
}
