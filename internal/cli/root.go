package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/topher/seiri-portal-sub002/internal/cli.version=1.2.3"
	version = "0.4.0"
	logo    = "\n" +
		"  ____       _      _\n" +
		" / ___|  ___(_)_ __(_)\n" +
		" \\___ \\ / _ \\ | '__| |\n" +
		"  ___) |  __/ | |  | |\n" +
		" |____/ \\___|_|_|  |_|  agents\n"
)

var rootCmd = &cobra.Command{
	Use:   "seiri-agents",
	Short: "Seiri agent pool coordinator",
	Long:  color.CyanString(logo) + "\nOperator tooling for the workspace agent pool: routing, allocation, and coordination planning.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(simulateCmd)
}
