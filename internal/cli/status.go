package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/topher/seiri-portal-sub002/internal/config"
	"github.com/topher/seiri-portal-sub002/internal/store"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		color.Cyan("Seiri Agents")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pool and ledger status",
	RunE: func(cmd *cobra.Command, args []string) error {
		color.Cyan("Seiri Agents Status")
		fmt.Printf("Version: %s\n", version)

		path, err := config.ConfigPath()
		if err == nil {
			if _, statErr := os.Stat(path); statErr == nil {
				fmt.Println("Config:  ✓ Found (" + path + ")")
			} else {
				fmt.Println("Config:  ✗ Not found, using defaults (" + path + ")")
			}
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cfg.Kafka.Enabled {
			fmt.Println("Kafka:   ✓ Enabled (" + cfg.Kafka.Brokers + ")")
		} else {
			fmt.Println("Kafka:   ✗ Disabled")
		}
		if cfg.Slack.Enabled {
			fmt.Println("Slack:   ✓ Enabled")
		} else {
			fmt.Println("Slack:   ✗ Disabled")
		}

		if _, err := os.Stat(cfg.Paths.DatabasePath); err != nil {
			fmt.Println("State:   ✗ No database yet (" + cfg.Paths.DatabasePath + ")")
			return nil
		}
		s, err := store.Open(cfg.Paths.DatabasePath)
		if err != nil {
			return fmt.Errorf("open state db: %w", err)
		}
		defer s.Close()

		agents, err := s.LoadAgents()
		if err != nil {
			return fmt.Errorf("load agents: %w", err)
		}
		byStatus := map[string]int{}
		for _, a := range agents {
			byStatus[string(a.Status)]++
		}
		fmt.Printf("Agents:  %d total", len(agents))
		for status, n := range byStatus {
			fmt.Printf("  %s=%d", status, n)
		}
		fmt.Println()

		active, err := s.ListAllocations(store.AllocationActive, 0)
		if err != nil {
			return fmt.Errorf("list allocations: %w", err)
		}
		completed, err := s.ListAllocations(store.AllocationCompleted, 0)
		if err != nil {
			return fmt.Errorf("list allocations: %w", err)
		}
		fmt.Printf("Ledger:  %d active, %d completed (last %d shown)\n", len(active), len(completed), len(active)+len(completed))
		for _, rec := range active {
			fmt.Printf("  %s  %s  primary=%s  strategy=%s\n",
				rec.RequestID, rec.WorkItemID, rec.PrimaryAgentID, rec.Strategy)
		}
		return nil
	},
}
