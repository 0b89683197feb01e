package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/topher/seiri-portal-sub002/internal/config"
	"github.com/topher/seiri-portal-sub002/internal/pool"
	"github.com/topher/seiri-portal-sub002/internal/store"
)

var agentsDomain string

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List pool agents and their state",
	Long:  "Lists the persisted agent snapshots, or the seeded pool when no state database exists yet.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		agents, err := loadOrSeedAgents(cfg)
		if err != nil {
			return err
		}

		shown := 0
		for _, a := range agents {
			if agentsDomain != "" && a.Domain != agentsDomain {
				continue
			}
			printAgent(a)
			shown++
		}
		if shown == 0 {
			fmt.Println("No agents found.")
		}
		return nil
	},
}

func init() {
	agentsCmd.Flags().StringVar(&agentsDomain, "domain", "", "only show agents of this domain")
}

func loadOrSeedAgents(cfg *config.Config) ([]pool.Agent, error) {
	if _, err := os.Stat(cfg.Paths.DatabasePath); err == nil {
		s, err := store.Open(cfg.Paths.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("open state db: %w", err)
		}
		defer s.Close()
		agents, err := s.LoadAgents()
		if err != nil {
			return nil, fmt.Errorf("load agents: %w", err)
		}
		if len(agents) > 0 {
			return agents, nil
		}
	}

	registry, err := seedRegistry(cfg)
	if err != nil {
		return nil, err
	}
	return registry.All(), nil
}

func seedRegistry(cfg *config.Config) (*pool.Registry, error) {
	manifest := pool.DefaultSeed()
	if cfg.Pool.SeedManifest != "" {
		m, err := pool.LoadSeedFile(cfg.Pool.SeedManifest)
		if err != nil {
			return nil, err
		}
		manifest = m
	}
	registry := pool.NewRegistry()
	if _, err := manifest.Apply(registry); err != nil {
		return nil, err
	}
	return registry, nil
}

func printAgent(a pool.Agent) {
	status := color.GreenString(string(a.Status))
	switch a.Status {
	case pool.StatusBusy:
		status = color.YellowString(string(a.Status))
	case pool.StatusOffline, pool.StatusMaintenance:
		status = color.RedString(string(a.Status))
	}
	fmt.Printf("%-36s %-14s %-22s %s  tasks %d/%d  quality %.0f  reliability %.0f\n",
		a.ID, a.Domain, a.Type, status,
		a.Availability.CurrentTaskCount, a.Availability.MaxConcurrentTasks,
		a.Performance.AvgQualityScore, a.Performance.ReliabilityScore)
}
