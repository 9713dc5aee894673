package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parley-cli/parley/internal/agent"
	"github.com/parley-cli/parley/internal/config"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Manage agent personas",
}

var (
	flagAgentSystem      string
	flagAgentDescription string
	flagAgentProvider    string
	flagAgentModel       string
	flagAgentTemperature float64
)

var agentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadAgentRegistry()
		if err != nil {
			return err
		}
		for _, a := range registry.List() {
			fmt.Fprintf(os.Stdout, "%s", a.Name)
			if a.Description != "" {
				fmt.Fprintf(os.Stdout, "  -  %s", a.Description)
			}
			fmt.Fprintln(os.Stdout)
		}
		return nil
	},
}

var agentShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one agent in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadAgentRegistry()
		if err != nil {
			return err
		}
		a, err := registry.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Name:        %s\n", a.Name)
		fmt.Fprintf(os.Stdout, "ID:          %s\n", a.ID)
		if a.Description != "" {
			fmt.Fprintf(os.Stdout, "Description: %s\n", a.Description)
		}
		if a.Provider != "" {
			fmt.Fprintf(os.Stdout, "Provider:    %s\n", a.Provider)
		}
		if a.Model != "" {
			fmt.Fprintf(os.Stdout, "Model:       %s\n", a.Model)
		}
		if a.Temperature > 0 {
			fmt.Fprintf(os.Stdout, "Temperature: %g\n", a.Temperature)
		}
		fmt.Fprintf(os.Stdout, "System prompt:\n  %s\n", a.SystemPrompt)
		return nil
	},
}

var agentAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create an agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagAgentSystem == "" {
			return fmt.Errorf("--system is required")
		}
		registry, err := loadAgentRegistry()
		if err != nil {
			return err
		}
		err = registry.Add(agent.Agent{
			Name:         args[0],
			Description:  flagAgentDescription,
			SystemPrompt: flagAgentSystem,
			Provider:     flagAgentProvider,
			Model:        flagAgentModel,
			Temperature:  flagAgentTemperature,
		})
		if err != nil {
			return err
		}
		if err := registry.Save(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Agent %q created.\n", args[0])
		return nil
	},
}

var agentRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete an agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadAgentRegistry()
		if err != nil {
			return err
		}
		if err := registry.Remove(args[0]); err != nil {
			return err
		}
		if err := registry.Save(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Agent %q removed.\n", args[0])
		return nil
	},
}

func loadAgentRegistry() (*agent.Registry, error) {
	cfg, err := config.Load(nil)
	if err != nil {
		return nil, err
	}
	return loadAgents(cfg)
}

func init() {
	agentAddCmd.Flags().StringVar(&flagAgentSystem, "system", "", "System prompt (required)")
	agentAddCmd.Flags().StringVar(&flagAgentDescription, "description", "", "Short description")
	agentAddCmd.Flags().StringVar(&flagAgentProvider, "provider", "", "Provider override for this agent")
	agentAddCmd.Flags().StringVar(&flagAgentModel, "model", "", "Model override for this agent")
	agentAddCmd.Flags().Float64Var(&flagAgentTemperature, "temperature", 0, "Temperature override for this agent")

	agentCmd.AddCommand(agentListCmd)
	agentCmd.AddCommand(agentShowCmd)
	agentCmd.AddCommand(agentAddCmd)
	agentCmd.AddCommand(agentRemoveCmd)
}
