// cmd/ossbench/agent_scenarios.go
package ossbench

import (
	"fmt"

	"github.com/spf13/cobra"

	"ossbench/internal/config"
)

var scenariosConfigFile string

// agentScenariosCmd implements 'agent scenarios', which lists the scenarios
// defined in the configuration file along with their model and prompt counts.
var agentScenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List available scenarios from the config",
	Long:  `The 'scenarios' subcommand lists all scenarios defined in the configuration file, with the number of models and prompts each one covers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scenarios, err := config.LoadScenarios(scenariosConfigFile)
		if err != nil {
			return err
		}

		fmt.Println("Available scenarios:")
		for i, sc := range scenarios.Scenarios {
			fmt.Printf("  %d. %s\n", i+1, sc.Name)
			fmt.Printf("     Models: %d\n", len(sc.Models))
			fmt.Printf("     Prompts: %d\n", len(sc.Prompts))
		}
		return nil
	},
}

func init() {
	agentCmd.AddCommand(agentScenariosCmd)

	agentScenariosCmd.Flags().StringVarP(&scenariosConfigFile, "config", "c", "scenarios.json", "path to the scenario configuration JSON file")
}
