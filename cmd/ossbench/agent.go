// cmd/ossbench/agent.go
package ossbench

import (
	"github.com/spf13/cobra"
)

// agentCmd represents the 'agent' command group and acts as a namespace
// for subcommands that evaluate the opencode agent (for example, run or scenarios).
var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Group commands for the opencode agent harness",
	Long:  `The 'agent' command groups related subcommands that run the opencode agent against a repository and report on its behavior. It performs no action on its own.`,
}

func init() {
	rootCmd.AddCommand(agentCmd)
}
