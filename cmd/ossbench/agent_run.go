// cmd/ossbench/agent_run.go
package ossbench

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ossbench/internal/agent"
	"ossbench/internal/config"
)

// defaultAgentPrompts is used for ad-hoc runs when no prompt flags are given.
var defaultAgentPrompts = []string{
	"List all Python files in this repository",
	"Find all functions that contain 'evaluate' in their name",
	"Show me the main entry point of this application",
	"What dependencies does this project use?",
}

var (
	runConfigFile string
	runScenario   string
	runAll        bool
	runRepo       string
	runModels     string
	runPrompt     string
	runPrompts    string
	runTimeout    int
	runOutput     string
)

// agentRunCmd implements 'agent run', which executes the opencode agent
// against a repository for one scenario, all scenarios, or an ad-hoc
// model/prompt matrix, and writes JSON and text reports.
var agentRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the opencode agent across models and prompts",
	Long:  `The 'run' subcommand executes the opencode agent for each model and prompt combination, analyzes the transcripts, and writes a JSON results file plus a human-readable comparison report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if runConfigFile != "" {
			scenarios, err := config.LoadScenarios(runConfigFile)
			if err != nil {
				return err
			}

			if runAll {
				return runAllScenarios(ctx, scenarios)
			}

			if runScenario != "" {
				sc, err := scenarios.Find(runScenario)
				if err != nil {
					fmt.Println("Available scenarios:")
					for _, s := range scenarios.Scenarios {
						fmt.Printf("  - %s\n", s.Name)
					}
					return err
				}
				_, err = runOneScenario(ctx, sc)
				return err
			}

			return runAdHoc(ctx, scenarios.DefaultModels, scenarios.DefaultPrompts)
		}

		if runModels == "" {
			return fmt.Errorf("either --config or --models must be provided")
		}

		models := splitList(runModels)
		var prompts []string
		switch {
		case runPrompt != "":
			prompts = []string{runPrompt}
		case runPrompts != "":
			prompts = splitList(runPrompts)
		default:
			prompts = defaultAgentPrompts
		}

		return runAdHoc(ctx, models, prompts)
	},
}

// runAllScenarios runs every scenario in the config. A failing scenario is
// reported but does not stop the remaining ones. The combined results are
// written to <output>_summary.json.
func runAllScenarios(ctx context.Context, scenarios *config.ScenarioConfig) error {
	fmt.Printf("Running all %d scenarios...\n", len(scenarios.Scenarios))

	var all []*agent.SuiteResult
	for _, sc := range scenarios.Scenarios {
		suite, err := runOneScenario(ctx, sc)
		if err != nil {
			color.Red("Error in scenario %q: %v", sc.Name, err)
			continue
		}
		all = append(all, suite)
		fmt.Println("\n" + strings.Repeat("=", 80) + "\n")
	}

	summaryFile := runOutput + "_summary.json"
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	if err := os.WriteFile(summaryFile, data, 0o644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	color.Green("Summary saved to: %s", summaryFile)
	return nil
}

// runOneScenario executes a single scenario and writes its reports using the
// scenario name (lowercased, spaces replaced by underscores) as file suffix.
func runOneScenario(ctx context.Context, sc config.Scenario) (*agent.SuiteResult, error) {
	rule := strings.Repeat("=", 80)
	fmt.Println(rule)
	fmt.Printf("SCENARIO: %s\n", sc.Name)
	fmt.Println(rule)
	fmt.Printf("Models: %s\n", strings.Join(sc.Models, ", "))
	fmt.Printf("Prompts: %d\n", len(sc.Prompts))
	fmt.Printf("Timeout: %ds\n", scenarioTimeout(sc))
	fmt.Println(rule)

	ev := newEvaluator(scenarioTimeout(sc))
	suite, err := ev.CompareModels(ctx, sc.Name, sc.Models, sc.Prompts)
	if err != nil {
		return nil, err
	}

	suffix := strings.ReplaceAll(strings.ToLower(sc.Name), " ", "_")
	if err := writeOutputs(suite, runOutput+"_"+suffix); err != nil {
		return nil, err
	}
	return suite, nil
}

// runAdHoc executes a model/prompt matrix outside any named scenario.
func runAdHoc(ctx context.Context, models, prompts []string) error {
	if len(models) == 0 {
		return fmt.Errorf("no models to run")
	}
	if len(prompts) == 0 {
		prompts = defaultAgentPrompts
	}

	rule := strings.Repeat("=", 80)
	fmt.Println(rule)
	fmt.Println("OPENCODE AGENT EVALUATION")
	fmt.Println(rule)
	fmt.Printf("Repository: %s\n", runRepo)
	fmt.Printf("Models: %s\n", strings.Join(models, ", "))
	fmt.Printf("Prompts: %d\n", len(prompts))
	fmt.Printf("Timeout: %ds\n", runTimeout)
	fmt.Println(rule)

	ev := newEvaluator(runTimeout)
	suite, err := ev.CompareModels(ctx, "", models, prompts)
	if err != nil {
		return err
	}

	return writeOutputs(suite, runOutput)
}

// newEvaluator builds an Evaluator for the configured repository with the
// given per-query timeout in seconds.
func newEvaluator(timeoutSecs int) *agent.Evaluator {
	options := []agent.Option{}
	if timeoutSecs > 0 {
		options = append(options, agent.WithTimeout(time.Duration(timeoutSecs)*time.Second))
	}
	return agent.New(runRepo, options...)
}

// writeOutputs prints the comparison report and saves the JSON results and
// text report under the given file prefix.
func writeOutputs(suite *agent.SuiteResult, prefix string) error {
	report := agent.BuildReport(suite)
	fmt.Println("\n" + report)

	jsonFile := prefix + ".json"
	txtFile := prefix + ".txt"

	if err := agent.SaveResults(suite, jsonFile); err != nil {
		return err
	}
	if err := agent.WriteReport(report, txtFile); err != nil {
		return err
	}

	agent.PrintSummary(suite)
	color.Green("Results saved to:")
	color.Green("   - %s", jsonFile)
	color.Green("   - %s", txtFile)
	return nil
}

// splitList splits a comma-separated flag value, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// scenarioTimeout returns the scenario's timeout, falling back to the
// --timeout flag when the scenario does not set one.
func scenarioTimeout(sc config.Scenario) int {
	if sc.Timeout > 0 {
		return sc.Timeout
	}
	return runTimeout
}

func init() {
	agentCmd.AddCommand(agentRunCmd)

	agentRunCmd.Flags().StringVarP(&runConfigFile, "config", "c", "", "path to the scenario configuration JSON file")
	agentRunCmd.Flags().StringVar(&runScenario, "scenario", "", "name of a specific scenario to run from the config")
	agentRunCmd.Flags().BoolVar(&runAll, "all", false, "run all scenarios from the config")
	agentRunCmd.Flags().StringVarP(&runRepo, "repo", "r", ".", "path to the test repository")
	agentRunCmd.Flags().StringVar(&runModels, "models", "", "comma-separated list of models to test")
	agentRunCmd.Flags().StringVar(&runPrompt, "prompt", "", "single prompt to test")
	agentRunCmd.Flags().StringVar(&runPrompts, "prompts", "", "comma-separated list of prompts to test")
	agentRunCmd.Flags().IntVar(&runTimeout, "timeout", 120, "timeout in seconds for each query")
	agentRunCmd.Flags().StringVarP(&runOutput, "output", "o", "opencode_eval", "output file prefix")
}
