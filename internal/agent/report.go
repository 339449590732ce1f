package agent

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
)

const (
	wideRule   = "===================================================================================================="
	narrowRule = "----------------------------------------------------------------------------------------------------"
)

// SummarizeModels folds the suite into per-model aggregate stats.
func SummarizeModels(results []PromptResult) map[string]ModelStats {
	stats := map[string]ModelStats{}
	for _, pr := range results {
		for _, mr := range pr.ModelResults {
			s := stats[mr.Model]
			s.TotalRuns++
			if mr.Analysis.Success {
				s.SuccessfulRuns++
			}
			s.TotalTime += mr.Analysis.ElapsedSecs
			s.TotalTools += mr.Analysis.Metrics.ToolCount
			if mr.Analysis.Metrics.HasErrors {
				s.TotalErrors++
			}
			stats[mr.Model] = s
		}
	}
	return stats
}

// BuildReport renders the full text report: one section per prompt and
// model, then summary statistics per model.
func BuildReport(suite *SuiteResult) string {
	var b strings.Builder

	b.WriteString(wideRule + "\n")
	b.WriteString("OPENCODE AGENT EVALUATION REPORT\n")
	b.WriteString(wideRule + "\n\n")
	fmt.Fprintf(&b, "Run ID: %s\n", suite.RunID)
	if suite.Scenario != "" {
		fmt.Fprintf(&b, "Scenario: %s\n", suite.Scenario)
	}
	fmt.Fprintf(&b, "Started: %s\n", suite.StartedAt.Format("2006-01-02 15:04:05"))

	for idx, pr := range suite.Results {
		b.WriteString("\n" + wideRule + "\n")
		fmt.Fprintf(&b, "PROMPT %d: %s\n", idx+1, pr.Prompt)
		b.WriteString(wideRule + "\n")

		for _, mr := range pr.ModelResults {
			a := mr.Analysis
			m := a.Metrics

			b.WriteString("\n" + narrowRule + "\n")
			fmt.Fprintf(&b, "MODEL: %s\n", mr.Model)
			b.WriteString(narrowRule + "\n")
			fmt.Fprintf(&b, "Success: %t\n", a.Success)
			fmt.Fprintf(&b, "Execution Time: %.2fs\n", a.ElapsedSecs)
			fmt.Fprintf(&b, "Tools Used (%d): %s\n", m.ToolCount, joinOrNone(m.ToolsUsed))
			fmt.Fprintf(&b, "File Operations: %s\n", joinOrNone(m.FileOperations))
			fmt.Fprintf(&b, "Search Operations: %s\n", joinOrNone(m.SearchOperations))
			fmt.Fprintf(&b, "Has Code: %t\n", m.HasCode)
			fmt.Fprintf(&b, "Response Length: %d chars\n", m.ResponseLength)
			fmt.Fprintf(&b, "Has Errors: %t\n", m.HasErrors)

			if mr.Raw.Stdout != "" {
				b.WriteString("\nOutput Preview (first 500 chars):\n")
				b.WriteString(preview(mr.Raw.Stdout, 500) + "\n")
			}
			if mr.Raw.Stderr != "" {
				b.WriteString("\nErrors:\n")
				b.WriteString(preview(mr.Raw.Stderr, 500) + "\n")
			}
		}
	}

	b.WriteString("\n" + wideRule + "\n")
	b.WriteString("SUMMARY STATISTICS\n")
	b.WriteString(wideRule + "\n")

	stats := SummarizeModels(suite.Results)
	models := make([]string, 0, len(stats))
	for m := range stats {
		models = append(models, m)
	}
	sort.Strings(models)

	for _, model := range models {
		s := stats[model]
		fmt.Fprintf(&b, "\nModel: %s\n", model)
		fmt.Fprintf(&b, "  Total Runs: %d\n", s.TotalRuns)
		fmt.Fprintf(&b, "  Success Rate: %d/%d (%.1f%%)\n", s.SuccessfulRuns, s.TotalRuns, 100*s.SuccessRate())
		fmt.Fprintf(&b, "  Avg Execution Time: %.2fs\n", s.AvgTime())
		fmt.Fprintf(&b, "  Avg Tools Used: %.1f\n", s.AvgTools())
		fmt.Fprintf(&b, "  Error Rate: %d/%d (%.1f%%)\n", s.TotalErrors, s.TotalRuns, 100*s.ErrorRate())
	}

	b.WriteString("\n" + wideRule + "\n")
	return b.String()
}

// SaveResults writes the suite artifact as indented JSON.
func SaveResults(suite *SuiteResult, path string) error {
	b, err := json.MarshalIndent(suite, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal results: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("could not save results: %w", err)
	}
	return nil
}

// WriteReport writes the rendered text report.
func WriteReport(report, path string) error {
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return fmt.Errorf("could not write report: %w", err)
	}
	return nil
}

// PrintSummary prints a colored per-model summary to stdout.
func PrintSummary(suite *SuiteResult) {
	stats := SummarizeModels(suite.Results)
	models := make([]string, 0, len(stats))
	for m := range stats {
		models = append(models, m)
	}
	sort.Strings(models)

	header := color.New(color.FgCyan, color.Bold)
	good := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	header.Println("\nSUMMARY")
	for _, model := range models {
		s := stats[model]
		fmt.Printf("%s\n", model)
		rate := good
		if s.SuccessRate() < 1 {
			rate = bad
		}
		rate.Printf("  success %d/%d (%.1f%%)", s.SuccessfulRuns, s.TotalRuns, 100*s.SuccessRate())
		fmt.Printf("  avg time %.2fs  avg tools %.1f\n", s.AvgTime(), s.AvgTools())
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func preview(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
