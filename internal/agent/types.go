package agent

import "time"

// QueryResult captures a single opencode invocation: the raw process
// output plus timing and exit status.
type QueryResult struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Stdout      string  `json:"stdout"`
	Stderr      string  `json:"stderr"`
	ReturnCode  int     `json:"returncode"`
	ElapsedSecs float64 `json:"execution_time"`
	Success     bool    `json:"success"`
	Error       string  `json:"error,omitempty"` // "timeout" or a start failure
}

// Metrics summarizes the transcript analysis of one run.
type Metrics struct {
	ToolsUsed        []string `json:"tools_used"`
	ToolCount        int      `json:"tool_count"`
	HasErrors        bool     `json:"has_errors"`
	ResponseLength   int      `json:"response_length"`
	HasCode          bool     `json:"has_code"`
	FileOperations   []string `json:"file_operations"`
	SearchOperations []string `json:"search_operations"`
}

// Analysis pairs a run with its derived metrics.
type Analysis struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	ElapsedSecs float64 `json:"execution_time"`
	Success     bool    `json:"success"`
	Metrics     Metrics `json:"metrics"`
}

// ModelResult bundles the raw result and analysis for one model on one
// prompt.
type ModelResult struct {
	Model    string      `json:"model"`
	Raw      QueryResult `json:"raw_result"`
	Analysis Analysis    `json:"analysis"`
}

// PromptResult groups all model results for a single prompt. Records are
// append-only within one evaluation run.
type PromptResult struct {
	Prompt       string        `json:"prompt"`
	ModelResults []ModelResult `json:"model_results"`
}

// SuiteResult is the top-level artifact of one comparison run.
type SuiteResult struct {
	RunID     string         `json:"run_id"`
	Scenario  string         `json:"scenario,omitempty"`
	StartedAt time.Time      `json:"started_at"`
	Results   []PromptResult `json:"results"`
}

// ModelStats aggregates per-model numbers for the summary section of the
// report.
type ModelStats struct {
	TotalRuns      int     `json:"total_runs"`
	SuccessfulRuns int     `json:"successful_runs"`
	TotalTime      float64 `json:"total_time"`
	TotalTools     int     `json:"total_tools"`
	TotalErrors    int     `json:"total_errors"`
}

// SuccessRate returns the fraction of successful runs in [0, 1].
func (s ModelStats) SuccessRate() float64 {
	if s.TotalRuns == 0 {
		return 0
	}
	return float64(s.SuccessfulRuns) / float64(s.TotalRuns)
}

// ErrorRate returns the fraction of failed runs in [0, 1].
func (s ModelStats) ErrorRate() float64 {
	if s.TotalRuns == 0 {
		return 0
	}
	return float64(s.TotalErrors) / float64(s.TotalRuns)
}

// AvgTime returns the mean elapsed seconds per run.
func (s ModelStats) AvgTime() float64 {
	if s.TotalRuns == 0 {
		return 0
	}
	return s.TotalTime / float64(s.TotalRuns)
}

// AvgTools returns the mean tool count per run.
func (s ModelStats) AvgTools() float64 {
	if s.TotalRuns == 0 {
		return 0
	}
	return float64(s.TotalTools) / float64(s.TotalRuns)
}
